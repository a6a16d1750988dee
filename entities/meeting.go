package entities

import "time"

// Meeting rows are owned by the main application; this service only flips the
// recording flag when an egress starts.
type Meeting struct {
	ID        string    `json:"id" gorm:"type:varchar(255);primary_key"`
	Title     string    `json:"title" gorm:"type:varchar(255)"`
	HasEgress bool      `json:"has_egress" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Meeting) TableName() string {
	return "meetings"
}
