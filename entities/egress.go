package entities

import (
	"time"

	"classroom-egress/constant"
)

// Egress is one server-side recording job. The primary key is the id assigned
// by the media server when the job is accepted.
type Egress struct {
	ID        string                `json:"id" gorm:"type:varchar(255);primary_key"`
	MeetingID string                `json:"meeting_id" gorm:"type:varchar(255);not null;index:idx_egresses_meeting_id"`
	Status    constant.EgressStatus `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func (Egress) TableName() string {
	return "egresses"
}
