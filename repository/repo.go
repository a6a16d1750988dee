package repository

import (
	"context"
	"database/sql"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"classroom-egress/constant"
	"classroom-egress/entities"
)

type RecordingRepository interface {
	// RecordEgressStarted marks the meeting as recorded and creates the egress
	// row in a single transaction. Either both writes land or neither does.
	RecordEgressStarted(ctx context.Context, egressID, meetingID string) error
	UpdateEgressStatus(ctx context.Context, egressID string, status constant.EgressStatus) error
	FindEgressByID(ctx context.Context, egressID string) (*entities.Egress, error)
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) (RecordingRepository, error) {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	if err != nil {
		return nil, err
	}
	return &repo{
		db: gormDB,
	}, nil
}

func (r *repo) RecordEgressStarted(ctx context.Context, egressID, meetingID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Meeting{}).Where("id = ?", meetingID).Update("has_egress", true).Error; err != nil {
			return err
		}
		return tx.Create(&entities.Egress{
			ID:        egressID,
			MeetingID: meetingID,
			Status:    constant.EgressStatusActive,
		}).Error
	})
}

func (r *repo) UpdateEgressStatus(ctx context.Context, egressID string, status constant.EgressStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Egress{}).
		Where("id = ?", egressID).
		Update("status", status).Error
}

func (r *repo) FindEgressByID(ctx context.Context, egressID string) (*entities.Egress, error) {
	egress := &entities.Egress{}
	err := r.db.WithContext(ctx).First(egress, "id = ?", egressID).Error
	if err != nil {
		return nil, err
	}
	return egress, nil
}
