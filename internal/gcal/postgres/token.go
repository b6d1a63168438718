package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hrplatform/leave-management/internal/gcal"
	tokendm "github.com/hrplatform/leave-management/internal/core/datamodel/token"
)

type CalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) Save(ctx context.Context, userID int64, tokenJSON string) error {
	row := tokendm.CalendarToken{
		UserID:    userID,
		TokenJSON: tokenJSON,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_json", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save calendar token: %w", err)
	}
	return nil
}

func (r *CalendarRepository) Get(ctx context.Context, userID int64) (string, error) {
	var row tokendm.CalendarToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", gcal.ErrNotConnected
		}
		return "", fmt.Errorf("get calendar token: %w", err)
	}
	return row.TokenJSON, nil
}

func (r *CalendarRepository) Delete(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&tokendm.CalendarToken{}).Error
	if err != nil {
		return fmt.Errorf("delete calendar token: %w", err)
	}
	return nil
}

func (r *CalendarRepository) SaveLink(ctx context.Context, leaveRequestID, userID int64, eventID string) error {
	row := tokendm.CalendarEventLink{
		LeaveRequestID: leaveRequestID,
		UserID:         userID,
		EventID:        eventID,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "leave_request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "event_id"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save calendar event link: %w", err)
	}
	return nil
}

func (r *CalendarRepository) GetLink(ctx context.Context, leaveRequestID int64) (int64, string, error) {
	var row tokendm.CalendarEventLink
	err := r.db.WithContext(ctx).
		Where("leave_request_id = ?", leaveRequestID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", gcal.ErrLinkNotFound
		}
		return 0, "", fmt.Errorf("get calendar event link: %w", err)
	}
	return row.UserID, row.EventID, nil
}

func (r *CalendarRepository) DeleteLink(ctx context.Context, leaveRequestID int64) error {
	err := r.db.WithContext(ctx).
		Where("leave_request_id = ?", leaveRequestID).
		Delete(&tokendm.CalendarEventLink{}).Error
	if err != nil {
		return fmt.Errorf("delete calendar event link: %w", err)
	}
	return nil
}
