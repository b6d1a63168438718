package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hrplatform/leave-management/internal/auth"
	tokendm "github.com/hrplatform/leave-management/internal/core/datamodel/token"
	userdm "github.com/hrplatform/leave-management/internal/core/datamodel/user"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// credentialRow joins users with their employee record so the service can
// resolve the employee scope in one query.
type credentialRow struct {
	userdm.User
	EmployeeID *int64 `gorm:"column:employee_id"`
}

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*auth.CredentialRecord, error) {
	var row credentialRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*, employees.id AS employee_id").
		Joins("LEFT JOIN employees ON employees.user_id = users.id").
		Where("users.email = ?", email).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	return toCredentialRecord(&row), nil
}

func (r *AuthRepository) GetUserByID(ctx context.Context, id int64) (*auth.CredentialRecord, error) {
	var row credentialRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*, employees.id AS employee_id").
		Joins("LEFT JOIN employees ON employees.user_id = users.id").
		Where("users.id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return toCredentialRecord(&row), nil
}

func (r *AuthRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string, mustChange bool) error {
	return r.db.WithContext(ctx).
		Model(&userdm.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash":        passwordHash,
			"must_change_password": mustChange,
			"updated_at":           time.Now(),
		}).Error
}

func (r *AuthRepository) ActivateUser(ctx context.Context, userID int64, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&userdm.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"is_active":     true,
			"invite_status": userdm.InviteStatusActive,
			"updated_at":    time.Now(),
		}).Error
}

func (r *AuthRepository) MarkInviteExpired(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&userdm.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"invite_status": userdm.InviteStatusExpired,
			"updated_at":    time.Now(),
		}).Error
}

func (r *AuthRepository) CreateResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	row := tokendm.PasswordResetToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *AuthRepository) GetResetToken(ctx context.Context, token string) (*auth.ResetTokenRecord, error) {
	var row tokendm.PasswordResetToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrResetTokenInvalid
		}
		return nil, err
	}
	return &auth.ResetTokenRecord{
		ID:        row.ID,
		UserID:    row.UserID,
		Token:     row.Token,
		ExpiresAt: row.ExpiresAt,
		Used:      row.Used,
	}, nil
}

func (r *AuthRepository) MarkTokenUsed(ctx context.Context, tokenID int64) error {
	return r.db.WithContext(ctx).
		Model(&tokendm.PasswordResetToken{}).
		Where("id = ?", tokenID).
		Update("used", true).Error
}

// ExpireStaleInvites marks accounts still invited after the cutoff as expired.
func (r *AuthRepository) ExpireStaleInvites(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&userdm.User{}).
		Where("invite_status = ? AND invited_at < ?", userdm.InviteStatusInvited, olderThan).
		Updates(map[string]interface{}{
			"invite_status": userdm.InviteStatusExpired,
			"updated_at":    time.Now(),
		})
	return res.RowsAffected, res.Error
}

func toCredentialRecord(row *credentialRow) *auth.CredentialRecord {
	return &auth.CredentialRecord{
		ID:                 row.User.ID,
		Email:              row.User.Email,
		Name:               row.User.Name,
		PasswordHash:       row.User.PasswordHash,
		Role:               row.User.Role,
		IsActive:           row.User.IsActive,
		InviteStatus:       row.User.InviteStatus,
		InvitedAt:          row.User.InvitedAt,
		MustChangePassword: row.User.MustChangePassword,
		EmployeeID:         row.EmployeeID,
	}
}
