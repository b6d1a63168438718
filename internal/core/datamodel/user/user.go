package user

import "time"

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const (
	InviteStatusInvited = "invited"
	InviteStatusActive  = "active"
	InviteStatusExpired = "expired"
)

// User is the credentials row. One-to-one with an Employee row except for
// bootstrap admin accounts.
type User struct {
	ID                 int64      `gorm:"primaryKey"`
	Email              string     `gorm:"uniqueIndex;not null"`
	Name               string     `gorm:"not null"`
	PasswordHash       string     `gorm:"column:password_hash"`
	Role               string     `gorm:"not null;default:employee"`
	IsActive           bool       `gorm:"column:is_active;not null;default:false"`
	InviteStatus       string     `gorm:"column:invite_status;not null;default:invited"`
	InvitedAt          *time.Time `gorm:"column:invited_at"`
	MustChangePassword bool       `gorm:"column:must_change_password;not null;default:false"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
