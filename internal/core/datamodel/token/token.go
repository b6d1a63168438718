package token

import "time"

// PasswordResetToken is single-use and time-boxed.
type PasswordResetToken struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	Used      bool      `gorm:"column:used;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// CalendarToken stores the Google OAuth token JSON for a user's personal
// calendar sync.
type CalendarToken struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex;not null"`
	TokenJSON string    `gorm:"column:token_json;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CalendarToken) TableName() string {
	return "calendar_tokens"
}

// CalendarEventLink remembers which calendar event mirrors which leave
// request, so cancellations can remove it again.
type CalendarEventLink struct {
	ID             int64     `gorm:"primaryKey"`
	LeaveRequestID int64     `gorm:"column:leave_request_id;uniqueIndex;not null"`
	UserID         int64     `gorm:"column:user_id;not null"`
	EventID        string    `gorm:"column:event_id;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CalendarEventLink) TableName() string {
	return "calendar_event_links"
}
