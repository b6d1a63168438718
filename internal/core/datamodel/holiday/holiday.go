package holiday

import "time"

type Holiday struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Date      time.Time `gorm:"column:date;type:date;not null;index"`
	Recurring bool      `gorm:"column:recurring;not null;default:false"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Holiday) TableName() string {
	return "holidays"
}
