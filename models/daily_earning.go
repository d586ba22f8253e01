package models

// UserDailyEarning accumulates what a user earned on one local calendar day.
// Created lazily on the first credit of the day, increment-only afterwards,
// never deleted. Read for cap enforcement.
type UserDailyEarning struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string `gorm:"type:uuid;not null;uniqueIndex:uniq_user_day" json:"user_id"`
	DateKey     string `gorm:"type:varchar(10);not null;uniqueIndex:uniq_user_day" json:"date_key"` // YYYY-MM-DD
	EarnedCents int64  `gorm:"not null;default:0" json:"earned_cents"`

	Timestamps
}
