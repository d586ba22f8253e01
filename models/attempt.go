package models

import "time"

// AttemptStatus is the mission-attempt lifecycle state. PENDING is the only
// non-terminal state; APPROVED and REJECTED are final.
type AttemptStatus string

const (
	AttemptPending  AttemptStatus = "PENDING"
	AttemptApproved AttemptStatus = "APPROVED"
	AttemptRejected AttemptStatus = "REJECTED"
)

// MissionAttempt records one user's claim of having completed a mission.
// At most one PENDING attempt may exist per (user, mission) pair; the
// submit path enforces this with a check-then-create under a locked
// mission row.
type MissionAttempt struct {
	ID        string        `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string        `gorm:"type:uuid;not null;index:idx_attempt_user_mission" json:"user_id"`
	MissionID string        `gorm:"type:uuid;not null;index:idx_attempt_user_mission" json:"mission_id"`
	Status    AttemptStatus `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`

	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByUserID *string    `gorm:"type:uuid" json:"reviewed_by_user_id,omitempty"`

	Mission *Mission `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Timestamps
}
