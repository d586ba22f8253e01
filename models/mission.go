package models

// MissionStatus is the publishing state of a mission.
type MissionStatus string

const (
	MissionPendingApproval MissionStatus = "PENDING_APPROVAL"
	MissionActive          MissionStatus = "ACTIVE"
	MissionPaused          MissionStatus = "PAUSED"
)

// MissionType is immutable reference data: what the user earns and what the
// brand pays per completed action. BrandCostCents >= UserRewardCents; the
// margin is the platform fee.
type MissionType struct {
	ID              string `gorm:"primaryKey;type:uuid" json:"id"`
	Code            string `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FOLLOW", "LIKE"
	Label           string `gorm:"not null" json:"label"`
	UserRewardCents int64  `gorm:"not null" json:"user_reward_cents"`
	BrandCostCents  int64  `gorm:"not null" json:"brand_cost_cents"`
	IsActive        bool   `gorm:"not null;default:true" json:"is_active"`

	Timestamps
}

// Mission is a brand-funded batch of social actions. QuantityRemaining is
// decremented only when an attempt is approved.
type Mission struct {
	ID            string        `gorm:"primaryKey;type:uuid" json:"id"`
	BrandID       string        `gorm:"type:uuid;index;not null" json:"brand_id"`
	MissionTypeID string        `gorm:"type:uuid;not null" json:"mission_type_id"`
	Title         string        `gorm:"not null" json:"title"`
	Description   string        `gorm:"type:text" json:"description"`
	ActionURL     string        `gorm:"type:text;not null" json:"action_url"`
	Status        MissionStatus `gorm:"type:varchar(24);not null;default:'PENDING_APPROVAL';index" json:"status"`

	QuantityTotal     int `gorm:"not null" json:"quantity_total"`
	QuantityRemaining int `gorm:"not null" json:"quantity_remaining"`

	MissionType *MissionType `gorm:"foreignKey:MissionTypeID" json:"mission_type,omitempty"`
	Brand       *Brand       `gorm:"foreignKey:BrandID" json:"brand,omitempty"`

	Timestamps
}
