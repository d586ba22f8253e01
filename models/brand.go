package models

import "time"

// Brand is a paying advertiser. Budget money lives in BrandBudget, not here.
type Brand struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Website     string `gorm:"type:text" json:"website"`
	LogoURL     string `gorm:"type:text" json:"logo_url"`
	CoverURL    string `gorm:"type:text" json:"cover_url"`

	Budget *BrandBudget `gorm:"foreignKey:BrandID" json:"budget,omitempty"`

	Timestamps
}

// ApplicationStatus is the review state of an intake application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// BrandApplication is a prospective brand's intake form. Approval provisions
// the Brand row and its operator user.
type BrandApplication struct {
	ID           string            `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string            `gorm:"not null;index" json:"email"`
	BusinessName string            `gorm:"not null" json:"business_name"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	City         string            `json:"city"`
	Website      string            `gorm:"type:text" json:"website"`
	Instagram    string            `json:"instagram"`
	Category     string            `json:"category"`
	Notes        string            `gorm:"type:text" json:"notes"`
	Status       ApplicationStatus `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`

	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByUserID *string    `gorm:"type:uuid" json:"reviewed_by_user_id,omitempty"`
	BrandID          *string    `gorm:"type:uuid" json:"brand_id,omitempty"`

	Timestamps
}
