package models

// ProjectStatus describes the review state of an offset project
type ProjectStatus string

const (
	ProjectStatusUnderReview ProjectStatus = "under_review"
	ProjectStatusConfirmed   ProjectStatus = "confirmed"
	ProjectStatusDenied      ProjectStatus = "denied"
)

// Project represents a carbon-offset project and its credit economics.
// CreditsForSale is a declarative cap on how many units future sales may
// consume; it never exceeds the project's unsold credit count.
type Project struct {
	BaseModel
	Name          string        `json:"name" gorm:"not null"`
	Description   string        `json:"description" gorm:"type:text"`
	Certification string        `json:"certification" gorm:"size:100"`
	Status        ProjectStatus `json:"status" gorm:"size:20;not null;default:'under_review';index"`
	OwnerID       uint          `json:"owner_id" gorm:"not null;index"`
	Owner         *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`

	// Credit economics
	PricePerCredit        *float64 `json:"price_per_credit" gorm:"type:decimal(18,2)"`
	CreditsForSale        int      `json:"credits_for_sale" gorm:"not null;default:0"`
	TotalCreditsGenerated int      `json:"total_credits_generated" gorm:"not null;default:0"`

	// Owner-toggleable marketplace visibility, meaningful only while confirmed
	ForSaleVisible bool `json:"for_sale_visible" gorm:"default:false"`

	Credits []Credit `json:"credits,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}
