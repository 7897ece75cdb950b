package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditStatus describes the ledger state of a single credit unit
type CreditStatus string

const (
	CreditStatusAvailable CreditStatus = "available"
	CreditStatusSold      CreditStatus = "sold"
	CreditStatusExpired   CreditStatus = "expired"
)

// CreditValidityYears is the lifetime of a credit from its issue date.
const CreditValidityYears = 5

// Credit is one tradeable ledger unit tied to exactly one project.
// Once Sold is true the buyer reference is non-null and immutable.
type Credit struct {
	BaseModel
	ProjectID uint     `json:"project_id" gorm:"not null;index"`
	Project   *Project `json:"-" gorm:"foreignKey:ProjectID"`

	SerialNumber  string    `json:"serial_number" gorm:"size:36;uniqueIndex;not null"`
	IssueDate     time.Time `json:"issue_date" gorm:"not null"`
	ExpiryDate    time.Time `json:"expiry_date" gorm:"not null;index"`
	Certification string    `json:"certification" gorm:"size:100"` // snapshot from project at issuance

	UnitPrice float64      `json:"unit_price" gorm:"type:decimal(18,2);not null;default:0"`
	Sold      bool         `json:"sold" gorm:"not null;default:false;index"`
	BuyerID   *uint        `json:"buyer_id" gorm:"index"`
	Status    CreditStatus `json:"status" gorm:"size:20;not null;default:'available';index"`
}

// BeforeCreate assigns a collision-resistant serial number when none is set.
func (c *Credit) BeforeCreate(tx *gorm.DB) error {
	if c.SerialNumber == "" {
		c.SerialNumber = uuid.NewString()
	}
	return nil
}
