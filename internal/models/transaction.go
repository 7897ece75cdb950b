package models

import "time"

// TransactionState describes the payment state of a recorded sale
type TransactionState string

const (
	TransactionStatePending  TransactionState = "pending"
	TransactionStateApproved TransactionState = "approved"
	TransactionStateRejected TransactionState = "rejected"
)

// Transaction is the audit row created once a sale completes. Buyer, seller
// and project descriptive fields are denormalized snapshots taken at
// recording time; later mutation of those entities does not touch the row.
type Transaction struct {
	BaseModel
	BuyerID    uint   `json:"buyer_id" gorm:"not null;index"`
	BuyerName  string `json:"buyer_name" gorm:"not null"`
	SellerID   uint   `json:"seller_id" gorm:"not null;index"`
	SellerName string `json:"seller_name" gorm:"not null"`

	ProjectID     uint   `json:"project_id" gorm:"not null;index"` // informational, no FK to snapshot fields
	ProjectName   string `json:"project_name" gorm:"not null"`
	Certification string `json:"certification" gorm:"size:100"`

	Quantity   int     `json:"quantity" gorm:"not null"`
	UnitPrice  float64 `json:"unit_price" gorm:"type:decimal(18,2);not null"`
	TotalPrice float64 `json:"total_price" gorm:"type:decimal(18,2);not null"`

	Date             time.Time        `json:"date" gorm:"not null"`
	State            TransactionState `json:"state" gorm:"size:20;not null;default:'pending';index"`
	PaymentMethod    string           `json:"payment_method" gorm:"size:50"`
	PaymentSessionID string           `json:"payment_session_id" gorm:"size:100;uniqueIndex"`
}
