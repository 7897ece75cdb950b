package models

// ReportStatus describes the lifecycle of an emission report request
type ReportStatus string

const (
	ReportStatusRequested ReportStatus = "requested"
	ReportStatusDelivered ReportStatus = "delivered"
)

// EmissionReport is a user request for an emissions summary, fulfilled by an
// evaluator with a document link that is also emailed to the requester.
type EmissionReport struct {
	BaseModel
	RequesterID   uint         `json:"requester_id" gorm:"not null;index"`
	Requester     *User        `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Period        string       `json:"period" gorm:"size:100;not null"` // e.g. "2025-Q3"
	Notes         string       `json:"notes" gorm:"type:text"`
	Status        ReportStatus `json:"status" gorm:"size:20;not null;default:'requested';index"`
	AttachmentURL string       `json:"attachment_url" gorm:"type:varchar(500)"`
}
