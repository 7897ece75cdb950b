package models

// TicketStatus describes the lifecycle of a support ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// Ticket is a support request filed by a marketplace user
type Ticket struct {
	BaseModel
	AuthorID   uint         `json:"author_id" gorm:"not null;index"`
	Author     *User        `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	AssigneeID *uint        `json:"assignee_id" gorm:"index"` // support staff handling the ticket
	Subject    string       `json:"subject" gorm:"not null"`
	Body       string       `json:"body" gorm:"type:text;not null"`
	Status     TicketStatus `json:"status" gorm:"size:20;not null;default:'open';index"`

	Messages []TicketMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

// TicketMessage is a single reply in a ticket thread
type TicketMessage struct {
	BaseModel
	TicketID uint   `json:"ticket_id" gorm:"not null;index"`
	SenderID uint   `json:"sender_id" gorm:"not null"`
	Body     string `json:"body" gorm:"type:text;not null"`
}
