package services

import (
	"carbon-market/internal/models"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// TicketService provides support-ticket operations
type TicketService struct {
	db *gorm.DB
}

// NewTicketService creates a new ticket service
func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

// CreateTicket files a new support ticket
func (s *TicketService) CreateTicket(authorID uint, subject, body string) (*models.Ticket, error) {
	if subject == "" || body == "" {
		return nil, newInvalidInput("subject and body are required")
	}

	ticket := &models.Ticket{
		AuthorID: authorID,
		Subject:  subject,
		Body:     body,
		Status:   models.TicketStatusOpen,
	}
	if err := s.db.Create(ticket).Error; err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return ticket, nil
}

// GetTicket returns one ticket with its thread. Non-support users only see
// their own tickets.
func (s *TicketService) GetTicket(id uint, actor *models.User) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.Preload("Messages").First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ticket.AuthorID != actor.ID && !actor.Role.Has(models.CapManageTickets) {
		return nil, ErrForbidden
	}
	return &ticket, nil
}

// TicketsForUser lists the actor's tickets; support staff see all tickets.
func (s *TicketService) TicketsForUser(actor *models.User) ([]models.Ticket, error) {
	var tickets []models.Ticket
	q := s.db.Order("created_at DESC")
	if !actor.Role.Has(models.CapManageTickets) {
		q = q.Where("author_id = ?", actor.ID)
	}
	err := q.Find(&tickets).Error
	return tickets, err
}

// Reply appends a message to the ticket thread. A support reply moves an
// open ticket to in-progress and assigns it.
func (s *TicketService) Reply(ticketID uint, actor *models.User, body string) (*models.TicketMessage, error) {
	if body == "" {
		return nil, newInvalidInput("message body is required")
	}

	ticket, err := s.GetTicket(ticketID, actor)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketStatusClosed {
		return nil, newInvalidInput("ticket is closed")
	}

	msg := &models.TicketMessage{
		TicketID: ticket.ID,
		SenderID: actor.ID,
		Body:     body,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		if actor.Role.Has(models.CapManageTickets) && ticket.Status == models.TicketStatusOpen {
			return tx.Model(ticket).Updates(map[string]interface{}{
				"status":      models.TicketStatusInProgress,
				"assignee_id": actor.ID,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// SetStatus transitions the ticket status. Support capability required for
// anything other than the author closing their own ticket.
func (s *TicketService) SetStatus(ticketID uint, actor *models.User, status models.TicketStatus) error {
	switch status {
	case models.TicketStatusOpen, models.TicketStatusInProgress, models.TicketStatusClosed:
	default:
		return newInvalidInput("unknown ticket status")
	}

	ticket, err := s.GetTicket(ticketID, actor)
	if err != nil {
		return err
	}

	if !actor.Role.Has(models.CapManageTickets) {
		if ticket.AuthorID != actor.ID || status != models.TicketStatusClosed {
			return ErrForbidden
		}
	}

	return s.db.Model(ticket).Update("status", status).Error
}
