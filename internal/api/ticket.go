package api

import (
	"carbon-market/internal/middleware"
	"carbon-market/internal/models"
	"carbon-market/internal/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateTicketRequest represents a new support ticket
type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// CreateTicket files a support ticket
func CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	ticket, err := svc.Tickets.CreateTicket(user.ID, req.Subject, req.Body)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.CreatedJSON(c, ticket)
}

// GetTickets lists tickets visible to the acting account
func GetTickets(c *gin.Context) {
	user := middleware.CurrentUser(c)
	tickets, err := svc.Tickets.TicketsForUser(user)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, tickets)
}

// GetTicket returns one ticket with its thread
func GetTicket(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	ticket, err := svc.Tickets.GetTicket(id, user)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, ticket)
}

// ReplyRequest represents a ticket reply
type ReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

// ReplyTicket appends a message to the ticket thread
func ReplyTicket(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	msg, err := svc.Tickets.Reply(id, user, req.Body)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.CreatedJSON(c, msg)
}

// TicketStatusRequest represents a ticket status transition
type TicketStatusRequest struct {
	Status models.TicketStatus `json:"status" binding:"required"`
}

// SetTicketStatus transitions a ticket's status
func SetTicketStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req TicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	if err := svc.Tickets.SetStatus(id, user, req.Status); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, nil)
}
