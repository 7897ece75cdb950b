package api

import (
	"carbon-market/internal/middleware"
	"carbon-market/internal/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReportRequest represents an emission report request
type ReportRequest struct {
	Period string `json:"period" binding:"required"`
	Notes  string `json:"notes"`
}

// RequestReport files an emission report request
func RequestReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	report, err := svc.Reports.RequestReport(user.ID, req.Period, req.Notes)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.CreatedJSON(c, report)
}

// GetReports lists report requests visible to the acting account
func GetReports(c *gin.Context) {
	user := middleware.CurrentUser(c)
	reports, err := svc.Reports.ReportsForUser(user)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, reports)
}

// DeliverReportRequest represents a report delivery
type DeliverReportRequest struct {
	AttachmentURL string `json:"attachment_url" binding:"required,url"`
}

// DeliverReport fulfills a report request and emails the document
func DeliverReport(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req DeliverReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	report, err := svc.Reports.Deliver(id, req.AttachmentURL)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, report)
}
