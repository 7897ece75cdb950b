package services

import (
	"carbon-market/internal/models"
	"carbon-market/pkg/logging"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ReportService provides emission-report request and delivery operations
type ReportService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB, notifier Notifier) *ReportService {
	return &ReportService{db: db, notifier: notifier}
}

// RequestReport files an emission report request for the account
func (s *ReportService) RequestReport(requesterID uint, period, notes string) (*models.EmissionReport, error) {
	if period == "" {
		return nil, newInvalidInput("report period is required")
	}

	report := &models.EmissionReport{
		RequesterID: requesterID,
		Period:      period,
		Notes:       notes,
		Status:      models.ReportStatusRequested,
	}
	if err := s.db.Create(report).Error; err != nil {
		return nil, fmt.Errorf("create report request: %w", err)
	}
	return report, nil
}

// ReportsForUser lists the actor's report requests; evaluators see all.
func (s *ReportService) ReportsForUser(actor *models.User) ([]models.EmissionReport, error) {
	var reports []models.EmissionReport
	q := s.db.Order("created_at DESC")
	if !actor.Role.Has(models.CapDeliverReports) {
		q = q.Where("requester_id = ?", actor.ID)
	}
	err := q.Find(&reports).Error
	return reports, err
}

// Deliver marks the report delivered with its document URL and emails the
// document to the requester. The email is fire-and-forget.
func (s *ReportService) Deliver(reportID uint, attachmentURL string) (*models.EmissionReport, error) {
	if attachmentURL == "" {
		return nil, newInvalidInput("attachment URL is required")
	}

	var report models.EmissionReport
	if err := s.db.Preload("Requester").First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if report.Status == models.ReportStatusDelivered {
		return nil, newInvalidInput("report already delivered")
	}

	if err := s.db.Model(&report).Updates(map[string]interface{}{
		"status":         models.ReportStatusDelivered,
		"attachment_url": attachmentURL,
	}).Error; err != nil {
		return nil, err
	}
	report.Status = models.ReportStatusDelivered
	report.AttachmentURL = attachmentURL

	if s.notifier != nil && report.Requester != nil {
		requester := *report.Requester
		body := fmt.Sprintf("<p>Your emission report for <b>%s</b> is ready.</p>", report.Period)
		go func() {
			if err := s.notifier.Send(requester.Email, requester.Name, "Emission report ready", body, attachmentURL); err != nil {
				logging.Warnf("Report notification failed - report: %d, error: %v", report.ID, err)
			}
		}()
	}

	return &report, nil
}
