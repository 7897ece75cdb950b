package services

import (
	"carbon-market/internal/models"
	"carbon-market/pkg/logging"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Notifier sends a notification message to a recipient. Delivery is
// fire-and-forget from the caller's perspective; a failed send never rolls
// back a committed data mutation.
type Notifier interface {
	Send(toEmail, toName, subject, htmlContent, attachmentURL string) error
}

// ProjectService provides offset-project management operations
type ProjectService struct {
	db       *gorm.DB
	credits  *CreditService
	notifier Notifier
}

// NewProjectService creates a new project service
func NewProjectService(db *gorm.DB, credits *CreditService, notifier Notifier) *ProjectService {
	return &ProjectService{db: db, credits: credits, notifier: notifier}
}

// CreateProject registers a new offset project in review state
func (s *ProjectService) CreateProject(project *models.Project) error {
	if project.Name == "" {
		return newInvalidInput("project name is required")
	}
	project.Status = models.ProjectStatusUnderReview
	project.CreditsForSale = 0
	project.TotalCreditsGenerated = 0
	project.ForSaleVisible = false

	if err := s.db.Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetProject gets a project by ID
func (s *ProjectService) GetProject(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Owner").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetMarketplaceProjects returns confirmed projects their owners put up for sale
func (s *ProjectService) GetMarketplaceProjects() ([]models.Project, error) {
	var projects []models.Project
	err := s.db.
		Where("status = ? AND for_sale_visible = ?", models.ProjectStatusConfirmed, true).
		Find(&projects).Error
	return projects, err
}

// GetProjectsByOwner returns all projects of one account
func (s *ProjectService) GetProjectsByOwner(ownerID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.Where("owner_id = ?", ownerID).Find(&projects).Error
	return projects, err
}

// GetPendingProjects returns projects awaiting an approval decision
func (s *ProjectService) GetPendingProjects() ([]models.Project, error) {
	var projects []models.Project
	err := s.db.Where("status = ?", models.ProjectStatusUnderReview).Find(&projects).Error
	return projects, err
}

// UpdateProject updates descriptive fields of an owned project
func (s *ProjectService) UpdateProject(id, ownerID uint, updates map[string]interface{}) error {
	project, err := s.GetProject(id)
	if err != nil {
		return err
	}
	if project.OwnerID != ownerID {
		return ErrForbidden
	}

	if err := s.db.Model(&models.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// Approve confirms an under-review project and mints its first credits.
// The owner is notified by email after the commit; a failed notification is
// logged and never affects the issuance.
func (s *ProjectService) Approve(projectID uint, count int) (*models.Project, error) {
	if count <= 0 {
		return nil, newInvalidInput("credit count must be positive")
	}

	var project models.Project
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx).First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if project.Status != models.ProjectStatusUnderReview {
			return newInvalidInput("project is not under review")
		}

		project.Status = models.ProjectStatusConfirmed
		if err := tx.Model(&project).Update("status", models.ProjectStatusConfirmed).Error; err != nil {
			return err
		}

		return s.credits.IssueCredits(tx, &project, count)
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner(&project, "Project approved",
		fmt.Sprintf("<p>Your project <b>%s</b> has been approved and %d carbon credits were issued to it.</p>", project.Name, count))

	return &project, nil
}

// Deny rejects an under-review project. Denial is terminal.
func (s *ProjectService) Deny(projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if project.Status != models.ProjectStatusUnderReview {
			return newInvalidInput("project is not under review")
		}

		project.Status = models.ProjectStatusDenied
		return tx.Model(&project).Update("status", models.ProjectStatusDenied).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner(&project, "Project denied",
		fmt.Sprintf("<p>Your project <b>%s</b> has been reviewed and denied.</p>", project.Name))

	return &project, nil
}

// SetVisibility toggles the owner's sale-visibility flag. Only confirmed
// projects appear on the marketplace.
func (s *ProjectService) SetVisibility(projectID, ownerID uint, visible bool) error {
	project, err := s.GetProject(projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != ownerID {
		return ErrForbidden
	}
	if project.Status != models.ProjectStatusConfirmed {
		return newInvalidInput("only confirmed projects can be listed on the marketplace")
	}

	return s.db.Model(&models.Project{}).Where("id = ?", projectID).
		Update("for_sale_visible", visible).Error
}

// DeleteProject removes a project and, by cascade, its credit ledger.
func (s *ProjectService) DeleteProject(projectID uint, actor *models.User) error {
	project, err := s.GetProject(projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != actor.ID && !actor.Role.Has(models.CapDeleteAnyProject) {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Credit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}

// notifyOwner emails the project owner in the background.
func (s *ProjectService) notifyOwner(project *models.Project, subject, htmlContent string) {
	if s.notifier == nil {
		return
	}

	var owner models.User
	if err := s.db.First(&owner, project.OwnerID).Error; err != nil {
		logging.Warnf("Owner lookup for notification failed - project: %d, error: %v", project.ID, err)
		return
	}

	go func() {
		if err := s.notifier.Send(owner.Email, owner.Name, subject, htmlContent, ""); err != nil {
			logging.Warnf("Owner notification failed - project: %d, error: %v", project.ID, err)
		}
	}()
}
