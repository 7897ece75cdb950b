package services

import (
	"carbon-market/internal/models"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditService implements the credit-issuance and sale reconciliation
// workflow: minting ledger units, the declarative for-sale cap, retroactive
// price updates and the FIFO-by-expiry sell-down.
type CreditService struct {
	db *gorm.DB
}

// NewCreditService creates a new credit service
func NewCreditService(db *gorm.DB) *CreditService {
	return &CreditService{db: db}
}

// sellRetryDelays bounds the automatic retry of a sell-down transaction that
// lost a concurrent-update race before the conflict surfaces to the caller.
var sellRetryDelays = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 500 * time.Millisecond}

// lockProject adds a row-level lock to the query. SQLite allows a single
// writer at a time, so the clause is only meaningful on Postgres.
func lockProject(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// isRetryableTxError reports whether the transaction failed due to a
// concurrency conflict worth retrying (serialization failure, deadlock, or
// SQLite's writer lock).
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// withConflictRetry runs fn, retrying on conflict up to the fixed bound.
// When the bound is exhausted the error is reported as ErrConflict.
func (s *CreditService) withConflictRetry(fn func() error) error {
	var err error
	for i := 0; i <= len(sellRetryDelays); i++ {
		err = fn()
		if err == nil || !isRetryableTxError(err) {
			return err
		}
		if i < len(sellRetryDelays) {
			time.Sleep(sellRetryDelays[i])
		}
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

// IssueCredits appends count credit rows to the project inside tx and bumps
// its total-credits-generated counter. Each unit is stamped with the issue
// date, a five-year expiry, a fresh serial number and the project's current
// certification and price.
func (s *CreditService) IssueCredits(tx *gorm.DB, project *models.Project, count int) error {
	if count <= 0 {
		return newInvalidInput("credit count must be positive")
	}

	now := time.Now()
	price := 0.0
	if project.PricePerCredit != nil {
		price = *project.PricePerCredit
	}

	credits := make([]models.Credit, count)
	for i := range credits {
		credits[i] = models.Credit{
			ProjectID:     project.ID,
			IssueDate:     now,
			ExpiryDate:    now.AddDate(models.CreditValidityYears, 0, 0),
			Certification: project.Certification,
			UnitPrice:     price,
			Sold:          false,
			Status:        models.CreditStatusAvailable,
		}
	}

	if err := tx.Create(&credits).Error; err != nil {
		return fmt.Errorf("issue credits: %w", err)
	}

	project.TotalCreditsGenerated += count
	if err := tx.Model(project).Update("total_credits_generated", project.TotalCreditsGenerated).Error; err != nil {
		return fmt.Errorf("update generated counter: %w", err)
	}

	return nil
}

// AddCredits mints count new credits for an already confirmed project.
func (s *CreditService) AddCredits(projectID uint, count int) (*models.Project, error) {
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
		if project.Status != models.ProjectStatusConfirmed {
			return newInvalidInput("credits can only be added to a confirmed project")
		}
		return s.IssueCredits(tx, &project, count)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// UnsoldCount returns the number of credits of the project not yet sold.
func (s *CreditService) UnsoldCount(tx *gorm.DB, projectID uint) (int64, error) {
	var count int64
	err := tx.Model(&models.Credit{}).
		Where("project_id = ? AND sold = ?", projectID, false).
		Count(&count).Error
	return count, err
}

// availableCount returns the number of sellable (unsold, unexpired) credits.
func (s *CreditService) availableCount(tx *gorm.DB, projectID uint) (int64, error) {
	var count int64
	err := tx.Model(&models.Credit{}).
		Where("project_id = ? AND status = ?", projectID, models.CreditStatusAvailable).
		Count(&count).Error
	return count, err
}

// ListForSale sets the project's for-sale cap. The cap is declarative: it
// bounds future sales without reserving any individual credit.
func (s *CreditService) ListForSale(projectID uint, quantity int) (*models.Project, error) {
	if quantity < 0 {
		return nil, newInvalidInput("for-sale quantity must not be negative")
	}

	var project models.Project
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx).First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		unsold, err := s.UnsoldCount(tx, projectID)
		if err != nil {
			return err
		}
		if int64(quantity) > unsold {
			return ErrInsufficientCredits
		}

		project.CreditsForSale = quantity
		return tx.Model(&project).Update("credits_for_sale", quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateCreditsInfo updates the project's price-per-credit and for-sale cap,
// and rewrites the unit price of every currently-unsold credit. Sold credits
// keep their historical price.
func (s *CreditService) UpdateCreditsInfo(projectID uint, price float64, quantity int) (*models.Project, error) {
	if price <= 0 {
		return nil, newInvalidInput("price per credit must be positive")
	}
	if quantity < 0 {
		return nil, newInvalidInput("for-sale quantity must not be negative")
	}

	var project models.Project
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx).First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		unsold, err := s.UnsoldCount(tx, projectID)
		if err != nil {
			return err
		}
		if int64(quantity) > unsold {
			return ErrInsufficientCredits
		}

		project.PricePerCredit = &price
		project.CreditsForSale = quantity
		if err := tx.Model(&project).Updates(map[string]interface{}{
			"price_per_credit": price,
			"credits_for_sale": quantity,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Credit{}).
			Where("project_id = ? AND sold = ?", projectID, false).
			Update("unit_price", price).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Sell marks quantity credits of the project as sold to the buyer, consuming
// the oldest-expiring units first. The whole selection, transfer and counter
// decrement runs in one transaction scoped to the project row and is retried
// on conflict.
func (s *CreditService) Sell(projectID, buyerID uint, quantity int) ([]models.Credit, error) {
	var sold []models.Credit
	err := s.withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var err error
			sold, err = s.SellInTx(tx, projectID, buyerID, quantity)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return sold, nil
}

// SellInTx performs the sell-down inside an existing transaction. The caller
// owns the transaction boundary; payment recording uses this to make the
// credit transfer and the audit row one atomic effect.
func (s *CreditService) SellInTx(tx *gorm.DB, projectID, buyerID uint, quantity int) ([]models.Credit, error) {
	if quantity <= 0 {
		return nil, newInvalidInput("quantity must be positive")
	}

	var project models.Project
	if err := lockProject(tx).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	available, err := s.availableCount(tx, projectID)
	if err != nil {
		return nil, err
	}
	if int64(quantity) > available {
		return nil, ErrInsufficientCredits
	}
	if quantity > project.CreditsForSale {
		return nil, ErrExceedsForSaleCap
	}

	// Oldest-expiring units go first so credits do not expire unused in the
	// ledger. The id tiebreak keeps the selection deterministic.
	var credits []models.Credit
	if err := tx.
		Where("project_id = ? AND status = ?", projectID, models.CreditStatusAvailable).
		Order("expiry_date ASC, id ASC").
		Limit(quantity).
		Find(&credits).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, len(credits))
	for i, c := range credits {
		ids[i] = c.ID
	}

	if err := tx.Model(&models.Credit{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"sold":     true,
			"buyer_id": buyerID,
			"status":   models.CreditStatusSold,
		}).Error; err != nil {
		return nil, err
	}

	project.CreditsForSale -= quantity
	if err := tx.Model(&project).Update("credits_for_sale", project.CreditsForSale).Error; err != nil {
		return nil, err
	}

	for i := range credits {
		credits[i].Sold = true
		credits[i].BuyerID = &buyerID
		credits[i].Status = models.CreditStatusSold
	}
	return credits, nil
}

// CreditsByProject returns the project's credits, oldest expiry first.
func (s *CreditService) CreditsByProject(projectID uint) ([]models.Credit, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var credits []models.Credit
	err := s.db.Where("project_id = ?", projectID).
		Order("expiry_date ASC, id ASC").
		Find(&credits).Error
	return credits, err
}

// CreditsByBuyer returns the credits owned by the given account.
func (s *CreditService) CreditsByBuyer(buyerID uint) ([]models.Credit, error) {
	var credits []models.Credit
	err := s.db.Where("buyer_id = ?", buyerID).
		Order("id ASC").
		Find(&credits).Error
	return credits, err
}

// ExpireCredits flips unsold credits whose expiry date has passed to the
// expired status and returns how many rows changed.
func (s *CreditService) ExpireCredits(now time.Time) (int64, error) {
	result := s.db.Model(&models.Credit{}).
		Where("status = ? AND expiry_date < ?", models.CreditStatusAvailable, now).
		Update("status", models.CreditStatusExpired)
	return result.RowsAffected, result.Error
}
