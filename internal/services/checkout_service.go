package services

import (
	"carbon-market/internal/models"
	"carbon-market/pkg/logging"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PaymentProvider is the external payment processor consumed by the
// checkout workflow.
type PaymentProvider interface {
	CreateSession(cart CheckoutCart) (*CheckoutSession, error)
	GetSession(sessionID string) (*SessionDetails, error)
}

// ReplayGuard remembers processed payment sessions so a replayed webhook
// does not record the same sale twice.
type ReplayGuard interface {
	// MarkProcessed returns false when the session was seen before.
	MarkProcessed(ctx context.Context, sessionID string) (bool, error)
	// Unmark releases a mark so a retried delivery is processed again.
	Unmark(ctx context.Context, sessionID string) error
}

// CheckoutService drives the purchase flow: opening hosted checkout
// sessions and turning a completed payment into one atomic credit transfer
// plus transaction record.
type CheckoutService struct {
	db       *gorm.DB
	credits  *CreditService
	payments PaymentProvider
	guard    ReplayGuard
	notifier Notifier
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(db *gorm.DB, credits *CreditService, payments PaymentProvider, guard ReplayGuard, notifier Notifier) *CheckoutService {
	return &CheckoutService{
		db:       db,
		credits:  credits,
		payments: payments,
		guard:    guard,
		notifier: notifier,
	}
}

// CreateCheckout validates the purchase and opens a hosted checkout session
// with the payment collaborator. Nothing is persisted until the payment
// completes.
func (s *CheckoutService) CreateCheckout(projectID, buyerID uint, quantity int) (*CheckoutSession, error) {
	if quantity <= 0 {
		return nil, newInvalidInput("quantity must be positive")
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if project.Status != models.ProjectStatusConfirmed || !project.ForSaleVisible {
		return nil, newInvalidInput("project is not for sale")
	}
	if project.PricePerCredit == nil {
		return nil, newInvalidInput("project has no price set")
	}
	if quantity > project.CreditsForSale {
		return nil, ErrExceedsForSaleCap
	}

	session, err := s.payments.CreateSession(CheckoutCart{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Quantity:    quantity,
		UnitPrice:   *project.PricePerCredit,
		BuyerID:     buyerID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrUpstream, err)
	}
	return session, nil
}

// HandleSessionCompleted records a paid checkout session. It verifies the
// session with the payment collaborator, then performs the sell-down and
// writes the transaction audit row in a single database transaction keyed by
// the session reference. A replayed webhook is acknowledged without effect.
func (s *CheckoutService) HandleSessionCompleted(ctx context.Context, sessionID string) (*models.Transaction, error) {
	if sessionID == "" {
		return nil, newInvalidInput("missing session id")
	}

	marked := false
	if s.guard != nil {
		fresh, err := s.guard.MarkProcessed(ctx, sessionID)
		if err != nil {
			logging.Warnf("Replay guard unavailable, relying on session unique index - session: %s, error: %v", sessionID, err)
		} else if !fresh {
			logging.Infof("Replay detected, session already processed - session: %s", sessionID)
			return nil, nil
		} else {
			marked = true
		}
	}

	record, err := s.recordCompletedSession(sessionID)
	if err != nil {
		// Release the mark so the provider's webhook retry of a failed
		// recording is not swallowed as a replay.
		if marked {
			if unmarkErr := s.guard.Unmark(ctx, sessionID); unmarkErr != nil {
				logging.Warnf("Replay guard release failed - session: %s, error: %v", sessionID, unmarkErr)
			}
		}
		return nil, err
	}

	s.notifyBuyer(record)
	return record, nil
}

// recordCompletedSession verifies the session upstream and performs the
// sell-down plus audit row as one database transaction.
func (s *CheckoutService) recordCompletedSession(sessionID string) (*models.Transaction, error) {
	// Upstream failure here must prevent any mutation.
	details, err := s.payments.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: verify payment session: %v", ErrUpstream, err)
	}
	if details.Status != "complete" {
		return nil, newInvalidInput("payment session is not complete")
	}

	var record models.Transaction
	err = s.credits.withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var project models.Project
			if err := tx.First(&project, details.ProjectID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}

			var buyer, seller models.User
			if err := tx.First(&buyer, details.BuyerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			if err := tx.First(&seller, project.OwnerID).Error; err != nil {
				return err
			}

			if _, err := s.credits.SellInTx(tx, project.ID, buyer.ID, details.Quantity); err != nil {
				return err
			}

			unitPrice := 0.0
			if project.PricePerCredit != nil {
				unitPrice = *project.PricePerCredit
			}

			record = models.Transaction{
				BuyerID:          buyer.ID,
				BuyerName:        buyer.Name,
				SellerID:         seller.ID,
				SellerName:       seller.Name,
				ProjectID:        project.ID,
				ProjectName:      project.Name,
				Certification:    project.Certification,
				Quantity:         details.Quantity,
				UnitPrice:        unitPrice,
				TotalPrice:       details.AmountTotal,
				Date:             time.Now(),
				State:            models.TransactionStateApproved,
				PaymentMethod:    details.PaymentMethod,
				PaymentSessionID: details.ID,
			}
			return tx.Create(&record).Error
		})
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *CheckoutService) notifyBuyer(record *models.Transaction) {
	if s.notifier == nil {
		return
	}

	var buyer models.User
	if err := s.db.First(&buyer, record.BuyerID).Error; err != nil {
		logging.Warnf("Buyer lookup for notification failed - transaction: %d, error: %v", record.ID, err)
		return
	}

	body := fmt.Sprintf("<p>Your purchase of %d carbon credits from <b>%s</b> is complete. Total: %.2f.</p>",
		record.Quantity, record.ProjectName, record.TotalPrice)

	go func() {
		if err := s.notifier.Send(buyer.Email, buyer.Name, "Purchase confirmed", body, ""); err != nil {
			logging.Warnf("Purchase notification failed - transaction: %d, error: %v", record.ID, err)
		}
	}()
}

// TransactionsByUser returns transactions where the account is buyer or seller.
func (s *CheckoutService) TransactionsByUser(userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("date DESC").
		Find(&txs).Error
	return txs, err
}

// AllTransactions returns every recorded transaction, newest first.
func (s *CheckoutService) AllTransactions() ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Order("date DESC").Find(&txs).Error
	return txs, err
}
