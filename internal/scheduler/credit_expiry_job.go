package scheduler

import (
	"carbon-market/internal/config"
	"carbon-market/internal/services"
	"carbon-market/pkg/logging"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// CreditExpiryJob flips unsold credits past their expiry date to the
// expired status so they can no longer be selected by a sale.
type CreditExpiryJob struct {
	credits *services.CreditService
	config  *config.Config
}

// NewCreditExpiryJob creates a new credit expiry job
func NewCreditExpiryJob(credits *services.CreditService, cfg *config.Config) *CreditExpiryJob {
	return &CreditExpiryJob{credits: credits, config: cfg}
}

// GetName returns the job name
func (j *CreditExpiryJob) GetName() string {
	return "credit_expiry"
}

// GetSchedule returns the job schedule
func (j *CreditExpiryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.ExpiryScanMinutes) * time.Minute)
}

// Execute runs one expiry sweep
func (j *CreditExpiryJob) Execute() {
	expired, err := j.credits.ExpireCredits(time.Now())
	if err != nil {
		logging.Errorf("Credit expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		logging.Infof("Credit expiry sweep completed, %d credits expired", expired)
	}
}
