package scheduler

import (
	"carbon-market/internal/config"
	"carbon-market/internal/services"
	"carbon-market/pkg/logging"

	"github.com/go-co-op/gocron/v2"
)

// Manager owns the background job scheduler
type Manager struct {
	scheduler gocron.Scheduler
	credits   *services.CreditService
	config    *config.Config
}

// NewManager creates a new scheduler manager
func NewManager(credits *services.CreditService, cfg *config.Config) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Manager{
		scheduler: s,
		credits:   credits,
		config:    cfg,
	}, nil
}

// Start registers all jobs and starts the scheduler
func (m *Manager) Start() {
	m.registerCreditExpiryJob()
	m.scheduler.Start()
	logging.Infof("Scheduler started")
}

func (m *Manager) registerCreditExpiryJob() {
	job := NewCreditExpiryJob(m.credits, m.config)
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logging.Errorf("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop shuts the scheduler down
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logging.Errorf("Failed to shutdown scheduler: %v", err)
	}
	logging.Infof("Scheduler stopped")
}
