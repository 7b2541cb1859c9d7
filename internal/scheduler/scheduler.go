// Package scheduler runs the watchlist scan on a fixed interval for
// deployments that do not use an external cron trigger.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/support-watchlist-bot/internal/watchlist"
)

const scanTimeout = 30 * time.Minute

// Scanner is the job the scheduler drives.
type Scanner interface {
	Run(ctx context.Context) (watchlist.Summary, error)
}

// Scheduler manages periodic scans
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	scanner  Scanner
}

// New creates a new scheduler
func New(interval time.Duration, scanner Scanner) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		interval: interval,
		scanner:  scanner,
	}
}

// Start schedules the scan and blocks until ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	logrus.Infof("Starting scheduler with interval: %v", s.interval)

	cronSpec := fmt.Sprintf("@every %v", s.interval)
	_, err := s.cron.AddFunc(cronSpec, func() {
		logrus.Info("Running scheduled scan")
		if err := s.RunScan(); err != nil {
			logrus.Errorf("Scheduled scan failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule scan job: %w", err)
	}

	s.cron.Start()

	<-ctx.Done()
	logrus.Info("Stopping scheduler...")
	s.cron.Stop()
	return nil
}

// RunScan runs one scan cycle with a bounded timeout.
func (s *Scheduler) RunScan() error {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	_, err := s.scanner.Run(ctx)
	return err
}
