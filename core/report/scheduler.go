package report

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

// jobTimeout bounds one scheduled report, backend call included.
const jobTimeout = time.Minute

// Scheduler runs the periodic analytics digest.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reporter  *Reporter
	logger    core.Logger
}

// NewScheduler registers the digest on the cron spec (e.g. "0 18 * * 0").
func NewScheduler(reporter *Reporter, spec string, logger core.Logger) (*Scheduler, error) {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		reporter:  reporter,
		logger:    logger,
	}
	s.scheduler.SingletonModeAll()
	if _, err := s.scheduler.Cron(spec).Do(s.sendDigest); err != nil {
		return nil, errors.Wrapf(err, "scheduling report %q", spec)
	}
	return s, nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop waits for a running digest to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// NextRun is when the digest fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

func (s *Scheduler) sendDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.reporter.SendReport(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("report.Scheduler: sending digest: %v", err), err)
		return
	}
	s.logger.Info("report.Scheduler: digest sent to " + s.reporter.Recipient().Address)
}
