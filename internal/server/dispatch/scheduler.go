package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/logging"
	"github.com/dmitrijs2005/seqsubmit/internal/server/metrics"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
	"github.com/dmitrijs2005/seqsubmit/internal/server/repositories/submissions"
)

// Transferer delivers one submission and reports its resulting status.
type Transferer interface {
	Transfer(ctx context.Context, sub *models.Submission) (models.Status, error)
}

// Report summarises one dispatch pass.
type Report struct {
	Attempted int
	Submitted int
	Failed    int
	// Skipped counts READY submissions another worker had claimed or that
	// were no longer READY when reached.
	Skipped int
}

// Fallbacks for a non-positive interval or claim TTL.
const (
	DefaultInterval = time.Hour
	DefaultClaimTTL = 2 * time.Hour
)

// Scheduler runs dispatch passes over READY submissions.
type Scheduler struct {
	repo     submissions.Repository
	driver   Transferer
	interval time.Duration
	claimTTL time.Duration
	logger   logging.Logger
	metrics  metrics.Recorder
	now      func() time.Time

	running sync.Mutex
}

func NewScheduler(repo submissions.Repository, driver Transferer, interval, claimTTL time.Duration,
	logger logging.Logger, rec metrics.Recorder) *Scheduler {
	if logger == nil {
		logger = logging.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if claimTTL <= 0 {
		claimTTL = DefaultClaimTTL
	}
	return &Scheduler{
		repo:     repo,
		driver:   driver,
		interval: interval,
		claimTTL: claimTTL,
		logger:   logger.With("module", "dispatch"),
		metrics:  rec,
		now:      time.Now,
	}
}

// Run executes a pass immediately and then again interval after each pass
// finishes, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info(ctx, "dispatch scheduler started", "interval", s.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "dispatch scheduler stopped")
			return
		case <-timer.C:
		}

		report, err := s.RunOnce(ctx)
		switch {
		case errors.Is(err, common.ErrRunInProgress):
			s.logger.Warn(ctx, "dispatch pass skipped, previous pass still running")
		case err != nil:
			s.logger.Error(ctx, "dispatch pass failed", "error", err)
		default:
			s.logger.Info(ctx, "dispatch pass finished",
				"attempted", report.Attempted, "submitted", report.Submitted,
				"failed", report.Failed, "skipped", report.Skipped)
		}

		timer.Reset(s.interval)
	}
}

// RunOnce performs a single pass. It returns common.ErrRunInProgress rather
// than overlap with a pass already running.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, common.ErrRunInProgress
	}
	defer s.running.Unlock()

	started := s.now()
	defer func() {
		finished := s.now()
		s.metrics.DispatchPass(finished.Sub(started), finished)
	}()

	ready, err := s.repo.FindByStatus(ctx, models.StatusReady)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, sub := range ready {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.process(ctx, sub, &report)
	}
	return report, nil
}

func (s *Scheduler) process(ctx context.Context, sub *models.Submission, report *Report) {
	log := s.logger.With("submission", sub.ID)

	if sub.Status.Terminal() {
		log.Warn(ctx, "skipping submission in terminal state", "status", sub.Status)
		report.Skipped++
		return
	}

	claimed, err := s.repo.Claim(ctx, sub.ID, s.now().Add(s.claimTTL))
	if err != nil {
		log.Error(ctx, "claiming submission", "error", err)
		report.Skipped++
		return
	}
	if !claimed {
		log.Debug(ctx, "submission claimed elsewhere")
		report.Skipped++
		return
	}

	report.Attempted++
	status, terr := s.driver.Transfer(ctx, sub)
	if terr != nil {
		log.Warn(ctx, "transfer failed", "error", terr)
	}
	if status != models.StatusSubmitted {
		status = models.StatusFailed
	}

	sub.Status = status
	if err := s.repo.Update(ctx, sub); err != nil {
		log.Error(ctx, "recording transfer result", "status", status, "error", err)
		report.Failed++
		return
	}

	s.metrics.TransferResult(string(status))
	if status == models.StatusSubmitted {
		report.Submitted++
	} else {
		report.Failed++
	}
}
