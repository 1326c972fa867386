package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one scheduled unit of work. The context is cancelled when the
// scheduler's parent context ends.
type Job func(ctx context.Context)

// Scheduler runs a job on a standard five-field cron expression. A tick that
// arrives while the previous run is still going is skipped.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	job      Job
	stopOnce sync.Once
}

func NewScheduler(spec string, loc *time.Location, job Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	return &Scheduler{cron: c, spec: spec, job: job}, nil
}

// Start registers the job and starts the cron loop. It returns immediately;
// the scheduler stops when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.job(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to register job: %w", err)
	}

	s.cron.Start()
	logrus.WithField("schedule", s.spec).Info("Scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Next reports the next activation time, or zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop waits for a running job to finish. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		logrus.Info("Scheduler stopping...")
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	})
}
