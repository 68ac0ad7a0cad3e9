// Package scheduler runs the cron-driven sweeps described in SPEC_FULL
// §4.6: overdue loans, overdue rentals, and upcoming maintenance
// notifications. Failures are logged and never propagate to a crash.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/assetledger/backend/internal/logging"
)

// Job is one named, independently schedulable unit of work. Each job
// guards itself against overlapping ticks: a job already running when
// its next tick fires is skipped rather than queued.
type Job struct {
	Name string
	Cron string
	Run  func(ctx context.Context) (affected int, err error)
}

// Scheduler wraps a robfig/cron engine with the logging and
// non-overlap guarantees §4.6 requires.
type Scheduler struct {
	log     *logging.Logger
	cron    *cron.Cron
	mu      sync.Mutex
	running map[string]bool
}

func New(log *logging.Logger) *Scheduler {
	return &Scheduler{
		log:     log,
		cron:    cron.New(cron.WithSeconds()),
		running: make(map[string]bool),
	}
}

// Register adds a job under its cron expression. Cron expressions here
// are 6-field (seconds-first, per robfig/cron/v3's WithSeconds option);
// config.SchedulerConfig's standard 5-field crons are adapted with a
// leading "0 " by the caller.
func (s *Scheduler) Register(job Job) error {
	_, err := s.cron.AddFunc(job.Cron, func() { s.runOnce(job) })
	return err
}

func (s *Scheduler) runOnce(job Job) {
	s.mu.Lock()
	if s.running[job.Name] {
		s.mu.Unlock()
		return
	}
	s.running[job.Name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[job.Name] = false
		s.mu.Unlock()
	}()

	ctx := context.Background()
	affected, err := job.Run(ctx)
	s.log.LogSchedulerTick(ctx, job.Name, affected, err)
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }
