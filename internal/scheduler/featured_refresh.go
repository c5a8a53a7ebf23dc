// Package scheduler runs periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hallowedlibrary/shelf/internal/logging"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Trigger starts one refresh. It should return quickly, typically by
// enqueueing a task.
type Trigger func(ctx context.Context, reason string) error

// FeaturedRefreshScheduler reloads the featured carousel on a schedule.
type FeaturedRefreshScheduler struct {
	schedule string
	trigger  Trigger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	stop      chan struct{}
	watcher   chan struct{}
}

func NewFeaturedRefreshScheduler(schedule string, trigger Trigger) *FeaturedRefreshScheduler {
	return &FeaturedRefreshScheduler{
		schedule: schedule,
		trigger:  trigger,
	}
}

// Start registers the job. An empty schedule disables the scheduler.
func (s *FeaturedRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		logging.Log.Info("Featured refresh scheduler: disabled")
		return nil
	}
	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	s.cron = cron.New(cron.WithParser(parser))
	s.ctx = ctx
	entryID, err := s.cron.AddFunc(s.schedule, func() { s.run("schedule") })
	if err != nil {
		return fmt.Errorf("failed to schedule featured refresh: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logging.Log.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"next_run": s.cron.Entry(entryID).Next,
	}).Info("Featured refresh scheduler: started")

	s.stop = make(chan struct{})
	s.watcher = make(chan struct{})
	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}(s.stop, s.watcher)

	return nil
}

// Stop waits for a running job to finish.
func (s *FeaturedRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	close(s.stop)
	s.isRunning = false
	logging.Log.Info("Featured refresh scheduler: stopped")
}

// RunNow triggers a refresh outside the schedule.
func (s *FeaturedRefreshScheduler) RunNow(ctx context.Context, reason string) error {
	return s.trigger(ctx, reason)
}

func (s *FeaturedRefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns nil when the scheduler is not running.
func (s *FeaturedRefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

func (s *FeaturedRefreshScheduler) run(reason string) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	if err := s.trigger(ctx, reason); err != nil {
		logging.Log.WithError(err).Warn("Featured refresh: trigger failed")
	}
}
