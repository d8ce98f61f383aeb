// Package scheduler runs the pipeline on an in-process cron schedule, as an
// alternative to an external cron wrapper kicking the binary.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers a job function on a cron expression. Runs never
// overlap: a trigger firing while a run is still in progress is skipped.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// New creates a scheduler for the given standard 5-field cron expression.
func New(spec string, job func()) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New()}

	_, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		if s.running {
			s.mu.Unlock()
			return
		}
		s.running = true
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()
		job()
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return s, nil
}

// Start begins triggering the job.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
