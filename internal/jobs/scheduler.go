// Package jobs runs the named background jobs on their configured cadences.
// Every job is an idempotent function: running one twice in a row does the
// same work as running it once, so a missed or doubled tick is harmless.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/homestay-booking/backend/internal/websocket"
)

// Job is a named, idempotent unit of background work.
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Scheduler ticks the registered jobs. Job executions never overlap
// themselves: a sweep still running when its next tick fires is skipped, so
// reconciliation runs are serialized against each other.
type Scheduler struct {
	cron        *cron.Cron
	broadcaster *websocket.EventBroadcaster

	// maxAttempts bounds how often a failing run is retried back-to-back
	// before the run is reported failed and left for the next tick.
	maxAttempts int
}

// NewScheduler creates a job scheduler.
func NewScheduler(hub *websocket.Hub, maxAttempts int) *Scheduler {
	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(logger))),
		broadcaster: broadcaster,
		maxAttempts: maxAttempts,
	}
}

// Register adds a job to the schedule.
func (s *Scheduler) Register(job Job) error {
	if job.Every <= 0 {
		return fmt.Errorf("job %s: cadence must be positive", job.Name)
	}

	spec := "@every " + job.Every.String()
	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("scheduling job %s: %w", job.Name, err)
	}

	log.Printf("Scheduled job %s every %s", job.Name, job.Every)
	return nil
}

// Start begins ticking the registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Job scheduler started")
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping job scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Job scheduler stopped")
}

// runJob executes one tick of a job, retrying batch-level failures a bounded
// number of times before giving up until the next tick.
func (s *Scheduler) runJob(job Job) {
	ctx := context.Background()
	start := time.Now()

	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err = job.Run(ctx); err == nil {
			break
		}
		log.Printf("Job %s attempt %d/%d failed: %v", job.Name, attempt, s.maxAttempts, err)
	}

	duration := time.Since(start).Round(time.Millisecond)
	if err != nil {
		log.Printf("Job %s failed after %d attempts (%s)", job.Name, s.maxAttempts, duration)
	} else {
		log.Printf("Job %s completed in %s", job.Name, duration)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastJobCompleted(job.Name, duration.String(), err)
	}
}
