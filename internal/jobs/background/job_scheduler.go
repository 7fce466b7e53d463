package background

import (
	"context"
	"log"
	"sync"
	"time"

	"pointeuse/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

const (
	MorningNudgeJob = "morning-nudge"
	GhostSessionJob = "ghost-sessions"

	DefaultTickInterval = time.Minute
)

type JobStatus struct {
	Name      string     `json:"name"`
	Spec      string     `json:"spec"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   time.Time  `json:"next_run"`
	LastError string     `json:"last_error,omitempty"`
}

type scheduledScan struct {
	schedule *jobs.Schedule
	run      func(ctx context.Context, now time.Time) error
	lastRun  time.Time
	ran      bool
	lastErr  error
}

// JobScheduler wakes on a fixed tick and runs each scan whose cron schedule has fired
// since its previous run.
type JobScheduler struct {
	scheduler gocron.Scheduler
	tick      time.Duration
	scans     []*scheduledScan
	mu        sync.Mutex
}

// NewJobScheduler registers the morning nudge and ghost session scans. Their cron
// clocks start at startedAt, so nothing fires for the past.
func NewJobScheduler(runner jobs.Runner, nudgeSpec, ghostSpec string, tick time.Duration, startedAt time.Time) (*JobScheduler, error) {
	nudge, err := jobs.NewSchedule(MorningNudgeJob, nudgeSpec)
	if err != nil {
		return nil, err
	}
	ghost, err := jobs.NewSchedule(GhostSessionJob, ghostSpec)
	if err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if tick <= 0 {
		tick = DefaultTickInterval
	}

	js := &JobScheduler{
		scheduler: scheduler,
		tick:      tick,
		scans: []*scheduledScan{
			{schedule: nudge, lastRun: startedAt, run: func(ctx context.Context, now time.Time) error {
				_, err := runner.RunMorningNudgeScan(ctx, now)
				return err
			}},
			{schedule: ghost, lastRun: startedAt, run: func(ctx context.Context, now time.Time) error {
				_, err := runner.RunGhostSessionScan(ctx, now)
				return err
			}},
		},
	}

	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(js.tick),
		gocron.NewTask(func(ctx context.Context) {
			js.Tick(ctx, time.Now())
		}, context.Background()),
		gocron.WithName("reminder-scans"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	log.Printf("Registered %d scheduled scans (tick %s)", len(js.scans), js.tick)
	return nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// Tick runs, in order, every scan that is due at now. A failing scan is logged and
// does not keep the others from running.
func (js *JobScheduler) Tick(ctx context.Context, now time.Time) {
	js.mu.Lock()
	due := make([]*scheduledScan, 0, len(js.scans))
	for _, s := range js.scans {
		if s.schedule.Due(s.lastRun, now) {
			due = append(due, s)
		}
	}
	js.mu.Unlock()

	for _, s := range due {
		err := s.run(ctx, now)
		if err != nil {
			log.Printf("Scheduled scan %s failed: %v", s.schedule.Name, err)
		}

		js.mu.Lock()
		s.lastRun = now
		s.ran = true
		s.lastErr = err
		js.mu.Unlock()
	}
}

// Status returns information about scheduled scans
func (js *JobScheduler) Status() []JobStatus {
	js.mu.Lock()
	defer js.mu.Unlock()

	out := make([]JobStatus, 0, len(js.scans))
	for _, s := range js.scans {
		status := JobStatus{
			Name:    s.schedule.Name,
			Spec:    s.schedule.Spec,
			NextRun: s.schedule.Next(s.lastRun),
		}
		if s.ran {
			last := s.lastRun
			status.LastRun = &last
		}
		if s.lastErr != nil {
			status.LastError = s.lastErr.Error()
		}
		out = append(out, status)
	}
	return out
}
