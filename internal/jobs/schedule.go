package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule answers "is a run due now" for a standard five-field cron expression, so
// callers can drive it with any clock.
type Schedule struct {
	Name string
	Spec string

	schedule cron.Schedule
}

func NewSchedule(name, spec string) (*Schedule, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: invalid cron expression %q: %w", name, spec, err)
	}
	return &Schedule{Name: name, Spec: spec, schedule: schedule}, nil
}

// Next returns the first firing strictly after t. Expressions are evaluated in UTC.
func (s *Schedule) Next(t time.Time) time.Time {
	return s.schedule.Next(t.UTC())
}

// Due reports whether a firing falls in (last, now].
func (s *Schedule) Due(last, now time.Time) bool {
	return !s.Next(last).After(now)
}
