package jobs

import (
	"context"
	"time"
)

// Runner is the externally triggerable side of the reminder scans. Both take the
// current time explicitly and are safe to call outside their schedule.
type Runner interface {
	RunMorningNudgeScan(ctx context.Context, now time.Time) (*MorningNudgeReport, error)
	RunGhostSessionScan(ctx context.Context, now time.Time) (*GhostSessionReport, error)
}

type reminderRunner struct {
	nudge *MorningNudgeJob
	ghost *GhostSessionJob
}

func NewRunner(nudge *MorningNudgeJob, ghost *GhostSessionJob) Runner {
	return &reminderRunner{nudge: nudge, ghost: ghost}
}

func (r *reminderRunner) RunMorningNudgeScan(ctx context.Context, now time.Time) (*MorningNudgeReport, error) {
	return r.nudge.Run(ctx, now)
}

func (r *reminderRunner) RunGhostSessionScan(ctx context.Context, now time.Time) (*GhostSessionReport, error) {
	return r.ghost.Run(ctx, now)
}
