package cron

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper is satisfied by lock.KeyedMutex.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

type sweepObserver interface {
	LockSwept(count int)
}

type LockSweepJob struct {
	sweeper  Sweeper
	observer sweepObserver
	idle     time.Duration
}

func NewLockSweepJob(sweeper Sweeper, observer sweepObserver, idle time.Duration) *LockSweepJob {
	return &LockSweepJob{sweeper: sweeper, observer: observer, idle: idle}
}

func (j *LockSweepJob) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sweep_idle_record_locks", j.idle, j.Run)
}

// Run drops lock entries that have been idle for a full interval.
func (j *LockSweepJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	removed := j.sweeper.Sweep(j.idle)
	if j.observer != nil {
		j.observer.LockSwept(removed)
	}
	if removed > 0 {
		slog.Debug("Cron: swept idle record locks", "removed", removed)
	}
	return nil
}
