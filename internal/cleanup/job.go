// Package cleanup drives the expiry sweep and reports its outcome.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/testimonial-hub/backend/internal/lifecycle"
	"go.uber.org/zap"
)

type Sweeper interface {
	SweepExpired(ctx context.Context, now time.Time) lifecycle.SweepResult
}

// Reporter publishes a sweep summary somewhere. Reporting errors never fail a run.
type Reporter interface {
	Name() string
	Report(ctx context.Context, at time.Time, res lifecycle.SweepResult) error
}

// Job supplies the clock to the sweep and fans the summary out to reporters.
type Job struct {
	sweeper   Sweeper
	reporters []Reporter
	now       func() time.Time
	log       *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewJob(sweeper Sweeper, log *zap.Logger, reporters ...Reporter) *Job {
	return &Job{
		sweeper:   sweeper,
		reporters: reporters,
		now:       time.Now,
		log:       log,
	}
}

func (j *Job) Run(ctx context.Context) lifecycle.SweepResult {
	at := j.now().UTC()
	res := j.sweeper.SweepExpired(ctx, at)

	fields := []zap.Field{
		zap.Time("at", at),
		zap.Int("pending_expired", res.PendingExpired),
		zap.Int("approved_expired", res.ApprovedExpired),
		zap.Int("rejected_expired", res.RejectedExpired),
		zap.Int("deleted", res.DeletedCount),
		zap.Int("failures", len(res.Failures)),
	}
	if len(res.Failures) > 0 {
		j.log.Warn("cleanup finished with failures", fields...)
		for _, f := range res.Failures {
			j.log.Warn("cleanup failure",
				zap.String("testimonial_id", f.TestimonialID.String()),
				zap.String("kind", f.Kind),
				zap.String("error", f.Error),
			)
		}
	} else {
		j.log.Info("cleanup finished", fields...)
	}

	for _, r := range j.reporters {
		if err := r.Report(ctx, at, res); err != nil {
			j.log.Warn("cleanup report failed", zap.String("reporter", r.Name()), zap.Error(err))
		}
	}
	return res
}

// Start runs the job every interval until Stop. With immediate set the first
// run happens right away.
func (j *Job) Start(ctx context.Context, interval time.Duration, immediate bool) error {
	if interval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %v", interval)
	}
	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})
	go j.loop(ctx, interval, immediate)
	j.log.Info("cleanup scheduler started", zap.Duration("interval", interval))
	return nil
}

func (j *Job) Stop() {
	if j.cancel != nil {
		j.cancel()
		<-j.done
	}
	j.log.Info("cleanup scheduler stopped")
}

func (j *Job) loop(ctx context.Context, interval time.Duration, immediate bool) {
	defer close(j.done)

	if immediate {
		j.Run(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}
