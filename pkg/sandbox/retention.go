package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultRetention     = 7 * 24 * time.Hour
	DefaultPruneSchedule = "@every 1h"
)

// RetentionOptions configures api_logs pruning.
type RetentionOptions struct {
	MaxAge   time.Duration
	Schedule string
	Now      func() time.Time
}

// Retention prunes old api_logs rows on a cron schedule.
type Retention struct {
	sandbox *Sandbox
	opts    RetentionOptions
	cron    *cron.Cron
}

// NewRetention builds a pruner over s.
func NewRetention(s *Sandbox, opts RetentionOptions) *Retention {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultRetention
	}
	if opts.Schedule == "" {
		opts.Schedule = DefaultPruneSchedule
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Retention{sandbox: s, opts: opts}
}

// Start schedules Prune. Stop must be called to release the scheduler.
func (r *Retention) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(r.opts.Schedule, func() {
		removed, err := r.Prune(ctx)
		if err != nil {
			r.sandbox.opts.Logger.Warn("sandbox: prune api_logs failed", "error", err)
			return
		}
		if removed > 0 {
			r.sandbox.opts.Logger.Info("sandbox: pruned api_logs", "rows", removed)
		}
	}); err != nil {
		return fmt.Errorf("sandbox: schedule prune %q: %w", r.opts.Schedule, err)
	}
	r.cron = c
	c.Start()
	return nil
}

// Stop halts the scheduler and waits for a running prune.
func (r *Retention) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.cron = nil
}

// Prune deletes api_logs rows older than MaxAge.
func (r *Retention) Prune(ctx context.Context) (int64, error) {
	db, err := r.sandbox.DB(ctx)
	if err != nil {
		return 0, err
	}
	r.sandbox.mu.Lock()
	defer r.sandbox.mu.Unlock()
	cutoff := r.opts.Now().Add(-r.opts.MaxAge).UTC()
	res := db.Where("created_at < ?", cutoff).Delete(&APILog{})
	if res.Error != nil {
		return 0, fmt.Errorf("sandbox: prune: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		r.sandbox.persistImageLocked(ctx)
	}
	return res.RowsAffected, nil
}
