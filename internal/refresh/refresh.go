// Package refresh keeps directory snapshots warm on a schedule so
// interactive classification runs do not pay the fetch cost.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/solatis/groupsight/internal/core/directory"
)

// Refresher periodically invalidates and re-fetches the group and rule
// snapshots from the directory.
type Refresher struct {
	client   *directory.Client
	schedule string
	log      *zap.Logger
	cron     *cron.Cron
}

func NewRefresher(client *directory.Client, schedule string, log *zap.Logger) (*Refresher, error) {
	if client == nil {
		return nil, fmt.Errorf("directory client is required")
	}
	if schedule == "" {
		return nil, fmt.Errorf("refresh schedule is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{client: client, schedule: schedule, log: log}, nil
}

// Start registers the refresh job and begins the scheduler. The first
// refresh runs immediately so a restarted process has fresh snapshots
// before the schedule first fires.
func (r *Refresher) Start(ctx context.Context) error {
	r.cron = cron.New()

	_, err := r.cron.AddFunc(r.schedule, func() {
		r.refreshOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
	}

	r.refreshOnce(ctx)
	r.cron.Start()
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	r.Stop()
	return ctx.Err()
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	started := time.Now()

	if err := r.client.Invalidate(ctx); err != nil {
		r.log.Warn("snapshot invalidation failed", zap.Error(err))
		return
	}

	gen := r.client.Begin()

	groups, err := r.client.Groups(ctx, gen)
	if err != nil {
		r.log.Warn("group snapshot refresh failed", zap.Error(err))
		return
	}

	rules, err := r.client.Rules(ctx, gen)
	if err != nil {
		r.log.Warn("rule snapshot refresh failed", zap.Error(err))
		return
	}

	r.log.Info("snapshots refreshed",
		zap.Int("groups", len(groups)),
		zap.Int("rules", len(rules)),
		zap.Duration("elapsed", time.Since(started)),
	)
}
