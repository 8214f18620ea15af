package jobs

import (
	"context"
	"log/slog"
	"time"

	"foodmarket/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const (
	DefaultCheckoutTTL           = 24 * time.Hour
	DefaultCheckoutSweepSchedule = "0 */5 * * * *"
	DefaultCheckoutSweepBatch    = 500
)

// ExpiredCheckoutConfig controls the sweep. Zero values fall back to the defaults.
type ExpiredCheckoutConfig struct {
	TTL      time.Duration
	Schedule string
	Batch    int
}

// ExpiredCheckoutJob removes unpaid checkouts older than the TTL. Each run removes
// at most Batch orders; the rest is picked up by the next run.
type ExpiredCheckoutJob struct {
	handler commands.ExpireCheckoutsCommandHandler
	cfg     ExpiredCheckoutConfig
	now     func() time.Time
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewExpiredCheckoutJob(
	handler commands.ExpireCheckoutsCommandHandler,
	cfg ExpiredCheckoutConfig,
	logger *slog.Logger,
) *ExpiredCheckoutJob {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCheckoutTTL
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultCheckoutSweepSchedule
	}
	if cfg.Batch <= 0 {
		cfg.Batch = DefaultCheckoutSweepBatch
	}
	return &ExpiredCheckoutJob{
		handler: handler,
		cfg:     cfg,
		now:     time.Now,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "expired_checkout_job"),
	}
}

func (j *ExpiredCheckoutJob) Name() string {
	return "expired checkout"
}

// Start schedules the sweep. An invalid cron expression is returned as is.
func (j *ExpiredCheckoutJob) Start() error {
	_, err := j.cron.AddFunc(j.cfg.Schedule, func() {
		ctx := context.Background()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Expired checkout sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expired checkout job started",
		"schedule", j.cfg.Schedule, "ttl", j.cfg.TTL.String())
	return nil
}

// RunOnce sweeps immediately and returns the number of discarded checkouts.
func (j *ExpiredCheckoutJob) RunOnce(ctx context.Context) (int, error) {
	cmd, err := commands.NewExpireCheckoutsCommand(j.now().Add(-j.cfg.TTL), j.cfg.Batch)
	if err != nil {
		return 0, err
	}

	removed, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.InfoContext(ctx, "Expired checkouts discarded", "count", removed)
	}
	return removed, nil
}

// Stop waits for a running sweep to finish.
func (j *ExpiredCheckoutJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Expired checkout job stopped")
}
