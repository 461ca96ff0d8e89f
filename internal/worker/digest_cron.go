package worker

// digest_cron.go
// Scheduled reminder of orders still waiting in status New, mailed to the
// staff address.

import (
	"context"
	"fmt"
	"time"

	"b2bportal/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// OrderCounter counts orders by status.
type OrderCounter interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// EmailEnqueuer is satisfied by Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// DigestConfig holds all dependencies for the digest job.
type DigestConfig struct {
	Schedule   string // standard 5-field cron expression
	Orders     OrderCounter
	Mail       EmailEnqueuer
	From       string
	StaffEmail string
}

// Digest runs the pending-order reminder on a cron schedule.
type Digest struct {
	cron *cron.Cron
	cfg  DigestConfig
}

// NewDigest validates the schedule and registers the job. Call Start to run.
func NewDigest(cfg DigestConfig) (*Digest, error) {
	c := cron.New()
	d := &Digest{cron: c, cfg: cfg}
	if _, err := c.AddFunc(cfg.Schedule, d.tick); err != nil {
		return nil, fmt.Errorf("digest: schedule %q: %w", cfg.Schedule, err)
	}
	return d, nil
}

func (d *Digest) Start() {
	log.Info().Str("schedule", d.cfg.Schedule).Msg("digest_cron: started")
	d.cron.Start()
}

// Stop waits for a running tick to finish.
func (d *Digest) Stop() {
	<-d.cron.Stop().Done()
	log.Info().Msg("digest_cron: stopped")
}

func (d *Digest) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		log.Error().Err(err).Msg("digest_cron: run failed")
	}
}

// Run counts New orders and queues the reminder when there are any.
func (d *Digest) Run(ctx context.Context) error {
	if d.cfg.StaffEmail == "" {
		log.Debug().Msg("digest_cron: STAFF_EMAIL not set, skipping")
		return nil
	}

	n, err := d.cfg.Orders.CountByStatus(ctx, model.OrderStatusNew)
	if err != nil {
		return fmt.Errorf("count new orders: %w", err)
	}
	if n == 0 {
		return nil
	}

	return d.cfg.Mail.EnqueueEmail(ctx, EmailJobPayload{
		From:    d.cfg.From,
		To:      []string{d.cfg.StaffEmail},
		Subject: fmt.Sprintf("%d order(s) waiting for processing", n),
		Body: fmt.Sprintf("There are %d order(s) in status %s.\n"+
			"Open the staff order list to process them.\n", n, model.OrderStatusNew),
	})
}
