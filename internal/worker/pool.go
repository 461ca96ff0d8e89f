package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueSMS   = "jobs:sms"
	QueueEmail = "jobs:email"

	JobTypeSMS   = "sms"
	JobTypeEmail = "email"

	// MaxAttempts is how many times a job runs before it is dead-lettered.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Handler processes one job. attempt starts at 1. A returned error makes
// the pool retry the job with backoff until MaxAttempts is reached.
type Handler interface {
	Handle(ctx context.Context, job Job, attempt int) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, job Job, attempt int) error

func (f HandlerFunc) Handle(ctx context.Context, job Job, attempt int) error { return f(ctx, job, attempt) }

// ── Dispatcher ───────────────────────────────────────────────────────────────

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb redis.Cmdable
}

func NewDispatcher(rdb redis.Cmdable) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueSMS pushes an SMS job to Redis.
func (d *Dispatcher) EnqueueSMS(ctx context.Context, payload SMSJobPayload) error {
	return d.enqueue(ctx, QueueSMS, JobTypeSMS, payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobTypeEmail, payload)
}

// NotifyStaff queues the new-order SMS. The SMS worker fans it out to every
// staff phone.
func (d *Dispatcher) NotifyStaff(ctx context.Context, orderID uint, customerName, contactInfo string) error {
	return d.EnqueueSMS(ctx, SMSJobPayload{
		OrderID:      orderID,
		CustomerName: customerName,
		Contact:      contactInfo,
	})
}

// SendEmail queues an e-mail. When orderID is set the worker attaches the
// order summary PDF.
func (d *Dispatcher) SendEmail(ctx context.Context, subject, body, from string, to []string, orderID uint) error {
	return d.EnqueueEmail(ctx, EmailJobPayload{
		From:          from,
		To:            to,
		Subject:       subject,
		Body:          body,
		OrderID:       orderID,
		AttachSummary: orderID != 0,
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: data, EnqueuedAt: time.Now().UTC()}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	return nil
}

// ── Pool ─────────────────────────────────────────────────────────────────────

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb        *redis.Client
	routes     map[string]Handler
	queues     []string
	backoff    func(attempt int) time.Duration
	pollPause  time.Duration // wait after a failed BRPOP
	deadLetter func(ctx context.Context, queue string, job Job, reason string, attempts int)
	wg         sync.WaitGroup
}

// NewPool creates a pool reading from rdb. Register handlers before Start.
func NewPool(rdb *redis.Client) *Pool {
	p := &Pool{
		rdb:       rdb,
		routes:    make(map[string]Handler),
		pollPause: time.Second,
		// 1s, 2s … (exponential backoff)
		backoff: func(attempt int) time.Duration { return time.Duration(1<<uint(attempt-1)) * time.Second },
	}
	p.deadLetter = func(ctx context.Context, queue string, job Job, reason string, attempts int) {
		SendToDLQ(ctx, p.rdb, queue, job, reason, attempts)
	}
	return p
}

// Register routes jobs of jobType, read from queue, to h.
func (p *Pool) Register(jobType, queue string, h Handler) {
	p.routes[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches numWorkers goroutines consuming every registered queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Strs("queues", p.queues).Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned after ctx cancellation.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue // timeout or context cancelled
				}
				log.Warn().Err(err).Int("worker", id).Msg("queue poll failed")
				select {
				case <-ctx.Done():
				case <-time.After(p.pollPause):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		p.deadLetter(ctx, queue, Job{Payload: quoted}, "malformed envelope", 0)
		return
	}

	h, ok := p.routes[job.Type]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for job type")
		p.deadLetter(ctx, queue, job, "unknown job type", 0)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				p.deadLetter(context.Background(), queue, job, "shutdown during retry: "+ctx.Err().Error(), attempt-1)
				return
			case <-time.After(p.backoff(attempt - 1)):
			}
		}
		if lastErr = h.Handle(ctx, job, attempt); lastErr == nil {
			return
		}
		log.Warn().Err(lastErr).
			Str("job_id", job.ID).
			Str("type", job.Type).
			Int("attempt", attempt).
			Msg("job failed")
	}
	p.deadLetter(ctx, queue, job, lastErr.Error(), MaxAttempts)
}
