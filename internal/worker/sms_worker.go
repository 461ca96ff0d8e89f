package worker

// sms_worker.go
// Delivers staff SMS notifications from QueueSMS. A job without a recipient
// is a new-order announcement: it is fanned out into one job per staff
// phone so each delivery retries on its own.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"b2bportal/internal/infra"
	"b2bportal/internal/model"

	"github.com/rs/zerolog/log"
)

// SMSJobPayload is the job envelope sent to QueueSMS.
type SMSJobPayload struct {
	To           string `json:"to,omitempty"`
	OrderID      uint   `json:"order_id"`
	CustomerName string `json:"customer_name"`
	Contact      string `json:"contact"`
}

// StaffDirectory lists the accounts that receive staff notifications.
type StaffDirectory interface {
	ListStaff(ctx context.Context) ([]model.Account, error)
}

// SMSEnqueuer is satisfied by Dispatcher.
type SMSEnqueuer interface {
	EnqueueSMS(ctx context.Context, payload SMSJobPayload) error
}

type SMSWorker struct {
	sender infra.SMSSender
	staff  StaffDirectory
	queue  SMSEnqueuer
	audit  infra.AuditLog
}

func NewSMSWorker(sender infra.SMSSender, staff StaffDirectory, queue SMSEnqueuer, audit infra.AuditLog) *SMSWorker {
	if audit == nil {
		audit = infra.NopAuditLog{}
	}
	return &SMSWorker{sender: sender, staff: staff, queue: queue, audit: audit}
}

// NewOrderMessage is the text staff receive for a new order. It carries the
// contact summary only, never line items.
func NewOrderMessage(p SMSJobPayload) string {
	return fmt.Sprintf("New order #%d from %s (%s)", p.OrderID, p.CustomerName, p.Contact)
}

func (w *SMSWorker) Handle(ctx context.Context, job Job, attempt int) error {
	var payload SMSJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// retrying cannot fix a bad payload
		log.Error().Err(err).Str("job_id", job.ID).Msg("sms_worker: invalid payload")
		return nil
	}

	if payload.To == "" {
		return w.fanOut(ctx, payload)
	}

	err := w.sender.SendSMS(ctx, payload.To, NewOrderMessage(payload))
	w.record(ctx, job, payload, attempt, err)
	if errors.Is(err, infra.ErrSMSNotConfigured) {
		log.Warn().Str("job_id", job.ID).Msg("sms_worker: gateway not configured, dropping")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("to", payload.To).Uint("order_id", payload.OrderID).Msg("sms_worker: staff notified")
	return nil
}

func (w *SMSWorker) fanOut(ctx context.Context, payload SMSJobPayload) error {
	staff, err := w.staff.ListStaff(ctx)
	if err != nil {
		return fmt.Errorf("sms_worker: list staff: %w", err)
	}

	sent := 0
	for _, acc := range staff {
		phone := strings.TrimSpace(acc.Phone)
		if phone == "" {
			continue
		}
		next := payload
		next.To = phone
		if err := w.queue.EnqueueSMS(ctx, next); err != nil {
			log.Error().Err(err).Str("to", phone).Msg("sms_worker: failed to enqueue staff sms")
			continue
		}
		sent++
	}
	if sent == 0 {
		log.Warn().Uint("order_id", payload.OrderID).Msg("sms_worker: no staff phone to notify")
	}
	return nil
}

func (w *SMSWorker) record(ctx context.Context, job Job, p SMSJobPayload, attempt int, sendErr error) {
	rec := infra.DeliveryRecord{
		JobID:     job.ID,
		Channel:   "sms",
		Recipient: p.To,
		OrderID:   p.OrderID,
		Attempt:   attempt,
		Success:   sendErr == nil,
	}
	if sendErr != nil {
		rec.Error = sendErr.Error()
	}
	if err := w.audit.Record(ctx, rec); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Msg("sms_worker: audit write failed")
	}
}
