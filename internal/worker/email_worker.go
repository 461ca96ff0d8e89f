package worker

// email_worker.go
// Processes email jobs from QueueEmail. Order e-mails carry a PDF summary
// when the order can be loaded; a failed render never blocks the send.

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"b2bportal/internal/infra"
	"b2bportal/internal/model"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	From          string   `json:"from"`
	To            []string `json:"to"`
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	OrderID       uint     `json:"order_id,omitempty"`
	AttachSummary bool     `json:"attach_summary,omitempty"`
}

// OrderFinder loads an order with its items and products.
type OrderFinder interface {
	FindByID(ctx context.Context, id uint) (*model.Order, error)
}

// EmailWorker sends staff e-mails via SMTP.
type EmailWorker struct {
	mailer         infra.MailSender
	orders         OrderFinder
	audit          infra.AuditLog
	pdfStoragePath string
}

// NewEmailWorker wires the mailer. orders may be nil, which disables the
// PDF attachment.
func NewEmailWorker(mailer infra.MailSender, orders OrderFinder, audit infra.AuditLog, pdfStoragePath string) *EmailWorker {
	if audit == nil {
		audit = infra.NopAuditLog{}
	}
	return &EmailWorker{mailer: mailer, orders: orders, audit: audit, pdfStoragePath: pdfStoragePath}
}

func (w *EmailWorker) Handle(ctx context.Context, job Job, attempt int) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("email_worker: invalid payload")
		return nil
	}
	if len(payload.To) == 0 {
		log.Warn().Str("job_id", job.ID).Msg("email_worker: no recipients, skipping")
		return nil
	}

	msg := infra.Mail{
		From:    payload.From,
		To:      payload.To,
		Subject: payload.Subject,
		Body:    payload.Body,
	}
	if path := w.summaryPDF(ctx, payload); path != "" {
		msg.Attachments = []string{path}
	}

	err := w.mailer.Send(msg)
	w.record(ctx, job, payload, attempt, err)
	if errors.Is(err, infra.ErrMailNotConfigured) {
		log.Warn().Str("job_id", job.ID).Msg("email_worker: smtp not configured, dropping")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Strs("to", payload.To).Uint("order_id", payload.OrderID).Msg("email_worker: sent")
	return nil
}

func (w *EmailWorker) summaryPDF(ctx context.Context, p EmailJobPayload) string {
	if !p.AttachSummary || p.OrderID == 0 || w.orders == nil {
		return ""
	}
	order, err := w.orders.FindByID(ctx, p.OrderID)
	if err != nil {
		log.Warn().Err(err).Uint("order_id", p.OrderID).Msg("email_worker: order not loaded, sending without PDF")
		return ""
	}
	path, err := infra.GenerateOrderSummaryPDF(order, w.pdfStoragePath)
	if err != nil {
		log.Warn().Err(err).Uint("order_id", p.OrderID).Msg("email_worker: PDF render failed")
		return ""
	}
	return path
}

func (w *EmailWorker) record(ctx context.Context, job Job, p EmailJobPayload, attempt int, sendErr error) {
	rec := infra.DeliveryRecord{
		JobID:     job.ID,
		Channel:   "email",
		Recipient: strings.Join(p.To, ","),
		OrderID:   p.OrderID,
		Attempt:   attempt,
		Success:   sendErr == nil,
	}
	if sendErr != nil {
		rec.Error = sendErr.Error()
	}
	if err := w.audit.Record(ctx, rec); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Msg("email_worker: audit write failed")
	}
}
