package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-fundraise/internal/common"
)

// DeliveryHandler processes queued email tasks inside the asynq worker.
type DeliveryHandler struct {
	Mail common.EmailSender
	Log  zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h DeliveryHandler) ProcessTask(_ context.Context, task *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// A payload that never parses will never parse on retry either.
		return fmt.Errorf("decode email task: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task without recipient: %w", asynq.SkipRetry)
	}
	sender := h.Mail
	if sender == nil {
		sender = common.NopEmailSender{}
	}
	if err := sender.Send(payload.To, payload.Subject, payload.Body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	h.Log.Info().
		Str("to", payload.To).
		Str("subject", payload.Subject).
		Msg("notification email delivered")
	return nil
}

// NewMux builds the asynq routing table for the worker process.
func NewMux(handler DeliveryHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeEmailDelivery, handler)
	return mux
}

// LogSender writes emails to the log instead of an SMTP relay. It stands in
// for a real provider in development deployments.
type LogSender struct {
	Log zerolog.Logger
}

// Send implements common.EmailSender.
func (s LogSender) Send(to, subject, body string) error {
	s.Log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email (log delivery)")
	return nil
}
