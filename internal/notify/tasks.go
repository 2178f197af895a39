// Package notify turns domain events into notification emails, delivered
// asynchronously through asynq.
package notify

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TypeEmailDelivery is the asynq task type for outgoing notification email.
const TypeEmailDelivery = "notify:email"

// QueueName is the asynq queue notification tasks are enqueued on.
const QueueName = "notify"

// EmailTaskPayload is the serialised form of one email delivery task.
type EmailTaskPayload struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewEmailTask builds an asynq task for the payload.
func NewEmailTask(p EmailTaskPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailDelivery, data), nil
}
