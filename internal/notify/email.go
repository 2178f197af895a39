package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-fundraise/internal/events"
	"github.com/noah-isme/backend-fundraise/internal/obs"
)

// Recipient identifies who receives notifications for a campaign.
type Recipient struct {
	Email         string
	CampaignTitle string
}

// RecipientStore resolves the notification recipient for a campaign.
type RecipientStore interface {
	Owner(ctx context.Context, campaignID uuid.UUID) (Recipient, error)
}

// PGRecipientStore loads campaign owners from Postgres.
type PGRecipientStore struct {
	Pool *pgxpool.Pool
}

const getOwnerSQL = `
SELECT owner_email, title
FROM campaigns
WHERE id = $1`

// ErrNoRecipient is returned when a campaign has no owner email on file.
var ErrNoRecipient = errors.New("notify: no recipient")

// Owner implements the RecipientStore interface.
func (s PGRecipientStore) Owner(ctx context.Context, campaignID uuid.UUID) (Recipient, error) {
	if s.Pool == nil {
		return Recipient{}, errors.New("notify: pool not configured")
	}
	var (
		email pgtype.Text
		title string
	)
	err := s.Pool.QueryRow(ctx, getOwnerSQL, pgtype.UUID{Bytes: campaignID, Valid: true}).Scan(&email, &title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recipient{}, ErrNoRecipient
		}
		return Recipient{}, err
	}
	if !email.Valid || email.String == "" {
		return Recipient{}, ErrNoRecipient
	}
	return Recipient{Email: email.String, CampaignTitle: title}, nil
}

// Enqueuer is the subset of asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EmailNotifier reacts to domain events by enqueueing delivery tasks. Topics
// absent from the toggle map stay enabled.
type EmailNotifier struct {
	Enqueuer Enqueuer
	Store    RecipientStore
	From     string
	Topics   map[string]bool
}

// Notify implements events.Notifier.
func (n *EmailNotifier) Notify(ctx context.Context, event events.Event) error {
	if n == nil || n.Enqueuer == nil || n.Store == nil {
		return nil
	}
	if !n.topicEnabled(event.Topic) {
		return nil
	}
	recipient, err := n.Store.Owner(ctx, event.AggregateID)
	if err != nil {
		if errors.Is(err, ErrNoRecipient) {
			return nil
		}
		observeEnqueue("error")
		return err
	}
	subject, body, ok := compose(event, recipient.CampaignTitle)
	if !ok {
		return nil
	}
	task, err := NewEmailTask(EmailTaskPayload{From: n.From, To: recipient.Email, Subject: subject, Body: body})
	if err != nil {
		observeEnqueue("error")
		return err
	}
	if _, err := n.Enqueuer.EnqueueContext(ctx, task, asynq.Queue(QueueName), asynq.MaxRetry(5)); err != nil {
		observeEnqueue("error")
		return err
	}
	observeEnqueue("ok")
	return nil
}

func (n *EmailNotifier) topicEnabled(topic string) bool {
	if n.Topics == nil {
		return true
	}
	enabled, ok := n.Topics[topic]
	if !ok {
		return true
	}
	return enabled
}

type eventFields struct {
	TotalDisplay  string  `json:"totalDisplay"`
	RaisedDisplay string  `json:"raisedDisplay"`
	Percentage    float64 `json:"percentage"`
	Projected     int64   `json:"projectedValue"`
	GoalTarget    int64   `json:"goalTarget"`
}

func compose(event events.Event, title string) (subject, body string, ok bool) {
	var fields eventFields
	_ = json.Unmarshal(event.Payload, &fields)

	switch event.Topic {
	case events.TopicGoalReached:
		subject = fmt.Sprintf("%q reached its funding goal", title)
		if fields.RaisedDisplay != "" {
			body = fmt.Sprintf("Your campaign %q hit its goal with %s raised.", title, fields.RaisedDisplay)
		} else {
			body = fmt.Sprintf("Your campaign %q hit its goal at %d of %d.", title, fields.Projected, fields.GoalTarget)
		}
		return subject, body, true
	case events.TopicHalfGoalReached:
		subject = fmt.Sprintf("%q is halfway to its goal", title)
		body = fmt.Sprintf("Your campaign %q passed the halfway mark at %.1f%%.", title, fields.Percentage)
		return subject, body, true
	case events.TopicContributionRecorded:
		subject = fmt.Sprintf("New contribution to %q", title)
		body = fmt.Sprintf("Your campaign %q received a contribution of %s.", title, fields.TotalDisplay)
		return subject, body, true
	default:
		return "", "", false
	}
}

func observeEnqueue(result string) {
	if obs.NotifyEnqueueTotal != nil {
		obs.NotifyEnqueueTotal.WithLabelValues(result).Inc()
	}
}
