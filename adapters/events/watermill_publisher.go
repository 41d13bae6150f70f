package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
	"github.com/BartekB-it/prawda-w-sieci-verifier/ports"
)

// VerdictTopic is the topic terminal verdict events are published to.
const VerdictTopic = "verifier.verdicts"

// VerdictEvent is the wire form of a terminal session transition.
type VerdictEvent struct {
	Token         string    `json:"token"`
	URL           string    `json:"url"`
	Status        string    `json:"status"`
	Verdict       *bool     `json:"verdict"`
	VerdictReason string    `json:"verdict_reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// WatermillPublisher publishes verdict events through a watermill
// message.Publisher, so the transport (redis stream, in-process channel)
// is chosen at wiring time.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new publisher adapter.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishVerdict emits the terminal state of a session. Callers treat
// failures as non-fatal: the store transition already happened.
func (p *WatermillPublisher) PublishVerdict(ctx context.Context, session core.Session) error {
	event := VerdictEvent{
		Token:         session.Token,
		URL:           session.URL,
		Status:        string(session.Status),
		Verdict:       session.Verdict,
		VerdictReason: session.VerdictReason,
		OccurredAt:    time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(VerdictTopic, msg); err != nil {
		return fmt.Errorf("failed to publish verdict event: %w", err)
	}

	return nil
}
