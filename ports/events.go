package ports

import (
	"context"

	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
)

// EventPublisher notifies other instances about terminal verdicts.
type EventPublisher interface {
	PublishVerdict(ctx context.Context, session core.Session) error
}
