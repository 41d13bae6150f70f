package ports

import (
	"context"

	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
)

// TLSProber performs the bounded outbound probe that classifies a URL's
// transport security. Implementations must never block past their
// configured timeout and must only return sanitized messages.
type TLSProber interface {
	Probe(ctx context.Context, url string) core.TLSProbeResult
}
