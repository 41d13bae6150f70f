package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
	"github.com/BartekB-it/prawda-w-sieci-verifier/metrics"
	"github.com/BartekB-it/prawda-w-sieci-verifier/ports"
)

// VerifyService implements the verification workflows: the ad-hoc TLS
// check and the create / confirm / poll session handshake.
type VerifyService struct {
	store   ports.SessionStore
	prober  ports.TLSProber
	events  ports.EventPublisher
	policy  *core.TrustPolicy
	metrics *metrics.Metrics
	logger  *slog.Logger

	ttl     time.Duration
	baseURL string
}

// NewVerifyService wires the service from its ports. baseURL is the public
// address embedded into qr payloads.
func NewVerifyService(
	store ports.SessionStore,
	prober ports.TLSProber,
	events ports.EventPublisher,
	policy *core.TrustPolicy,
	m *metrics.Metrics,
	logger *slog.Logger,
	ttl time.Duration,
	baseURL string,
) *VerifyService {
	if ttl <= 0 {
		ttl = core.DefaultSessionTTL
	}
	return &VerifyService{
		store:   store,
		prober:  prober,
		events:  events,
		policy:  policy,
		metrics: m,
		logger:  logger,
		ttl:     ttl,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// TTL returns the session time-to-live.
func (s *VerifyService) TTL() time.Duration { return s.ttl }

// CheckResult is the outcome of the ad-hoc TLS check.
type CheckResult struct {
	URL   string
	Meta  core.SecurityMetadata
	Probe core.TLSProbeResult
}

// ConfirmResult is the outcome of a session confirmation, including the
// probe details gathered while adjudicating.
type ConfirmResult struct {
	Session core.Session
	Meta    core.SecurityMetadata
	Probe   core.TLSProbeResult
}

// Validate normalizes and validates a raw URL against the trust policy.
func (s *VerifyService) Validate(raw string) (string, error) {
	validated, err := NormalizeAndValidate(raw, s.policy)
	s.metrics.ObserveValidation(err == nil)
	return validated, err
}

// CheckTLS validates the raw URL, evaluates its trust metadata and runs a
// single bounded TLS probe. Sessions are not involved.
func (s *VerifyService) CheckTLS(ctx context.Context, raw string) (CheckResult, error) {
	validated, err := s.Validate(raw)
	if err != nil {
		return CheckResult{}, err
	}

	meta := Evaluate(validated, s.policy)
	probe := s.probe(ctx, validated)

	return CheckResult{URL: validated, Meta: meta, Probe: probe}, nil
}

// CreateSession validates the raw URL and opens a pending session for it.
// No TLS probe runs here; probing only happens at confirmation time so the
// verdict reflects confirmation-time truth.
func (s *VerifyService) CreateSession(ctx context.Context, raw string) (core.Session, error) {
	validated, err := s.Validate(raw)
	if err != nil {
		return core.Session{}, err
	}

	session, err := s.store.Create(ctx, validated)
	if err != nil {
		return core.Session{}, err
	}
	s.metrics.SessionsCreated.Inc()

	s.logger.Info("session created",
		slog.String("token", session.Token),
		slog.String("url", session.URL))

	return session, nil
}

// ConfirmSession re-runs the trust evaluation and TLS probe for the stored
// URL and drives the session into its terminal state. The confirmer is
// deliberately not authenticated: anyone who holds the token can confirm,
// which is a known trust gap of the handshake.
func (s *VerifyService) ConfirmSession(ctx context.Context, token string) (ConfirmResult, error) {
	session, ok, err := s.store.Get(ctx, token)
	if err != nil {
		return ConfirmResult{}, err
	}
	if !ok {
		return ConfirmResult{}, core.ErrSessionNotFound
	}
	if session.Status.Terminal() {
		return ConfirmResult{}, &core.ConflictError{Status: session.Status}
	}

	meta := Evaluate(session.URL, s.policy)
	probe := s.probe(ctx, session.URL)
	status, verdict, reason := adjudicate(meta, probe)

	updated, err := s.store.TransitionTerminal(ctx, token, status, verdict, reason)
	if err != nil {
		return ConfirmResult{}, err
	}
	s.metrics.ObserveAdjudication(string(updated.Status))

	if err := s.events.PublishVerdict(ctx, updated); err != nil {
		// the transition already happened; a lost event is not worth
		// failing the confirmation over
		s.logger.Warn("failed to publish verdict event",
			slog.String("token", updated.Token),
			slog.Any("error", err))
	}

	s.logger.Info("session adjudicated",
		slog.String("token", updated.Token),
		slog.String("status", string(updated.Status)),
		slog.Bool("verdict", verdict))

	return ConfirmResult{Session: updated, Meta: meta, Probe: probe}, nil
}

// SessionStatus returns the session for token with lazy expiry applied.
func (s *VerifyService) SessionStatus(ctx context.Context, token string) (core.Session, error) {
	session, ok, err := s.store.Get(ctx, token)
	if err != nil {
		return core.Session{}, err
	}
	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}
	return session, nil
}

// ExpiresIn returns the whole seconds until the session stops being
// confirmable, zero once terminal or past TTL.
func (s *VerifyService) ExpiresIn(session core.Session, now time.Time) int {
	if session.Status != core.StatusPending {
		return 0
	}
	remaining := session.ExpiresAt(s.ttl).Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds())
}

// QRPayload builds the opaque callback URL a second-device client invokes
// to confirm the session.
func (s *VerifyService) QRPayload(token string) string {
	return s.baseURL + "/api/confirm-session?token=" + url.QueryEscape(token)
}

func (s *VerifyService) probe(ctx context.Context, validatedURL string) core.TLSProbeResult {
	start := time.Now()
	probe := s.prober.Probe(ctx, validatedURL)
	s.metrics.ObserveProbe(string(probe.Status), time.Since(start).Seconds())
	return probe
}

// adjudicate computes the trust verdict from confirmation-time metadata
// and probe. A URL that could not be reached keeps the benefit of the
// doubt when it is HTTPS, but a proven certificate failure always rejects.
func adjudicate(meta core.SecurityMetadata, probe core.TLSProbeResult) (core.Status, bool, string) {
	verdict := meta.IsGovZone && meta.InTrustedList &&
		(probe.Status == core.TLSOK || (probe.Status == core.TLSUnknown && meta.UsesHTTPS))
	if verdict {
		return core.StatusConfirmed, true, ""
	}

	var reasons []string
	if !meta.IsGovZone {
		reasons = append(reasons, "domain is not in the gov.pl zone")
	}
	if !meta.InTrustedList {
		reasons = append(reasons, "domain is not on the trusted list")
	}
	if probe.Status == core.TLSFailed {
		reasons = append(reasons, "TLS certificate verification failed")
	}
	if probe.Status == core.TLSUnknown && !meta.UsesHTTPS {
		reasons = append(reasons, "TLS state could not be confirmed")
	}

	reason := strings.Join(reasons, "; ")
	if reason == "" {
		reason = "does not meet trust criteria"
	}
	return core.StatusRejected, false, reason
}
