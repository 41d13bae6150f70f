package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekB-it/prawda-w-sieci-verifier/adapters/store"
	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
	"github.com/BartekB-it/prawda-w-sieci-verifier/metrics"
	"github.com/BartekB-it/prawda-w-sieci-verifier/service"
)

var testMetrics = metrics.New()

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProber struct {
	result core.TLSProbeResult
}

func (s *stubProber) Probe(ctx context.Context, url string) core.TLSProbeResult {
	return s.result
}

type stubEvents struct{}

func (stubEvents) PublishVerdict(ctx context.Context, session core.Session) error { return nil }

func newTestRouter(t *testing.T, probe core.TLSProbeResult, ttl time.Duration) *gin.Engine {
	t.Helper()
	policy := core.NewTrustPolicy([]string{"mf.gov.pl", "example.gov.pl"}, core.PolicyGovFallback)
	svc := service.NewVerifyService(
		store.NewMemoryStore(ttl),
		&stubProber{result: probe},
		stubEvents{},
		policy,
		testMetrics,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		ttl,
		"https://verifier.example",
	)
	return SetupRouter(svc, testMetrics)
}

func doJSON(t *testing.T, router *gin.Engine, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func okProbe() core.TLSProbeResult {
	return core.TLSProbeResult{Status: core.TLSOK, HTTPStatus: 200}
}

func TestCheckTLSHandler(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodGet, "/api/check-tls?url=mf.gov.pl", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "https://mf.gov.pl", body["url"])
	assert.Equal(t, true, body["https"])
	assert.Equal(t, true, body["tls_ok"])
	assert.Equal(t, float64(200), body["http_status"])
	assert.Equal(t, "mf.gov.pl", body["domain"])
	assert.Equal(t, true, body["is_gov_pl"])
	assert.Equal(t, true, body["uses_https"])
	assert.Equal(t, true, body["in_trusted_list"])
}

func TestCheckTLSHandlerValidationFailure(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodGet, "/api/check-tls?url=http://127.0.0.1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "IP address is not allowed", body["error"])
}

func TestCheckTLSHandlerConnectivityFailure(t *testing.T) {
	unknown := core.TLSProbeResult{Status: core.TLSUnknown, Message: "could not connect to server"}
	router := newTestRouter(t, unknown, core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodGet, "/api/check-tls?url=https://mf.gov.pl", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "could not connect to server", body["error"])
}

func TestCheckTLSHandlerTLSFailure(t *testing.T) {
	failed := core.TLSProbeResult{Status: core.TLSFailed, Message: "certificate/TLS verification failed"}
	router := newTestRouter(t, failed, core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodGet, "/api/check-tls?url=https://mf.gov.pl", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, false, body["tls_ok"])
	assert.Equal(t, "certificate/TLS verification failed", body["tls_error"])
	_, hasStatus := body["http_status"]
	assert.False(t, hasStatus)
}

func TestCreateSessionAndStatus(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodPost, "/api/create-session", gin.H{"url": "https://mf.gov.pl"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "https://mf.gov.pl", body["url"])
	assert.Equal(t, "https://verifier.example/api/confirm-session?token="+token, body["qr_payload"])
	assert.InDelta(t, core.DefaultSessionTTL.Seconds(), body["expires_in"], 2)

	rec, body = doJSON(t, router, http.MethodGet, "/api/session-status?token="+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", body["status"])
	assert.Nil(t, body["verdict"])
	expiresIn, ok := body["expires_in"].(float64)
	require.True(t, ok)
	assert.Greater(t, expiresIn, float64(0))
	assert.LessOrEqual(t, expiresIn, core.DefaultSessionTTL.Seconds())
}

func TestCreateSessionValidationFailure(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodPost, "/api/create-session", gin.H{"url": "https://evil.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "domain not on trusted list", body["error"])
}

func TestCreateSessionEmptyBody(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodPost, "/api/create-session", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty URL", body["error"])
}

func TestSessionStatusNotFound(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodGet, "/api/session-status?token=missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "not_found", body["status"])
}

func TestConfirmSessionFlow(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	_, created := doJSON(t, router, http.MethodPost, "/api/create-session", gin.H{"url": "https://mf.gov.pl"})
	token := created["token"].(string)

	// token via query string, the shape the qr payload produces
	rec, body := doJSON(t, router, http.MethodPost, "/api/confirm-session?token="+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, true, body["verdict"])
	assert.Equal(t, "", body["verdict_reason"])
	assert.Equal(t, true, body["tls_ok"])
	assert.Equal(t, true, body["in_trusted_list"])

	// the second confirm loses with the current terminal status
	rec, body = doJSON(t, router, http.MethodPost, "/api/confirm-session", gin.H{"token": token})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "confirmed", body["status"])

	// the stored verdict is unchanged
	_, status := doJSON(t, router, http.MethodGet, "/api/session-status?token="+token, nil)
	assert.Equal(t, true, status["verdict"])
}

func TestConfirmSessionNotFound(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodPost, "/api/confirm-session", gin.H{"token": "missing"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["status"])
}

func TestExpiredSession(t *testing.T) {
	// a nanosecond TTL expires the session before the first read
	router := newTestRouter(t, okProbe(), time.Nanosecond)

	_, created := doJSON(t, router, http.MethodPost, "/api/create-session", gin.H{"url": "https://mf.gov.pl"})
	token := created["token"].(string)
	time.Sleep(time.Millisecond)

	rec, body := doJSON(t, router, http.MethodGet, "/api/session-status?token="+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired", body["status"])
	assert.Equal(t, float64(0), body["expires_in"])

	rec, body = doJSON(t, router, http.MethodPost, "/api/confirm-session", gin.H{"token": token})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "expired", body["status"])
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, okProbe(), core.DefaultSessionTTL)

	rec, body := doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
}
