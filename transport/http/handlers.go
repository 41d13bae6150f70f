package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
	"github.com/BartekB-it/prawda-w-sieci-verifier/service"
)

// VerifyHandlers contains the HTTP handlers for the verification API.
type VerifyHandlers struct {
	svc *service.VerifyService
}

// NewVerifyHandlers creates new verification handlers.
func NewVerifyHandlers(svc *service.VerifyService) *VerifyHandlers {
	return &VerifyHandlers{svc: svc}
}

// CheckTLS handles the ad-hoc TLS check: GET /api/check-tls?url=
func (h *VerifyHandlers) CheckTLS(c *gin.Context) {
	result, err := h.svc.CheckTLS(c.Request.Context(), c.Query("url"))
	if err != nil {
		if core.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}

	// an https URL we could not reach at all is the one connectivity
	// failure the ad-hoc check reports as a gateway error
	if result.Probe.Status == core.TLSUnknown && result.Meta.UsesHTTPS {
		c.JSON(http.StatusBadGateway, gin.H{
			"ok":    false,
			"url":   result.URL,
			"error": result.Probe.Message,
		})
		return
	}

	body := gin.H{
		"ok":              true,
		"url":             result.URL,
		"https":           result.Meta.UsesHTTPS,
		"tls_ok":          result.Probe.OKBool(),
		"domain":          result.Meta.Domain,
		"is_gov_pl":       result.Meta.IsGovZone,
		"uses_https":      result.Meta.UsesHTTPS,
		"in_trusted_list": result.Meta.InTrustedList,
	}
	if result.Probe.Status == core.TLSOK {
		body["http_status"] = result.Probe.HTTPStatus
	}
	if result.Probe.Message != "" {
		body["tls_error"] = result.Probe.Message
	}

	c.JSON(http.StatusOK, body)
}

// CreateSession handles POST /api/create-session with body {"url": ...}.
func (h *VerifyHandlers) CreateSession(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	// an unreadable body behaves like an empty URL; the validator owns
	// the user-facing message
	_ = c.ShouldBindJSON(&req)

	session, err := h.svc.CreateSession(c.Request.Context(), req.URL)
	if err != nil {
		if core.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"token":      session.Token,
		"url":        session.URL,
		"qr_payload": h.svc.QRPayload(session.Token),
		"expires_in": h.svc.ExpiresIn(session, time.Now()),
	})
}

// ConfirmSession handles POST /api/confirm-session. The token comes from
// the JSON body or the query string, so the qr payload callback works with
// an empty body. Whoever holds the token may confirm; the confirmer's
// identity is not verified.
func (h *VerifyHandlers) ConfirmSession(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	_ = c.ShouldBindJSON(&req)
	token := req.Token
	if token == "" {
		token = c.Query("token")
	}

	result, err := h.svc.ConfirmSession(c.Request.Context(), token)
	if err != nil {
		var conflict *core.ConflictError
		switch {
		case errors.Is(err, core.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found", "status": "not_found"})
		case errors.As(err, &conflict):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error(), "status": string(conflict.Status)})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		}
		return
	}

	session := result.Session
	body := gin.H{
		"ok":              true,
		"token":           session.Token,
		"url":             session.URL,
		"status":          string(session.Status),
		"verdict":         session.Verdict,
		"verdict_reason":  session.VerdictReason,
		"tls_ok":          result.Probe.OKBool(),
		"domain":          result.Meta.Domain,
		"is_gov_pl":       result.Meta.IsGovZone,
		"uses_https":      result.Meta.UsesHTTPS,
		"in_trusted_list": result.Meta.InTrustedList,
	}
	if result.Probe.Status == core.TLSOK {
		body["http_status"] = result.Probe.HTTPStatus
	}
	if result.Probe.Message != "" {
		body["tls_error"] = result.Probe.Message
	}

	c.JSON(http.StatusOK, body)
}

// SessionStatus handles GET /api/session-status?token=
func (h *VerifyHandlers) SessionStatus(c *gin.Context) {
	session, err := h.svc.SessionStatus(c.Request.Context(), c.Query("token"))
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found", "status": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"token":          session.Token,
		"url":            session.URL,
		"status":         string(session.Status),
		"verdict":        session.Verdict,
		"verdict_reason": session.VerdictReason,
		"expires_in":     h.svc.ExpiresIn(session, time.Now()),
	})
}
