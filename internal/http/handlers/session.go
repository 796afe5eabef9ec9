package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/vitrine/internal/appointment"
	"github.com/wolfman30/vitrine/internal/modal"
	"github.com/wolfman30/vitrine/internal/notify"
	"github.com/wolfman30/vitrine/internal/page"
	"github.com/wolfman30/vitrine/internal/purchase"
	"github.com/wolfman30/vitrine/internal/throttle"
	"github.com/wolfman30/vitrine/internal/validate"
	"github.com/wolfman30/vitrine/pkg/logging"
)

// ToastStream serves a session's toasts.
type ToastStream interface {
	ServeSession(w http.ResponseWriter, r *http.Request, sessionID string)
	Recent(sessionID string) []notify.Toast
}

// SessionHandler exposes page sessions: every visitor event on the page is
// one request against the session.
type SessionHandler struct {
	registry *page.Registry
	guard    *throttle.Guard
	toasts   ToastStream
	validate *validator.Validate
	logger   *logging.Logger
}

// NewSessionHandler wires the session endpoints. guard and toasts may be nil.
func NewSessionHandler(registry *page.Registry, guard *throttle.Guard, toasts ToastStream, logger *logging.Logger) *SessionHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionHandler{
		registry: registry,
		guard:    guard,
		toasts:   toasts,
		validate: validate.NewRequestValidator(
			validate.Enum{Tag: "license_type", Values: []string{string(purchase.LicenseCopy), string(purchase.LicenseProject)}},
			validate.Enum{Tag: "payment_method", Values: []string{string(purchase.MethodOrange), string(purchase.MethodWave), string(purchase.MethodCard)}},
			validate.Enum{Tag: "dismiss_trigger", Values: []string{string(modal.TriggerClose), string(modal.TriggerBackdrop)}},
		),
		logger: logger.Component("sessions"),
	}
}

type createSessionRequest struct {
	Page string `json:"page" validate:"required,max=64"`
}

type buyRequest struct {
	CardID string `json:"card_id" validate:"required,max=128"`
}

type dismissRequest struct {
	Trigger     string `json:"trigger" validate:"required,dismiss_trigger"`
	InsidePanel bool   `json:"inside_panel"`
	Stop        bool   `json:"stop"`
}

type keyRequest struct {
	Key string `json:"key" validate:"required,max=32"`
}

type licenseRequest struct {
	License string `json:"license" validate:"required,license_type"`
}

type methodRequest struct {
	Method string `json:"method" validate:"required,payment_method"`
}

type fieldRequest struct {
	Value string `json:"value" validate:"max=512"`
}

type buyResponse struct {
	Redirect string     `json:"redirect,omitempty"`
	View     *page.View `json:"view,omitempty"`
}

type dismissResponse struct {
	Hidden []modal.ID `json:"hidden"`
	View   page.View  `json:"view"`
}

type confirmResponse struct {
	Receipt purchase.Receipt `json:"receipt"`
	View    page.View        `json:"view"`
}

type submitResponse struct {
	Request appointment.Request `json:"request"`
	View    page.View           `json:"view"`
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*page.Page, bool) {
	p, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return p, true
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.registry.Create(strings.TrimSpace(req.Page))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p.View())
}

// Get handles GET /sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// Buy handles POST /sessions/{id}/buy.
func (h *SessionHandler) Buy(w http.ResponseWriter, r *http.Request) {
	p, ok := h.session(w, r)
	if !ok {
		return
	}
	var req buyRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := p.ClickBuy(req.CardID)
	if err != nil {
		writeError(w, err)
		return
	}
	if out.Redirect != "" {
		writeJSON(w, http.StatusOK, buyResponse{Redirect: out.Redirect})
		return
	}
	view := p.View()
	writeJSON(w, http.StatusOK, buyResponse{View: &view})
}

// CTA handles POST /sessions/{id}/cta.
func (h *SessionHandler) CTA(w http.ResponseWriter, r *http.Request) {
	p, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := p.ClickCTA(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// Dismiss handles POST /sessions/{id}/dismiss.
func (h *SessionHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	p, ok := h.session(w, r)
	if !ok {
		return
	}
	var req dismissRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}
	hidden := p.Dismiss(modal.Trigger{
		Kind:            modal.TriggerKind(strings.ToLower(req.Trigger)),
		InsidePanel:     req.InsidePanel,
		StopPropagation: req.Stop,
	})
	writeJSON(w, http.StatusOK, dismissResponse{Hidden: nonNil(hidden), View: p.View()})
}

// Key handles POST /sessions/{id}/keys.
func (h *SessionHandler) Key(w http.ResponseWriter, r *http.Request) {
	p, ok := h.session(w, r)
	if !ok {
		return
	}
	var req keyRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}
	hidden := p.PressKey(req.Key)
	writeJSON(w, http.StatusOK, dismissResponse{Hidden: nonNil(hidden), View: p.View()})
}

func nonNil(ids []modal.ID) []modal.ID {
	if ids == nil {
		return []modal.ID{}
	}
	return ids
}

func (h *SessionHandler) purchase(w http.ResponseWriter, r *http.Request) (*page.Page, *purchase.Controller, bool) {
	p, ok := h.session(w, r)
	if !ok {
		return nil, nil, false
	}
	c, err := p.Purchase()
	if err != nil {
		writeError(w, err)
		return nil, nil, false
	}
	return p, c, true
}

// ChooseLicense handles POST /sessions/{id}/purchase/license.
func (h *SessionHandler) ChooseLicense(w http.ResponseWriter, r *http.Request) {
	p, c, ok := h.purchase(w, r)
	if !ok {
		return
	}
	var req licenseRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}
	license, err := purchase.ParseLicense(req.License)
	if err == nil {
		err = c.ChooseLicense(license)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// ChooseMethod handles POST /sessions/{id}/purchase/method. The response is
// written after the button feedback delay.
func (h *SessionHandler) ChooseMethod(w http.ResponseWriter, r *http.Request) {
	p, c, ok := h.purchase(w, r)
	if !ok {
		return
	}
	var req methodRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}
	method, err := purchase.ParseMethod(req.Method)
	if err == nil {
		err = c.ChooseMethod(r.Context(), method)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// SetPurchaseField handles PUT /sessions/{id}/purchase/fields/{field}.
func (h *SessionHandler) SetPurchaseField(w http.ResponseWriter, r *http.Request) {
	p, c, ok := h.purchase(w, r)
	if !ok {
		return
	}
	var req fieldRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := c.SetField(chi.URLParam(r, "field"), req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// Confirm handles POST /sessions/{id}/purchase/confirm.
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	p, c, ok := h.purchase(w, r)
	if !ok {
		return
	}
	if res := h.guard.Check(r.Context(), p.ID, throttle.ActionConfirm); !res.Allowed {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: res.Message})
		return
	}
	receipt, err := c.Confirm(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.clearAttempts(r.Context(), p.ID, throttle.ActionConfirm)
	writeJSON(w, http.StatusOK, confirmResponse{Receipt: receipt, View: p.View()})
}

func (h *SessionHandler) appointment(w http.ResponseWriter, r *http.Request) (*page.Page, *appointment.Controller, bool) {
	p, ok := h.session(w, r)
	if !ok {
		return nil, nil, false
	}
	c, err := p.Appointment()
	if err != nil {
		writeError(w, err)
		return nil, nil, false
	}
	return p, c, true
}

// SetAppointmentField handles PUT /sessions/{id}/appointment/fields/{field}.
func (h *SessionHandler) SetAppointmentField(w http.ResponseWriter, r *http.Request) {
	p, c, ok := h.appointment(w, r)
	if !ok {
		return
	}
	var req fieldRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := c.SetField(chi.URLParam(r, "field"), req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// Submit handles POST /sessions/{id}/appointment/submit.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, c, ok := h.appointment(w, r)
	if !ok {
		return
	}
	if res := h.guard.Check(r.Context(), p.ID, throttle.ActionSubmit); !res.Allowed {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: res.Message})
		return
	}
	req, err := c.Submit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.clearAttempts(r.Context(), p.ID, throttle.ActionSubmit)
	writeJSON(w, http.StatusOK, submitResponse{Request: req, View: p.View()})
}

// clearAttempts forgets the flood counter once an action went through, so
// only repeated failed attempts count against the session.
func (h *SessionHandler) clearAttempts(ctx context.Context, sessionID string, action throttle.Action) {
	if err := h.guard.Reset(context.WithoutCancel(ctx), sessionID, action); err != nil {
		h.logger.Warn("flood counter reset failed", "session_id", sessionID, "action", action, "error", err)
	}
}

// Toasts handles GET /sessions/{id}/toasts: a websocket stream when the
// client asks for an upgrade, the recent toasts as JSON otherwise.
func (h *SessionHandler) Toasts(w http.ResponseWriter, r *http.Request) {
	p, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.toasts == nil {
		writeJSON(w, http.StatusOK, []notify.Toast{})
		return
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		h.toasts.ServeSession(w, r, p.ID)
		return
	}
	recent := h.toasts.Recent(p.ID)
	if recent == nil {
		recent = []notify.Toast{}
	}
	writeJSON(w, http.StatusOK, recent)
}
