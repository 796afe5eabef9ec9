package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/vitrine/internal/appointment"
	"github.com/wolfman30/vitrine/internal/form"
	"github.com/wolfman30/vitrine/internal/modal"
	"github.com/wolfman30/vitrine/internal/page"
	"github.com/wolfman30/vitrine/internal/purchase"
	"github.com/wolfman30/vitrine/internal/site"
	"github.com/wolfman30/vitrine/internal/validate"
)

const maxBodyBytes = 64 << 10

var errBadBody = errors.New("invalid request body")

type errorResponse struct {
	Error string `json:"error"`
	Alert string `json:"alert,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadBody),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, purchase.ErrUnknownLicense),
		errors.Is(err, purchase.ErrUnknownMethod):
		return http.StatusBadRequest
	case errors.Is(err, page.ErrSessionNotFound),
		errors.Is(err, site.ErrPageNotFound),
		errors.Is(err, site.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, purchase.ErrInvalidDetails),
		errors.Is(err, appointment.ErrInvalidRequest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, purchase.ErrModalClosed),
		errors.Is(err, purchase.ErrBusy),
		errors.Is(err, purchase.ErrNoLicense),
		errors.Is(err, purchase.ErrNoPaymentMethod),
		errors.Is(err, appointment.ErrModalClosed),
		errors.Is(err, appointment.ErrBusy),
		errors.Is(err, page.ErrNoAppointmentModal),
		errors.Is(err, page.ErrNoPurchaseModal),
		errors.Is(err, modal.ErrUnknownModal):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Alert: purchase.Alert(err)})
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func decodeJSON(r *http.Request, v *validator.Validate, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if err := v.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", errBadBody, validate.Describe(err))
	}
	return nil
}
