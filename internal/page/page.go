// Package page composes the modals of one visitor's page view and keeps the
// registry of live page sessions.
package page

import (
	"errors"
	"fmt"

	"github.com/wolfman30/vitrine/internal/appointment"
	"github.com/wolfman30/vitrine/internal/modal"
	"github.com/wolfman30/vitrine/internal/observability/metrics"
	"github.com/wolfman30/vitrine/internal/purchase"
	"github.com/wolfman30/vitrine/internal/site"
	"github.com/wolfman30/vitrine/pkg/logging"
)

var (
	ErrSessionNotFound    = errors.New("page: session not found")
	ErrNoAppointmentModal = errors.New("page: no appointment modal on this page")
	ErrNoPurchaseModal    = errors.New("page: no purchase modal on this page")
)

// Page is one visitor's view of a site page and its modals.
type Page struct {
	ID     string
	Layout site.Page

	shell       *modal.Shell
	purchase    *purchase.Controller
	appointment *appointment.Controller
	catalog     *site.Site
	productsURL string
	logger      *logging.Logger
	metrics     *metrics.ModalMetrics
}

// BuyOutcome is the result of a buy click: either the purchase modal opened
// or the visitor is sent to the products page.
type BuyOutcome struct {
	Redirect string `json:"redirect,omitempty"`
}

// ClickBuy handles a buy affordance on a product card.
func (p *Page) ClickBuy(cardID string) (BuyOutcome, error) {
	if p.purchase == nil {
		p.metrics.ObserveRedirect()
		p.logger.Info("buy clicked without purchase modal, redirecting", "to", p.productsURL)
		return BuyOutcome{Redirect: p.productsURL}, nil
	}
	card, err := p.catalog.Card(cardID)
	if err != nil {
		return BuyOutcome{}, err
	}
	product := purchase.NewProductContext(card.Title, card.Category, card.Price, card.ProjectPrice)
	if err := p.purchase.Open(product); err != nil {
		return BuyOutcome{}, err
	}
	return BuyOutcome{}, nil
}

// ClickCTA handles an appointment call-to-action.
func (p *Page) ClickCTA() error {
	if p.appointment == nil {
		return ErrNoAppointmentModal
	}
	return p.appointment.Open()
}

// Dismiss routes a close, backdrop or escape trigger to the shell.
func (p *Page) Dismiss(t modal.Trigger) []modal.ID {
	hidden := p.shell.Dismiss(t)
	if len(hidden) > 0 {
		p.metrics.ObserveDismiss(string(t.Kind))
	}
	return hidden
}

// PressKey handles a keydown on the page.
func (p *Page) PressKey(key string) []modal.ID {
	hidden := p.shell.PressKey(key)
	if len(hidden) > 0 {
		p.metrics.ObserveDismiss(string(modal.TriggerEscape))
	}
	return hidden
}

// Purchase returns the page's purchase controller.
func (p *Page) Purchase() (*purchase.Controller, error) {
	if p.purchase == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPurchaseModal, p.Layout.Name)
	}
	return p.purchase, nil
}

// Appointment returns the page's appointment controller.
func (p *Page) Appointment() (*appointment.Controller, error) {
	if p.appointment == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAppointmentModal, p.Layout.Name)
	}
	return p.appointment, nil
}

// View is the rendered page state.
type View struct {
	ID           string            `json:"id"`
	Page         string            `json:"page"`
	ScrollLocked bool              `json:"scroll_locked"`
	Visible      []modal.ID        `json:"visible"`
	Purchase     *purchase.View    `json:"purchase,omitempty"`
	Appointment  *appointment.View `json:"appointment,omitempty"`
}

func (p *Page) View() View {
	snap := p.shell.Snapshot()
	v := View{
		ID:           p.ID,
		Page:         p.Layout.Name,
		ScrollLocked: snap.ScrollLocked,
		Visible:      snap.Visible,
	}
	if p.purchase != nil {
		pv := p.purchase.View()
		v.Purchase = &pv
	}
	if p.appointment != nil {
		av := p.appointment.View()
		v.Appointment = &av
	}
	return v
}
