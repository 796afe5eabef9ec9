package purchase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/vitrine/internal/form"
	"github.com/wolfman30/vitrine/internal/modal"
	"github.com/wolfman30/vitrine/internal/notify"
	"github.com/wolfman30/vitrine/internal/observability/metrics"
	"github.com/wolfman30/vitrine/internal/timing"
	"github.com/wolfman30/vitrine/pkg/logging"
)

var tracer = otel.Tracer("vitrine/purchase")

const (
	ConfirmLabel    = "Payer"
	ProcessingLabel = "Traitement..."
)

// State is the purchase modal's position in its lifecycle.
type State string

const (
	StateClosed      State = "closed"
	StateOpen        State = "open"
	StateInteracting State = "interacting"
	StateConfirming  State = "confirming"
)

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Clock              timing.Clock
	Sleeper            timing.Sleeper
	ProcessingDelay    time.Duration
	FeedbackDelay      time.Duration
	CurrencySuffix     string
	DefaultCountryCode string
	Logger             *logging.Logger
	Metrics            *metrics.ModalMetrics
}

func (o *Options) defaults() {
	if o.Clock == nil {
		o.Clock = timing.SystemClock{}
	}
	if o.Sleeper == nil {
		o.Sleeper = timing.TimerSleeper{}
	}
	if o.ProcessingDelay == 0 {
		o.ProcessingDelay = 900 * time.Millisecond
	}
	if o.FeedbackDelay == 0 {
		o.FeedbackDelay = 240 * time.Millisecond
	}
	if o.CurrencySuffix == "" {
		o.CurrencySuffix = "€"
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
}

// Receipt describes a completed simulated payment.
type Receipt struct {
	Product string  `json:"product"`
	License License `json:"license"`
	Method  Method  `json:"method"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// Controller drives the purchase modal. Transitions are serialized; the lock
// is released while the simulated delays run.
type Controller struct {
	shell     *modal.Shell
	notifier  notify.Notifier
	opts      Options
	presenter form.Presenter

	mu       sync.Mutex
	state    State
	session  uint64
	product  ProductContext
	license  License
	selector *Selector
	fields   *form.Form
	confirm  form.Button
}

// NewController builds the controller for a page whose shell carries the
// purchase modal.
func NewController(shell *modal.Shell, notifier notify.Notifier, opts Options) *Controller {
	opts.defaults()
	if notifier == nil {
		notifier = notify.NewLogNotifier(opts.Logger)
	}
	return &Controller{
		shell:     shell,
		notifier:  notifier,
		opts:      opts,
		presenter: form.DefaultPresenter(),
		state:     StateClosed,
		selector:  NewSelector(),
		fields: form.NewWithSpecs(
			form.Spec{Name: FieldCountryCode, Initial: opts.DefaultCountryCode},
			form.Spec{Name: FieldPhoneNumber},
			form.Spec{Name: FieldCardName},
			form.Spec{Name: FieldCardNumber},
			form.Spec{Name: FieldCardExpiry},
			form.Spec{Name: FieldCardCVC},
		),
		confirm: form.Button{Label: ConfirmLabel, Disabled: true},
	}
}

// Open captures the product context and resets the whole session: selection,
// detail values, indicators and the confirm action.
func (c *Controller) Open(product ProductContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phaseLocked() == StateConfirming {
		return ErrBusy
	}
	if err := c.shell.Show(modal.Purchase); err != nil {
		return fmt.Errorf("purchase: open: %w", err)
	}

	c.session++
	c.product = product
	c.license = LicenseUnset
	c.selector.Clear()
	c.fields.Reset()
	c.confirm = form.Button{Label: ConfirmLabel, Disabled: true}
	c.state = StateOpen

	c.opts.Metrics.ObserveOpen("purchase")
	c.opts.Logger.Info("purchase modal opened",
		"product", product.Title,
		"unit_price", product.UnitPrice,
		"project_price", product.ProjectPrice,
	)
	return nil
}

// ChooseLicense records the license tier.
func (c *Controller) ChooseLicense(l License) error {
	if l != LicenseCopy && l != LicenseProject {
		return fmt.Errorf("%w: %q", ErrUnknownLicense, l)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.interactiveLocked(); err != nil {
		return err
	}
	c.license = l
	c.state = StateInteracting
	c.recomputeLocked()
	return nil
}

// ChooseMethod gives the clicked button brief feedback, then makes m the
// active payment method and reveals its detail sub-form.
func (c *Controller) ChooseMethod(ctx context.Context, m Method) error {
	if _, err := ParseMethod(string(m)); err != nil {
		return err
	}
	c.mu.Lock()
	if err := c.interactiveLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.selector.BeginFeedback(m) {
		c.mu.Unlock()
		return ErrBusy
	}
	session := c.session
	c.mu.Unlock()

	timing.Uninterruptible(ctx, c.opts.Sleeper, c.opts.FeedbackDelay)

	c.mu.Lock()
	defer c.mu.Unlock()
	if session != c.session {
		// reopened mid-feedback; Open already restored the buttons
		return nil
	}
	c.selector.EndFeedback(m)
	if c.interactiveLocked() != nil {
		return nil
	}
	c.selector.Select(m)
	c.state = StateInteracting
	c.recomputeLocked()
	return nil
}

// SetField stores a detail value and recomputes the gate.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.interactiveLocked(); err != nil {
		return err
	}
	if err := c.fields.Set(name, value); err != nil {
		return err
	}
	c.state = StateInteracting
	c.recomputeLocked()
	return nil
}

// Confirm re-validates the selection and details, runs the simulated
// payment, closes the modal and notifies the outcome. Once the simulated
// delay has started it always completes, whatever happens to ctx.
func (c *Controller) Confirm(ctx context.Context) (Receipt, error) {
	c.mu.Lock()
	switch c.phaseLocked() {
	case StateClosed:
		c.mu.Unlock()
		return Receipt{}, ErrModalClosed
	case StateConfirming:
		c.mu.Unlock()
		return Receipt{}, ErrBusy
	}

	ok := c.recomputeLocked()
	switch {
	case c.license == LicenseUnset:
		c.mu.Unlock()
		c.opts.Metrics.ObserveRejection("purchase", "no_license")
		return Receipt{}, ErrNoLicense
	case c.selector.Active() == MethodNone:
		c.mu.Unlock()
		c.opts.Metrics.ObserveRejection("purchase", "no_method")
		return Receipt{}, ErrNoPaymentMethod
	case !ok:
		c.mu.Unlock()
		c.opts.Metrics.ObserveRejection("purchase", "invalid_details")
		c.opts.Logger.Debug("purchase confirm rejected", "reason", "invalid_details")
		return Receipt{}, ErrInvalidDetails
	}

	c.state = StateConfirming
	c.shell.SetBusy(modal.Purchase, true)
	c.confirm = form.Button{Label: ProcessingLabel, Disabled: true}
	method := c.selector.Active()
	receipt := Receipt{
		Product: c.product.Title,
		License: c.license,
		Method:  method,
		Amount:  c.product.Price(c.license),
	}
	receipt.Message = fmt.Sprintf("Paiement simulé : %s — %s",
		FormatPrice(receipt.Amount, c.opts.CurrencySuffix), strings.ToUpper(string(method)))
	c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "purchase.confirm")
	span.SetAttributes(
		attribute.String("purchase.method", string(method)),
		attribute.String("purchase.license", string(receipt.License)),
		attribute.Float64("purchase.amount", receipt.Amount),
	)
	start := time.Now()
	timing.Uninterruptible(ctx, c.opts.Sleeper, c.opts.ProcessingDelay)
	c.opts.Metrics.ObserveLatency("purchase", time.Since(start).Seconds())
	span.End()

	c.mu.Lock()
	c.confirm = form.Button{Label: ConfirmLabel, Disabled: false}
	c.state = StateClosed
	c.shell.SetBusy(modal.Purchase, false)
	c.shell.Hide(modal.Purchase)
	c.mu.Unlock()

	c.opts.Metrics.ObservePayment(string(method), string(receipt.License))
	c.opts.Logger.Info("simulated payment completed",
		"product", receipt.Product,
		"method", method,
		"license", receipt.License,
		"amount", receipt.Amount,
	)
	if err := c.notifier.Notify(context.WithoutCancel(ctx), receipt.Message); err != nil {
		c.opts.Logger.Warn("purchase notification failed", "error", err)
	}
	return receipt, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phaseLocked()
}

// phaseLocked folds the shell's visibility into the state: a dismissal by
// the shell closes the session without going through the controller.
func (c *Controller) phaseLocked() State {
	if c.state == StateConfirming {
		return StateConfirming
	}
	if !c.shell.Visible(modal.Purchase) {
		return StateClosed
	}
	return c.state
}

func (c *Controller) interactiveLocked() error {
	switch c.phaseLocked() {
	case StateClosed:
		return ErrModalClosed
	case StateConfirming:
		return ErrBusy
	default:
		return nil
	}
}

// recomputeLocked refreshes the active method's field indicators and the
// confirm action, returning the gate.
func (c *Controller) recomputeLocked() bool {
	now := c.opts.Clock.Now()
	method := c.selector.Active()
	for _, chk := range requiredChecks(method, now) {
		c.presenter.Check(c.fields, chk.field, chk.valid)
	}
	ok := ConfirmGate(Selection{License: c.license, Method: method}, c.detailsLocked(), now)
	c.confirm.Disabled = !ok
	return ok
}

func (c *Controller) detailsLocked() Details {
	d := make(Details, len(DetailFields()))
	for _, name := range DetailFields() {
		d[name] = c.fields.Value(name)
	}
	return d
}

// ProductView is the product block rendered in the modal.
type ProductView struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	PriceCopy    string `json:"price_copy"`
	PriceProject string `json:"price_project"`
}

// View is the rendered state of the purchase modal.
type View struct {
	State             State            `json:"state"`
	Product           *ProductView     `json:"product,omitempty"`
	License           License          `json:"license,omitempty"`
	Method            Method           `json:"method,omitempty"`
	Methods           []MethodButton   `json:"methods,omitempty"`
	PhonePanelVisible bool             `json:"phone_panel_visible"`
	CardPanelVisible  bool             `json:"card_panel_visible"`
	Fields            []form.FieldView `json:"fields,omitempty"`
	Confirm           form.Button      `json:"confirm"`
}

// View renders the modal. A closed modal renders no session data.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.phaseLocked()
	if state == StateClosed {
		return View{State: state, Confirm: form.Button{Label: ConfirmLabel, Disabled: true}}
	}

	var fields []string
	switch {
	case c.selector.PhonePanelVisible():
		fields = []string{FieldCountryCode, FieldPhoneNumber}
	case c.selector.CardPanelVisible():
		fields = []string{FieldCardName, FieldCardNumber, FieldCardExpiry, FieldCardCVC}
	}
	view := View{
		State: state,
		Product: &ProductView{
			Title:        c.product.Title,
			Category:     c.product.Category,
			PriceCopy:    FormatPrice(c.product.UnitPrice, c.opts.CurrencySuffix),
			PriceProject: FormatPrice(c.product.ProjectPrice, c.opts.CurrencySuffix),
		},
		License:           c.license,
		Method:            c.selector.Active(),
		Methods:           c.selector.Buttons(),
		PhonePanelVisible: c.selector.PhonePanelVisible(),
		CardPanelVisible:  c.selector.CardPanelVisible(),
		Confirm:           c.confirm,
	}
	if len(fields) > 0 {
		view.Fields = c.fields.Views(fields...)
	}
	return view
}
