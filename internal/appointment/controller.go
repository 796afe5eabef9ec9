package appointment

import (
	"context"
	"fmt"
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

var tracer = otel.Tracer("vitrine/appointment")

const (
	SendLabel    = "Envoyer"
	SendingLabel = "Envoi..."

	// SentMessage is the toast emitted once a request is sent.
	SentMessage = "Demande de rendez-vous envoyée — je vous contacterai bientôt."
)

// State is the appointment modal's position in its lifecycle.
type State string

const (
	StateClosed      State = "closed"
	StateOpen        State = "open"
	StateInteracting State = "interacting"
	StateSending     State = "sending"
)

// Options configures a Controller.
type Options struct {
	Clock    timing.Clock
	Sleeper  timing.Sleeper
	Location *time.Location
	Delay    time.Duration
	// HasCountryCode is false for pages whose form lacks the field.
	HasCountryCode bool
	// CountryCodeInitial is the value the field resets to.
	CountryCodeInitial string
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
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Delay == 0 {
		o.Delay = 900 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
}

// Controller drives the appointment modal.
type Controller struct {
	shell     *modal.Shell
	notifier  notify.Notifier
	opts      Options
	presenter form.Presenter

	mu     sync.Mutex
	state  State
	fields *form.Form
	send   form.Button
}

func NewController(shell *modal.Shell, notifier notify.Notifier, opts Options) *Controller {
	opts.defaults()
	if notifier == nil {
		notifier = notify.NewLogNotifier(opts.Logger)
	}
	specs := make([]form.Spec, 0, 9)
	for _, name := range Fields(opts.HasCountryCode) {
		spec := form.Spec{Name: name}
		if name == FieldCountryCode {
			spec.Initial = opts.CountryCodeInitial
		}
		specs = append(specs, spec)
	}
	return &Controller{
		shell:     shell,
		notifier:  notifier,
		opts:      opts,
		presenter: form.DefaultPresenter(),
		state:     StateClosed,
		fields:    form.NewWithSpecs(specs...),
		send:      form.Button{Label: SendLabel},
	}
}

// Open shows the modal with an emptied form and the send action enabled.
// The gate is applied from the first edit on.
func (c *Controller) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phaseLocked() == StateSending {
		return ErrBusy
	}
	if err := c.shell.Show(modal.Appointment); err != nil {
		return fmt.Errorf("appointment: open: %w", err)
	}
	c.fields.Reset()
	c.send = form.Button{Label: SendLabel}
	c.state = StateOpen

	c.opts.Metrics.ObserveOpen("appointment")
	c.opts.Logger.Info("appointment modal opened")
	return nil
}

// SetField stores a value and recomputes the send gate.
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

// Submit re-checks the gate, runs the simulated submission, closes every
// modal and notifies the visitor. A started submission always completes.
func (c *Controller) Submit(ctx context.Context) (Request, error) {
	c.mu.Lock()
	switch c.phaseLocked() {
	case StateClosed:
		c.mu.Unlock()
		return Request{}, ErrModalClosed
	case StateSending:
		c.mu.Unlock()
		return Request{}, ErrBusy
	}
	if !c.recomputeLocked() {
		c.mu.Unlock()
		c.opts.Metrics.ObserveRejection("appointment", "invalid_request")
		c.opts.Logger.Debug("appointment submit rejected")
		return Request{}, ErrInvalidRequest
	}
	req := c.requestLocked()
	c.state = StateSending
	c.shell.SetBusy(modal.Appointment, true)
	c.send = form.Button{Label: SendingLabel, Disabled: true}
	c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "appointment.send")
	span.SetAttributes(
		attribute.String("appointment.date", req.Date),
		attribute.String("appointment.time", req.Time),
	)
	start := time.Now()
	timing.Uninterruptible(ctx, c.opts.Sleeper, c.opts.Delay)
	c.opts.Metrics.ObserveLatency("appointment", time.Since(start).Seconds())
	span.End()

	c.mu.Lock()
	c.send = form.Button{Label: SendLabel}
	c.state = StateClosed
	c.shell.SetBusy(modal.Appointment, false)
	c.shell.HideIdle()
	c.mu.Unlock()

	c.opts.Metrics.ObserveAppointment()
	c.opts.Logger.Info("appointment request sent", "date", req.Date, "time", req.Time)
	if err := c.notifier.Notify(context.WithoutCancel(ctx), SentMessage); err != nil {
		c.opts.Logger.Warn("appointment notification failed", "error", err)
	}
	return req, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phaseLocked()
}

func (c *Controller) phaseLocked() State {
	if c.state == StateSending {
		return StateSending
	}
	if !c.shell.Visible(modal.Appointment) {
		return StateClosed
	}
	return c.state
}

func (c *Controller) interactiveLocked() error {
	switch c.phaseLocked() {
	case StateClosed:
		return ErrModalClosed
	case StateSending:
		return ErrBusy
	default:
		return nil
	}
}

func (c *Controller) requestLocked() Request {
	return Request{
		FirstName:   c.fields.Value(FieldFirstName),
		LastName:    c.fields.Value(FieldLastName),
		Pseudonym:   c.fields.Value(FieldPseudonym),
		Email:       c.fields.Value(FieldEmail),
		CountryCode: c.fields.Value(FieldCountryCode),
		Phone:       c.fields.Value(FieldPhone),
		Message:     c.fields.Value(FieldMessage),
		Date:        c.fields.Value(FieldDate),
		Time:        c.fields.Value(FieldTime),
	}
}

// recomputeLocked marks every gated field and sets the send action.
func (c *Controller) recomputeLocked() bool {
	v := Evaluate(c.requestLocked(), c.opts.HasCountryCode, c.opts.Clock.Now(), c.opts.Location)
	marks := map[string]bool{
		FieldFirstName: v.FirstName,
		FieldLastName:  v.LastName,
		FieldEmail:     v.Email,
		FieldPhone:     v.Phone,
		FieldMessage:   v.Message,
		FieldDate:      v.DateTime,
		FieldTime:      v.DateTime,
	}
	if c.opts.HasCountryCode {
		marks[FieldCountryCode] = v.CountryCode
	}
	for name, ok := range marks {
		field, _ := c.fields.Field(name)
		c.presenter.Apply(field, ok)
	}
	c.send.Disabled = !v.OK()
	return v.OK()
}

// View is the rendered state of the appointment modal.
type View struct {
	State  State            `json:"state"`
	Fields []form.FieldView `json:"fields,omitempty"`
	Send   form.Button      `json:"send"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.phaseLocked()
	if state == StateClosed {
		return View{State: state, Send: form.Button{Label: SendLabel}}
	}
	return View{State: state, Fields: c.fields.Views(), Send: c.send}
}
