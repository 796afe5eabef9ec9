package page

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/vitrine/internal/appointment"
	"github.com/wolfman30/vitrine/internal/modal"
	"github.com/wolfman30/vitrine/internal/notify"
	"github.com/wolfman30/vitrine/internal/observability/metrics"
	"github.com/wolfman30/vitrine/internal/purchase"
	"github.com/wolfman30/vitrine/internal/site"
	"github.com/wolfman30/vitrine/internal/timing"
	"github.com/wolfman30/vitrine/pkg/logging"
)

// Options configures the pages a Registry builds.
type Options struct {
	ProductsURL        string
	CurrencySuffix     string
	DefaultCountryCode string
	ProcessingDelay    time.Duration
	FeedbackDelay      time.Duration
	Location           *time.Location
	TTL                time.Duration
	Clock              timing.Clock
	Sleeper            timing.Sleeper
	Logger             *logging.Logger
	Metrics            *metrics.ModalMetrics
	// Notifier returns the toast channel of a session. Nil logs toasts.
	Notifier func(sessionID string) notify.Notifier
	// OnEvict runs after an idle session is dropped.
	OnEvict func(sessionID string)
}

type entry struct {
	page     *Page
	lastSeen time.Time
}

// Registry holds the live page sessions.
type Registry struct {
	site *site.Site
	opts Options

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(s *site.Site, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Clock == nil {
		opts.Clock = timing.SystemClock{}
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	return &Registry{site: s, opts: opts, sessions: make(map[string]*entry)}
}

// Create starts a session on the named page layout.
func (r *Registry) Create(layout string) (*Page, error) {
	l, err := r.site.Page(layout)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	log := r.opts.Logger.Component("page").With("session_id", id, "page", l.Name)

	var notifier notify.Notifier
	if r.opts.Notifier != nil {
		notifier = r.opts.Notifier(id)
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}

	var ids []modal.ID
	if l.PurchaseModal {
		ids = append(ids, modal.Purchase)
	}
	if l.AppointmentModal {
		ids = append(ids, modal.Appointment)
	}
	shell := modal.NewShell(ids...)

	p := &Page{
		ID:          id,
		Layout:      l,
		shell:       shell,
		catalog:     r.site,
		productsURL: r.opts.ProductsURL,
		logger:      log,
		metrics:     r.opts.Metrics,
	}
	if l.PurchaseModal {
		p.purchase = purchase.NewController(shell, notifier, purchase.Options{
			Clock:              r.opts.Clock,
			Sleeper:            r.opts.Sleeper,
			ProcessingDelay:    r.opts.ProcessingDelay,
			FeedbackDelay:      r.opts.FeedbackDelay,
			CurrencySuffix:     r.opts.CurrencySuffix,
			DefaultCountryCode: r.opts.DefaultCountryCode,
			Logger:             log,
			Metrics:            r.opts.Metrics,
		})
	}
	if l.AppointmentModal {
		p.appointment = appointment.NewController(shell, notifier, appointment.Options{
			Clock:              r.opts.Clock,
			Sleeper:            r.opts.Sleeper,
			Location:           r.opts.Location,
			Delay:              r.opts.ProcessingDelay,
			HasCountryCode:     l.AppointmentCountryCode,
			CountryCodeInitial: r.opts.DefaultCountryCode,
			Logger:             log,
			Metrics:            r.opts.Metrics,
		})
	}

	r.mu.Lock()
	r.sessions[id] = &entry{page: p, lastSeen: r.opts.Clock.Now()}
	r.mu.Unlock()
	log.Info("page session created")
	return p, nil
}

// Get returns a live session and marks it as seen.
func (r *Registry) Get(id string) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.lastSeen = r.opts.Clock.Now()
	return e.page, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns their ids.
func (r *Registry) Sweep() []string {
	cutoff := r.opts.Clock.Now().Add(-r.opts.TTL)
	var evicted []string
	r.mu.Lock()
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted = append(evicted, id)
		}
	}
	r.mu.Unlock()

	for _, id := range evicted {
		if r.opts.OnEvict != nil {
			r.opts.OnEvict(id)
		}
	}
	if len(evicted) > 0 {
		r.opts.Logger.Debug("evicted idle page sessions", "count", len(evicted))
	}
	return evicted
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = r.opts.TTL / 2
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
