// Package notify delivers the toast messages that report modal outcomes.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/vitrine/pkg/logging"
)

const (
	// ToastDisplay is how long a toast stays fully visible.
	ToastDisplay = 2200 * time.Millisecond
	// ToastFade is the fade-out duration after ToastDisplay.
	ToastFade = 400 * time.Millisecond
)

// Notifier reports a human-readable outcome to the visitor.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, message string) error

func (f Func) Notify(ctx context.Context, message string) error { return f(ctx, message) }

// Toast is a transient notification as delivered to the page.
type Toast struct {
	Message   string    `json:"message"`
	DisplayMS int64     `json:"display_ms"`
	FadeMS    int64     `json:"fade_ms"`
	At        time.Time `json:"at"`
}

// NewToast stamps message with the default display timing.
func NewToast(message string, at time.Time) Toast {
	return Toast{
		Message:   message,
		DisplayMS: ToastDisplay.Milliseconds(),
		FadeMS:    ToastFade.Milliseconds(),
		At:        at.UTC(),
	}
}

// LogNotifier writes every notification to the structured log.
type LogNotifier struct {
	logger *logging.Logger
	fields []any
}

// NewLogNotifier returns a notifier that logs at info level with fields attached.
func NewLogNotifier(logger *logging.Logger, fields ...any) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger, fields: fields}
}

func (n *LogNotifier) Notify(ctx context.Context, message string) error {
	args := append([]any{"message", message}, n.fields...)
	n.logger.InfoContext(ctx, "toast", args...)
	return nil
}

// Multi fans a notification out to every notifier, joining their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Notify(_ context.Context, message string) error {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}
