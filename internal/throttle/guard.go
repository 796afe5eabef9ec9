// Package throttle caps how often a page session may trigger the simulated
// confirm and submit steps.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/vitrine/pkg/logging"
)

var tracer = otel.Tracer("vitrine/throttle")

// Action names a guarded step.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionSubmit  Action = "submit"
)

// Config bounds attempts per session and action.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{MaxAttempts: 10, Window: 10 * time.Minute}
}

// Result is the outcome of one check.
type Result struct {
	Allowed      bool
	Action       Action
	CurrentCount int
	MaxAllowed   int
	WindowExpiry time.Time
	Message      string
}

// Guard counts attempts in redis. A nil Guard, or one without a client,
// allows everything.
type Guard struct {
	redis  *redis.Client
	logger *logging.Logger
	config Config
	now    func() time.Time
}

func NewGuard(client *redis.Client, config Config, logger *logging.Logger) *Guard {
	if logger == nil {
		logger = logging.Default()
	}
	if config.MaxAttempts <= 0 || config.Window <= 0 {
		config = DefaultConfig()
	}
	return &Guard{redis: client, logger: logger, config: config, now: time.Now}
}

func key(sessionID string, action Action) string {
	return fmt.Sprintf("flood:%s:%s", action, sessionID)
}

// Check records an attempt and reports whether it is within the limit.
// Redis failures fail open.
func (g *Guard) Check(ctx context.Context, sessionID string, action Action) Result {
	if g == nil || g.redis == nil {
		return Result{Allowed: true, Action: action}
	}
	ctx, span := tracer.Start(ctx, "throttle.check")
	defer span.End()
	span.SetAttributes(attribute.String("throttle.action", string(action)))

	count, expiry, err := g.incrementAndGet(ctx, key(sessionID, action))
	if err != nil {
		g.logger.Error("flood check failed", "error", err, "action", action)
		return Result{Allowed: true, Action: action, Message: "flood check unavailable"}
	}

	res := Result{
		Allowed:      count <= g.config.MaxAttempts,
		Action:       action,
		CurrentCount: count,
		MaxAllowed:   g.config.MaxAttempts,
		WindowExpiry: expiry,
	}
	if !res.Allowed {
		res.Message = fmt.Sprintf("exceeded %d %s attempts in %s", g.config.MaxAttempts, action, g.config.Window)
		g.logger.Warn("flood limit exceeded",
			"session_id", sessionID,
			"action", action,
			"count", count,
			"max", g.config.MaxAttempts,
		)
		span.SetAttributes(attribute.Bool("throttle.exceeded", true))
	}
	return res
}

// Reset clears the counter of a session action.
func (g *Guard) Reset(ctx context.Context, sessionID string, action Action) error {
	if g == nil || g.redis == nil {
		return nil
	}
	return g.redis.Del(ctx, key(sessionID, action)).Err()
}

func (g *Guard) incrementAndGet(ctx context.Context, k string) (int, time.Time, error) {
	count, err := g.redis.Incr(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if count == 1 {
		g.redis.Expire(ctx, k, g.config.Window)
	}
	ttl, err := g.redis.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = g.config.Window
	}
	return int(count), g.now().Add(ttl), nil
}
