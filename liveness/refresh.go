package liveness

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/agentconsole/go-session-keeper/internal/config"
	"github.com/agentconsole/go-session-keeper/sessions"
)

// TriggerCause identifies what prompted a refresh attempt.
type TriggerCause string

const (
	TriggerInterval      TriggerCause = "interval"
	TriggerFocusRegained TriggerCause = "focus-regained"
)

// Coordinator decides when to attempt a session refresh and guarantees no
// two refreshes overlap. Attempts are triggered periodically while the
// session is authenticated and once per regained focus; a trigger arriving
// while an attempt is outstanding is logged and dropped, never queued.
type Coordinator struct {
	runtime    sessions.Runtime
	navigator  Navigator
	interval   time.Duration
	signInPath string
	onUpdated  func(*sessions.Session)

	inFlight atomic.Bool
}

// CoordinatorOption defines a function type to modify the Coordinator instance.
type CoordinatorOption func(*Coordinator)

// WithInterval overrides the configured refresh interval (primarily for testing).
func WithInterval(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.interval = d
	}
}

// WithOnUpdated sets a callback invoked with the new session after every
// successful refresh.
func WithOnUpdated(fn func(*sessions.Session)) CoordinatorOption {
	return func(c *Coordinator) {
		c.onUpdated = fn
	}
}

// NewCoordinator initializes a new Coordinator with required dependencies.
func NewCoordinator(
	cfg config.SessionConfig,
	runtime sessions.Runtime,
	navigator Navigator,
	options ...CoordinatorOption,
) (*Coordinator, error) {
	if runtime == nil {
		return nil, errors.New("[NewCoordinator] runtime is required")
	}
	if navigator == nil {
		return nil, errors.New("[NewCoordinator] navigator is required")
	}

	c := &Coordinator{
		runtime:    runtime,
		navigator:  navigator,
		interval:   cfg.GetTokenRefreshInterval(),
		signInPath: cfg.GetSignInPath(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// CombinedStatus folds the in-flight latch into the runtime status: an
// authenticated session with a refresh outstanding reports StatusUpdating.
func (c *Coordinator) CombinedStatus() sessions.Status {
	status := c.runtime.Status()
	if status == sessions.StatusAuthenticated && c.inFlight.Load() {
		return sessions.StatusUpdating
	}
	return status
}

// Run drives the periodic refresh loop until ctx is cancelled. The timer
// re-arms only after the previous attempt resolves, so a slow refresh never
// stacks a second periodic attempt behind it.
func (c *Coordinator) Run(ctx context.Context) {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if c.CombinedStatus() == sessions.StatusAuthenticated {
				c.TryRefresh(ctx, TriggerInterval)
			}
			timer.Reset(c.interval)
		}
	}
}

// TryRefresh attempts a session refresh now. At most one attempt runs at a
// time: if another attempt holds the latch the trigger is dropped with a
// warning. A refresh failure is fatal for the session — the coordinator
// performs a single replace-redirect to the sign-in path and does not retry;
// later triggers attempt again only once the runtime is authenticated again.
func (c *Coordinator) TryRefresh(ctx context.Context, cause TriggerCause) {
	if c.runtime.Status() != sessions.StatusAuthenticated {
		return
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		log.Warn().Str("cause", string(cause)).Msg("Session refresh already in flight, dropping trigger")
		return
	}
	defer c.inFlight.Store(false)

	result, err := c.runtime.Update(ctx, sessions.UpdateIntent{Refresh: true})
	if err == nil {
		err = result.Err
	}
	if err != nil {
		log.Err(err).Str("cause", string(cause)).Msg("Session refresh failed, redirecting to sign-in")
		c.navigator.Replace(c.signInPath)
		return
	}

	log.Debug().Str("cause", string(cause)).Msg("Session refreshed")
	if c.onUpdated != nil {
		c.onUpdated(result.Session)
	}
}
