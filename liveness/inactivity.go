package liveness

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/agentconsole/go-session-keeper/internal/config"
	"github.com/agentconsole/go-session-keeper/internal/utils"
	"github.com/agentconsole/go-session-keeper/sessions"
)

// GuardState tracks where the guard is in a session's lifetime.
type GuardState int

const (
	// GuardIdle indicates no session is being watched.
	GuardIdle GuardState = iota
	// GuardArmed indicates a sign-out timer is pending.
	GuardArmed
	// GuardExpired indicates sign-out has been invoked. Terminal for the
	// session instance; a new session restarts the guard.
	GuardExpired
)

// String returns a string representation of the GuardState.
func (s GuardState) String() string {
	switch s {
	case GuardIdle:
		return "idle"
	case GuardArmed:
		return "armed"
	case GuardExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Guard forces sign-out when the session's lifetime is exhausted,
// independent of server-side enforcement. The deadline is the session's
// expiry when known, otherwise now plus the configured fallback timeout. Only
// one timer is ever pending: every session change cancels and re-arms it.
type Guard struct {
	fallback time.Duration
	signOut  func()
	nowTime  func() time.Time

	mu    sync.Mutex
	timer *time.Timer
	state GuardState
}

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*Guard)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GuardOption {
	return func(g *Guard) {
		g.nowTime = nowFunc
	}
}

// NewGuard initializes a new Guard. signOut is invoked at most once per
// session instance, when the deadline passes.
func NewGuard(cfg config.SessionConfig, signOut func(), options ...GuardOption) (*Guard, error) {
	if signOut == nil {
		return nil, errors.New("[NewGuard] signOut is required")
	}

	g := &Guard{
		fallback: cfg.GetFallbackInactivityTimeout(),
		signOut:  signOut,
		nowTime:  time.Now,
		state:    GuardIdle,
	}

	for _, opt := range options {
		opt(g)
	}

	return g, nil
}

// SessionChanged recomputes the sign-out deadline for a new session
// reference. A nil session disarms the guard. A session already past its
// deadline (a tab resumed after a long suspension) triggers sign-out
// synchronously, before SessionChanged returns, with no timer armed.
func (g *Guard) SessionChanged(sess *sessions.Session) {
	g.mu.Lock()
	g.stopTimerLocked()

	if sess == nil {
		g.state = GuardIdle
		g.mu.Unlock()
		return
	}

	now := g.nowTime()
	deadline := utils.Value(sess.ExpiresAt)
	if deadline.IsZero() {
		deadline = now.Add(g.fallback)
	}

	remaining := deadline.Sub(now)
	if remaining <= 0 {
		g.state = GuardExpired
		g.mu.Unlock()
		log.Info().Time("deadline", deadline).Msg("Session already past deadline, signing out")
		g.signOut()
		return
	}

	g.state = GuardArmed
	g.timer = time.AfterFunc(remaining, g.expire)
	g.mu.Unlock()

	log.Debug().Time("deadline", deadline).Dur("remaining", remaining).Msg("Inactivity deadline armed")
}

func (g *Guard) expire() {
	g.mu.Lock()
	if g.state != GuardArmed {
		g.mu.Unlock()
		return
	}
	g.state = GuardExpired
	g.timer = nil
	g.mu.Unlock()

	log.Info().Msg("Inactivity deadline reached, signing out")
	g.signOut()
}

// State returns the current guard state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

// Close cancels any pending timer. The guard may be reused afterwards by
// feeding it a new session.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimerLocked()
	g.state = GuardIdle
}

func (g *Guard) stopTimerLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
