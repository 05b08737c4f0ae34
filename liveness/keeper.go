package liveness

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/agentconsole/go-session-keeper/internal/config"
	"github.com/agentconsole/go-session-keeper/sessions"
)

const signOutTimeout = 10 * time.Second

// Keeper owns the liveness components for a signed-in session: the focus
// observer feeds the refresh coordinator, and the inactivity guard reads the
// same session the coordinator refreshes. After every successful refresh the
// guard is re-armed with the refreshed session's expiry, so the refresh loop
// and the sign-out deadline cannot drift apart: a refresh that extends the
// session also extends the deadline.
type Keeper struct {
	runtime     sessions.Runtime
	coordinator *Coordinator
	guard       *Guard
	observer    *FocusObserver
}

// KeeperOption defines a function type to modify the Keeper instance.
type KeeperOption func(*keeperSettings)

type keeperSettings struct {
	coordinatorOptions []CoordinatorOption
	guardOptions       []GuardOption
	observerOptions    []FocusObserverOption
}

// WithCoordinatorOptions forwards options to the underlying Coordinator.
func WithCoordinatorOptions(options ...CoordinatorOption) KeeperOption {
	return func(s *keeperSettings) {
		s.coordinatorOptions = append(s.coordinatorOptions, options...)
	}
}

// WithGuardOptions forwards options to the underlying Guard.
func WithGuardOptions(options ...GuardOption) KeeperOption {
	return func(s *keeperSettings) {
		s.guardOptions = append(s.guardOptions, options...)
	}
}

// WithObserverOptions forwards options to the underlying FocusObserver.
func WithObserverOptions(options ...FocusObserverOption) KeeperOption {
	return func(s *keeperSettings) {
		s.observerOptions = append(s.observerOptions, options...)
	}
}

// NewKeeper wires observer, coordinator, and guard together. The guard is
// armed immediately for whatever session the runtime currently holds; if
// that session is already past its deadline, sign-out happens during
// construction.
func NewKeeper(
	cfg config.SessionConfig,
	runtime sessions.Runtime,
	navigator Navigator,
	src Source,
	options ...KeeperOption,
) (*Keeper, error) {
	if runtime == nil {
		return nil, errors.New("[NewKeeper] runtime is required")
	}
	if src == nil {
		return nil, errors.New("[NewKeeper] signal source is required")
	}

	settings := &keeperSettings{}
	for _, opt := range options {
		opt(settings)
	}

	k := &Keeper{runtime: runtime}

	guard, err := NewGuard(cfg, k.signOut, settings.guardOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "[NewKeeper] failed to create guard")
	}
	k.guard = guard

	coordinatorOptions := append([]CoordinatorOption{WithOnUpdated(guard.SessionChanged)}, settings.coordinatorOptions...)
	coordinator, err := NewCoordinator(cfg, runtime, navigator, coordinatorOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "[NewKeeper] failed to create coordinator")
	}
	k.coordinator = coordinator

	observerOptions := append([]FocusObserverOption{
		WithOnFocus(func() {
			coordinator.TryRefresh(context.Background(), TriggerFocusRegained)
		}),
	}, settings.observerOptions...)
	k.observer = NewFocusObserver(src, observerOptions...)

	guard.SessionChanged(runtime.Session())

	return k, nil
}

// Run drives the periodic refresh loop until ctx is cancelled.
func (k *Keeper) Run(ctx context.Context) {
	k.coordinator.Run(ctx)
}

// SessionChanged notifies the keeper of a session reference change made
// outside the refresh loop (sign-in, sign-out, external update).
func (k *Keeper) SessionChanged(sess *sessions.Session) {
	k.guard.SessionChanged(sess)
}

// GuardState reports where the inactivity guard is in the session lifetime.
func (k *Keeper) GuardState() GuardState {
	return k.guard.State()
}

// Close tears down the focus subscription and any pending timers.
func (k *Keeper) Close() {
	k.observer.Close()
	k.guard.Close()
}

func (k *Keeper) signOut() {
	ctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
	defer cancel()

	if err := k.runtime.SignOut(ctx); err != nil {
		log.Err(err).Msg("Sign-out failed")
	}
}
