package runtimefakes

import (
	"context"
	"sync"

	"github.com/agentconsole/go-session-keeper/sessions"
)

var _ sessions.Runtime = (*FakeRuntime)(nil)

// FakeRuntime is an in-memory session runtime for tests. Update behavior can
// be overridden per test via UpdateFunc; the default echoes the current
// session back.
type FakeRuntime struct {
	lock    sync.Mutex
	session *sessions.Session
	status  sessions.Status

	UpdateFunc func(ctx context.Context, intent sessions.UpdateIntent) (sessions.UpdateResult, error)

	updateCalls  int
	signOutCalls int
}

func NewFakeRuntime() *FakeRuntime {
	return &FakeRuntime{status: sessions.StatusUnauthenticated}
}

// SetSession installs a session and status, as the real runtime does after a
// completed sign-in flow.
func (r *FakeRuntime) SetSession(sess *sessions.Session, status sessions.Status) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.session = sess
	r.status = status
}

func (r *FakeRuntime) Session() *sessions.Session {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.session
}

func (r *FakeRuntime) Status() sessions.Status {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.status
}

func (r *FakeRuntime) Update(ctx context.Context, intent sessions.UpdateIntent) (sessions.UpdateResult, error) {
	r.lock.Lock()
	r.updateCalls++
	fn := r.UpdateFunc
	current := r.session
	r.lock.Unlock()

	if fn != nil {
		return fn(ctx, intent)
	}
	return sessions.UpdateResult{Session: current}, nil
}

func (r *FakeRuntime) SignOut(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.signOutCalls++
	r.session = nil
	r.status = sessions.StatusUnauthenticated
	return nil
}

// UpdateCalls returns how many times Update has been invoked.
func (r *FakeRuntime) UpdateCalls() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.updateCalls
}

// SignOutCalls returns how many times SignOut has been invoked.
func (r *FakeRuntime) SignOutCalls() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.signOutCalls
}
