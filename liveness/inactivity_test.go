package liveness_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentconsole/go-session-keeper/internal/utils"
	"github.com/agentconsole/go-session-keeper/liveness"
	"github.com/agentconsole/go-session-keeper/sessions"
)

type signOutRecorder struct {
	calls int32
}

func (r *signOutRecorder) signOut() {
	atomic.AddInt32(&r.calls, 1)
}

func (r *signOutRecorder) count() int32 {
	return atomic.LoadInt32(&r.calls)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond())
}

func TestGuardSignsOutAtDeadlineNotBefore(t *testing.T) {
	rec := &signOutRecorder{}
	g, err := liveness.NewGuard(stubConfig{fallback: time.Hour}, rec.signOut)
	require.NoError(t, err)
	defer g.Close()

	g.SessionChanged(&sessions.Session{
		ID:        "sess-1",
		ExpiresAt: utils.Ptr(time.Now().Add(80 * time.Millisecond)),
	})
	require.Equal(t, liveness.GuardArmed, g.State())

	time.Sleep(40 * time.Millisecond)
	require.Zero(t, rec.count())

	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
	require.Equal(t, liveness.GuardExpired, g.State())
}

func TestGuardSignsOutSynchronouslyWhenAlreadyExpired(t *testing.T) {
	rec := &signOutRecorder{}
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	g, err := liveness.NewGuard(stubConfig{fallback: time.Hour}, rec.signOut,
		liveness.WithNowTime(func() time.Time { return now }),
	)
	require.NoError(t, err)
	defer g.Close()

	g.SessionChanged(&sessions.Session{
		ID:        "sess-1",
		ExpiresAt: utils.Ptr(now.Add(-time.Minute)),
	})

	// Sign-out happened within the SessionChanged call itself.
	require.Equal(t, int32(1), rec.count())
	require.Equal(t, liveness.GuardExpired, g.State())
}

func TestGuardDoesNothingWithoutASession(t *testing.T) {
	rec := &signOutRecorder{}
	g, err := liveness.NewGuard(stubConfig{fallback: 30 * time.Millisecond}, rec.signOut)
	require.NoError(t, err)
	defer g.Close()

	g.SessionChanged(nil)
	require.Equal(t, liveness.GuardIdle, g.State())

	time.Sleep(80 * time.Millisecond)
	require.Zero(t, rec.count())
}

func TestGuardUsesFallbackWhenExpiryAbsent(t *testing.T) {
	rec := &signOutRecorder{}
	g, err := liveness.NewGuard(stubConfig{fallback: 60 * time.Millisecond}, rec.signOut)
	require.NoError(t, err)
	defer g.Close()

	g.SessionChanged(&sessions.Session{ID: "sess-1"})
	require.Equal(t, liveness.GuardArmed, g.State())

	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
}

func TestGuardRearmsOnSessionReplacement(t *testing.T) {
	rec := &signOutRecorder{}
	g, err := liveness.NewGuard(stubConfig{fallback: time.Hour}, rec.signOut)
	require.NoError(t, err)
	defer g.Close()

	g.SessionChanged(&sessions.Session{
		ID:        "sess-1",
		ExpiresAt: utils.Ptr(time.Now().Add(60 * time.Millisecond)),
	})
	// Replacing the session cancels the first timer.
	g.SessionChanged(&sessions.Session{
		ID:        "sess-1",
		ExpiresAt: utils.Ptr(time.Now().Add(250 * time.Millisecond)),
	})

	time.Sleep(120 * time.Millisecond)
	require.Zero(t, rec.count(), "first deadline should have been cancelled")

	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
}

func TestGuardCloseCancelsPendingTimer(t *testing.T) {
	rec := &signOutRecorder{}
	g, err := liveness.NewGuard(stubConfig{fallback: time.Hour}, rec.signOut)
	require.NoError(t, err)

	g.SessionChanged(&sessions.Session{
		ID:        "sess-1",
		ExpiresAt: utils.Ptr(time.Now().Add(50 * time.Millisecond)),
	})
	g.Close()
	require.Equal(t, liveness.GuardIdle, g.State())

	time.Sleep(120 * time.Millisecond)
	require.Zero(t, rec.count())
}

func TestGuardExpiredIsTerminalUntilNewSession(t *testing.T) {
	rec := &signOutRecorder{}
	g, err := liveness.NewGuard(stubConfig{fallback: time.Hour}, rec.signOut)
	require.NoError(t, err)
	defer g.Close()

	g.SessionChanged(&sessions.Session{
		ID:        "sess-1",
		ExpiresAt: utils.Ptr(time.Now().Add(-time.Second)),
	})
	require.Equal(t, int32(1), rec.count())

	// A new session restarts the lifecycle.
	g.SessionChanged(&sessions.Session{
		ID:        "sess-2",
		ExpiresAt: utils.Ptr(time.Now().Add(time.Hour)),
	})
	require.Equal(t, liveness.GuardArmed, g.State())
	require.Equal(t, int32(1), rec.count())
}
