package liveness_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentconsole/go-session-keeper/liveness"
)

// fakeSource delivers signals synchronously to the subscribed handler.
type fakeSource struct {
	handler    func(liveness.Signal)
	subscribes int
	cancels    int
}

func (s *fakeSource) Subscribe(handler func(liveness.Signal)) func() {
	s.handler = handler
	s.subscribes++
	return func() {
		s.cancels++
	}
}

func (s *fakeSource) emit(sig liveness.Signal) {
	if s.handler != nil {
		s.handler(sig)
	}
}

func TestFocusNeverFiresBeforeFirstBlur(t *testing.T) {
	src := &fakeSource{}
	focusCalls := 0

	o := liveness.NewFocusObserver(src, liveness.WithOnFocus(func() { focusCalls++ }))
	defer o.Close()

	src.emit(liveness.SignalFocus)
	src.emit(liveness.SignalFocus)
	require.Zero(t, focusCalls)
}

func TestFocusFiresOncePerBlurFocusPair(t *testing.T) {
	src := &fakeSource{}
	focusCalls := 0
	blurCalls := 0

	o := liveness.NewFocusObserver(src,
		liveness.WithOnFocus(func() { focusCalls++ }),
		liveness.WithOnBlur(func() { blurCalls++ }),
	)
	defer o.Close()

	src.emit(liveness.SignalBlur)
	src.emit(liveness.SignalFocus)
	require.Equal(t, 1, focusCalls)
	require.Equal(t, 1, blurCalls)

	// Focus without a new blur does not fire again.
	src.emit(liveness.SignalFocus)
	require.Equal(t, 1, focusCalls)

	src.emit(liveness.SignalBlur)
	src.emit(liveness.SignalFocus)
	require.Equal(t, 2, focusCalls)
	require.Equal(t, 2, blurCalls)
}

func TestFocusObserverMissingCallbacksAreSilent(t *testing.T) {
	src := &fakeSource{}

	o := liveness.NewFocusObserver(src)
	defer o.Close()

	require.NotPanics(t, func() {
		src.emit(liveness.SignalBlur)
		src.emit(liveness.SignalFocus)
	})
}

func TestFocusObserverDisabledNeverSubscribes(t *testing.T) {
	src := &fakeSource{}
	focusCalls := 0

	o := liveness.NewFocusObserver(src,
		liveness.WithDisabled(true),
		liveness.WithOnFocus(func() { focusCalls++ }),
	)

	require.Zero(t, src.subscribes)

	o.Close() // safe on a disabled observer
	require.Zero(t, src.cancels)
	require.Zero(t, focusCalls)
}

func TestFocusObserverCloseIsIdempotent(t *testing.T) {
	src := &fakeSource{}

	o := liveness.NewFocusObserver(src)
	require.Equal(t, 1, src.subscribes)

	o.Close()
	o.Close()
	require.Equal(t, 1, src.cancels)
}
