// Package liveness keeps an authenticated session alive and enforces its
// lifetime: a focus observer feeding a refresh coordinator, and an inactivity
// guard that forces sign-out when the session's deadline passes.
package liveness

// Signal is a host-liveness notification. The host environment reports when
// the user's attention leaves (blur) and returns (focus); a browser tab, a
// terminal, or a test harness can all act as the source.
type Signal int

const (
	// SignalBlur indicates the host lost the user's attention.
	SignalBlur Signal = iota
	// SignalFocus indicates the host regained the user's attention.
	SignalFocus
)

// String returns a string representation of the Signal.
func (s Signal) String() string {
	switch s {
	case SignalBlur:
		return "blur"
	case SignalFocus:
		return "focus"
	default:
		return "unknown"
	}
}

// Source exposes the host environment's liveness notifications. Subscribe
// registers a handler and returns a cancel function that unsubscribes it;
// cancel must be safe to call more than once.
type Source interface {
	Subscribe(handler func(Signal)) (cancel func())
}

// Navigator performs a history-replacing redirect, so a dead session is not
// left reachable in navigation history.
type Navigator interface {
	Replace(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Replace(path string) {
	f(path)
}
