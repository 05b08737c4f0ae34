package liveness

import (
	"sync"
)

// FocusObserver watches the host's blur and focus signals and reports when
// focus is regained. The first focus state (the page loads focused) never
// fires OnFocus; only a focus that follows at least one blur does.
type FocusObserver struct {
	onFocus  func()
	onBlur   func()
	disabled bool

	mu      sync.Mutex
	blurred bool
	cancel  func()
}

// FocusObserverOption defines a function type to modify the FocusObserver instance.
type FocusObserverOption func(*FocusObserver)

// WithOnFocus sets the callback invoked when focus is regained after a blur.
func WithOnFocus(fn func()) FocusObserverOption {
	return func(o *FocusObserver) {
		o.onFocus = fn
	}
}

// WithOnBlur sets the callback invoked when focus is lost.
func WithOnBlur(fn func()) FocusObserverOption {
	return func(o *FocusObserver) {
		o.onBlur = fn
	}
}

// WithDisabled disables the observer entirely: it never subscribes to the
// source and all signals are ignored.
func WithDisabled(disabled bool) FocusObserverOption {
	return func(o *FocusObserver) {
		o.disabled = disabled
	}
}

// NewFocusObserver subscribes to the source and begins observing. Missing
// callbacks are silent no-ops. Close releases the subscription.
func NewFocusObserver(src Source, options ...FocusObserverOption) *FocusObserver {
	o := &FocusObserver{}
	for _, opt := range options {
		opt(o)
	}
	if o.disabled {
		return o
	}
	o.cancel = src.Subscribe(o.handle)
	return o
}

func (o *FocusObserver) handle(sig Signal) {
	o.mu.Lock()
	switch sig {
	case SignalBlur:
		o.blurred = true
		cb := o.onBlur
		o.mu.Unlock()
		if cb != nil {
			cb()
		}
	case SignalFocus:
		if !o.blurred {
			// Initial focus, nothing was lost.
			o.mu.Unlock()
			return
		}
		o.blurred = false
		cb := o.onFocus
		o.mu.Unlock()
		if cb != nil {
			cb()
		}
	default:
		o.mu.Unlock()
	}
}

// Close unsubscribes from the source. Safe to call multiple times and on a
// disabled observer.
func (o *FocusObserver) Close() {
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
