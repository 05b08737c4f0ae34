package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/agentconsole/go-session-keeper/liveness"
)

// unixSignalSource adapts OS signals to liveness signals for the daemon:
// SIGUSR1 reports the host lost attention, SIGUSR2 that it regained it.
type unixSignalSource struct{}

func newUnixSignalSource() liveness.Source {
	return unixSignalSource{}
}

func (unixSignalSource) Subscribe(handler func(liveness.Signal)) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-ch:
				if sig == syscall.SIGUSR1 {
					handler(liveness.SignalBlur)
				} else {
					handler(liveness.SignalFocus)
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
