package liveness_test

import (
	"sync"
	"time"
)

// stubConfig satisfies config.SessionConfig with test-sized timings.
type stubConfig struct {
	interval time.Duration
	fallback time.Duration
	signIn   string
}

func (c stubConfig) GetTokenRefreshInterval() time.Duration {
	return c.interval
}

func (c stubConfig) GetFallbackInactivityTimeout() time.Duration {
	return c.fallback
}

func (c stubConfig) GetSignInPath() string {
	if c.signIn == "" {
		return "/auth/signin"
	}
	return c.signIn
}

// fakeNavigator records replace-redirects.
type fakeNavigator struct {
	lock  sync.Mutex
	paths []string
}

func (n *fakeNavigator) Replace(path string) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.paths = append(n.paths, path)
}

func (n *fakeNavigator) replaceCalls() []string {
	n.lock.Lock()
	defer n.lock.Unlock()

	return append([]string(nil), n.paths...)
}
