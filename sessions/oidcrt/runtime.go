// Package oidcrt implements the session runtime against an OpenID Connect
// provider, using the authorization-code flow for sign-in and the standard
// refresh-token grant for updates.
package oidcrt

import (
	"context"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/agentconsole/go-session-keeper/internal/config"
	errs "github.com/agentconsole/go-session-keeper/internal/errors"
	"github.com/agentconsole/go-session-keeper/internal/utils"
	"github.com/agentconsole/go-session-keeper/sessions"
)

var _ sessions.Runtime = (*Runtime)(nil)

// Runtime holds the credential state for one signed-in user. It is the only
// writer of that state; liveness components read it and request updates.
type Runtime struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier

	lock    sync.RWMutex
	session *sessions.Session
	status  sessions.Status
	nowTime func() time.Time
}

// Option defines a function type to modify the Runtime instance.
type Option func(*Runtime)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *Runtime) {
		r.nowTime = nowFunc
	}
}

// New discovers the provider's endpoints and returns an unauthenticated
// runtime. Sign-in happens via AuthCodeURL and Exchange.
func New(ctx context.Context, cfg config.OidcConfig, options ...Option) (*Runtime, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetIssuerURL())
	if err != nil {
		return nil, errors.Wrap(err, "[oidcrt.New] failed to create OIDC provider")
	}

	r := &Runtime{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.GetRedirectURL(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess},
		},
		verifier: provider.Verifier(&oidc.Config{
			ClientID: cfg.GetClientID(),
		}),
		status:  sessions.StatusUnauthenticated,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(r)
	}

	return r, nil
}

// AuthCodeURL returns the provider sign-in URL for a new authorization flow.
func (r *Runtime) AuthCodeURL(state string) string {
	return r.oauthConfig.AuthCodeURL(state)
}

// Exchange completes the authorization-code flow and installs the resulting
// session.
func (r *Runtime) Exchange(ctx context.Context, code string) (*sessions.Session, error) {
	r.setStatus(sessions.StatusLoading)

	oauth2Token, err := r.oauthConfig.Exchange(ctx, code)
	if err != nil {
		r.clearSession()
		return nil, errors.Wrap(err, "[Runtime.Exchange] token exchange failed")
	}

	sess, err := r.installToken(ctx, oauth2Token)
	if err != nil {
		r.clearSession()
		return nil, errors.Wrap(err, "[Runtime.Exchange] failed to install token")
	}
	return sess, nil
}

// Session implements sessions.Runtime.
func (r *Runtime) Session() *sessions.Session {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.session
}

// Status implements sessions.Runtime.
func (r *Runtime) Status() sessions.Status {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.status
}

// Update implements sessions.Runtime. A refresh intent re-acquires tokens
// with the stored refresh material; on failure the session is cleared so the
// caller's redirect to sign-in matches the runtime's state.
func (r *Runtime) Update(ctx context.Context, intent sessions.UpdateIntent) (sessions.UpdateResult, error) {
	if !intent.Refresh {
		return sessions.UpdateResult{Session: r.Session()}, nil
	}

	r.lock.RLock()
	current := r.session
	r.lock.RUnlock()

	if current == nil {
		return sessions.UpdateResult{Err: errs.ErrNoSession}, nil
	}
	if current.RefreshToken == "" {
		return sessions.UpdateResult{Err: errs.ErrNoRefreshToken}, nil
	}

	// Present an already-expired token so the source performs a refresh
	// rather than returning the cached access token.
	stale := &oauth2.Token{
		RefreshToken: current.RefreshToken,
		Expiry:       r.nowTime().Add(-time.Minute),
	}
	oauth2Token, err := r.oauthConfig.TokenSource(ctx, stale).Token()
	if err != nil {
		r.clearSession()
		return sessions.UpdateResult{}, errors.Wrap(err, "[Runtime.Update] token refresh failed")
	}

	sess, err := r.installToken(ctx, oauth2Token)
	if err != nil {
		r.clearSession()
		return sessions.UpdateResult{}, errors.Wrap(err, "[Runtime.Update] failed to install refreshed token")
	}

	log.Debug().Str("session", sess.ID).Time("expires", utils.Value(sess.ExpiresAt)).Msg("Session tokens refreshed")
	return sessions.UpdateResult{Session: sess}, nil
}

// SignOut implements sessions.Runtime.
func (r *Runtime) SignOut(ctx context.Context) error {
	r.lock.Lock()
	sess := r.session
	r.session = nil
	r.status = sessions.StatusUnauthenticated
	r.lock.Unlock()

	if sess != nil {
		log.Info().Str("session", sess.ID).Msg("Signed out")
	}
	return nil
}

// installToken verifies the ID token (when present), extracts identity and
// expiry, and installs the session. The session ID is stable across
// refreshes; a fresh sign-in gets a new one.
func (r *Runtime) installToken(ctx context.Context, oauth2Token *oauth2.Token) (*sessions.Session, error) {
	var userEmail string
	rawIDToken, _ := oauth2Token.Extra("id_token").(string)
	if rawIDToken != "" {
		idToken, err := r.verifier.Verify(ctx, rawIDToken)
		if err != nil {
			return nil, errors.Wrap(err, "[Runtime.installToken] ID token verification failed")
		}

		var claims struct {
			Email string `json:"email"`
		}
		if err := idToken.Claims(&claims); err != nil {
			return nil, errors.Wrap(err, "[Runtime.installToken] failed to extract claims")
		}
		userEmail = claims.Email
	}

	expiry := oauth2Token.Expiry
	if expiry.IsZero() {
		expiry = TokenExpiry(oauth2Token.AccessToken)
	}

	sess := &sessions.Session{
		ID:           uuid.New().String(),
		UserEmail:    userEmail,
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		IDToken:      rawIDToken,
		CreatedAt:    r.nowTime(),
	}
	if !expiry.IsZero() {
		sess.ExpiresAt = utils.Ptr(expiry)
	}

	r.lock.Lock()
	if r.session != nil {
		sess.ID = r.session.ID
		if sess.UserEmail == "" {
			sess.UserEmail = r.session.UserEmail
		}
		// Providers may omit the refresh token on refresh responses.
		if sess.RefreshToken == "" {
			sess.RefreshToken = r.session.RefreshToken
		}
	}
	r.session = sess
	r.status = sessions.StatusAuthenticated
	r.lock.Unlock()

	return sess, nil
}

func (r *Runtime) setStatus(status sessions.Status) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.status = status
}

func (r *Runtime) clearSession() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.session = nil
	r.status = sessions.StatusUnauthenticated
}
