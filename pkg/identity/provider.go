package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/stepup-hq/stepup/pkg/config"
	"github.com/stepup-hq/stepup/pkg/observability"
)

// Provider acquires bearer credentials from the OIDC identity provider.
//
// Acquisition is always silent-first: a refresh token from the persisted
// account checkpoint is used through the token endpoint. When that is not
// possible, GetToken returns an InteractionRequiredError carrying the login
// URL for a full-navigation interactive flow; the flow completes on a later
// process run via CompleteRedirect.
type Provider struct {
	cfg   config.IdentityConfig
	store *AccountStore
	log   *observability.Logger

	oidc     *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config

	ready     chan struct{}
	startOnce sync.Once

	mu      sync.Mutex
	account *Account
}

// NewProvider discovers the OIDC issuer and builds a Provider. Discovery
// failure means the identity provider is unreachable.
func NewProvider(ctx context.Context, cfg config.IdentityConfig, store *AccountStore, log *observability.Logger) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if store == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if log == nil {
		log = observability.NewNopLogger()
	}

	discovered, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	verifier := discovered.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauthCfg := &oauth2.Config{
		ClientID:    cfg.ClientID,
		Endpoint:    discovered.Endpoint(),
		RedirectURL: cfg.RedirectURL,
		Scopes:      cfg.Scopes,
	}

	return &Provider{
		cfg:      cfg,
		store:    store,
		log:      log.Named("identity"),
		oidc:     discovered,
		verifier: verifier,
		oauth:    oauthCfg,
		ready:    make(chan struct{}),
	}, nil
}

// Start resolves any persisted redirect state and loads the saved account,
// then marks the provider ready. Dependents must WaitReady before their
// first token request; issuing one earlier would race with pending redirect
// handling.
func (p *Provider) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		defer close(p.ready)

		cp, err := p.store.Load()
		if err != nil {
			// A corrupt checkpoint is not fatal: the next GetToken will
			// route through the interactive flow.
			p.log.WithError(err).Warn("account checkpoint unreadable, starting signed out")
			return
		}

		if cp.Account != nil {
			p.mu.Lock()
			p.account = cp.Account
			p.mu.Unlock()
			p.log.WithField("subject", cp.Account.Subject).Info("restored account from checkpoint")
		} else if cp.PendingState != "" {
			p.log.Info("interactive sign-in pending, waiting for redirect completion")
		}
	})
}

// WaitReady blocks until Start has finished or the context is done.
func (p *Provider) WaitReady(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetToken acquires a bearer credential, silently when possible. When silent
// acquisition is impossible it persists a pending login state and returns an
// InteractionRequiredError; no credential is returned in that case.
func (p *Provider) GetToken(ctx context.Context) (*Credential, error) {
	if err := p.WaitReady(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	acct := p.account
	p.mu.Unlock()

	if acct == nil || acct.RefreshToken == "" {
		return nil, p.requireInteraction()
	}

	src := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: acct.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			// The endpoint answered but refused the refresh token.
			p.log.WithError(err).Info("silent token acquisition rejected")
			return nil, p.requireInteraction()
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	// Refresh token rotation: keep the checkpoint current for later runs.
	if tok.RefreshToken != "" && tok.RefreshToken != acct.RefreshToken {
		updated := *acct
		updated.RefreshToken = tok.RefreshToken
		p.mu.Lock()
		p.account = &updated
		p.mu.Unlock()
		if err := p.store.SaveAccount(&updated); err != nil {
			p.log.WithError(err).Warn("failed to persist rotated refresh token")
		}
	}

	return &Credential{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}

// requireInteraction persists a fresh login state and returns the terminal
// interaction-required error for this call.
func (p *Provider) requireInteraction() error {
	state := uuid.NewString()
	if err := p.store.SavePendingState(state); err != nil {
		return fmt.Errorf("failed to checkpoint login state: %w", err)
	}
	return &InteractionRequiredError{
		LoginURL: p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline),
	}
}

// BeginLogin starts an interactive flow explicitly and returns the login
// URL. Used by callers that want to offer sign-in before the first request.
func (p *Provider) BeginLogin() (string, error) {
	state := uuid.NewString()
	if err := p.store.SavePendingState(state); err != nil {
		return "", fmt.Errorf("failed to checkpoint login state: %w", err)
	}
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// CompleteRedirect finishes an interactive flow with the authorization code
// and state from the redirect callback. On success the account checkpoint is
// written and silent acquisition works from then on.
func (p *Provider) CompleteRedirect(ctx context.Context, code, state string) (*Account, error) {
	if err := p.WaitReady(ctx); err != nil {
		return nil, err
	}

	cp, err := p.store.Load()
	if err != nil {
		return nil, err
	}
	if cp.PendingState == "" || cp.PendingState != state {
		return nil, fmt.Errorf("login state mismatch, sign-in must be restarted")
	}

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("missing id_token in token response")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	ident := FromClaims(claims)
	if ident.Subject == "" {
		ident.Subject = idToken.Subject
	}

	acct := &Account{
		Subject:      ident.Subject,
		DisplayName:  ident.DisplayName,
		Role:         ident.Role,
		RefreshToken: tok.RefreshToken,
	}
	if err := p.store.SaveAccount(acct); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.account = acct
	p.mu.Unlock()

	p.log.WithField("subject", acct.Subject).Info("interactive sign-in completed")
	return acct, nil
}

// ActiveAccount returns a copy of the persisted account selection, or nil
// when signed out.
func (p *Provider) ActiveAccount() *Account {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.account == nil {
		return nil
	}
	acct := *p.account
	return &acct
}

// Identity returns the normalized identity of the active account, or nil.
func (p *Provider) Identity() *Identity {
	acct := p.ActiveAccount()
	if acct == nil {
		return nil
	}
	return &Identity{
		Subject:     acct.Subject,
		DisplayName: acct.DisplayName,
		Role:        acct.Role,
	}
}

// Logout clears the persisted account selection.
func (p *Provider) Logout() error {
	p.mu.Lock()
	p.account = nil
	p.mu.Unlock()
	return p.store.Clear()
}
