package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepup-hq/stepup/pkg/config"
	"github.com/stepup-hq/stepup/pkg/observability"
)

// fakeIssuer is a minimal OIDC issuer: discovery document, an empty JWKS,
// and a scriptable token endpoint.
type fakeIssuer struct {
	srv     *httptest.Server
	onToken func(w http.ResponseWriter, r *http.Request)
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	f := &fakeIssuer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":                                f.srv.URL,
			"authorization_endpoint":                f.srv.URL + "/authorize",
			"token_endpoint":                        f.srv.URL + "/token",
			"jwks_uri":                              f.srv.URL + "/keys",
			"response_types_supported":              []string{"code"},
			"subject_types_supported":               []string{"public"},
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"keys":[]}`))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if f.onToken != nil {
			f.onToken(w, r)
			return
		}
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIssuer) identityConfig(t *testing.T) config.IdentityConfig {
	t.Helper()
	return config.IdentityConfig{
		IssuerURL:   f.srv.URL,
		ClientID:    "stepup-client",
		RedirectURL: "https://app.school.example/auth/callback",
		Scopes:      []string{"openid", "profile", "offline_access"},
		AccountFile: filepath.Join(t.TempDir(), "account.json"),
	}
}

func newTestProvider(t *testing.T, f *fakeIssuer) (*Provider, *AccountStore) {
	t.Helper()
	cfg := f.identityConfig(t)
	store := NewAccountStore(cfg.AccountFile)
	provider, err := NewProvider(context.Background(), cfg, store, observability.NewNopLogger())
	require.NoError(t, err)
	return provider, store
}

func TestNewProvider_IssuerUnreachable(t *testing.T) {
	f := newFakeIssuer(t)
	cfg := f.identityConfig(t)
	f.srv.Close()

	_, err := NewProvider(context.Background(), cfg, NewAccountStore(cfg.AccountFile), observability.NewNopLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthUnavailable)
}

func TestGetToken_WaitsForStart(t *testing.T) {
	f := newFakeIssuer(t)
	provider, _ := newTestProvider(t, f)

	// Start never called: the readiness gate must hold the request.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.GetToken(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetToken_SignedOutRequiresInteraction(t *testing.T) {
	f := newFakeIssuer(t)
	provider, store := newTestProvider(t, f)
	provider.Start(context.Background())

	cred, err := provider.GetToken(context.Background())
	assert.Nil(t, cred)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInteractionRequired)

	var ire *InteractionRequiredError
	require.ErrorAs(t, err, &ire)
	assert.Contains(t, ire.LoginURL, "/authorize")
	assert.Contains(t, ire.LoginURL, "state=")

	// The pending login state must be checkpointed for the next run.
	cp, err := store.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cp.PendingState)
	assert.Contains(t, ire.LoginURL, cp.PendingState)
}

func TestGetToken_SilentAcquisition(t *testing.T) {
	f := newFakeIssuer(t)
	f.onToken = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "rt-1", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "at-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "rt-2",
		})
	}

	provider, store := newTestProvider(t, f)
	require.NoError(t, store.SaveAccount(&Account{
		Subject:      "ann@school.example",
		RefreshToken: "rt-1",
	}))
	provider.Start(context.Background())

	cred, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-1", cred.AccessToken)
	assert.False(t, cred.Expiry.IsZero())

	// Rotated refresh token must be persisted for subsequent calls.
	cp, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cp.Account)
	assert.Equal(t, "rt-2", cp.Account.RefreshToken)
}

func TestGetToken_RefreshRejectedRequiresInteraction(t *testing.T) {
	f := newFakeIssuer(t)
	f.onToken = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}

	provider, store := newTestProvider(t, f)
	require.NoError(t, store.SaveAccount(&Account{
		Subject:      "ann@school.example",
		RefreshToken: "rt-stale",
	}))
	provider.Start(context.Background())

	cred, err := provider.GetToken(context.Background())
	assert.Nil(t, cred)
	assert.ErrorIs(t, err, ErrInteractionRequired)
}

func TestCompleteRedirect_StateMismatch(t *testing.T) {
	f := newFakeIssuer(t)
	provider, store := newTestProvider(t, f)
	provider.Start(context.Background())

	require.NoError(t, store.SavePendingState("expected-state"))

	_, err := provider.CompleteRedirect(context.Background(), "code-1", "wrong-state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestCompleteRedirect_NoPendingState(t *testing.T) {
	f := newFakeIssuer(t)
	provider, _ := newTestProvider(t, f)
	provider.Start(context.Background())

	_, err := provider.CompleteRedirect(context.Background(), "code-1", "any")
	require.Error(t, err)
}

func TestProvider_StartRestoresAccount(t *testing.T) {
	f := newFakeIssuer(t)
	provider, store := newTestProvider(t, f)

	require.NoError(t, store.SaveAccount(&Account{
		Subject:     "ann@school.example",
		DisplayName: "Ann Teacher",
		Role:        "educator",
	}))
	provider.Start(context.Background())

	acct := provider.ActiveAccount()
	require.NotNil(t, acct)
	assert.Equal(t, "ann@school.example", acct.Subject)

	ident := provider.Identity()
	require.NotNil(t, ident)
	assert.Equal(t, "Ann Teacher", ident.DisplayName)
	assert.Equal(t, "educator", ident.Role)
}

func TestProvider_Logout(t *testing.T) {
	f := newFakeIssuer(t)
	provider, store := newTestProvider(t, f)
	require.NoError(t, store.SaveAccount(&Account{Subject: "ann@school.example"}))
	provider.Start(context.Background())

	require.NoError(t, provider.Logout())
	assert.Nil(t, provider.ActiveAccount())

	cp, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cp.Account)
}

func TestInteractionRequiredError_Is(t *testing.T) {
	err := error(&InteractionRequiredError{LoginURL: "https://idp.example/authorize"})
	assert.True(t, errors.Is(err, ErrInteractionRequired))
	assert.False(t, errors.Is(err, ErrAuthUnavailable))
}
