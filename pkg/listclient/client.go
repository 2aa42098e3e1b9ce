package listclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stepup-hq/stepup/pkg/config"
	"github.com/stepup-hq/stepup/pkg/identity"
	"github.com/stepup-hq/stepup/pkg/observability"
)

// TokenSource supplies a bearer credential for each request. The client
// never caches credentials; renewal policy belongs to the implementation.
type TokenSource interface {
	GetToken(ctx context.Context) (*identity.Credential, error)
}

// Client is a thin wrapper over the remote list store API. It normalizes
// relative paths against the configured site, attaches the bearer token, and
// turns non-2xx responses into *RemoteError. It never retries; retry policy
// belongs to callers, as does cancellation via the request context.
type Client struct {
	siteBase string
	tokens   TokenSource
	http     *http.Client
	log      *observability.Logger
}

// New creates a client for the configured site.
func New(site config.SiteConfig, tokens TokenSource, log *observability.Logger) (*Client, error) {
	if site.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if site.SiteID == "" {
		return nil, fmt.Errorf("site ID is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if log == nil {
		log = observability.NewNopLogger()
	}

	return &Client{
		siteBase: strings.TrimRight(site.BaseURL, "/") + "/sites/" + url.PathEscape(site.SiteID),
		tokens:   tokens,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log.Named("listclient"),
	}, nil
}

// Do issues one request. path is relative to the site root and may carry a
// query string. A nil body sends no payload; anything else is JSON-encoded.
// The response body is returned raw for the caller to decode; 2xx responses
// with empty bodies yield nil.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	cred, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	full := c.siteBase + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, full, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("client-request-id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := newRemoteError(resp.StatusCode, raw)
		c.log.WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("remote store returned an error")
		return nil, rerr
	}

	if len(raw) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil)
	return err
}
