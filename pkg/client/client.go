package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const refreshCookieName = "jwt"

// Client talks to the notes service. It keeps the access token in memory,
// lets the cookie jar carry the refresh cookie, and transparently refreshes
// once when a request is rejected with 403.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *session
	store   *SessionStore

	// serializes refresh attempts so concurrent 403s coalesce into one
	// refresh call
	refreshMu sync.Mutex
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. A cookie jar is installed
// if the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpc = hc
	}
}

// WithSessionStore enables persisted sessions ("remember me"): the refresh
// cookie survives restarts and Resume picks it back up.
func WithSessionStore(store *SessionStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		session: &session{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if c.httpc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.httpc.Jar = jar
	}
	return c, nil
}

// AccessToken returns the currently held access token, if any.
func (c *Client) AccessToken() string {
	token, _ := c.session.current()
	return token
}

// CurrentClaims decodes the held access token for role gating.
func (c *Client) CurrentClaims() (*Claims, bool) {
	token, _ := c.session.current()
	return DecodeClaims(token)
}

// Login exchanges credentials for a session. The server answers with the
// access token in the body and the refresh token as an httpOnly cookie.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth", body, &resp, ""); err != nil {
		return err
	}
	c.session.set(resp.AccessToken)
	c.persistSession()
	return nil
}

// Refresh explicitly exchanges the refresh cookie for a new access token.
func (c *Client) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	_, err := c.doRefresh(ctx)
	return err
}

// Resume reinstates a persisted session and performs one startup refresh.
// Only useful with a session store.
func (c *Client) Resume(ctx context.Context) error {
	if c.store == nil {
		return errors.New("no session store configured")
	}
	value, _, ok, err := c.store.LoadRefreshCookie()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionExpired
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	c.httpc.Jar.SetCookies(base, []*http.Cookie{{
		Name:  refreshCookieName,
		Value: value,
		Path:  "/",
	}})
	return c.Refresh(ctx)
}

// Logout clears the session on both sides. The server clears the cookie;
// local state and any persisted session are dropped regardless of the
// server's answer.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, "")
	c.session.clear()
	if c.store != nil {
		_ = c.store.Clear()
	}
	return err
}

// Do performs an authenticated request. A 403 answer triggers exactly one
// coalesced refresh followed by one retry of the original request; a 401
// (no or malformed credential) is surfaced as-is.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	token, gen := c.session.current()

	err := c.doJSON(ctx, method, path, body, result, token)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.IsForbidden() {
		return err
	}

	newToken, refreshErr := c.refreshAfterReject(ctx, gen)
	if refreshErr != nil {
		c.session.clear()
		var refreshAPIErr *APIError
		if errors.As(refreshErr, &refreshAPIErr) && refreshAPIErr.IsForbidden() {
			return errors.Join(ErrSessionExpired, err)
		}
		return err
	}

	return c.doJSON(ctx, method, path, body, result, newToken)
}

// refreshAfterReject coalesces concurrent refresh attempts: only the first
// caller whose token generation is still current actually hits the server;
// the rest reuse its result.
func (c *Client) refreshAfterReject(ctx context.Context, failedGen uint64) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if token, gen := c.session.current(); gen != failedGen && token != "" {
		return token, nil
	}
	return c.doRefresh(ctx)
}

// doRefresh must be called with refreshMu held.
func (c *Client) doRefresh(ctx context.Context) (string, error) {
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/refresh", nil, &resp, ""); err != nil {
		return "", err
	}
	c.session.set(resp.AccessToken)
	c.persistSession()
	return resp.AccessToken, nil
}

// persistSession copies the refresh cookie from the jar into the session
// store, recording the token's own expiry.
func (c *Client) persistSession() {
	if c.store == nil {
		return
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	for _, cookie := range c.httpc.Jar.Cookies(base) {
		if cookie.Name != refreshCookieName || cookie.Value == "" {
			continue
		}
		expires := refreshTokenExpiry(cookie.Value)
		_ = c.store.SaveRefreshCookie(cookie.Value, expires)
		return
	}
}

// refreshTokenExpiry reads the exp claim from the refresh token without
// verification; the value only bounds local session reuse.
func refreshTokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any, bearer string) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
