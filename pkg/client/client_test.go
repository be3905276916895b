package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService mimics the server side of the auth flow: login hands out an
// access token and a refresh cookie, refresh trades the cookie for a fresh
// token, and /notes accepts only tokens the fake still considers valid.
type fakeService struct {
	mu            sync.Mutex
	validTokens   map[string]bool
	refreshValue  string
	tokenSeq      int
	refreshCount  int
	noteRequests  int
	refreshStatus int  // non-zero forces this error status on /auth/refresh
	rejectNotes   bool // forces 403 on /notes regardless of token

	srv *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		validTokens:  make(map[string]bool),
		refreshValue: "refresh-ok",
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth":
		f.handleLogin(w, r)
	case "/auth/refresh":
		f.handleRefresh(w, r)
	case "/auth/logout":
		f.handleLogout(w, r)
	case "/notes":
		f.handleNotes(w, r)
	default:
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	}
}

func (f *fakeService) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Username != "dana" || req.Password != "pw12345" {
		writeAPIError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
		return
	}
	f.mu.Lock()
	cookieValue := f.refreshValue
	f.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: "jwt", Value: cookieValue, Path: "/", HttpOnly: true})
	writeJSON(w, map[string]string{"accessToken": f.issueToken()})
}

func (f *fakeService) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	forced := f.refreshStatus
	accepted := f.refreshValue
	f.mu.Unlock()

	if forced != 0 {
		writeAPIError(w, forced, "REFRESH_REJECTED", "refresh rejected")
		return
	}
	cookie, err := r.Cookie("jwt")
	if err != nil {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing refresh cookie")
		return
	}
	if cookie.Value != accepted {
		writeAPIError(w, http.StatusForbidden, "FORBIDDEN", "invalid or expired refresh token")
		return
	}
	f.mu.Lock()
	f.refreshCount++
	f.mu.Unlock()
	writeJSON(w, map[string]string{"accessToken": f.issueToken()})
}

func (f *fakeService) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie("jwt"); err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, map[string]string{"message": "Cookie cleared"})
}

func (f *fakeService) handleNotes(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.noteRequests++
	f.mu.Unlock()

	header := r.Header.Get("Authorization")
	if header == "" {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")
	f.mu.Lock()
	valid := f.validTokens[token] && !f.rejectNotes
	f.mu.Unlock()
	if !valid {
		writeAPIError(w, http.StatusForbidden, "FORBIDDEN", "invalid or expired token")
		return
	}
	writeJSON(w, map[string]any{"data": []map[string]any{
		{"id": "note-1", "ticket": 500, "username": "dana", "title": "fix printer"},
	}})
}

func (f *fakeService) issueToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenSeq++
	token := fmt.Sprintf("access-%d", f.tokenSeq)
	f.validTokens[token] = true
	return token
}

// expireTokens simulates all outstanding access tokens aging out.
func (f *fakeService) expireTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validTokens = make(map[string]bool)
}

// revokeRefresh makes the refresh cookie itself worthless.
func (f *fakeService) revokeRefresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshValue = "revoked"
}

func (f *fakeService) refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCount
}

func (f *fakeService) notesSeen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.noteRequests
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func newTestClient(t *testing.T, f *fakeService, opts ...Option) *Client {
	t.Helper()
	c, err := New(f.srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestLoginThenList(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)

	require.NoError(t, c.Login(context.Background(), "dana", "pw12345"))
	assert.NotEmpty(t, c.AccessToken())

	notes, err := c.ListNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, int64(500), notes[0].Ticket)
	assert.Equal(t, 0, f.refreshes())
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)

	err := c.Login(context.Background(), "dana", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Empty(t, c.AccessToken())
}

func TestSilentRefreshRetriesOnce(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background(), "dana", "pw12345"))

	f.expireTokens()

	notes, err := c.ListNotes(context.Background())
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, 1, f.refreshes())
	assert.Equal(t, 2, f.notesSeen())
}

func TestConcurrentRejectionsCoalesceIntoOneRefresh(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background(), "dana", "pw12345"))

	f.expireTokens()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListNotes(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}
	assert.Equal(t, 1, f.refreshes())
}

func TestRefreshRejectedSurfacesSessionExpired(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background(), "dana", "pw12345"))

	f.expireTokens()
	f.revokeRefresh()

	_, err := c.ListNotes(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsForbidden())
	assert.Empty(t, c.AccessToken())
}

func TestRefreshUnauthorizedPropagatesOriginalError(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background(), "dana", "pw12345"))

	f.expireTokens()
	f.mu.Lock()
	f.refreshStatus = http.StatusUnauthorized
	f.mu.Unlock()

	_, err := c.ListNotes(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsForbidden())
}

func TestUnauthorizedIsNotRetried(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)

	// never logged in: the server answers 401, which no refresh can fix
	_, err := c.ListNotes(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, 0, f.refreshes())
	assert.Equal(t, 1, f.notesSeen())
}

func TestRetryHappensAtMostOnce(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background(), "dana", "pw12345"))

	// refresh succeeds but the replacement token is rejected too
	f.mu.Lock()
	f.rejectNotes = true
	f.mu.Unlock()

	_, err := c.ListNotes(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, f.refreshes())
	assert.Equal(t, 2, f.notesSeen())
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background(), "dana", "pw12345"))
	require.NotEmpty(t, c.AccessToken())

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.AccessToken())
}

func TestCurrentClaimsAfterLogin(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)

	_, ok := c.CurrentClaims()
	assert.False(t, ok)

	// the fake issues opaque tokens, so claims stay undecodable; what matters
	// is that the call never panics on whatever the server handed back
	require.NoError(t, c.Login(context.Background(), "dana", "pw12345"))
	_, ok = c.CurrentClaims()
	assert.False(t, ok)
}

func TestPersistedSessionResume(t *testing.T) {
	f := newFakeService(t)

	store, err := OpenSessionStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer store.Close()

	first := newTestClient(t, f, WithSessionStore(store))
	require.NoError(t, first.Login(context.Background(), "dana", "pw12345"))

	value, _, ok, err := store.LoadRefreshCookie()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "refresh-ok", value)

	// a fresh process with the same store resumes without credentials
	second := newTestClient(t, f, WithSessionStore(store))
	require.NoError(t, second.Resume(context.Background()))
	assert.NotEmpty(t, second.AccessToken())
	assert.Equal(t, 1, f.refreshes())
}

func TestResumeWithoutStoredSession(t *testing.T) {
	f := newFakeService(t)

	store, err := OpenSessionStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer store.Close()

	c := newTestClient(t, f, WithSessionStore(store))
	err = c.Resume(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestResumeWithoutStore(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	assert.Error(t, c.Resume(context.Background()))
}

func TestErrorEnvelopeParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeAPIError(w, http.StatusConflict, "CONFLICT", "duplicate note title")
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.CreateNote(context.Background(), "user-1", "fix printer", "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.Equal(t, "duplicate note title", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "CONFLICT")
}

func TestErrorPlainBodyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.Do(context.Background(), http.MethodGet, "/notes", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}
