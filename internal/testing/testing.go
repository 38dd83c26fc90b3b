// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
)

// Canned Spotify payloads used across packages.
const (
	TopTracksJSON = `{"items":[` +
		`{"id":"t1","name":"Song One","artists":[{"id":"a1","name":"Artist One"}]},` +
		`{"id":"t2","name":"Song Two","artists":[{"id":"a2","name":"Artist Two"}]}` +
		`],"total":2,"limit":10,"offset":0}`

	TopArtistsJSON = `{"items":[` +
		`{"id":"a1","name":"Artist One","genres":["indie rock","shoegaze"]},` +
		`{"id":"a2","name":"Artist Two","genres":["shoegaze","dream pop"]}` +
		`],"total":2,"limit":10,"offset":0}`

	TokenJSON = `{"access_token":"BQD-test","token_type":"Bearer","scope":"user-top-read","expires_in":3600,"refresh_token":"AQD-test"}`
)

// FakeSpotify is an httptest-backed stand-in for the accounts and Web API hosts.
//
// Responses default to the canned payloads above. Setting a Status field other than 200 makes the
// matching endpoint reply with that status and the corresponding Body.
type FakeSpotify struct {
	*httptest.Server

	ClientID     string
	ClientSecret string

	TokenStatus int
	TokenBody   string
	TopStatus   int
	TopBody     string

	mu       sync.Mutex
	requests []*http.Request
	forms    []map[string]string
}

// NewFakeSpotify starts a fake Spotify server and registers cleanup on t.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()

	f := &FakeSpotify{ClientID: "test_client_id", ClientSecret: "test_client_secret"}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", f.token)
	mux.HandleFunc("/v1/me/top/", f.top)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// TokenURL is the fake token endpoint.
func (f *FakeSpotify) TokenURL() string { return f.URL + "/api/token" }

// AuthURL is the fake authorize endpoint.
func (f *FakeSpotify) AuthURL() string { return f.URL + "/authorize" }

// APIBaseURL is the fake Web API root.
func (f *FakeSpotify) APIBaseURL() string { return f.URL + "/v1" }

// Requests returns a copy of every request the server has seen.
func (f *FakeSpotify) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

// LastForm returns the form values of the most recent token request.
func (f *FakeSpotify) LastForm() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.forms) == 0 {
		return nil
	}
	return f.forms[len(f.forms)-1]
}

func (f *FakeSpotify) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Clone(r.Context()))
}

func (f *FakeSpotify) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.record(r)

	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	f.mu.Lock()
	f.forms = append(f.forms, form)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if f.TokenStatus != 0 && f.TokenStatus != http.StatusOK {
		w.WriteHeader(f.TokenStatus)
		io.WriteString(w, f.TokenBody)
		return
	}

	id, secret, ok := r.BasicAuth()
	if !ok || id != f.ClientID || secret != f.ClientSecret {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"invalid_client","error_description":"Invalid client"}`)
		return
	}

	if form["code"] == "" {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"invalid_request","error_description":"code must be supplied"}`)
		return
	}

	body := f.TokenBody
	if body == "" {
		body = TokenJSON
	}
	io.WriteString(w, body)
}

func (f *FakeSpotify) top(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"status":401,"message":"No token provided"}}`)
		return
	}

	if f.TopStatus != 0 && f.TopStatus != http.StatusOK {
		w.WriteHeader(f.TopStatus)
		io.WriteString(w, f.TopBody)
		return
	}

	if f.TopBody != "" {
		io.WriteString(w, f.TopBody)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch strings.TrimPrefix(r.URL.Path, "/v1/me/top/") {
	case "tracks":
		io.WriteString(w, TopTracksJSON)
	case "artists":
		io.WriteString(w, TopArtistsJSON)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"status":404,"message":"Service not found"}}`)
	}
}

// MustJSON decodes body into a generic map and fails the test on error.
func MustJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("failed to decode JSON %q: %v", string(body), err)
	}
	return out
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
