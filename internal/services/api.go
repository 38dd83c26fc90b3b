// API service for talking to a running Resonate relay
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
)

const defaultRelayURL = "http://127.0.0.1:5000"

// APIService provides methods for making HTTP requests to a Resonate relay.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the relay at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultRelayURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the relay address requests are sent to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the response has a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Message returns the "message" field of a JSON error body, or the raw body.
func (r *APIResponse) Message() string {
	if m, ok := r.JSONData.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok {
			return msg
		}
	}
	return string(r.Body)
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	var jsonData any
	if err := json.Unmarshal(respBody, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// postJSON marshals payload, posts it and maps non-2xx statuses onto shared errors.
func (a *APIService) postJSON(ctx context.Context, path string, payload any) (*APIResponse, error) {
	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	} else {
		data = []byte("{}")
	}

	resp, err := a.Post(ctx, path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return resp, statusError(resp)
}

func statusError(resp *APIResponse) error {
	switch {
	case resp.OK():
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, resp.Message())
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", shared.ErrSessionIncomplete, resp.Message())
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, resp.Message())
	default:
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}
}

type sessionIDBody struct {
	SessionID string `json:"sessionId"`
}

// CreateSession asks the relay for a new session and returns its code.
func (a *APIService) CreateSession(ctx context.Context) (string, error) {
	resp, err := a.postJSON(ctx, "/api/session/create", nil)
	if err != nil {
		return "", err
	}

	var out sessionIDBody
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.SessionID, nil
}

// JoinSession joins the session with the given code.
func (a *APIService) JoinSession(ctx context.Context, code string) (string, error) {
	resp, err := a.postJSON(ctx, "/api/session/join", sessionIDBody{SessionID: code})
	if err != nil {
		return "", err
	}
	return resp.Message(), nil
}

// SaveSessionData stores tracks and artists for user in the session.
func (a *APIService) SaveSessionData(ctx context.Context, code, user string, data models.UserData) (string, error) {
	payload := struct {
		SessionID string          `json:"sessionId"`
		User      string          `json:"user"`
		Tracks    json.RawMessage `json:"tracks"`
		Artists   json.RawMessage `json:"artists"`
	}{code, user, data.Tracks, data.Artists}

	resp, err := a.postJSON(ctx, "/api/session/save-data", payload)
	if err != nil {
		return "", err
	}
	return resp.Message(), nil
}

// GetSession fetches the stored session.
func (a *APIService) GetSession(ctx context.Context, code string) (*models.Session, error) {
	resp, err := a.Get(ctx, "/api/session/"+url.PathEscape(code))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal(resp.Body, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

// CompareSession fetches the comparison of a complete session as raw JSON.
func (a *APIService) CompareSession(ctx context.Context, code string) (json.RawMessage, error) {
	resp, err := a.Get(ctx, "/api/session/"+url.PathEscape(code)+"/compare")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}
