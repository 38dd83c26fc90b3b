package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/session"
)

// Session registry routes.
const (
	routeSessionCreate  = "/api/session/create"
	routeSessionJoin    = "/api/session/join"
	routeSessionSave    = "/api/session/save-data"
	routeSessionGet     = "/api/session/{id}"
	routeSessionCompare = "/api/session/{id}/compare"
)

// SessionHandler exposes the session [session.Manager] over HTTP.
type SessionHandler struct {
	manager *session.Manager
	logger  *log.Logger
}

// NewSessionHandler creates a [SessionHandler].
func NewSessionHandler(manager *session.Manager, logger *log.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

func (h *SessionHandler) Routes() []string {
	return []string{
		routeSessionCreate,
		routeSessionJoin,
		routeSessionSave,
		routeSessionGet,
		routeSessionCompare,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeSessionCreate:
		if allowMethod(w, r, http.MethodPost) {
			h.create(w, r)
		}
	case routeSessionJoin:
		if allowMethod(w, r, http.MethodPost) {
			h.join(w, r)
		}
	case routeSessionSave:
		if allowMethod(w, r, http.MethodPost) {
			h.save(w, r)
		}
	case routeSessionGet:
		if allowMethod(w, r, http.MethodGet) {
			h.get(w, r)
		}
	case routeSessionCompare:
		if allowMethod(w, r, http.MethodGet) {
			h.compare(w, r)
		}
	default:
		notFound(w, r)
	}
}

type sessionResponse struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"sessionId"`
}

// sessionID accepts any JSON value. Non-string values keep their JSON text and never match a stored code.
type sessionID string

func (id *sessionID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = sessionID(s)
		return nil
	}
	*id = sessionID(data)
	return nil
}

type joinRequest struct {
	SessionID sessionID `json:"sessionId"`
}

type saveRequest struct {
	SessionID sessionID       `json:"sessionId"`
	User      string          `json:"user"`
	Tracks    json.RawMessage `json:"tracks"`
	Artists   json.RawMessage `json:"artists"`
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	code, err := h.manager.CreateSession(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("session created", "session", code)
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: code})
}

func (h *SessionHandler) join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	code, err := h.manager.JoinSession(r.Context(), string(req.SessionID))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Message: "Joined session", SessionID: code})
}

func (h *SessionHandler) save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	data := models.UserData{Tracks: req.Tracks, Artists: req.Artists}
	if err := h.manager.SaveSessionData(r.Context(), string(req.SessionID), req.User, data); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("session data saved", "session", req.SessionID, "user", req.User)
	writeMessage(w, http.StatusOK, "Data saved")
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.manager.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) compare(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.CompareSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
