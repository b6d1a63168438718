package gcal

import (
	"net/http"
	"sync"
	"time"

	"github.com/hrplatform/leave-management/internal/auth"
	"github.com/hrplatform/leave-management/internal/transport"
)

const stateTTL = 10 * time.Minute

type pendingState struct {
	userID    int64
	expiresAt time.Time
}

type Handler struct {
	*transport.BaseHandler
	Service *Service

	mu     sync.Mutex
	states map[string]pendingState
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		states:      make(map[string]pendingState),
	}
}

// Connect starts the OAuth consent flow and returns the URL the client
// should redirect the user to.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	state, err := auth.GenerateRandomToken()
	if err != nil {
		h.Logger.Error("failed to generate oauth state", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to start calendar connection")
		return
	}

	h.mu.Lock()
	h.states[state] = pendingState{userID: principal.ID, expiresAt: time.Now().Add(stateTTL)}
	h.pruneLocked()
	h.mu.Unlock()

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"auth_url": h.Service.AuthURL(state),
	})
}

// Callback is the OAuth redirect target. It carries no session, so the
// state parameter is what ties the code back to a user.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		h.WriteError(w, http.StatusBadRequest, "missing state or code")
		return
	}

	h.mu.Lock()
	pending, ok := h.states[state]
	delete(h.states, state)
	h.mu.Unlock()

	if !ok || time.Now().After(pending.expiresAt) {
		h.WriteError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	if err := h.Service.HandleCallback(r.Context(), pending.userID, code); err != nil {
		h.Logger.Error("calendar oauth callback failed", "error", err, "user_id", pending.userID)
		h.WriteError(w, http.StatusBadGateway, "failed to complete calendar connection")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "google calendar connected",
	})
}

func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.Service.Disconnect(r.Context(), principal.ID); err != nil {
		h.Logger.Error("failed to disconnect calendar", "error", err, "user_id", principal.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to disconnect calendar")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "google calendar disconnected",
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{
		"connected": h.Service.IsConnected(r.Context(), principal.ID),
	})
}

func (h *Handler) pruneLocked() {
	now := time.Now()
	for state, pending := range h.states {
		if now.After(pending.expiresAt) {
			delete(h.states, state)
		}
	}
}
