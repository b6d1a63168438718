package user

import (
	"context"
	"net/http"

	"github.com/hrplatform/leave-management/internal/auth"
	"github.com/hrplatform/leave-management/internal/transport"
)

type ServiceAPI interface {
	Profile(ctx context.Context, principal *auth.User) (*Profile, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.Service.Profile(r.Context(), principal)
	if err != nil {
		h.Logger.Error("failed to build profile", "error", err, "user_id", principal.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}
