package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hrplatform/leave-management/internal/transport"
)

type AuthService interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*User, *AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	ValidateAccessToken(ctx context.Context, accessToken string) (*User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) error
	ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error
	ActivateInvite(ctx context.Context, dto ActivateInviteDTO) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	service AuthService
}

func NewHandler(service AuthService, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

type loginResponse struct {
	User   *User       `json:"user"`
	Tokens *AuthTokens `json:"tokens"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, tokens, err := h.service.Authenticate(r.Context(), dto)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, loginResponse{User: user, Tokens: tokens})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout is stateless: tokens expire on their own, the endpoint exists so
// clients have a place to hit when discarding their session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), dto.Email); err != nil {
		h.Logger.Error("password reset request failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "could not process request")
		return
	}

	// always 200 so the endpoint does not reveal which emails exist
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ResetPassword(r.Context(), dto); err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.ID, dto); err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *Handler) ActivateInvite(w http.ResponseWriter, r *http.Request) {
	var dto ActivateInviteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.ActivateInvite(r.Context(), dto)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "account activated",
		"user":    user,
	})
}

// AuthMiddleware validates the bearer token and loads the principal into the
// request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		user, err := h.service.ValidateAccessToken(r.Context(), token)
		if err != nil {
			h.writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		h.WriteError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, ErrUserInactive):
		h.WriteError(w, http.StatusForbidden, "account is not active")
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		h.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, ErrResetTokenInvalid):
		h.WriteError(w, http.StatusBadRequest, "token is invalid or already used")
	case errors.Is(err, ErrInviteExpired):
		h.WriteError(w, http.StatusGone, "invite has expired")
	case errors.Is(err, ErrWeakPassword):
		h.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrWrongPassword):
		h.WriteError(w, http.StatusBadRequest, "current password is incorrect")
	default:
		h.Logger.Error("auth operation failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
