package settings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hrplatform/leave-management/internal/transport"
)

type ServiceAPI interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, values map[string]string) error
	SaveAsset(ctx context.Context, settingKey, filename string, size int64, content io.Reader) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	maxSize int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, maxSize int64) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		maxSize:     maxSize,
	}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	values, err := h.Service.GetAll(r.Context())
	if err != nil {
		h.Logger.Error("failed to load settings", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	h.WriteJSON(w, http.StatusOK, values)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Update(r.Context(), values); err != nil {
		if errors.Is(err, ErrUnknownKey) {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("failed to update settings", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "settings updated"})
}

// UploadLogo stores a new company logo.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.uploadAsset(w, r, KeyLogoPath)
}

// UploadFavicon stores a new favicon.
func (h *Handler) UploadFavicon(w http.ResponseWriter, r *http.Request) {
	h.uploadAsset(w, r, KeyFaviconPath)
}

func (h *Handler) uploadAsset(w http.ResponseWriter, r *http.Request, settingKey string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		h.WriteError(w, http.StatusRequestEntityTooLarge, "uploaded file exceeds size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	path, err := h.Service.SaveAsset(r.Context(), settingKey, header.Filename, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			h.WriteError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, ErrUnsupportedType):
			h.WriteError(w, http.StatusUnsupportedMediaType, err.Error())
		default:
			h.Logger.Error("failed to store asset", "error", err, "key", settingKey)
			h.WriteError(w, http.StatusInternalServerError, "failed to store file")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"path": path})
}
