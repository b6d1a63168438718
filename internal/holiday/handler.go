package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/hrplatform/leave-management/internal/transport"
)

type ServiceAPI interface {
	GetAll(ctx context.Context) ([]*Holiday, error)
	GetByID(ctx context.Context, id int64) (*Holiday, error)
	Create(ctx context.Context, dto CreateHolidayDTO) (*Holiday, error)
	Update(ctx context.Context, id int64, dto UpdateHolidayDTO) (*Holiday, error)
	Delete(ctx context.Context, id int64) error
	ListForYear(ctx context.Context, year int) ([]*Holiday, error)
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

// GetHolidays lists holidays. With ?year=2026 recurring holidays are
// projected onto that year.
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		holidays, err := h.Service.ListForYear(r.Context(), year)
		if err != nil {
			h.WriteError(w, http.StatusInternalServerError, "failed to get holidays")
			return
		}
		h.WriteJSON(w, http.StatusOK, HolidaysResponse{Holidays: holidays})
		return
	}

	holidays, err := h.Service.GetAll(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to get holidays")
		return
	}
	h.WriteJSON(w, http.StatusOK, HolidaysResponse{Holidays: holidays})
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var dto CreateHolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	holiday, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, holiday)
}

func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid holiday id")
		return
	}

	var dto UpdateHolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	holiday, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, holiday)
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid holiday id")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "holiday deleted"})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrHolidayNotFound):
		h.WriteError(w, http.StatusNotFound, "holiday not found")
	case errors.Is(err, ErrDuplicateDate):
		h.WriteError(w, http.StatusConflict, "holiday already exists for this date")
	default:
		h.Logger.Error("holiday operation failed", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
	}
}
