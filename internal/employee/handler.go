package employee

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/hrplatform/leave-management/internal/auth"
	"github.com/hrplatform/leave-management/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error)
	GetByID(ctx context.Context, id int64) (*Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*Employee, error)
	List(ctx context.Context, q ListEmployeesQuery) ([]*Employee, int64, error)
	Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error)
	Delete(ctx context.Context, id int64) error
	Team(ctx context.Context, managerEmployeeID int64) ([]*Employee, error)
	ResendInvite(ctx context.Context, employeeID int64) error
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

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := ListEmployeesQuery{Limit: 50}

	if v := r.URL.Query().Get("department_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid department_id")
			return
		}
		q.DepartmentID = &id
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Offset = n
		}
	}

	employees, total, err := h.Service.List(r.Context(), q)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}
	h.WriteJSON(w, http.StatusOK, EmployeesResponse{Employees: employees, Total: total})
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	emp, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, emp)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	var dto UpdateEmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}

func (h *Handler) ResendInvite(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	if err := h.Service.ResendInvite(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "invite sent"})
}

// GetTeam lists the authenticated manager's direct reports.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user.EmployeeID == nil {
		h.WriteError(w, http.StatusForbidden, "no employee profile for this account")
		return
	}

	team, err := h.Service.Team(r.Context(), *user.EmployeeID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list team")
		return
	}
	h.WriteJSON(w, http.StatusOK, EmployeesResponse{Employees: team, Total: int64(len(team))})
}

func (h *Handler) idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmployeeNotFound):
		h.WriteError(w, http.StatusNotFound, "employee not found")
	case errors.Is(err, ErrDuplicateEmail):
		h.WriteError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, ErrDuplicateCode):
		h.WriteError(w, http.StatusConflict, "employee code already in use")
	case errors.Is(err, ErrManagerNotFound):
		h.WriteError(w, http.StatusBadRequest, "manager not found")
	case errors.Is(err, ErrSelfManager):
		h.WriteError(w, http.StatusBadRequest, "employee cannot be their own manager")
	default:
		h.Logger.Error("employee operation failed", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
	}
}
