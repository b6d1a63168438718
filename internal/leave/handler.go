package leave

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/hrplatform/leave-management/internal/auth"
	"github.com/hrplatform/leave-management/internal/balance"
	"github.com/hrplatform/leave-management/internal/transport"
)

type ServiceAPI interface {
	Create(employeeID int64, dto *CreateLeaveDTO) (*LeaveRequest, error)
	GetByID(id, employeeID int64, isManager bool) (*LeaveRequest, error)
	ListForEmployee(employeeID int64, limit, offset int) ([]*LeaveRequest, error)
	ListEmployeeLeaves(employeeID int64, limit, offset int, userPermissions []string) ([]*LeaveRequest, error)
	ListAll(limit, offset int, status string, userPermissions []string) ([]*LeaveRequest, error)
	Approve(requestID, approverID int64, userPermissions []string) error
	Reject(requestID, approverID int64, reason string, userPermissions []string) error
	Cancel(requestID, employeeID int64) error
}

type BalanceAPI interface {
	ListForEmployee(employeeID int64, year int) ([]*balance.Balance, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Balances BalanceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, balances BalanceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Balances:    balances,
	}
}

type leaveListResponse struct {
	Requests []*LeaveRequest `json:"requests"`
}

// CreateLeave submits a leave request for the authenticated employee.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	var dto CreateLeaveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.Create(employeeID, &dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, request)
}

func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var employeeID int64
	if user.EmployeeID != nil {
		employeeID = *user.EmployeeID
	}
	isManager := auth.HasPermission(user.Permissions, auth.PermissionApproveLeaves) ||
		auth.HasPermission(user.Permissions, auth.PermissionAdmin)

	request, err := h.Service.GetByID(id, employeeID, isManager)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request)
}

// ListMyLeaves lists the authenticated employee's own requests.
func (h *Handler) ListMyLeaves(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	limit, offset := h.pagination(r)
	requests, err := h.Service.ListForEmployee(employeeID, limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list leave requests")
		return
	}

	h.WriteJSON(w, http.StatusOK, leaveListResponse{Requests: requests})
}

// ListLeaves lists requests across employees, for approvers. Supports
// ?status= filtering.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, offset := h.pagination(r)
	status := r.URL.Query().Get("status")

	requests, err := h.Service.ListAll(limit, offset, status, user.Permissions)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, leaveListResponse{Requests: requests})
}

// ListEmployeeLeaves lists a specific employee's requests, for approvers.
func (h *Handler) ListEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	employeeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	limit, offset := h.pagination(r)
	requests, err := h.Service.ListEmployeeLeaves(employeeID, limit, offset, user.Permissions)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, leaveListResponse{Requests: requests})
}

func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	if err := h.Service.Approve(id, user.ID, user.Permissions); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "leave request approved"})
}

func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var dto RejectLeaveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Reject(id, user.ID, dto.Reason, user.Permissions); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "leave request rejected"})
}

func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	if err := h.Service.Cancel(id, employeeID); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "leave request cancelled"})
}

// GetMyBalances returns the authenticated employee's balances for the
// requested year, defaulting to the current one.
func (h *Handler) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}

	balances, err := h.Balances.ListForEmployee(employeeID, year)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list balances")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"balances": balances,
	})
}

// GetEmployeeBalances returns any employee's balances, for admins.
func (h *Handler) GetEmployeeBalances(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}

	balances, err := h.Balances.ListForEmployee(employeeID, year)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list balances")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"employee_id": employeeID,
		"year":        year,
		"balances":    balances,
	})
}

func (h *Handler) employeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	if user.EmployeeID == nil {
		h.WriteError(w, http.StatusForbidden, "no employee profile for this account")
		return 0, false
	}
	return *user.EmployeeID, true
}

func (h *Handler) idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) pagination(r *http.Request) (int, int) {
	limit, offset := 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLeaveNotFound):
		h.WriteError(w, http.StatusNotFound, "leave request not found")
	case errors.Is(err, ErrUnauthorizedAccess):
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, ErrNotRequestOwner):
		h.WriteError(w, http.StatusForbidden, "only the requester can cancel this request")
	case errors.Is(err, ErrInvalidLeaveStatus):
		h.WriteError(w, http.StatusConflict, "request is not in a state that allows this action")
	case errors.Is(err, ErrNoWorkingDays):
		h.WriteError(w, http.StatusBadRequest, "requested range contains no working days")
	case errors.Is(err, balance.ErrInsufficientBalance):
		h.WriteError(w, http.StatusUnprocessableEntity, "insufficient leave balance")
	case errors.Is(err, balance.ErrUnknownLeaveType):
		h.WriteError(w, http.StatusBadRequest, "unknown leave type")
	case errors.Is(err, balance.ErrBalanceNotFound):
		h.WriteError(w, http.StatusUnprocessableEntity, "no balance row for this leave type")
	default:
		h.Logger.Error("leave operation failed", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
	}
}
