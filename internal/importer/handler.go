package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hrplatform/leave-management/internal/auth"
	"github.com/hrplatform/leave-management/internal/leave"
	"github.com/hrplatform/leave-management/internal/transport"
)

const maxImportSize = 10 << 20 // 10 MiB

type ServiceAPI interface {
	Import(ctx context.Context, r io.Reader) (*Report, error)
	Export(ctx context.Context, w io.Writer) error
	ExportLeaveReport(w io.Writer, filter leave.ReportFilter, userPermissions []string) error
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

// ImportEmployees accepts a multipart upload with a "file" part containing
// the employee CSV and responds with the per-row report.
func (h *Handler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	report, err := h.Service.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, ErrMissingHeader) {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("employee import failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "import failed")
		return
	}

	status := http.StatusOK
	if report.Imported == 0 && report.Failed > 0 {
		status = http.StatusUnprocessableEntity
	}
	h.WriteJSON(w, status, report)
}

// ExportEmployees streams the employee roster as a CSV download.
func (h *Handler) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("employees-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.Service.Export(r.Context(), w); err != nil {
		h.Logger.Error("employee export failed", "error", err)
	}
}

// ExportLeaveReport streams the filtered leave report as a CSV download.
// Query params: year, department_id, status.
func (h *Handler) ExportLeaveReport(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var filter leave.ReportFilter
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		filter.Year = year
	}
	if v := r.URL.Query().Get("department_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid department_id")
			return
		}
		filter.DepartmentID = id
	}
	filter.Status = r.URL.Query().Get("status")

	filename := fmt.Sprintf("leave-report-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.Service.ExportLeaveReport(w, filter, principal.Permissions); err != nil {
		if errors.Is(err, leave.ErrUnauthorizedAccess) {
			h.WriteError(w, http.StatusForbidden, "manager permission required")
			return
		}
		h.Logger.Error("leave report export failed", "error", err)
	}
}
