package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(caller *auth.User) ([]*CustomReport, error)
	Get(caller *auth.User, id int64) (*CustomReport, error)
	Create(caller *auth.User, dto SaveReportDTO) (*CustomReport, error)
	Update(caller *auth.User, id int64, dto SaveReportDTO) (*CustomReport, error)
	Delete(caller *auth.User, id int64) error
	SetSchedule(caller *auth.User, id int64, dto ScheduleDTO) (*CustomReport, error)
	Generate(caller *auth.User, id int64) (*RunResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) *auth.User {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}
	return user
}

func (h *Handler) reportID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid report id")
		return 0, false
	}
	return id, true
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	user := h.caller(w, r)
	if user == nil {
		return
	}

	reports, err := h.Service.List(user)
	if err != nil {
		h.Logger.Error("ListReports: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ReportsResponse{Reports: reports})
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	user := h.caller(w, r)
	if user == nil {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	rep, err := h.Service.Get(user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rep)
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	user := h.caller(w, r)
	if user == nil {
		return
	}

	var dto SaveReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rep, err := h.Service.Create(user, dto)
	if err != nil {
		h.Logger.Error("CreateReport: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, rep)
}

func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	user := h.caller(w, r)
	if user == nil {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	var dto SaveReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rep, err := h.Service.Update(user, id, dto)
	if err != nil {
		h.Logger.Error("UpdateReport: service error", "error", err, "user_id", user.ID, "report_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rep)
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	user := h.caller(w, r)
	if user == nil {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(user, id); err != nil {
		h.Logger.Error("DeleteReport: service error", "error", err, "user_id", user.ID, "report_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ScheduleReport(w http.ResponseWriter, r *http.Request) {
	user := h.caller(w, r)
	if user == nil {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	var dto ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rep, err := h.Service.SetSchedule(user, id, dto)
	if err != nil {
		h.Logger.Error("ScheduleReport: service error", "error", err, "user_id", user.ID, "report_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rep)
}

func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	user := h.caller(w, r)
	if user == nil {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Generate(user, id)
	if err != nil {
		h.Logger.Error("GenerateReport: service error", "error", err, "user_id", user.ID, "report_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// ExportReport streams the generated rows as CSV or XLSX, selected by
// the format query parameter.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	user := h.caller(w, r)
	if user == nil {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.WriteError(w, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}

	rep, err := h.Service.Get(user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Generate(user, id)
	if err != nil {
		h.Logger.Error("ExportReport: service error", "error", err, "user_id", user.ID, "report_id", id)
		h.HandleServiceError(w, err)
		return
	}

	base := fmt.Sprintf("%s-%s", sanitizeFilename(rep.Name), time.Now().Format("2006-01-02"))

	if format == "xlsx" {
		content, err := BuildXLSX(rep.ParseColumns(), result.Rows)
		if err != nil {
			h.Logger.Error("ExportReport: failed to build xlsx", "error", err, "report_id", id)
			h.WriteError(w, http.StatusInternalServerError, "failed to build spreadsheet")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+base+`.xlsx"`)
		w.Write(content)
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rep.ParseColumns(), result.Rows); err != nil {
		h.Logger.Error("ExportReport: failed to write csv", "error", err, "report_id", id)
		h.WriteError(w, http.StatusInternalServerError, "failed to build csv")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+base+`.csv"`)
	w.Write(buf.Bytes())
}
