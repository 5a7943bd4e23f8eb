package analytics

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

type ServiceAPI interface {
	Summary(user *auth.User, q Query) (*Summary, error)
	Departments(user *auth.User, q Query) ([]DepartmentStat, error)
	Users(user *auth.User, q Query) ([]UserStat, error)
	TrendSeries(user *auth.User, q Query, g Granularity) ([]TrendPoint, error)
	Rows(user *auth.User, q Query) ([]Row, error)
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

// ParseQuery reads the shared analytics filters from the query string.
func ParseQuery(r *http.Request) Query {
	values := r.URL.Query()

	q := Query{
		Department: values.Get("department"),
	}
	if d, err := timesheet.ParseDateOnly(values.Get("startDate")); err == nil {
		q.StartDate = &d
	}
	if d, err := timesheet.ParseDateOnly(values.Get("endDate")); err == nil {
		q.EndDate = &d
	}
	if v, err := strconv.ParseFloat(values.Get("expectedHours"), 64); err == nil && v > 0 && v <= 24 {
		q.ExpectedHours = v
	}
	return q
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.Service.Summary(user, ParseQuery(r))
	if err != nil {
		h.Logger.Error("GetSummary: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.Service.Departments(user, ParseQuery(r))
	if err != nil {
		h.Logger.Error("GetDepartments: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": stats})
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.Service.Users(user, ParseQuery(r))
	if err != nil {
		h.Logger.Error("GetUsers: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": stats})
}

func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	granularity, err := ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := h.Service.TrendSeries(user, ParseQuery(r), granularity)
	if err != nil {
		h.Logger.Error("GetTrends: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"granularity": granularity,
		"trends":      points,
	})
}

// Export streams the scoped entries as a CSV attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.Service.Rows(user, ParseQuery(r))
	if err != nil {
		h.Logger.Error("Export: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("timesheet-export-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := WriteCSV(w, rows); err != nil {
		h.Logger.Error("Export: failed to write csv", "error", err, "user_id", user.ID)
	}
}
