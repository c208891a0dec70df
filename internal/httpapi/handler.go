package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/username/staff-attendance/internal/annualplan"
	"github.com/username/staff-attendance/internal/attendance"
	"github.com/username/staff-attendance/internal/employee"
	"github.com/username/staff-attendance/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Authenticator checks login credentials
type Authenticator interface {
	Authenticate(ctx context.Context, id, password string) (*employee.Employee, error)
}

// Handler serves the attendance API
type Handler struct {
	attendance *attendance.Service
	plans      *annualplan.Service
	employees  employee.Repository
	auth       Authenticator
	tokens     *TokenService
	logger     *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(
	attendanceService *attendance.Service,
	plans *annualplan.Service,
	employees employee.Repository,
	auth Authenticator,
	tokens *TokenService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		attendance: attendanceService,
		plans:      plans,
		employees:  employees,
		auth:       auth,
		tokens:     tokens,
		logger:     logger,
	}
}

type loginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Employee  *employee.Employee `json:"employee"`
}

// Login exchanges credentials for a token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.EmployeeID == "" || req.Password == "" {
		BadRequest(w, "employee_id and password are required", nil)
		return
	}

	e, err := h.auth.Authenticate(r.Context(), req.EmployeeID, req.Password)
	if err != nil {
		h.logger.Error("Login failed", zap.Error(err))
		HandleError(w, err)
		return
	}
	if e == nil {
		Unauthorized(w, "invalid employee id or password")
		return
	}

	token, expiresAt, err := h.tokens.Issue(e)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		InternalServerError(w, "Failed to issue token")
		return
	}

	Success(w, loginResponse{Token: token, ExpiresAt: expiresAt, Employee: e})
}

// Me returns the caller's roster entry
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	e, err := h.employees.FindByID(r.Context(), callerFrom(r).EmployeeID)
	if err != nil {
		HandleError(w, err)
		return
	}
	Success(w, e)
}

type recordResponse struct {
	Date               string `json:"date"`
	ScheduledStart     string `json:"scheduled_start,omitempty"`
	ScheduledEnd       string `json:"scheduled_end,omitempty"`
	ActualStart        string `json:"actual_start,omitempty"`
	ActualEnd          string `json:"actual_end,omitempty"`
	ActualBreakMinutes *int   `json:"actual_break_minutes,omitempty"`
	LeaveType          string `json:"leave_type,omitempty"`
	Note               string `json:"note,omitempty"`
	WorkTag            string `json:"work_tag,omitempty"`
}

type todayResponse struct {
	Date   string            `json:"date"`
	Status attendance.Status `json:"status"`
	Record *recordResponse   `json:"record,omitempty"`
}

func toRecordResponse(rec *attendance.Record) *recordResponse {
	if rec == nil {
		return nil
	}
	return &recordResponse{
		Date:               rec.Date.Format("2006-01-02"),
		ScheduledStart:     clockText(rec.ScheduledStart),
		ScheduledEnd:       clockText(rec.ScheduledEnd),
		ActualStart:        clockText(rec.ActualStart),
		ActualEnd:          clockText(rec.ActualEnd),
		ActualBreakMinutes: rec.ActualBreakMinutes,
		LeaveType:          string(rec.LeaveType),
		Note:               rec.Note,
		WorkTag:            rec.WorkTag,
	}
}

func clockText(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

// Today returns today's record and clock state
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	today, err := h.attendance.Today(r.Context(), callerFrom(r).EmployeeID)
	if err != nil {
		HandleError(w, err)
		return
	}
	Success(w, todayResponse{
		Date:   h.attendance.CurrentDate().Format("2006-01-02"),
		Status: today.Status,
		Record: toRecordResponse(today.Record),
	})
}

// ClockIn stamps the start of work
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	rec, err := h.attendance.ClockIn(r.Context(), callerFrom(r).EmployeeID)
	if err != nil {
		HandleError(w, err)
		return
	}
	SuccessWithMessage(w, "Clocked in", toRecordResponse(rec))
}

// ClockOut stamps the end of work
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	rec, err := h.attendance.ClockOut(r.Context(), callerFrom(r).EmployeeID)
	if err != nil {
		HandleError(w, err)
		return
	}
	SuccessWithMessage(w, "Clocked out", toRecordResponse(rec))
}

// ResetToday clears today's record
func (h *Handler) ResetToday(w http.ResponseWriter, r *http.Request) {
	if err := h.attendance.ResetToday(r.Context(), callerFrom(r).EmployeeID); err != nil {
		HandleError(w, err)
		return
	}
	SuccessWithMessage(w, "Today's record was reset", nil)
}

type monthResponse struct {
	View *attendance.MonthView  `json:"view"`
	Seed *attendance.SeedResult `json:"seed,omitempty"`
}

// ViewMonth seeds the month and returns the grid
func (h *Handler) ViewMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}

	view, seed, err := h.attendance.ViewMonth(r.Context(), callerFrom(r).EmployeeID, year, month, nil)
	if err != nil {
		HandleError(w, err)
		return
	}
	Success(w, monthResponse{View: view, Seed: seed})
}

// PreviewMonth recomputes the grid with the posted edits
func (h *Handler) PreviewMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	edits, ok := decodeEdits(w, r)
	if !ok {
		return
	}

	view, err := h.attendance.PreviewMonth(r.Context(), callerFrom(r).EmployeeID, year, month, edits)
	if err != nil {
		HandleError(w, err)
		return
	}
	Success(w, monthResponse{View: view})
}

// SaveMonth persists the edited grid
func (h *Handler) SaveMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	edits, ok := decodeEdits(w, r)
	if !ok {
		return
	}

	view, err := h.attendance.SaveMonth(r.Context(), callerFrom(r).EmployeeID, year, month, edits)
	if err != nil {
		HandleError(w, err)
		return
	}
	SuccessWithMessage(w, "Saved", monthResponse{View: view})
}

// ExportMonth downloads the grid as xlsx
func (h *Handler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	caller := callerFrom(r)

	view, _, err := h.attendance.ViewMonth(r.Context(), caller.EmployeeID, year, month, nil)
	if err != nil {
		HandleError(w, err)
		return
	}

	displayName := caller.EmployeeID
	if e, err := h.employees.FindByID(r.Context(), caller.EmployeeID); err == nil {
		displayName = e.DisplayName
	}

	f, err := export.MonthWorkbook(view, displayName)
	if err != nil {
		h.logger.Error("Failed to render timesheet", zap.Error(err))
		InternalServerError(w, "Failed to render timesheet")
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%04d-%02d.xlsx"`, year, int(month)))
	if err := f.Write(w); err != nil {
		h.logger.Error("Failed to stream timesheet", zap.Error(err))
	}
}

// YearProgress returns the monthly breakdown and plan progress
func (h *Handler) YearProgress(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		BadRequest(w, "Invalid year", nil)
		return
	}

	progress, err := h.plans.Progress(r.Context(), callerFrom(r).EmployeeID, year)
	if err != nil {
		HandleError(w, err)
		return
	}
	Success(w, progress)
}

// ListEmployees returns the roster
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employees.List(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	Success(w, employees)
}

// ListPlans returns every plan of the year keyed by employee
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		BadRequest(w, "Invalid year", nil)
		return
	}

	plans, err := h.plans.ListYear(r.Context(), year)
	if err != nil {
		HandleError(w, err)
		return
	}
	Success(w, plans)
}

type setPlanRequest struct {
	AnnualHours int `json:"annual_hours"`
}

// SetPlan sets an employee's annual target hours
func (h *Handler) SetPlan(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		BadRequest(w, "Invalid year", nil)
		return
	}
	employeeID := chi.URLParam(r, "employeeID")

	var req setPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request format", nil)
		return
	}

	if _, err := h.employees.FindByID(r.Context(), employeeID); err != nil {
		HandleError(w, err)
		return
	}

	if err := h.plans.Set(r.Context(), employeeID, year, req.AnnualHours); err != nil {
		HandleError(w, err)
		return
	}
	SuccessWithMessage(w, "Plan saved", annualplan.Plan{EmployeeID: employeeID, Year: year, AnnualHours: req.AnnualHours})
}

func monthParams(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		BadRequest(w, "Invalid year", nil)
		return 0, 0, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		BadRequest(w, "Invalid month", nil)
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func decodeEdits(w http.ResponseWriter, r *http.Request) (*attendance.EditState, bool) {
	var edits attendance.EditState
	if err := json.NewDecoder(r.Body).Decode(&edits); err != nil {
		BadRequest(w, "Invalid request format", nil)
		return nil, false
	}
	return &edits, true
}
