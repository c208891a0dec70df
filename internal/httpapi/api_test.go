package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/staff-attendance/internal/annualplan"
	"github.com/username/staff-attendance/internal/attendance"
	"github.com/username/staff-attendance/internal/calendar"
	"github.com/username/staff-attendance/internal/employee"
	"github.com/username/staff-attendance/internal/shift"
	"github.com/username/staff-attendance/internal/storage/sqlite"
)

const testSecret = "test-secret-0123456789abcdef012345"

var jst = attendance.FixedZone(attendance.DefaultUTCOffsetHours)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorDetail    `json:"error"`
}

type testAPI struct {
	handler http.Handler
	clock   *stubClock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	store, err := sqlite.Open(":memory:", jst, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = employee.Bootstrap(ctx, store.Employees(), []employee.Member{
		{ID: "古賀", DisplayName: "古賀", Password: "1234", Department: "事務局", Role: employee.RoleAdmin},
		{ID: "山本", DisplayName: "山本", Password: "5678", Department: "カヌーアカデミー", Role: employee.RoleStaff},
	})
	require.NoError(t, err)

	tmpl, err := shift.ParseTemplate("古賀", "08:30", "17:15", "sh")
	require.NoError(t, err)
	registry := shift.NewRegistry([]shift.Template{tmpl})

	cal := calendar.NewStaticCalendar()
	clock := &stubClock{now: time.Date(2025, 1, 15, 8, 58, 0, 0, jst)}
	svc := attendance.NewService(
		store.Attendance(),
		attendance.NewReconciler(store.Attendance(), cal, registry, jst, logger),
		attendance.NewAggregator(cal, jst),
		clock,
		store,
		attendance.Options{WorkTag: "Academy"},
		logger,
	)
	plans := annualplan.NewService(store.Plans(), svc, logger)

	h := NewHandler(svc, plans, store.Employees(),
		employee.NewAuthenticator(store.Employees(), logger),
		NewTokenService(testSecret, time.Hour), logger)

	return &testAPI{handler: NewRouter(h, nil, logger), clock: clock}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (a *testAPI) login(t *testing.T, id, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{EmployeeID: id, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{EmployeeID: "古賀", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid employee id or password", env.Error.Message)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{EmployeeID: "nobody", Password: "1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := api.login(t, "古賀", "1234")

	rec = api.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me employee.Employee
	decode(t, rec, &me)
	assert.Equal(t, "古賀", me.ID)
	assert.Equal(t, employee.RoleAdmin, me.Role)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/today", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/attendance/today", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClockFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "古賀", "1234")

	var today todayResponse
	rec := api.do(t, http.MethodGet, "/api/v1/attendance/today", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &today)
	assert.Equal(t, attendance.StatusNotStarted, today.Status)
	assert.Equal(t, "2025-01-15", today.Date)

	rec = api.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/attendance/today", token, nil)
	decode(t, rec, &today)
	assert.Equal(t, attendance.StatusWorking, today.Status)
	require.NotNil(t, today.Record)
	assert.Equal(t, "08:58", today.Record.ActualStart)

	api.clock.now = time.Date(2025, 1, 15, 17, 32, 0, 0, jst)
	rec = api.do(t, http.MethodPost, "/api/v1/attendance/clock-out", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/v1/attendance/today", token, nil)
	today = todayResponse{}
	decode(t, rec, &today)
	assert.Equal(t, attendance.StatusClockedOut, today.Status)

	var month monthResponse
	rec = api.do(t, http.MethodGet, "/api/v1/attendance/months/2025/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &month)
	day := month.View.Days[14]
	assert.Equal(t, "08:58", day.ActualStart)
	assert.Equal(t, "17:32", day.ActualEnd)
	assert.InDelta(t, 7.57, day.ActualHours, 0.005)

	rec = api.do(t, http.MethodPost, "/api/v1/attendance/reset-today", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/v1/attendance/today", token, nil)
	today = todayResponse{}
	decode(t, rec, &today)
	assert.Equal(t, attendance.StatusNotStarted, today.Status)
}

func TestMonthViewPreviewSave(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "古賀", "1234")

	var month monthResponse
	rec := api.do(t, http.MethodGet, "/api/v1/attendance/months/2025/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &month)
	require.NotNil(t, month.Seed)
	assert.Len(t, month.Seed.Seeded, 19)
	assert.Len(t, month.View.Days, 31)
	assert.Equal(t, "08:30", month.View.Days[5].ScheduledStart)
	assert.True(t, month.View.Days[0].IsHoliday)

	// Second view seeds nothing
	month = monthResponse{}
	rec = api.do(t, http.MethodGet, "/api/v1/attendance/months/2025/1", token, nil)
	decode(t, rec, &month)
	assert.Empty(t, month.Seed.Seeded)

	start, end, note := "０９：００", "17:00", "研修"
	edits := attendance.EditState{Days: map[int]attendance.DayInput{
		6: {ActualStart: &start, ActualEnd: &end, Note: &note},
	}}

	month = monthResponse{}
	rec = api.do(t, http.MethodPost, "/api/v1/attendance/months/2025/1/preview", token, edits)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &month)
	assert.Equal(t, "09:00", month.View.Days[5].ActualStart)
	assert.InDelta(t, 7.0, month.View.Days[5].ActualHours, 1e-9)

	// Preview writes nothing
	month = monthResponse{}
	rec = api.do(t, http.MethodGet, "/api/v1/attendance/months/2025/1", token, nil)
	decode(t, rec, &month)
	assert.Equal(t, "", month.View.Days[5].ActualStart)

	month = monthResponse{}
	rec = api.do(t, http.MethodPut, "/api/v1/attendance/months/2025/1", token, edits)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &month)
	assert.Equal(t, "研修", month.View.Days[5].Note)
	assert.InDelta(t, 7.0, month.View.Totals.ActualHours, 1e-9)

	var progress annualplan.Progress
	rec = api.do(t, http.MethodGet, "/api/v1/attendance/years/2025", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &progress)
	require.Len(t, progress.Months, 12)
	assert.InDelta(t, 7.0, progress.Months[0].ActualHours, 1e-9)
	assert.False(t, progress.HasPlan)
}

func TestMonthValidation(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "古賀", "1234")

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/months/2025/13", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/attendance/months/1999/1", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/attendance/months/abc/1", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	leave := "vacation"
	edits := attendance.EditState{Days: map[int]attendance.DayInput{3: {LeaveType: &leave}}}
	rec = api.do(t, http.MethodPut, "/api/v1/attendance/months/2025/1", token, edits)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	note := "月末"
	edits = attendance.EditState{Days: map[int]attendance.DayInput{31: {Note: &note}}}
	rec = api.do(t, http.MethodPut, "/api/v1/attendance/months/2025/2", token, edits)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportMonth(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "古賀", "1234")

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/months/2025/1/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance-2025-01.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestAdminRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "古賀", "1234")
	staff := api.login(t, "山本", "5678")

	rec := api.do(t, http.MethodGet, "/api/v1/employees", staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var employees []employee.Employee
	rec = api.do(t, http.MethodGet, "/api/v1/employees", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &employees)
	assert.Len(t, employees, 2)

	planPath := "/api/v1/plans/2025/" + url.PathEscape("山本")
	rec = api.do(t, http.MethodPut, planPath, staff, setPlanRequest{AnnualHours: 1200})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPut, planPath, admin, setPlanRequest{AnnualHours: 1200})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPut, "/api/v1/plans/2025/"+url.PathEscape("不明"), admin, setPlanRequest{AnnualHours: 1200})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPut, planPath, admin, setPlanRequest{AnnualHours: -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var plans map[string]int
	rec = api.do(t, http.MethodGet, "/api/v1/plans/2025", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &plans)
	assert.Equal(t, map[string]int{"山本": 1200}, plans)

	var progress annualplan.Progress
	rec = api.do(t, http.MethodGet, "/api/v1/attendance/years/2025", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &progress)
	assert.True(t, progress.HasPlan)
	assert.InDelta(t, 1200.0, progress.TargetHours, 1e-9)
}

func TestHeartbeat(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
