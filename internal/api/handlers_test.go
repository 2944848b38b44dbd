package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"license-admin-go/internal/core"
	"license-admin-go/internal/middleware"
	"license-admin-go/internal/models"
)

// stubService records calls and returns canned results.
type stubService struct {
	err         error
	lastFilter  string
	lastTerm    string
	lastUserID  string
	lastIndex   int
	confirmed   bool
	ended       bool
	toggleReq   models.TogglePRORequest
	trialsReq   models.ActivateTrialsRequest
	paymentReq  models.AddPaymentRequest
	detailsReq  models.UpdateUserDetailsRequest
	searchCalls int
}

func (s *stubService) view(op string) *core.DashboardView {
	return &core.DashboardView{Operator: op, Filter: core.Filter(s.lastFilter), SearchTerm: s.lastTerm}
}

func (s *stubService) Dashboard(_ context.Context, op string) (*core.DashboardView, error) {
	return s.view(op), s.err
}

func (s *stubService) Load(_ context.Context, op string) (*core.ActionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.ActionResult{Notice: core.SuccessNotice("✅ 0 usuários carregados!"), Dashboard: s.view(op)}, nil
}

func (s *stubService) Search(_ context.Context, op, term string) (*core.DashboardView, error) {
	s.searchCalls++
	s.lastTerm = term
	return s.view(op), s.err
}

func (s *stubService) SetFilter(_ context.Context, op, filter string) (*core.DashboardView, error) {
	if _, err := core.ParseFilter(filter); err != nil {
		return nil, err
	}
	s.lastFilter = filter
	return s.view(op), s.err
}

func (s *stubService) TogglePro(_ context.Context, _, userID string, req models.TogglePRORequest) (*core.ActionResult, error) {
	s.lastUserID, s.toggleReq = userID, req
	if s.err != nil {
		return nil, s.err
	}
	return &core.ActionResult{Notice: core.SuccessNotice("ok")}, nil
}

func (s *stubService) ActivateTrials(_ context.Context, _ string, req models.ActivateTrialsRequest) (*core.TrialActivationResult, error) {
	s.trialsReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &core.TrialActivationResult{Activated: 1, Pending: 1, Summary: "1 ativados, 1 pendentes"}, nil
}

func (s *stubService) OpenUserDetail(_ context.Context, _, userID string) (*core.DetailView, error) {
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return &core.DetailView{User: core.UserView{ID: userID}}, nil
}

func (s *stubService) CloseUserDetail(_ context.Context, _ string) error { return s.err }

func (s *stubService) SaveUserDetails(_ context.Context, _, userID string, req models.UpdateUserDetailsRequest) (*core.ActionResult, error) {
	s.lastUserID, s.detailsReq = userID, req
	if s.err != nil {
		return nil, s.err
	}
	return &core.ActionResult{Notice: core.SuccessNotice("✅ Dados salvos!")}, nil
}

func (s *stubService) AddPayment(_ context.Context, _, userID string, req models.AddPaymentRequest) (*core.ActionResult, error) {
	s.lastUserID, s.paymentReq = userID, req
	if s.err != nil {
		return nil, s.err
	}
	return &core.ActionResult{Notice: core.SuccessNotice("✅ Pagamento adicionado!")}, nil
}

func (s *stubService) RemovePayment(_ context.Context, _, userID string, index int, confirmed bool) (*core.ActionResult, error) {
	s.lastUserID, s.lastIndex, s.confirmed = userID, index, confirmed
	if s.err != nil {
		return nil, s.err
	}
	return &core.ActionResult{Notice: core.SuccessNotice("✅ Pagamento removido!")}, nil
}

func (s *stubService) Summary(_ context.Context, _ string) (*core.SummaryView, error) {
	return &core.SummaryView{Financial: core.FinancialSummary{Label: "0 de 0"}}, s.err
}

func (s *stubService) EndSession(_ context.Context, _ string) error {
	s.ended = true
	return s.err
}

// newTestRouter mounts the handlers behind a stand-in for the auth middleware.
func newTestRouter(svc core.LicenseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyOperator, "ops@example.com")
		c.Next()
	})
	h := NewLicenseHandler(svc, zap.NewNop())
	a := NewAuthHandler(svc, zap.NewNop())
	g := r.Group("/api/v1")
	g.POST("/auth/signin-failure", a.SignInFailure)
	g.POST("/auth/signout", a.SignOut)
	g.GET("/session", h.GetDashboard)
	g.GET("/summary", h.GetSummary)
	g.POST("/trials", h.ActivateTrials)
	g.GET("/users", h.ListUsers)
	g.POST("/users/reload", h.ReloadUsers)
	g.PUT("/users/filter", h.SetFilter)
	g.POST("/users/:id/pro", h.TogglePro)
	g.GET("/users/:id/detail", h.OpenUserDetail)
	g.PUT("/users/:id/detail", h.SaveUserDetails)
	g.DELETE("/users/:id/detail", h.CloseUserDetail)
	g.POST("/users/:id/payments", h.AddPayment)
	g.DELETE("/users/:id/payments/:index", h.RemovePayment)
	return r
}

func perform(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListUsersAppliesFilterThenSearch(t *testing.T) {
	svc := &stubService{}
	w := perform(newTestRouter(svc), http.MethodGet, "/api/v1/users?filter=trial&q=ana", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view core.DashboardView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, core.FilterTrial, view.Filter)
	assert.Equal(t, "ana", view.SearchTerm)
	assert.Equal(t, 1, svc.searchCalls)
}

func TestListUsersWithoutQueryKeepsSearch(t *testing.T) {
	svc := &stubService{}
	w := perform(newTestRouter(svc), http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, svc.searchCalls)
}

func TestInvalidFilterIsBadRequest(t *testing.T) {
	svc := &stubService{}
	w := perform(newTestRouter(svc), http.MethodPut, "/api/v1/users/filter", gin.H{"filter": "paid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(newTestRouter(svc), http.MethodPut, "/api/v1/users/filter", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTogglePro(t *testing.T) {
	svc := &stubService{}
	w := perform(newTestRouter(svc), http.MethodPost, "/api/v1/users/u1/pro", gin.H{"activate": true, "plan": "vip", "confirmed": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.lastUserID)
	assert.Equal(t, models.TogglePRORequest{Activate: true, Plan: "vip", Confirmed: true}, svc.toggleReq)
}

func TestConfirmationRequiredCarriesPrompt(t *testing.T) {
	svc := &stubService{err: &core.ConfirmationError{Prompt: "Ativar PRO para ana@example.com?"}}
	w := perform(newTestRouter(svc), http.MethodPost, "/api/v1/users/u1/pro", gin.H{"activate": true})
	require.Equal(t, http.StatusPreconditionRequired, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, "Ativar PRO para ana@example.com?", resp.Prompt)
	assert.Nil(t, resp.Notice)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("%w: u9", core.ErrUserNotFound), http.StatusNotFound},
		{"payment not found", core.ErrPaymentNotFound, http.StatusNotFound},
		{"validation", core.ErrInvalidPayment, http.StatusBadRequest},
		{"no selection", core.ErrNoUserSelected, http.StatusConflict},
		{"store", fmt.Errorf("%w: add payment: %w", core.ErrStore, errors.New("deadline exceeded")), http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			w := perform(newTestRouter(svc), http.MethodPost, "/api/v1/users/u1/payments", gin.H{"date": "2025-03-01", "value": 10})
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			require.NotNil(t, resp.Notice)
			assert.Equal(t, core.NoticeLevelError, resp.Notice.Level)
		})
	}
}

func TestNoticeErrorIsForwarded(t *testing.T) {
	svc := &stubService{err: &core.NoticeError{
		Notice: core.WarningNotice("⚠️ Cole a lista de emails primeiro!"),
		Err:    core.ErrEmptyEmailList,
	}}
	w := perform(newTestRouter(svc), http.MethodPost, "/api/v1/trials", gin.H{"emails": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeError(t, w)
	require.NotNil(t, resp.Notice)
	assert.Equal(t, core.NoticeLevelWarning, resp.Notice.Level)
	assert.Equal(t, "⚠️ Cole a lista de emails primeiro!", resp.Notice.Message)
}

func TestActivateTrials(t *testing.T) {
	svc := &stubService{}
	w := perform(newTestRouter(svc), http.MethodPost, "/api/v1/trials", gin.H{"emails": "a@x.com\nb@x.com", "confirmed": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@x.com\nb@x.com", svc.trialsReq.Emails)

	var res core.TrialActivationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "1 ativados, 1 pendentes", res.Summary)
}

func TestPaymentRoutes(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	w := perform(r, http.MethodPost, "/api/v1/users/m1/payments", gin.H{"date": "2025-03-01", "value": 49.9, "note": "pix"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.AddPaymentRequest{Date: "2025-03-01", Value: 49.9, Note: "pix"}, svc.paymentReq)

	w = perform(r, http.MethodDelete, "/api/v1/users/m1/payments/2?confirmed=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.lastIndex)
	assert.True(t, svc.confirmed)

	w = perform(r, http.MethodDelete, "/api/v1/users/m1/payments/first", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetailRoutes(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	w := perform(r, http.MethodGet, "/api/v1/users/m1/detail", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodPut, "/api/v1/users/m1/detail", gin.H{
		"contactInfo": "+55", "monthlyValue": 100, "notes": "n", "proActivatedBy": "gift",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.detailsReq.MonthlyValue)
	assert.Equal(t, 100.0, *svc.detailsReq.MonthlyValue)

	w = perform(r, http.MethodDelete, "/api/v1/users/m1/detail", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSignInFailureNotice(t *testing.T) {
	w := perform(newTestRouter(&stubService{}), http.MethodPost, "/api/v1/auth/signin-failure",
		gin.H{"code": "auth/popup-closed-by-user", "message": "closed"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Notice)
	assert.Equal(t, "⚠️ Login cancelado", resp.Notice.Message)
}

func TestSignOutEndsSession(t *testing.T) {
	svc := &stubService{}
	w := perform(newTestRouter(svc), http.MethodPost, "/api/v1/auth/signout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.ended)
	assert.Contains(t, w.Body.String(), "Logout realizado")
}

func TestHandlersRequireOperator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewLicenseHandler(&stubService{}, nil)
	r.GET("/session", h.GetDashboard)

	w := perform(r, http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
