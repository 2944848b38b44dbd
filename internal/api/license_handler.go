package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"license-admin-go/internal/core"
	"license-admin-go/internal/middleware"
	"license-admin-go/internal/models"
)

// LicenseHandler handles the operator endpoints of the license dashboard.
type LicenseHandler struct {
	licenseService core.LicenseService
	logger         *zap.Logger
}

// NewLicenseHandler creates a new LicenseHandler.
func NewLicenseHandler(ls core.LicenseService, logger *zap.Logger) *LicenseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LicenseHandler{licenseService: ls, logger: logger}
}

// mapLicenseErrorToStatus maps errors from core.LicenseService to HTTP status codes and ErrorResponse.
func mapLicenseErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var (
		statusCode  int
		errResponse ErrorResponse
		confirm     *core.ConfirmationError
	)

	switch {
	case errors.As(err, &confirm):
		statusCode = http.StatusPreconditionRequired
		errResponse = ErrorResponse{Error: core.ErrConfirmationRequired.Error(), Prompt: confirm.Prompt}
	case errors.Is(err, core.ErrUserNotFound), errors.Is(err, core.ErrPaymentNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Not found", Details: err.Error()}
	case errors.Is(err, core.ErrInvalidFilter),
		errors.Is(err, core.ErrEmptyEmailList),
		errors.Is(err, core.ErrNoValidEmails),
		errors.Is(err, core.ErrInvalidPayment),
		errors.Is(err, core.ErrInvalidActivationSource),
		errors.Is(err, core.ErrInvalidMonthlyValue):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, core.ErrNoUserSelected):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrNoUserSelected.Error()}
	case errors.Is(err, core.ErrAccessDenied):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrAccessDenied.Error()}
	case errors.Is(err, core.ErrStore):
		logger.Error("Document store failure", zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)), zap.Error(err))
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: "Document store operation failed"}
	default:
		logger.Error("Internal Server Error", zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}

	var withNotice *core.NoticeError
	if errors.As(err, &withNotice) {
		n := withNotice.Notice
		errResponse.Notice = &n
	} else if confirm == nil {
		n := core.ErrorNotice("❌ Erro: " + errResponse.Error)
		errResponse.Notice = &n
	}
	c.JSON(statusCode, errResponse)
}

func operator(c *gin.Context) (string, bool) {
	op := c.GetString(middleware.ContextKeyOperator)
	if op == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Operator not found in context"})
		return "", false
	}
	return op, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return false
	}
	return true
}

// GetDashboard handles GET /session
func (h *LicenseHandler) GetDashboard(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	view, err := h.licenseService.Dashboard(c.Request.Context(), op)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ReloadUsers handles POST /users/reload
func (h *LicenseHandler) ReloadUsers(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	res, err := h.licenseService.Load(c.Request.Context(), op)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListUsers handles GET /users?filter=&q=. A filter given here becomes the
// active filter; q replaces the search term when present.
func (h *LicenseHandler) ListUsers(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		view *core.DashboardView
		err  error
	)
	if filter, set := c.GetQuery("filter"); set {
		if view, err = h.licenseService.SetFilter(ctx, op, filter); err != nil {
			mapLicenseErrorToStatus(c, h.logger, err)
			return
		}
	}
	if term, set := c.GetQuery("q"); set {
		view, err = h.licenseService.Search(ctx, op, term)
	} else if view == nil {
		view, err = h.licenseService.Dashboard(ctx, op)
	}
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetFilter handles PUT /users/filter
func (h *LicenseHandler) SetFilter(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	var req models.SetFilterRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.licenseService.SetFilter(c.Request.Context(), op, req.Filter)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// TogglePro handles POST /users/:id/pro
func (h *LicenseHandler) TogglePro(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	var req models.TogglePRORequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.licenseService.TogglePro(c.Request.Context(), op, c.Param("id"), req)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ActivateTrials handles POST /trials
func (h *LicenseHandler) ActivateTrials(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	var req models.ActivateTrialsRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.licenseService.ActivateTrials(c.Request.Context(), op, req)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// OpenUserDetail handles GET /users/:id/detail
func (h *LicenseHandler) OpenUserDetail(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	detail, err := h.licenseService.OpenUserDetail(c.Request.Context(), op, c.Param("id"))
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CloseUserDetail handles DELETE /users/:id/detail
func (h *LicenseHandler) CloseUserDetail(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	if err := h.licenseService.CloseUserDetail(c.Request.Context(), op); err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveUserDetails handles PUT /users/:id/detail
func (h *LicenseHandler) SaveUserDetails(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	var req models.UpdateUserDetailsRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.licenseService.SaveUserDetails(c.Request.Context(), op, c.Param("id"), req)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AddPayment handles POST /users/:id/payments
func (h *LicenseHandler) AddPayment(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	var req models.AddPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.licenseService.AddPayment(c.Request.Context(), op, c.Param("id"), req)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// RemovePayment handles DELETE /users/:id/payments/:index?confirmed=true
func (h *LicenseHandler) RemovePayment(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Payment index must be an integer", Details: err.Error()})
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirmed"))

	res, err := h.licenseService.RemovePayment(c.Request.Context(), op, c.Param("id"), index, confirmed)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetSummary handles GET /summary
func (h *LicenseHandler) GetSummary(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	sum, err := h.licenseService.Summary(c.Request.Context(), op)
	if err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
