package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"license-admin-go/internal/core"
	"license-admin-go/internal/models"
)

// AuthHandler handles sign-in feedback and sign-out.
type AuthHandler struct {
	licenseService core.LicenseService
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(ls core.LicenseService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{licenseService: ls, logger: logger}
}

// SignInFailure handles POST /auth/signin-failure. The client reports a
// failed sign-in and gets back the notice to show.
func (h *AuthHandler) SignInFailure(c *gin.Context) {
	var req models.SignInFailureRequest
	if !bindJSON(c, &req) {
		return
	}
	notice := core.SignInFailureNotice(req.Code, req.Message)
	h.logger.Info("Sign-in failed", zap.String("code", req.Code), zap.String("level", string(notice.Level)))
	c.JSON(http.StatusOK, SuccessResponse{Message: "sign-in failure recorded", Notice: &notice})
}

// SignOut handles POST /auth/signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	if err := h.licenseService.EndSession(c.Request.Context(), op); err != nil {
		mapLicenseErrorToStatus(c, h.logger, err)
		return
	}
	notice := core.SuccessNotice("✅ Logout realizado!")
	c.JSON(http.StatusOK, SuccessResponse{Message: "signed out", Notice: &notice})
}
