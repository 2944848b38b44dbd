package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"license-admin-go/internal/core"
)

// AuthMiddleware verifies identity tokens and admits only allow-listed operators.
type AuthMiddleware struct {
	identity core.IdentityProvider
	gate     *core.AuthGate
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(identity core.IdentityProvider, gate *core.AuthGate, logger *zap.Logger) *AuthMiddleware {
	if identity == nil || gate == nil {
		panic("AuthMiddleware requires an identity provider and an auth gate")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{identity: identity, gate: gate, logger: logger}
}

// RequireOperator rejects requests without a valid bearer token (401) and
// requests from principals outside the allow-list (403). A denied principal
// is signed out shortly after.
func (m *AuthMiddleware) RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		principal, err := m.identity.Authenticate(c.Request.Context(), idToken)
		if err != nil {
			m.logger.Warn("Error verifying ID token",
				zap.String("request_id", c.GetString(ContextKeyRequestID)),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		decision := m.gate.Evaluate(principal)
		if !decision.Authorized {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    core.ErrAccessDenied.Error(),
				"notice":   decision.Notice,
				"decision": decision,
			})
			return
		}

		c.Set(ContextKeyOperator, decision.Operator)
		c.Set(ContextKeyUID, principal.UID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
