package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"license-admin-go/internal/core"
	"license-admin-go/internal/middleware"
)

// SetupRoutes configures all the application routes. Global middleware
// (request id, logging, recovery, CORS) is applied by the caller.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	licenseService core.LicenseService,
	authMW *middleware.AuthMiddleware,
) {
	licenseHandler := NewLicenseHandler(licenseService, logger)
	authHandler := NewAuthHandler(licenseService, logger)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/auth/signin-failure", authHandler.SignInFailure)

		operatorGroup := apiV1.Group("", authMW.RequireOperator())
		{
			operatorGroup.POST("/auth/signout", authHandler.SignOut)
			operatorGroup.GET("/session", licenseHandler.GetDashboard)
			operatorGroup.GET("/summary", licenseHandler.GetSummary)
			operatorGroup.POST("/trials", licenseHandler.ActivateTrials)

			usersGroup := operatorGroup.Group("/users")
			{
				usersGroup.GET("", licenseHandler.ListUsers)
				usersGroup.POST("/reload", licenseHandler.ReloadUsers)
				usersGroup.PUT("/filter", licenseHandler.SetFilter)
				usersGroup.POST("/:id/pro", licenseHandler.TogglePro)
				usersGroup.GET("/:id/detail", licenseHandler.OpenUserDetail)
				usersGroup.PUT("/:id/detail", licenseHandler.SaveUserDetails)
				usersGroup.DELETE("/:id/detail", licenseHandler.CloseUserDetail)
				usersGroup.POST("/:id/payments", licenseHandler.AddPayment)
				usersGroup.DELETE("/:id/payments/:index", licenseHandler.RemovePayment)
			}
		}
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "License admin backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1, /ping and /health.")
}
