package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evacreport/backend/internal/controllers"
	"github.com/evacreport/backend/internal/middleware"
	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

// HealthChecker is implemented by every store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries the services the routes are built from.
type Deps struct {
	Users     services.UserDirectory
	Reports   *services.ReportService
	Incidents *services.IncidentService
	Sessions  *services.SessionManager
	Health    HealthChecker
	JWTSecret string
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, deps Deps) {
	authController := controllers.NewAuthController(deps.Users, deps.JWTSecret)
	incidentController := controllers.NewIncidentController(deps.Reports, deps.Incidents)
	centerController := controllers.NewCenterController(deps.Reports)
	reportController := controllers.NewReportController(deps.Reports)
	sessionController := controllers.NewSessionController(deps.Sessions)
	userController := controllers.NewUserController(deps.Users)

	r.GET("/health", healthHandler(deps.Health))

	// API routes
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(deps.JWTSecret))
		{
			protected.POST("/auth/refresh", authController.RefreshToken)

			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
				users.GET("", middleware.RequireRole(models.RoleCentralOffice), userController.GetUsers)
			}

			incidents := protected.Group("/incidents")
			{
				incidents.GET("", incidentController.ListIncidents)
				incidents.GET("/:id", incidentController.GetIncident)

				admin := incidents.Group("")
				admin.Use(middleware.RequireRole(models.RoleCentralOffice))
				admin.POST("", incidentController.CreateIncident)
				admin.PUT("/:id", incidentController.UpdateIncident)
			}

			centers := protected.Group("/centers")
			{
				centers.GET("", centerController.Directory)
				centers.GET("/:id/report", centerController.Report)
			}

			reports := protected.Group("/reports")
			reports.Use(middleware.RequireRole(models.RoleCentralOffice))
			{
				reports.GET("/dashboard", reportController.Dashboard)
			}

			sessions := protected.Group("/sessions")
			{
				sessions.POST("", sessionController.Open)
				sessions.GET("/:id", sessionController.Get)
				sessions.DELETE("/:id", sessionController.Discard)
				sessions.POST("/:id/cancel", sessionController.Cancel)

				sessions.POST("/:id/select", sessionController.SelectCenter)
				sessions.PUT("/:id/center", sessionController.UpdateCenterDetails)
				sessions.PUT("/:id/sections/:section", sessionController.UpdateSection)

				sessions.POST("/:id/contacts", sessionController.AddContact)
				sessions.POST("/:id/contacts/:contactId/primary", sessionController.TogglePrimary)
				sessions.DELETE("/:id/contacts/:contactId", sessionController.RemoveContact)

				sessions.POST("/:id/groups", sessionController.AddSectoralGroup)
				sessions.PUT("/:id/groups/:groupId", sessionController.UpdateSectoralGroup)
				sessions.DELETE("/:id/groups/:groupId", sessionController.RemoveSectoralGroup)

				sessions.POST("/:id/media", sessionController.AddMedia)
				sessions.DELETE("/:id/media/:mediaId", sessionController.RemoveMedia)

				sessions.PUT("/:id/facilities/:kind", sessionController.SetFacility)

				sessions.POST("/:id/next", sessionController.Next)
				sessions.POST("/:id/previous", sessionController.Previous)
				sessions.POST("/:id/goto/:step", sessionController.GoTo)

				sessions.GET("/:id/centers", sessionController.SearchCenters)
				sessions.POST("/:id/queue", sessionController.CommitToQueue)
				sessions.POST("/:id/save", sessionController.SaveDraft)
				sessions.POST("/:id/resume", sessionController.Resume)
				sessions.POST("/:id/submit", sessionController.Submit)
			}
		}
	}
}

func healthHandler(store HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		storeStatus := "ok"
		var storeError string
		if store == nil {
			storeStatus = "error"
			storeError = "store not initialized"
		} else if err := store.Health(ctx); err != nil {
			storeStatus = "error"
			storeError = err.Error()
		}

		overallStatus := "ok"
		statusCode := http.StatusOK
		if storeStatus != "ok" {
			overallStatus = "error"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
			"services": gin.H{
				"store": gin.H{
					"status": storeStatus,
					"error":  storeError,
				},
			},
		})
	}
}
