package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/deniz/stajlink/internal/app/controllers"
	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/middleware"
	"github.com/deniz/stajlink/internal/pkg/metrics"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	applicationController *controllers.ApplicationController,
	logbookController *controllers.LogbookController,
	companyController *controllers.CompanyController,
	adminController *controllers.AdminController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// Authenticated auth routes
	authProtected := v1.Group("/auth")
	authProtected.Use(authMiddleware.JWTAuth())
	{
		authProtected.POST("/logout", authController.Logout)
		authProtected.GET("/profile", authController.GetProfile)
	}

	// --- Company routes ---
	// Login endpoints are public, everything else needs a verified session
	sirket := v1.Group("/sirket")
	{
		sirket.POST("/giris", companyController.RequestOTP)
		sirket.POST("/dogrula", companyController.VerifyOTP)

		sirketProtected := sirket.Group("")
		sirketProtected.Use(authMiddleware.CompanySession())
		{
			sirketProtected.POST("/basvuru-karar", companyController.DecideApplication)
			sirketProtected.POST("/defter-karar", companyController.DecideLogbook)
			sirketProtected.GET("/dosyalar/:basvuruId/:fileType", companyController.DownloadFile)
		}
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Mutations on applications and logbooks belong to students;
		// staff and admins keep read access only
		studentOnly := authMiddleware.RoleRequired(models.RoleStudent)

		// Application routes
		basvurular := authenticated.Group("/basvurular")
		{
			basvurular.POST("", studentOnly, applicationController.Create)
			basvurular.GET("", applicationController.List)
			basvurular.GET("/:id", applicationController.Get)
			basvurular.PUT("/:id/tarihler", studentOnly, applicationController.UpdateDates)
			basvurular.DELETE("/:id", studentOnly, applicationController.Cancel)
			basvurular.GET("/:id/defter", logbookController.GetByApplication)

			// Supporting documents (transcript, insurance, service record)
			basvurular.POST("/:id/belgeler/:fileType", studentOnly, applicationController.UploadDocument)
			basvurular.GET("/:id/belgeler/:fileType", applicationController.DownloadDocument)
		}

		// Logbook routes
		defterler := authenticated.Group("/defterler")
		{
			defterler.GET("/:id", logbookController.Get)
			defterler.POST("/:id/pdf", studentOnly, logbookController.Upload)
			defterler.GET("/:id/pdf", logbookController.Download)
			defterler.DELETE("/:id/pdf", studentOnly, logbookController.Delete)
		}

		// Admin routes
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.StaffRequired())
		{
			admin.GET("/istatistikler", adminController.Statistics)
			admin.GET("/defterler/:id/gecmis", adminController.LogbookAudit)

			// User management and imports require the admin role
			adminOnly := admin.Group("")
			adminOnly.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				adminOnly.POST("/kullanicilar", adminController.CreateUser)
				adminOnly.GET("/kullanicilar", adminController.ListUsers)
				adminOnly.GET("/kullanicilar/:id", adminController.GetUser)
				adminOnly.PUT("/kullanicilar/:id", adminController.UpdateUser)
				adminOnly.DELETE("/kullanicilar/:id", adminController.DeleteUser)

				adminOnly.DELETE("/basvurular/:id", adminController.DeleteApplication)

				adminOnly.PUT("/defterler/:id/durum", adminController.ForceLogbookStatus)

				adminOnly.POST("/ice-aktar", adminController.StartImport)
				adminOnly.GET("/ice-aktar", adminController.ListImports)
				adminOnly.GET("/ice-aktar/:id", adminController.GetImport)
				adminOnly.DELETE("/ice-aktar/:id", adminController.CancelImport)
			}
		}
	}

	// Prometheus metrics (exposed outside the versioned API)
	router.GET("/metrics", metrics.Handler())

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})

	// Swagger routes are set up in bootstrap.go already
}
