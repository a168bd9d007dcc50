package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/akhaled/studenthub/internal/app/controllers"
	"github.com/akhaled/studenthub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	pageController *controllers.StudentPageController,
	apiController *controllers.StudentAPIController,
	docsController *controllers.DocsController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// Engine-level so CORS preflights are answered even though no OPTIONS
	// routes are registered.
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", middleware.APIKeyHeader},
	}))

	// --- Public UI routes ---
	router.GET("/register", authController.ShowRegister)
	router.POST("/register", authController.Register)
	router.GET("/login", authController.ShowLogin)
	router.POST("/login", authController.Login)

	// --- Session-gated UI routes ---
	ui := router.Group("")
	ui.Use(authMiddleware.SessionAuth())
	{
		ui.GET("/logout", authController.Logout)
		ui.GET("/", pageController.Index)
		ui.GET("/add", pageController.ShowAdd)
		ui.POST("/add", pageController.Add)
		ui.GET("/edit/:id", pageController.ShowEdit)
		ui.POST("/edit/:id", pageController.Edit)
		ui.POST("/delete/:id", pageController.Delete)
	}

	// --- JSON API routes, gated by the shared-secret header ---
	api := router.Group("/api")
	{
		// The API description is public.
		api.GET("/docs", docsController.Docs)

		protected := api.Group("")
		protected.Use(authMiddleware.APIKeyAuth())
		{
			protected.GET("/students", apiController.List)
			protected.GET("/students/:id", apiController.Get)
			protected.POST("/students", apiController.Create)
			protected.PUT("/students/:id", apiController.Update)
			protected.DELETE("/students/:id", apiController.Delete)
			protected.GET("/stats", apiController.Stats)
		}
	}
}
