package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/akhaled/studenthub/internal/app/controllers"
	appRepos "github.com/akhaled/studenthub/internal/app/repositories"
	appRoutes "github.com/akhaled/studenthub/internal/app/routes"
	appServices "github.com/akhaled/studenthub/internal/app/services"
	"github.com/akhaled/studenthub/internal/config"
	"github.com/akhaled/studenthub/internal/db"
	appMiddleware "github.com/akhaled/studenthub/internal/middleware"
	pkgAuth "github.com/akhaled/studenthub/internal/pkg/auth"
	"github.com/akhaled/studenthub/internal/pkg/filestorage"
	"github.com/akhaled/studenthub/internal/pkg/helpers"
	"github.com/akhaled/studenthub/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService    appServices.AuthService
	StudentService appServices.StudentService
	AuthController *appControllers.AuthController
	PageController *appControllers.StudentPageController
	APIController  *appControllers.StudentAPIController
	DocsController *appControllers.DocsController
	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	SessionService *pkgAuth.SessionService
	FileStorage    *filestorage.LocalStorage
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured store and ensures the schema.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.Database, error) {
	lgr.Info().Bool("networkStore", cfg.UsesNetworkStore()).Msg("Establishing database connection...")
	database, err := db.New(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ensure database schema")
		database.Close()
		return nil, fmt.Errorf("schema setup failed: %w", err)
	}

	lgr.Info().Msg("Database ready.")
	return database, nil
}

// BuildDependencies initializes repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.Database, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.SessionService = pkgAuth.NewSessionService(pkgAuth.SessionConfig{
		SecretKey:  cfg.Auth.SessionSecret,
		Expiration: helpers.ParseDuration(cfg.Auth.SessionExpiration, 24*time.Hour),
		Issuer:     cfg.Auth.SessionIssuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository)
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, deps.FileStorage)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.SessionService, cfg.Auth.APIKey)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.SessionService)
	deps.PageController = appControllers.NewStudentPageController(deps.StudentService)
	deps.APIController = appControllers.NewStudentAPIController(deps.StudentService, cfg.Server.BaseURL)
	deps.DocsController = appControllers.NewDocsController(cfg.Server.BaseURL)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()
	router.MaxMultipartMemory = cfg.Storage.MaxUploadSize

	// The upload cap belongs to the serving layer, not the record logic.
	router.Use(appMiddleware.MaxBodySize(cfg.Storage.MaxUploadSize))

	router.LoadHTMLGlob(filepath.Join("web", "templates", "*.html"))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.PageController,
		deps.APIController,
		deps.DocsController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
