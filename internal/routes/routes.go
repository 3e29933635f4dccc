package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lead-system/internal/controllers"
	"lead-system/internal/repositories"
	"lead-system/internal/services"
	"lead-system/pkg/config"
	"lead-system/pkg/idtoken"
	"lead-system/pkg/middleware"
	"lead-system/pkg/service"
)

// InitRouter builds every repository, service and controller and mounts them
// under /api. Construction happens once here; the route files only bind
// handlers to paths.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	api := e.Group("/api")

	codec := idtoken.NewCodec(cfg.IDToken.Key)
	txManager := repositories.NewTxManager(dbConn)

	// repositories
	userRepo := repositories.NewUserRepository(dbConn, logger)
	recordRepo := repositories.NewRecordRepository(dbConn, logger)
	historyRepo := repositories.NewRecordHistoryRepository(dbConn)
	pendingRepo := repositories.NewPendingChangeRepository(dbConn)
	rescheduleRepo := repositories.NewRescheduleRepository(dbConn)
	centreRepo := repositories.NewCentreRepository(dbConn)
	capabilityRepo := repositories.NewCapabilityRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	reportRepo := repositories.NewReportRepository(dbConn)

	// services
	capabilityService := services.NewCapabilityService(capabilityRepo, cacheRepo, logger, cfg.Cache.CapabilityTTL)
	authService := services.NewAuthService(userRepo, jwtSvc, logger)
	transitionService := services.NewRecordTransitionService(txManager, recordRepo, historyRepo, pendingRepo, userRepo, codec, logger)
	pendingService := services.NewPendingChangeService(txManager, pendingRepo, recordRepo, userRepo, transitionService, codec, logger)
	rescheduleService := services.NewRescheduleService(rescheduleRepo, recordRepo, userRepo, codec, logger)
	recordService := services.NewRecordService(recordRepo, historyRepo, userRepo, codec, logger)
	reportService := services.NewReportService(reportRepo, recordService, logger)
	centreService := services.NewCentreService(centreRepo)

	// controllers
	authController := controllers.NewAuthController(authService, logger)
	recordController := controllers.NewRecordController(recordService, transitionService, logger)
	pendingController := controllers.NewPendingChangeController(pendingService, logger)
	rescheduleController := controllers.NewRescheduleController(rescheduleService, logger)
	catalogController := controllers.NewCatalogController()
	reportController := controllers.NewReportController(reportService, logger)
	centreController := controllers.NewCentreController(centreService)

	authMW := middleware.NewAuthMiddleware(jwtSvc, capabilityService, logger)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authController)
	runRecordRouter(secureGroup, recordController, pendingController, rescheduleController)
	runPendingChangeRouter(secureGroup, pendingController)
	runRescheduleRouter(secureGroup, rescheduleController)
	runCatalogRouter(secureGroup, catalogController)
	runReportRouter(secureGroup, reportController)
	runCentreRouter(secureGroup, centreController)
}
