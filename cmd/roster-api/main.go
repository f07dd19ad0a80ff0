package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/farmacal/roster-api/internal/handler"
	"github.com/farmacal/roster-api/internal/middleware"
	"github.com/farmacal/roster-api/internal/models"
	"github.com/farmacal/roster-api/internal/repository"
	"github.com/farmacal/roster-api/internal/service"
	"github.com/farmacal/roster-api/pkg/cache"
	"github.com/farmacal/roster-api/pkg/config"
	"github.com/farmacal/roster-api/pkg/database"
	"github.com/farmacal/roster-api/pkg/jobs"
	"github.com/farmacal/roster-api/pkg/logger"
	corsmiddleware "github.com/farmacal/roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/farmacal/roster-api/pkg/middleware/requestid"
	"github.com/farmacal/roster-api/pkg/openholidays"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()

	// Repositories.
	employeeRepo := repository.NewEmployeeRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	allowedRepo := repository.NewAllowedShiftRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)

	var boardCache *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, board caching disabled", "error", err)
		} else {
			boardCache = repository.NewCacheRepository(redisClient, logr)
			defer boardCache.Close() //nolint:errcheck
		}
	}

	// Services.
	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(service.AuthConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		Expiration: cfg.Auth.Expiration,
		AdminUser:  cfg.Auth.AdminUser,
		AdminHash:  cfg.Auth.AdminHash,
	}, validate, logr)
	employeeService := service.NewEmployeeService(employeeRepo, validate, logr)

	holidayClient := openholidays.New(openholidays.DefaultBaseURL, cfg.Holidays.HTTPTimeout)
	holidayService := service.NewHolidayService(holidayRepo, holidayClient, metricsService,
		cfg.Holidays.CountryCode, cfg.Holidays.SubdivisionCode, cfg.Holidays.Language,
		cfg.Holidays.MatchLocal, logr)

	policies := models.DefaultAbsencePolicies(cfg.Absences.AdvanceNoticeDays)
	absenceService := service.NewAbsenceService(absenceRepo, employeeRepo, policies, metricsService, validate, logr)

	var rosterCache service.RosterCache
	if boardCache != nil {
		rosterCache = boardCache
	}
	rosterService := service.NewRosterService(employeeRepo, templateRepo, scheduleRepo, allowedRepo,
		holidayService, rosterCache, cfg.Cache.TTL, metricsService,
		models.NormalizeShift(cfg.Coverage.TrackedShift), cfg.Coverage.DailyTarget, logr)
	templateService := service.NewTemplateService(templateRepo, allowedRepo, employeeRepo, rosterCache, logr)

	// Background queue for holiday syncs.
	syncQueue := jobs.NewQueue("holiday-sync", func(ctx context.Context, job jobs.Job) error {
		year, ok := job.Payload.(int)
		if !ok {
			return fmt.Errorf("holiday_sync payload must be a year, got %T", job.Payload)
		}
		return holidayService.SyncYear(ctx, year)
	}, jobs.QueueConfig{
		Workers:    cfg.Sync.Workers,
		MaxRetries: cfg.Sync.MaxRetries,
		RetryDelay: cfg.Sync.RetryDelay,
		Logger:     logr,
	})
	syncQueue.Start(context.Background())
	defer syncQueue.Stop()

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := employeeService.EnsureOwner(startCtx); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to seed owner", "error", err)
	}
	cancel()

	if cfg.Holidays.SyncOnStart {
		year := time.Now().UTC().Year()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			for _, y := range []int{year, year + 1} {
				if err := holidayService.EnsureYear(ctx, y); err != nil {
					logr.Sugar().Warnw("startup holiday sync failed", "year", y, "error", err)
				}
			}
		}()
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	templateHandler := handler.NewTemplateHandler(templateService)
	rosterHandler := handler.NewRosterHandler(rosterService)
	absenceHandler := handler.NewAbsenceHandler(absenceService)
	holidayHandler := handler.NewHolidayHandler(holidayService, syncQueue)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	// Read surface.
	api.GET("/employees", employeeHandler.List)
	api.GET("/employees/:id", employeeHandler.Get)
	api.GET("/employees/:id/template", templateHandler.GetTemplate)
	api.GET("/employees/:id/allowed-shifts", templateHandler.GetAllowedShifts)
	api.GET("/shifts", templateHandler.Catalog)
	api.GET("/roster/week", rosterHandler.Week)
	api.GET("/roster/week/coverage", rosterHandler.Coverage)
	api.GET("/roster/week/export", rosterHandler.Export)
	api.GET("/absences", absenceHandler.List)
	api.GET("/absences/types", absenceHandler.Types)
	api.GET("/holidays", holidayHandler.List)

	// Mutations require the admin token.
	protected := api.Group("", middleware.JWT(authService))
	protected.POST("/employees", employeeHandler.Create)
	protected.PUT("/employees/:id", employeeHandler.Update)
	protected.DELETE("/employees/:id", employeeHandler.Delete)
	protected.PUT("/employees/:id/template", templateHandler.PutTemplate)
	protected.PUT("/employees/:id/allowed-shifts", templateHandler.PutAllowedShifts)
	protected.PUT("/roster/week", rosterHandler.SaveWeek)
	protected.POST("/absences", absenceHandler.Create)
	protected.DELETE("/absences/:id", absenceHandler.Delete)
	protected.POST("/holidays/sync", holidayHandler.Sync)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
