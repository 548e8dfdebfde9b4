package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/uniplanner/uniplanner-api/api/swagger"
	"github.com/uniplanner/uniplanner-api/internal/generator"
	"github.com/uniplanner/uniplanner-api/internal/handler"
	"github.com/uniplanner/uniplanner-api/internal/middleware"
	"github.com/uniplanner/uniplanner-api/internal/repository"
	"github.com/uniplanner/uniplanner-api/internal/service"
	"github.com/uniplanner/uniplanner-api/pkg/cache"
	"github.com/uniplanner/uniplanner-api/pkg/config"
	"github.com/uniplanner/uniplanner-api/pkg/database"
	"github.com/uniplanner/uniplanner-api/pkg/logger"
	corsmiddleware "github.com/uniplanner/uniplanner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniplanner/uniplanner-api/pkg/middleware/requestid"
)

// @title UniPlanner API
// @version 1.0.0
// @description Schedule generation and catalog service for the student planner.
// @BasePath /api/v1
// @schemes http

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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, generation cache disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheEnabled := cfg.Planner.CacheEnabled && redisClient != nil
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.CacheTTL, logr, cacheEnabled)

	termRepo := repository.NewTermRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	validate := validator.New()

	engine := generator.New(generator.Config{
		LatestEndAppliesOnline: cfg.Planner.LatestEndAppliesOnline,
		Score: generator.ScoreConfig{
			BaselineStartMinute: cfg.Scoring.BaselineStartMinute,
			FreeDayCeiling:      cfg.Scoring.FreeDayCeiling,
			LateStartCeiling:    cfg.Scoring.LateStartCeiling,
			GapCeiling:          cfg.Scoring.GapCeiling,
			SpreadCeiling:       cfg.Scoring.SpreadCeiling,
		},
	})

	plannerSvc := service.NewPlannerService(
		termRepo,
		courseRepo,
		engine,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.PlannerConfig{
			DefaultMaxResults: cfg.Planner.DefaultMaxResults,
			MaxResultsCeiling: cfg.Planner.MaxResultsCeiling,
			ResultTTL:         cfg.Planner.ResultTTL,
			CacheTTL:          cfg.Planner.CacheTTL,
		},
	)
	exportSvc := service.NewExportService(plannerSvc, logr)
	termSvc := service.NewTermService(termRepo, validate, logr)
	courseSvc := service.NewCourseService(termRepo, courseRepo, sectionRepo, cacheSvc, validate, logr)
	prefSvc := service.NewPreferenceService(termRepo, prefRepo, validate, logr)

	plannerHandler := handler.NewPlannerHandler(plannerSvc, exportSvc)
	termHandler := handler.NewTermHandler(termSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	prefHandler := handler.NewPreferenceHandler(prefSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, metricsSvc.Snapshot())
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		planner := api.Group("/planner")
		{
			planner.POST("/generate", plannerHandler.Generate)
			planner.POST("/rescore", plannerHandler.Rescore)
			planner.GET("/results", plannerHandler.ListResultSets)
			planner.GET("/results/:id", plannerHandler.GetResultSet)
			planner.DELETE("/results/:id", plannerHandler.ExpireResultSet)
			planner.POST("/results/:id/schedules/:scheduleId/pin", plannerHandler.TogglePin)
			planner.GET("/results/:id/schedules/:scheduleId/export", plannerHandler.Export)
		}

		terms := api.Group("/terms")
		{
			terms.GET("", termHandler.List)
			terms.POST("", termHandler.Create)
			terms.GET("/active", termHandler.GetActive)
			terms.GET("/:id", termHandler.Get)
			terms.PUT("/:id", termHandler.Update)
			terms.DELETE("/:id", termHandler.Delete)
			terms.POST("/:id/activate", termHandler.SetActive)
			terms.GET("/:id/courses", courseHandler.ListByTerm)
			terms.POST("/:id/courses", courseHandler.Create)
			terms.GET("/:id/preferences", prefHandler.Get)
			terms.PUT("/:id/preferences", prefHandler.Save)
			terms.DELETE("/:id/preferences", prefHandler.Delete)
		}

		courses := api.Group("/courses")
		{
			courses.GET("/:id", courseHandler.Get)
			courses.PUT("/:id", courseHandler.Update)
			courses.DELETE("/:id", courseHandler.Delete)
			courses.POST("/:id/sections", courseHandler.AddSection)
		}

		sections := api.Group("/sections")
		{
			sections.DELETE("/:id", courseHandler.DeleteSection)
			sections.POST("/:id/meetings", courseHandler.AddMeeting)
		}

		api.DELETE("/meetings/:id", courseHandler.DeleteMeeting)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
