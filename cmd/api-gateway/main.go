package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/slms-api/api/swagger"
	"github.com/noah-isme/slms-api/internal/handler"
	"github.com/noah-isme/slms-api/internal/middleware"
	"github.com/noah-isme/slms-api/internal/models"
	"github.com/noah-isme/slms-api/internal/repository"
	"github.com/noah-isme/slms-api/internal/service"
	"github.com/noah-isme/slms-api/pkg/cache"
	"github.com/noah-isme/slms-api/pkg/config"
	"github.com/noah-isme/slms-api/pkg/database"
	"github.com/noah-isme/slms-api/pkg/jobs"
	"github.com/noah-isme/slms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/slms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/slms-api/pkg/middleware/requestid"
)

// @title SLMS API
// @version 1.0.0
// @description Student leave management: leave requests, absence alerts and cohort risk reporting
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
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API stays up without Redis; the cohort cache simply disables.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Analyzer.CacheTTL, logr, true)
	} else {
		cacheService = service.NewCacheService(nil, metricsService, cfg.Analyzer.CacheTTL, logr, false)
	}

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	validate := validator.New()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	attendanceService := service.NewAttendanceService(attendanceRepo, leaveRepo, logr)

	leaveService := service.NewLeaveService(service.LeaveServiceParams{
		Repo:    leaveRepo,
		Metrics: attendanceService,
		Policy: service.LeavePolicy{
			MinAttendancePercent: cfg.Policy.MinAttendancePercent,
			MonthlyLimit:         cfg.Policy.MonthlyLeaveLimit,
		},
		Logger: logr,
	})

	studentService := service.NewStudentService(service.StudentServiceParams{
		Students: studentRepo,
		Mentors:  mentorRepo,
		Metrics:  attendanceService,
		Logger:   logr,
	})

	alertService := service.NewAlertService(alertRepo, logr)

	sweepService := service.NewSweepService(service.SweepServiceParams{
		Attendance: attendanceRepo,
		Leaves:     leaveRepo,
		Alerts:     alertRepo,
		Metrics:    metricsService,
		Logger:     logr,
	})

	cohortService := service.NewCohortService(service.CohortServiceParams{
		Students: studentRepo,
		Metrics:  attendanceService,
		Cache:    cacheService,
		Logger:   logr,
		Config: service.CohortServiceConfig{
			RiskWindowDays: cfg.Policy.RiskWindowDays,
			CacheTTL:       cfg.Analyzer.CacheTTL,
		},
	})

	overviewService := service.NewOverviewService(studentRepo, mentorRepo, leaveRepo, alertRepo, logr)

	authHandler := handler.NewAuthHandler(authService, logr)
	healthHandler := handler.NewHealthHandler(db, redisClient)
	studentHandler := handler.NewStudentHandler(handler.StudentHandlerParams{
		StudentService: studentService,
		LeaveService:   leaveService,
		CohortService:  cohortService,
		Logger:         logr,
	})
	mentorHandler := handler.NewMentorHandler(handler.MentorHandlerParams{
		StudentService: studentService,
		LeaveService:   leaveService,
		AlertService:   alertService,
		CohortService:  cohortService,
		Logger:         logr,
	})
	adminHandler := handler.NewAdminHandler(handler.AdminHandlerParams{
		OverviewService: overviewService,
		StudentService:  studentService,
		CohortService:   cohortService,
		SweepService:    sweepService,
		Logger:          logr,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))

	student := authed.Group("/student")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	student.GET("/me", studentHandler.Me)
	student.GET("/leaves", studentHandler.Leaves)
	student.POST("/leaves", studentHandler.ApplyLeave)

	mentor := authed.Group("/mentor")
	mentor.Use(middleware.RequireRoles(models.RoleMentor))
	mentor.GET("/students", mentorHandler.Students)
	mentor.GET("/students/:id/contact", mentorHandler.ParentContact)
	mentor.GET("/leaves", mentorHandler.Leaves)
	mentor.PUT("/leaves/:id", mentorHandler.ReviewLeave)
	mentor.GET("/alerts", mentorHandler.Alerts)
	mentor.PUT("/alerts/:id/resolve", mentorHandler.ResolveAlert)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/overview", adminHandler.Overview)
	admin.GET("/students", adminHandler.Students)
	admin.PUT("/students/:id/mentor", adminHandler.ReassignMentor)
	admin.GET("/risk/cohort", adminHandler.CohortRisk)
	admin.GET("/risk/cohort/export", adminHandler.ExportCohortRisk)
	admin.POST("/sweeps/absence", adminHandler.RunAbsenceSweep)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sweepScheduler *jobs.DailyScheduler
	if cfg.Sweep.Enabled {
		sweepScheduler, err = jobs.NewDailyScheduler("absence-sweep", func(ctx context.Context, day time.Time) error {
			result, err := sweepService.Run(ctx, day)
			if err != nil {
				return err
			}
			cohortService.Invalidate(ctx)
			logr.Info("absence sweep completed",
				zap.String("date", result.Date),
				zap.Int("absent_today", result.AbsentToday),
				zap.Int("alerts_created", result.AlertsCreated),
				zap.Int("skipped", result.Skipped),
				zap.Int("failed", result.Failed),
			)
			return nil
		}, jobs.DailySchedulerConfig{At: cfg.Sweep.At, Logger: logr})
		if err != nil {
			logr.Sugar().Fatalw("failed to build sweep scheduler", "error", err)
		}
		sweepScheduler.Start(ctx)
		defer sweepScheduler.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
