package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/escola-admin/escola-api/internal/handler"
	"github.com/escola-admin/escola-api/internal/notify"
	"github.com/escola-admin/escola-api/internal/repository"
	"github.com/escola-admin/escola-api/internal/service"
	"github.com/escola-admin/escola-api/pkg/cache"
	"github.com/escola-admin/escola-api/pkg/config"
	"github.com/escola-admin/escola-api/pkg/database"
	"github.com/escola-admin/escola-api/pkg/jobs"
	"github.com/escola-admin/escola-api/pkg/logger"
	corsmiddleware "github.com/escola-admin/escola-api/pkg/middleware/cors"
	reqidmiddleware "github.com/escola-admin/escola-api/pkg/middleware/requestid"
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The balance cache degrades to direct reads without Redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()

	staffRepo := repository.NewStaffRepository(db)
	termRepo := repository.NewTermRepository(db)
	dutyRepo := repository.NewDutyRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	outingRepo := repository.NewOutingRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metrics := service.NewMetricsService()

	dispatcher := jobs.NewDispatcher(jobs.DispatcherConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
		OnExhausted: func(task jobs.Task, err error) {
			if strings.HasPrefix(task.Kind, "notify") {
				metrics.RecordNotificationFailure()
			}
		},
	})
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	var notifier notify.Sink
	if cfg.Notifications.Enabled {
		smtp, err := notify.NewSMTPSink(cfg.Notifications, staffRepo, logr)
		if err != nil {
			logr.Sugar().Warnw("smtp sink unavailable, falling back to log sink", "error", err)
			notifier = notify.NewLogSink(logr)
		} else {
			notifier = smtp
		}
	} else {
		notifier = notify.NewLogSink(logr)
	}

	workloadCfg := service.WorkloadConfig{
		WindowDays:          cfg.Engine.WorkloadWindowDays,
		PerAssignmentWeight: cfg.Engine.PerAssignmentWeight,
		CategoryWeights:     cfg.Engine.CategoryWeights,
		CacheTTL:            cfg.Engine.BalanceCacheTTL,
	}
	workloadSvc := service.NewWorkloadService(assignmentRepo, staffRepo, cacheRepo, workloadCfg, logr)
	classifier := service.NewPriorityClassifier(workloadSvc, cfg.Engine.DegradeOnWorkloadError, logr)

	staffing := service.StaffingPolicy{
		Default:    cfg.Engine.DefaultStaffing,
		Categories: cfg.Engine.Staffing,
	}
	engine := service.NewDutyAssignmentService(
		dutyRepo, staffRepo, outingRepo, assignmentRepo, timetableRepo,
		classifier, notifier, metrics, dispatcher, staffing, logr,
	)

	termSvc := service.NewTermService(termRepo, cfg.Engine.ActiveTermID, logr)
	staffSvc := service.NewStaffService(staffRepo, validate, logr)
	dutySvc := service.NewDutyService(dutyRepo, assignmentRepo, validate, logr)
	outingSvc := service.NewOutingService(outingRepo, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, validate, logr)

	staffHandler := handler.NewStaffHandler(staffSvc, timetableSvc, termSvc)
	dutyHandler := handler.NewDutyHandler(dutySvc, engine, workloadSvc, termSvc, metrics)
	outingHandler := handler.NewOutingHandler(outingSvc, termSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, termSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/staff", staffHandler.List)
		api.POST("/staff", staffHandler.Create)
		api.GET("/staff/:id", staffHandler.Get)
		api.PUT("/staff/:id", staffHandler.Update)
		api.GET("/staff/:id/timetable", staffHandler.Timetable)

		api.GET("/duties", dutyHandler.List)
		api.POST("/duties", dutyHandler.Create)
		api.GET("/duties/workload-balance", dutyHandler.WorkloadBalance)
		api.GET("/duties/:id", dutyHandler.Get)
		api.PATCH("/duties/:id/status", dutyHandler.UpdateStatus)
		api.POST("/duties/:id/assign", dutyHandler.Assign)
		api.GET("/duties/:id/assignments", dutyHandler.ListAssignments)
		api.POST("/assignments/:aid/accept", dutyHandler.AcceptAssignment)
		api.POST("/assignments/:aid/reject", dutyHandler.RejectAssignment)
		api.POST("/assignments/:aid/complete", dutyHandler.CompleteAssignment)

		api.GET("/outings", outingHandler.List)
		api.POST("/outings", outingHandler.Create)

		api.GET("/timetable", timetableHandler.List)
		api.POST("/timetable", timetableHandler.Create)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
