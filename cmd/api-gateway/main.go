package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/gigdesk/gigdesk-api/internal/calendar"
	"github.com/gigdesk/gigdesk-api/internal/contract"
	"github.com/gigdesk/gigdesk-api/internal/handler"
	"github.com/gigdesk/gigdesk-api/internal/lineup"
	"github.com/gigdesk/gigdesk-api/internal/mail"
	"github.com/gigdesk/gigdesk-api/internal/middleware"
	"github.com/gigdesk/gigdesk-api/internal/notify"
	"github.com/gigdesk/gigdesk-api/internal/repository"
	"github.com/gigdesk/gigdesk-api/internal/service"
	"github.com/gigdesk/gigdesk-api/pkg/backoff"
	"github.com/gigdesk/gigdesk-api/pkg/config"
	"github.com/gigdesk/gigdesk-api/pkg/database"
	"github.com/gigdesk/gigdesk-api/pkg/logger"
	corsmiddleware "github.com/gigdesk/gigdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gigdesk/gigdesk-api/pkg/middleware/requestid"
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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	zone, err := time.LoadLocation(cfg.Band.Timezone)
	if err != nil {
		logr.Sugar().Warnw("invalid band timezone, using UTC", "timezone", cfg.Band.Timezone)
		zone = time.UTC
	}

	// Repositories.
	gigRepo := repository.NewGigRepository(db)
	contactRepo := repository.NewContactRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Shared plumbing.
	validate := validator.New()
	metrics := service.NewMetricsService()
	roster := lineup.NewHTMLRenderer()
	from := fmt.Sprintf("%s <%s>", cfg.Band.FromName, cfg.Band.FromEmail)
	sender := mail.NewResendSender(cfg.Mail.APIKey, from, backoff.Default(), logr)

	// Calendar sync engine.
	syncPolicy := backoff.Default()
	if cfg.Calendar.RetryAttempts > 0 {
		syncPolicy.Attempts = cfg.Calendar.RetryAttempts
	}
	if cfg.Calendar.RetryBase > 0 {
		syncPolicy.Base = cfg.Calendar.RetryBase
	}
	composer := calendar.NewComposer(roster, zone)
	engine := calendar.NewEngine(gigRepo, composer, calendar.GoogleFactory(cfg.Calendar), cfg.Calendar.Labels, syncPolicy, logr)

	// Services.
	gigService := service.NewGigService(gigRepo, validate, logr)
	closeoutService := service.NewCloseoutService(gigRepo, paymentRepo, validate, logr)
	auditService := service.NewAuditService(auditRepo, logr)
	notifier := notify.NewNotifier(gigRepo, contactRepo, auditRepo, sender, zone, cfg.Band.FromName, cfg.Band.FromEmail, logr)
	contracts := contract.NewRenderer(cfg.Band.FromName, cfg.Band.FromEmail)

	// Handlers.
	gigHandler := handler.NewGigHandler(gigService)
	syncHandler := handler.NewCalendarSyncHandler(engine, metrics)
	notifyHandler := handler.NewNotificationHandler(notifier, auditService, metrics)
	closeoutHandler := handler.NewCloseoutHandler(closeoutService)
	artifactHandler := handler.NewArtifactHandler(gigService, contracts, zone, cfg.Band.FromEmail)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

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
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.GET("/gigs", gigHandler.List)
		api.POST("/gigs", gigHandler.Create)
		api.GET("/gigs/:id", gigHandler.Get)
		api.PUT("/gigs/:id", gigHandler.Update)

		api.POST("/gigs/:id/calendar-sync", syncHandler.Sync)
		api.POST("/gigs/:id/notifications/:audience", notifyHandler.Notify)
		api.GET("/gigs/:id/notifications", notifyHandler.Audit)

		api.GET("/gigs/:id/invite.ics", artifactHandler.Invite)
		api.GET("/gigs/:id/contract.pdf", artifactHandler.Contract)

		api.GET("/gigs/:id/closeout", closeoutHandler.Get)
		api.PUT("/gigs/:id/closeout", closeoutHandler.Save)
		api.POST("/gigs/:id/closeout/reopen", closeoutHandler.Reopen)
	}

	if cfg.Digests.Enabled {
		digester := notify.NewDigester(gigRepo, sender, zone, cfg.Band.FromName, cfg.Digests.To, cfg.Digests.WindowDays, logr)
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.Digests.Spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := digester.SendWeekly(ctx); err != nil {
				logr.Sugar().Errorw("weekly digest failed", "error", err)
			}
		}); err != nil {
			logr.Sugar().Fatalw("invalid digest cron spec", "spec", cfg.Digests.Spec, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
