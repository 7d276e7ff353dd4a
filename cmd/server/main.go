package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/InternLink/portal-service/internal/client"
	"github.com/InternLink/portal-service/internal/config"
	"github.com/InternLink/portal-service/internal/handler"
	"github.com/InternLink/portal-service/internal/middleware"
	"github.com/InternLink/portal-service/internal/repository"
	"github.com/InternLink/portal-service/internal/service"
	"github.com/InternLink/portal-service/internal/telemetry"
	"github.com/InternLink/portal-service/internal/util"
	"github.com/InternLink/portal-service/internal/util/logger"
)

var version = "development"

func main() {
	configPath := flag.String("config", "config/app-config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config load failed: %v", err)
	}
	logger.Init(&logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	defer logger.Sync()

	logger.Infof("Starting portal-service env=%s version=%s", cfg.Env, version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database open failed: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("database ping failed: %v", err)
	}

	var rcli *client.RedisClient
	if cfg.RedisURL != "" {
		rcli, err = client.NewRedisClient(ctx, client.RedisConfig{Address: cfg.RedisURL})
		if err != nil {
			logger.Fatalf("redis init failed: %v", err)
		}
		defer rcli.Close()
	}

	clock := util.SystemClock()

	var sms service.SMSSender
	if cfg.SMS.Simulate || cfg.SMS.GatewayURL == "" {
		sms = client.SimulatedSMS{}
		logger.Warnf("SMS gateway not configured, running in simulation mode")
	} else {
		sms = client.NewSMSGateway(cfg.SMS)
	}

	var mail service.EmailSender
	if cfg.Email.APIKey == "" {
		mail = client.SimulatedEmail{}
		logger.Warnf("email delivery not configured, running in simulation mode")
	} else {
		mail, err = client.NewMailer(cfg.Email)
		if err != nil {
			logger.Fatalf("mailer init failed: %v", err)
		}
	}

	otpStore := repository.NewPostgresOTPStore(db)
	loginStore := repository.NewPostgresLoginHistoryStore(db)
	listingStore := repository.NewPostgresListingStore(db)

	otpService := service.NewOTPService(otpStore, sms, mail, clock, cfg.OTP)

	var shipper *telemetry.KafkaAuditShipper
	var auditPub middleware.Publisher
	if cfg.Telemetry.Kafka.Enabled {
		shipper, err = telemetry.NewKafkaAuditShipper(cfg.Telemetry.Kafka)
		if err != nil {
			logger.Fatalf("kafka shipper init failed: %v", err)
		}
		shipper.Start()
		auditPub = shipper
	}

	recorder := middleware.NewLoginAuditRecorder(loginStore, auditPub, clock, cfg.Telemetry.Kafka.QueueCapacity)
	recorder.Start()

	timeGate := middleware.NewTimeGate(clock)
	var rateCounter middleware.RateCounter
	if rcli != nil {
		rateCounter = rcli
	}
	otpLimiter := middleware.NewOTPLimiter(rateCounter, cfg.RateLimit)

	otpHandler := handler.NewOTPHandler(otpService)
	historyHandler := handler.NewLoginHistoryHandler(loginStore)
	listingsHandler := handler.NewListingsHandler(listingStore, clock)
	adminHandler := handler.NewAdminHandler(cfg.Admin, clock)
	healthHandler := handler.NewHealthHandler(db, rcli, version)

	var translateHandler *handler.TranslateHandler
	if cfg.Translate.Enabled {
		translator, err := client.NewTranslator(ctx, cfg.Translate)
		if err != nil {
			logger.Fatalf("translator init failed: %v", err)
		}
		translateHandler = handler.NewTranslateHandler(translator)
	} else {
		translateHandler = handler.NewTranslateHandler(nil)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer, chimw.Timeout(30*time.Second))

	r.Handle("/health", healthHandler)

	// Every application route goes through the access window check first
	// and then the audit recorder. A gate denial is never audited.
	r.Group(func(g chi.Router) {
		g.Use(timeGate.Handler)
		g.Use(recorder.Handler)

		g.Post("/check-otp", otpHandler.CheckOTP)

		g.Route("/api", func(rt chi.Router) {
			rt.With(otpLimiter.Middleware).Post("/send-otp", otpHandler.SendOTP)
			rt.Post("/verify-otp", otpHandler.VerifyOTP)

			rt.Get("/login-history", historyHandler.List)

			rt.Route("/application", func(art chi.Router) {
				art.Post("/", listingsHandler.CreateApplication)
				art.Get("/", listingsHandler.ListApplications)
				art.Get("/{id}", listingsHandler.GetApplication)
				art.Put("/{id}", listingsHandler.UpdateApplicationStatus)
			})
			rt.Route("/internship", func(irt chi.Router) {
				irt.Post("/", listingsHandler.CreateInternship)
				irt.Get("/", listingsHandler.ListInternships)
				irt.Get("/{id}", listingsHandler.GetInternship)
			})
			rt.Route("/jobs", func(jrt chi.Router) {
				jrt.Post("/", listingsHandler.CreateJob)
				jrt.Get("/", listingsHandler.ListJobs)
				jrt.Get("/{id}", listingsHandler.GetJob)
			})

			rt.Post("/admin/adminLogin", adminHandler.Login)

			rt.Post("/translate", translateHandler.Translate)
			rt.Get("/translated-content", translateHandler.TranslatedContent)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	recorder.Stop(shutdownCtx)
	if shipper != nil {
		shipper.Stop(shutdownCtx)
	}
}
