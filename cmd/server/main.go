package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"b2bportal/internal/config"
	"b2bportal/internal/infra"
	"b2bportal/internal/repository"
	"b2bportal/internal/router"
	"b2bportal/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Notification infrastructure ──────────────────────────────────────────
	var audit infra.AuditLog = infra.NopAuditLog{}
	if cfg.MongoURI != "" {
		mongoAudit, err := infra.NewMongoAuditLog(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Warn().Err(err).Msg("notification audit disabled")
		} else {
			audit = mongoAudit
		}
	}

	var sheets infra.SheetWriter
	if w, err := infra.NewGoogleSheetWriter(ctx, cfg.SheetsCredentialsPath, cfg.SheetID); err == nil {
		sheets = w
	} else if !errors.Is(err, infra.ErrSheetsNotConfigured) {
		log.Warn().Err(err).Msg("purchase-sheet export disabled")
	}

	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	smsClient := infra.NewSMSClient(cfg.SMSGatewayURL, cfg.SMSGatewayToken, breaker)
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	accountRepo := repository.NewAccountRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Worker handlers are wired here (composition root) so the pool has
	// access to every infrastructure dependency.
	pool := worker.NewPool(rdb)
	pool.Register(worker.JobTypeSMS, worker.QueueSMS, worker.NewSMSWorker(smsClient, accountRepo, dispatcher, audit))
	pool.Register(worker.JobTypeEmail, worker.QueueEmail, worker.NewEmailWorker(mailer, orderRepo, audit, cfg.PDFStoragePath))
	pool.Start(ctx, cfg.WorkerPoolSize)

	digest, err := worker.NewDigest(worker.DigestConfig{
		Schedule:   cfg.DigestCron,
		Orders:     orderRepo,
		Mail:       dispatcher,
		From:       cfg.MailFrom,
		StaffEmail: cfg.StaffEmail,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DIGEST_CRON")
	}
	digest.Start()

	r := router.New(router.Deps{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		SMSBreaker: breaker,
		Notifier:   dispatcher,
		Sheets:     sheets,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("B2B portal listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	digest.Stop()
	cancel()
	pool.Wait()
	if err := audit.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit close")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
