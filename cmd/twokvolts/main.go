package main

import (
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"

	"github.com/nurpe/twokvolts/internal/activity"
	"github.com/nurpe/twokvolts/internal/auth"
	"github.com/nurpe/twokvolts/internal/config"
	"github.com/nurpe/twokvolts/internal/db"
	"github.com/nurpe/twokvolts/internal/excel"
	httphandler "github.com/nurpe/twokvolts/internal/http"
	"github.com/nurpe/twokvolts/internal/http/middleware"
	"github.com/nurpe/twokvolts/internal/logger"
	"github.com/nurpe/twokvolts/internal/pdf"
	"github.com/nurpe/twokvolts/internal/repository"
	"github.com/nurpe/twokvolts/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	var activityStore activity.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		activityStore = activity.NewRedisStore(client, cfg.Billing.ActivityTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("activity tracking backed by redis")
	} else {
		activityStore = activity.NewMemoryStore(cfg.Billing.ActivityTTL)
		log.Warn().Msg("REDIS_ADDR not set, activity tracking is in-process only")
	}

	consumerRepo := repository.NewConsumerRepository(database)
	contractRepo := repository.NewContractRepository(database)
	tariffRepo := repository.NewTariffRepository(database)
	readingRepo := repository.NewReadingRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)
	dashboardRepo := repository.NewDashboardRepository(database)

	tokens := auth.NewManager(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)
	pdfGenerator := pdf.NewGenerator()
	excelGenerator := excel.NewGenerator()

	consumerService := service.NewConsumerService(consumerRepo, tokens, log)
	contractService := service.NewContractService(contractRepo)
	tariffService := service.NewTariffService(tariffRepo)
	readingService := service.NewReadingService(readingRepo, contractRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, paymentRepo, contractRepo, consumerRepo, pdfGenerator, log)
	paymentService := service.NewPaymentService(paymentRepo, invoiceRepo, contractRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo, contractRepo, paymentRepo, activityStore, excelGenerator, log)

	handler := httphandler.NewHandler(
		consumerService,
		contractService,
		readingService,
		invoiceService,
		paymentService,
		dashboardService,
		tariffService,
		log,
	)
	authMiddleware := middleware.Auth(tokens)
	activityMiddleware := middleware.Activity(activityStore, log)
	router := httphandler.NewRouter(handler, authMiddleware, activityMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting twokvolts billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
