package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/clock"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/config"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/database"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/handler"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/middleware"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/queue"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/repository"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/router"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	clk := clock.NewSystem()

	var (
		db       *sql.DB
		passes   service.PassStore
		ledger   service.CapacityLedger
		venues   handler.VenueStore
		scanners handler.ScannerStore
		devices  middleware.DeviceSource
	)
	switch cfg.Store {
	case "mysql":
		var err error
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		passes = repository.NewPassRepo(db)
		ledger = repository.NewOccupancyRepo(db)
		venueRepo := repository.NewVenueRepo(db)
		scannerRepo := repository.NewScannerRepo(db)
		venues, scanners, devices = venueRepo, scannerRepo, scannerRepo
	case "memory":
		memLedger := store.NewMemoryLedger()
		memScanners := store.NewMemoryScannerStore()
		passes = store.NewMemoryPassStore()
		ledger = memLedger
		venues = store.NewMemoryVenueStore(memLedger)
		scanners, devices = memScanners, memScanners
	default:
		log.Fatalf("unknown APP_STORE %q", cfg.Store)
	}

	opts := []service.Option{service.WithLogger(logger)}
	if cfg.AMQPEnabled {
		opts = append(opts, service.WithNotifier(queue.NewNotifier()))
	}
	svc := service.NewAccessService(passes, ledger, clk, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.SweepInterval > 0 {
		go svc.RunExpirySweep(ctx, cfg.SweepInterval)
	}
	if cfg.AMQPEnabled {
		go func() {
			if err := queue.StartOrderPaidConsumer(svc); err != nil {
				logger.Error("order consumer stopped", slog.Any("error", err))
			}
		}()
	}

	rdb := config.NewRedisClient()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Deps{
		DB:        db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Scan:      handler.NewScanHandler(svc, clk),
		Pass:      handler.NewPassHandler(passes, svc, clk),
		Occupancy: handler.NewOccupancyHandler(ledger, clk),
		Venue:     handler.NewVenueHandler(venues, scanners, cfg.BcryptCost),
		Issue:     handler.NewIssueHandler(svc),
		Devices:   devices,
	})

	addr := ":" + cfg.Port
	logger.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env), slog.String("store", cfg.Store))
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
