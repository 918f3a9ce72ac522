package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"foodsync/internal/config"
	"foodsync/internal/db"
	"foodsync/internal/family"
	"foodsync/internal/fridge"
	"foodsync/internal/llm"
	"foodsync/internal/logger"
	"foodsync/internal/metrics"
	"foodsync/internal/receipt"
	"foodsync/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	metricsAddr := flag.String("metrics-addr", ":9102", "address of the /metrics listener, empty to disable")
	flag.Parse()

	if err := run(*configPath, *metricsAddr); err != nil {
		fmt.Fprintln(os.Stderr, "receipt worker:", err)
		os.Exit(1)
	}
}

func run(configPath, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.Named("receipt-worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.ConnectPostgres(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !cfg.Storage.StorageEnabled() {
		return errors.New("the standalone worker needs object storage; set storage.endpoint and storage.bucket")
	}
	store, err := storage.NewR2Client(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("r2 init: %w", err)
	}

	families := family.NewService(family.NewPostgresRepository(pool), log)
	fridgeService := fridge.NewService(fridge.NewPostgresRepository(pool), families, log)
	service := receipt.NewService(
		receipt.NewPostgresRepository(pool),
		store,
		llm.NewGeminiClient(cfg.LLM, log),
		fridgeService,
		families,
		log,
	)
	if cfg.Receipt.OCREngine == "tesseract" {
		if _, err := exec.LookPath("tesseract"); err != nil {
			return fmt.Errorf("receipt.ocr_engine is tesseract but the binary is missing: %w", err)
		}
		service.WithOCR(receipt.NewTesseract())
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return receipt.RunWorker(gctx, service, cfg.Receipt.PollInterval, log)
	})

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler()}
		g.Go(func() error {
			log.Info("metrics listening", zap.String("addr", metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return srv.Shutdown(context.Background())
		})
	}

	return g.Wait()
}
