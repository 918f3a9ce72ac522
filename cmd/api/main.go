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

	"foodsync/internal/auth"
	"foodsync/internal/cache"
	"foodsync/internal/config"
	"foodsync/internal/db"
	"foodsync/internal/family"
	"foodsync/internal/fridge"
	"foodsync/internal/llm"
	"foodsync/internal/logger"
	"foodsync/internal/nutrition"
	"foodsync/internal/receipt"
	"foodsync/internal/recipe"
	"foodsync/internal/router"
	"foodsync/internal/shopping"
	"foodsync/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "foodsync api:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// ───────────────────────── CONFIG ─────────────────────────
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── DB ─────────────────────────
	pool, err := db.ConnectPostgres(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	// ───────────────────────── REDIS ─────────────────────────
	rdb := cache.NewRedis(cfg.Redis)
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return err
	}
	denylist := cache.NewTokenDenylist(rdb)

	// ───────────────────────── STORAGE ─────────────────────────
	var store storage.ObjectStore
	if cfg.Storage.StorageEnabled() {
		r2, err := storage.NewR2Client(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("r2 init: %w", err)
		}
		store = r2
	} else {
		log.Warn("object storage not configured, receipts are kept in memory")
		store = storage.NewMemoryStore()
	}

	// ───────────────────────── LLM + CATALOG ─────────────────────────
	gemini := llm.NewGeminiClient(cfg.LLM, log)

	catalog, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	log.Info("recipe catalog loaded", zap.Int("recipes", catalog.Len()))

	// ───────────────────────── SERVICES ─────────────────────────
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(auth.NewPostgresUserRepository(pool), tokens, denylist, log)

	familyService := family.NewService(family.NewPostgresRepository(pool), log)
	fridgeService := fridge.NewService(fridge.NewPostgresRepository(pool), familyService, log)
	shoppingService := shopping.NewService(shopping.NewPostgresRepository(pool), familyService, log)
	recipeService := recipe.NewService(catalog, recipe.NewPostgresRepository(pool), familyService, fridgeService, log)
	nutritionService := nutrition.NewService(
		nutrition.NewPostgresRepository(pool),
		familyService,
		fridgeService,
		gemini,
		rdb,
		cfg.LLM.AnalysisTTL,
		log,
	)
	receiptService := receipt.NewService(
		receipt.NewPostgresRepository(pool),
		store,
		gemini,
		fridgeService,
		familyService,
		log,
	)
	if cfg.Receipt.OCREngine == "tesseract" {
		if _, err := exec.LookPath("tesseract"); err != nil {
			return fmt.Errorf("receipt.ocr_engine is tesseract but the binary is missing: %w", err)
		}
		receiptService.WithOCR(receipt.NewTesseract())
	}

	// ───────────────────────── HTTP ─────────────────────────
	engine := router.New(router.Deps{
		Log:            log,
		Tokens:         tokens,
		Denylist:       denylist,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		LLMRateLimit:   cfg.HTTP.LLMRateLimit,
		LLMRateBurst:   cfg.HTTP.LLMRateBurst,
		Checks: map[string]router.Pinger{
			"postgres": pool.Ping,
			"redis":    rdb.Ping,
		},
		Auth:      auth.NewHandler(authService),
		Families:  family.NewHandler(familyService),
		Fridge:    fridge.NewHandler(fridgeService),
		Shopping:  shopping.NewHandler(shoppingService),
		Recipes:   recipe.NewHandler(recipeService),
		Nutrition: nutrition.NewHandler(nutritionService),
		Receipts:  receipt.NewHandler(receiptService, cfg.Receipt.MaxUpload),
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: engine,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("api listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down api")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Receipt.WorkerEnabled {
		g.Go(func() error {
			return receipt.RunWorker(gctx, receiptService, cfg.Receipt.PollInterval, log.Named("receipt-worker"))
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("api stopped")
	return nil
}

func loadCatalog(path string) (recipe.Catalog, error) {
	if path == "" {
		return recipe.DefaultCatalog()
	}
	return recipe.LoadCatalogFile(path)
}
