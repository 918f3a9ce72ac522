package router

import (
	"context"
	"net/http"
	"time"

	"foodsync/internal/auth"
	"foodsync/internal/family"
	"foodsync/internal/fridge"
	"foodsync/internal/metrics"
	"foodsync/internal/middleware"
	"foodsync/internal/nutrition"
	"foodsync/internal/receipt"
	"foodsync/internal/recipe"
	"foodsync/internal/shopping"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type Deps struct {
	Log            *zap.Logger
	Tokens         *auth.TokenManager
	Denylist       auth.Denylist
	AllowedOrigins []string
	LLMRateLimit   float64
	LLMRateBurst   int
	// Checks are run by /health; a failing check turns the answer into 503.
	Checks map[string]Pinger

	Auth      *auth.Handler
	Families  *family.Handler
	Fridge    *fridge.Handler
	Shopping  *shopping.Handler
	Recipes   *recipe.Handler
	Nutrition *nutrition.Handler
	Receipts  *receipt.Handler
}

func New(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(d.Log),
		middleware.Recovery(d.Log),
		metrics.Middleware(),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", health(d.Checks))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")

	// ───────────── AUTH (public) ─────────────
	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(d.Tokens, d.Denylist, d.Log))

	llmLimit := middleware.RateLimit(rate.Limit(d.LLMRateLimit), d.LLMRateBurst)

	// ───────────── AUTH (protected) ─────────────
	protected.POST("/auth/logout", d.Auth.Logout)
	protected.GET("/auth/me", d.Auth.Me)
	protected.POST("/auth/refresh", d.Auth.Refresh)
	protected.GET("/users/me", d.Auth.Me)

	// ───────────── FAMILIES ─────────────
	protected.GET("/families", d.Families.List)
	protected.POST("/families", d.Families.Create)
	protected.POST("/families/join", d.Families.Join)
	protected.GET("/families/:id", d.Families.Show)
	protected.DELETE("/families/:id/leave", d.Families.Leave)
	protected.PUT("/families/:id/preferences", d.Families.UpdatePreferences)

	// ───────────── FRIDGE ─────────────
	protected.GET("/fridge", d.Fridge.List)
	protected.GET("/fridge/expiring", d.Fridge.Expiring)
	protected.POST("/fridge", d.Fridge.Create)
	protected.PUT("/fridge/:id", d.Fridge.Update)
	protected.DELETE("/fridge/:id", d.Fridge.Delete)
	protected.POST("/fridge/:id/consume", d.Fridge.Consume)

	// ───────────── SHOPPING ─────────────
	protected.GET("/shopping", d.Shopping.List)
	protected.POST("/shopping", d.Shopping.Create)
	protected.DELETE("/shopping/clear-purchased", d.Shopping.ClearPurchased)
	protected.PUT("/shopping/:id", d.Shopping.Update)
	protected.DELETE("/shopping/:id", d.Shopping.Delete)
	protected.POST("/shopping/:id/toggle", d.Shopping.Toggle)

	// ───────────── RECIPES ─────────────
	// static segments are registered before /recipes/:id
	protected.GET("/recipes", d.Recipes.List)
	protected.GET("/recipes/suggestions", d.Recipes.Suggestions)
	protected.GET("/recipes/family", d.Recipes.ListFamily)
	protected.POST("/recipes/family", d.Recipes.CreateFamily)
	protected.PUT("/recipes/family/:id", d.Recipes.UpdateFamily)
	protected.DELETE("/recipes/family/:id", d.Recipes.DeleteFamily)
	protected.GET("/recipes/:id", d.Recipes.Show)

	// ───────────── NUTRITION ─────────────
	protected.GET("/nutrition/profile", d.Nutrition.GetProfile)
	protected.PUT("/nutrition/profile", d.Nutrition.UpdateProfile)
	protected.GET("/nutrition/targets", d.Nutrition.Targets)
	protected.POST("/nutrition/analyze", llmLimit, d.Nutrition.Analyze)

	// ───────────── RECEIPTS ─────────────
	protected.POST("/receipts/scan", llmLimit, d.Receipts.Scan)
	protected.POST("/receipts", d.Receipts.Upload)
	protected.GET("/receipts/:id", d.Receipts.Show)
	protected.POST("/receipts/:id/import", d.Receipts.Import)

	return r
}

func health(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		body := gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(results) > 0 {
			body["checks"] = results
		}
		c.JSON(status, body)
	}
}
