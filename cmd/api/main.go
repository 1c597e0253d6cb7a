package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chessman8212-ai/poinatge-app/internal/account"
	"github.com/chessman8212-ai/poinatge-app/internal/config"
	"github.com/chessman8212-ai/poinatge-app/internal/handler"
	"github.com/chessman8212-ai/poinatge-app/internal/httpmiddleware"
	"github.com/chessman8212-ai/poinatge-app/internal/ledger"
	"github.com/chessman8212-ai/poinatge-app/internal/session"
	"github.com/chessman8212-ai/poinatge-app/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	var (
		db           *store.DB
		accountStore account.Store
		recordStore  ledger.Store
	)
	if cfg.StoreBackend == "memory" {
		accountStore = account.NewMemoryStore()
		recordStore = ledger.NewMemoryStore()
		log.Println("using in-memory store backend")
	} else {
		var err error
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		accountStore = account.NewPGStore(db.Client)
		recordStore = ledger.NewPGStore(db.Client)
	}

	var (
		redisClient *store.Redis
		sessions    session.Store
	)
	if cfg.SessionBackend == "memory" {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		log.Println("using in-memory session backend")
	} else {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient.Client, cfg.SessionTTL)
	}

	accounts := account.NewService(accountStore)
	records := ledger.NewService(recordStore, cfg.RejectFutureDays)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelBoot()
	if err := accounts.BootstrapAdmin(bootCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewClientLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst).Middleware())
	r.Use(httpmiddleware.ResolveSession(sessions))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Liveness: the process is up.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: the persistence layer answers.
	r.GET("/readyz", func(c *gin.Context) {
		dbReady := cfg.StoreBackend == "memory" || db.Ready(c.Request.Context())
		sessionsReady := cfg.SessionBackend == "memory" || redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !dbReady || !sessionsReady {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"db": dbReady, "sessions": sessionsReady})
	})

	handler.New(accounts, records, sessions, cfg).Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
