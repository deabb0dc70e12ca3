package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/gainsfolio/backend/src/config"
	"github.com/username/gainsfolio/backend/src/database"
	"github.com/username/gainsfolio/backend/src/handlers"
	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/processors"
	"github.com/username/gainsfolio/backend/src/security"
	"github.com/username/gainsfolio/backend/src/services"
	"github.com/username/gainsfolio/backend/src/utils"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", getFrontendURL())
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token, If-None-Match")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getFrontendURL() string {
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

// rateLimitMiddleware applies a single global limiter. Per-user fairness is
// not a concern at this scale.
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				utils.SendJSONError(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Starting gainsfolio backend")

	if err := processors.LoadHistoricalRates(config.Cfg.HistoricalDataPath); err != nil {
		logger.L.Warn("Historical exchange rates unavailable, non-EUR amounts will use a default rate", "path", config.Cfg.HistoricalDataPath, "error", err)
	}
	if err := utils.InitCountryData(config.Cfg.CountryDataPath); err != nil {
		logger.L.Warn("Country data unavailable, XML reports will omit country codes", "path", config.Cfg.CountryDataPath, "error", err)
	}

	database.InitDB(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(config.Cfg.JWTSecret)
	uploadService := services.NewUploadService(
		processors.NewTransactionProcessor(),
		processors.NewFIFOProcessor(),
		processors.NewHistoryValidator(),
		reportCache,
	)

	userHandler := handlers.NewUserHandler(authService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	portfolioHandler := handlers.NewPortfolioHandler(uploadService)
	transactionHandler := handlers.NewTransactionHandler(uploadService)
	reportHandler := handlers.NewReportHandler(uploadService)

	limiter := rate.NewLimiter(rate.Limit(20), 40)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(rateLimitMiddleware(limiter))
	r.Use(handlers.CSRFMiddleware)

	r.Get("/api/auth/csrf", handlers.GetCSRFToken)
	r.Post("/api/auth/register", userHandler.RegisterUserHandler)
	r.Post("/api/auth/login", userHandler.LoginUserHandler)
	r.Post("/api/auth/refresh", userHandler.RefreshTokenHandler)

	r.Group(func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(authService))

		r.Post("/api/auth/logout", userHandler.LogoutUserHandler)
		r.Post("/api/upload", uploadHandler.HandleUpload)
		r.Get("/api/transactions", transactionHandler.HandleGetProcessedTransactions)
		r.Delete("/api/transactions", transactionHandler.HandleDeleteAllTransactions)
		r.Get("/api/portfolio/gains", portfolioHandler.HandleGetGainsReport)
		r.Get("/api/portfolio/holdings", portfolioHandler.HandleGetHoldings)
		r.Get("/api/portfolio/validation", portfolioHandler.HandleGetValidation)
		r.Get("/api/portfolio/gains/{year}", portfolioHandler.HandleGetYearMatches)
		r.Get("/api/reports/{year}/xml", reportHandler.HandleGetYearDeclarationXML)
		r.Get("/api/reports/{year}/summary", reportHandler.HandleGetYearSummary)
	})

	server := &http.Server{
		Addr:         ":" + config.Cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server listening", "port", config.Cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
