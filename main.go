package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/config"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/database"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/handlers"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/logger"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/payment"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/security"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/sentiment"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// requestDeadlineMiddleware bounds worst-case latency when every fallback
// path (facilitator timeout, chain query, slow feeds) is exercised.
func requestDeadlineMiddleware(deadline time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), deadline)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization, X-Payment")
		w.Header().Set("Access-Control-Expose-Headers", "X-Payment-Required, X-Request-ID, ETag")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func buildLedger(cfg *config.AppConfig) payment.Ledger {
	switch cfg.LedgerBackend {
	case "memory":
		logger.L.Warn("Using in-memory payment ledger; spends do not survive restarts.")
		return payment.NewMemoryLedger()
	case "redis":
		ledger, err := payment.NewRedisLedger(cfg.RedisAddr)
		if err != nil {
			logger.L.Error("Failed to initialize Redis ledger", "error", err)
			stdlog.Fatalf("Failed to initialize Redis ledger: %v", err)
		}
		return ledger
	case "sqlite":
		database.InitDB(cfg.DatabasePath)
		return payment.NewSQLiteLedger(database.DB)
	default:
		stdlog.Fatalf("Unknown LEDGER_BACKEND %q (want sqlite, memory or redis)", cfg.LedgerBackend)
		return nil
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Crypto sentiment API starting...")

	ledger := buildLedger(config.Cfg)

	facilitator := payment.NewFacilitatorClient(config.Cfg.FacilitatorURL, config.Cfg.FacilitatorTimeout)
	chain := payment.NewChainClient(config.Cfg.ChainRPCURL, config.Cfg.ChainRPCTimeout)

	admitHook := func(entry models.LedgerEntry) {
		logger.L.Info("Payment consumed",
			"paymentID", entry.ID,
			"payer", entry.Payer,
			"amount", entry.Amount,
			"resource", entry.Resource)
	}
	gateway := payment.NewGateway(ledger, facilitator, chain, admitHook)

	displayPrice := payment.DisplayPrice(config.Cfg.PriceAtomic, config.Cfg.AssetDecimals)
	requirementFor := func(resource string) models.PaymentRequirement {
		return models.PaymentRequirement{
			Scheme:      "exact",
			Network:     config.Cfg.PaymentNetwork,
			Amount:      config.Cfg.PriceAtomic,
			Asset:       config.Cfg.AssetContract,
			PayTo:       payment.ChecksumAddress(config.Cfg.RecipientAddr),
			Resource:    resource,
			Description: "Crypto sentiment report (" + displayPrice + " per call)",
			MimeType:    "application/json",
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"asset":           map[string]any{"type": "string"},
					"signal":          map[string]any{"type": "string"},
					"normalizedScore": map[string]any{"type": "number"},
					"confidence":      map[string]any{"type": "number"},
					"mentionCount":    map[string]any{"type": "integer"},
				},
			},
		}
	}

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.ReportCacheTTL, 2*config.Cfg.ReportCacheTTL)

	collector := sentiment.NewFeedCollector(
		"https://www.reddit.com",
		config.Cfg.FeedSubreddits,
		config.Cfg.FeedLimit,
		config.Cfg.FeedTimeout,
		config.Cfg.FeedDelay,
	)
	analyzer := sentiment.NewAnalyzer()

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AdminSecret, config.Cfg.AdminTokenExpiry)
	reportHandler := handlers.NewReportHandler(collector, analyzer, reportCache)
	adminHandler := handlers.NewAdminHandler(authService, ledger, config.Cfg.AssetDecimals)
	paymentMiddleware := &handlers.PaymentMiddleware{
		Gateway:        gateway,
		RequirementFor: requirementFor,
	}

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	gatedReport := requestDeadlineMiddleware(
		config.Cfg.RequestDeadline,
		paymentMiddleware.Gate(http.HandlerFunc(reportHandler.HandleGetSentiment)),
	)
	apiRouter.Handle("GET /api/sentiment/{symbol}", gatedReport)
	apiRouter.HandleFunc("GET /api/assets", reportHandler.HandleGetAssets(displayPrice))
	apiRouter.HandleFunc("POST /api/admin/login", adminHandler.HandleLogin)
	apiRouter.HandleFunc("GET /api/admin/ledger", adminHandler.AuthMiddleware(adminHandler.HandleLedgerSummary))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Crypto sentiment API is running", "price": displayPrice})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(requestIDMiddleware(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
