package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	LogLevel     string
	DatabasePath string

	// Replay-protection ledger backend: "sqlite", "memory" or "redis".
	LedgerBackend string
	RedisAddr     string

	// Payment requirement presented in the 402 challenge.
	PriceAtomic    string // atomic units of the settlement asset, e.g. "30000"
	AssetContract  string // token contract address
	AssetDecimals  int
	PaymentNetwork string
	RecipientAddr  string

	FacilitatorURL     string
	FacilitatorTimeout time.Duration
	ChainRPCURL        string
	ChainRPCTimeout    time.Duration

	AdminSecret      string
	AdminTokenExpiry time.Duration
	JWTSecret        string

	FeedSubreddits []string
	FeedLimit      int
	FeedTimeout    time.Duration
	FeedDelay      time.Duration

	ReportCacheTTL  time.Duration
	RequestDeadline time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file found, relying on OS environment variables and defaults.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "insecure-dev-jwt-secret-key-at-least-32-bytes!!")
	if strings.HasPrefix(jwtSecret, "insecure-dev-") {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET for production.")
	}

	adminSecret := getEnv("ADMIN_SECRET", "")
	if adminSecret == "" {
		log.Println("WARNING: ADMIN_SECRET not set; the admin ledger surface is disabled.")
	}

	recipient := getEnv("PAYMENT_RECIPIENT", "")
	if recipient == "" {
		log.Fatalf("FATAL: PAYMENT_RECIPIENT is required (address that must receive each payment).")
	}

	priceAtomic := getEnv("PRICE_ATOMIC", "30000")
	if _, err := strconv.ParseInt(priceAtomic, 10, 64); err != nil {
		log.Fatalf("FATAL: PRICE_ATOMIC must be an integer amount in atomic units, got %q", priceAtomic)
	}

	subreddits := strings.Split(getEnv("FEED_SUBREDDITS", "CryptoCurrency,CryptoMarkets,SatoshiStreetBets"), ",")
	for i := range subreddits {
		subreddits[i] = strings.TrimSpace(subreddits[i])
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./sentiment.db"),

		LedgerBackend: strings.ToLower(getEnv("LEDGER_BACKEND", "sqlite")),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),

		PriceAtomic:    priceAtomic,
		AssetContract:  getEnv("ASSET_CONTRACT", "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		AssetDecimals:  getEnvAsInt("ASSET_DECIMALS", 6),
		PaymentNetwork: getEnv("PAYMENT_NETWORK", "base"),
		RecipientAddr:  recipient,

		FacilitatorURL:     getEnv("FACILITATOR_URL", "https://x402.org/facilitator"),
		FacilitatorTimeout: getEnvAsDuration("FACILITATOR_TIMEOUT", 5*time.Second),
		ChainRPCURL:        getEnv("CHAIN_RPC_URL", "https://mainnet.base.org"),
		ChainRPCTimeout:    getEnvAsDuration("CHAIN_RPC_TIMEOUT", 8*time.Second),

		AdminSecret:      adminSecret,
		AdminTokenExpiry: getEnvAsDuration("ADMIN_TOKEN_EXPIRY", 1*time.Hour),
		JWTSecret:        jwtSecret,

		FeedSubreddits: subreddits,
		FeedLimit:      getEnvAsInt("FEED_LIMIT", 25),
		FeedTimeout:    getEnvAsDuration("FEED_TIMEOUT", 10*time.Second),
		FeedDelay:      getEnvAsDuration("FEED_DELAY", 500*time.Millisecond),

		ReportCacheTTL:  getEnvAsDuration("REPORT_CACHE_TTL", 5*time.Minute),
		RequestDeadline: getEnvAsDuration("REQUEST_DEADLINE", 60*time.Second),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, Ledger=%s, Network=%s, Price=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.LedgerBackend, Cfg.PaymentNetwork, Cfg.PriceAtomic)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
