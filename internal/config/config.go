package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthCookieSecure bool

	// CDNDomain fronts the object store; stream URLs are composed against it.
	CDNDomain string

	// RenewalCost is debited when a key is issued or renewed.
	RenewalCost decimal.Decimal
	// RenewalPeriodDays is the validity window granted by issuance and renewal.
	RenewalPeriodDays int

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	PaymentProvider      string
	PaymentAPIKey        string
	PaymentWebhookSecret string
	FrontendURL          string
}

const defaultRenewalCost = "30.00"

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:              getenv("APP_SERVICE", "reelgate"),
		AppVersion:           getenv("APP_VERSION", "0.1.0"),
		Environment:          environment,
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure:     authCookieSecure,
		CDNDomain:            strings.TrimSpace(getenv("CDN_DOMAIN", "")),
		RenewalCost:          getenvDecimal("RENEWAL_COST", defaultRenewalCost),
		RenewalPeriodDays:    getenvInt("RENEWAL_PERIOD_DAYS", 30),
		OTLPEndpoint:         getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:               getenv("DATABASE_TYPE", "postgres"),
		DBHost:               getenv("DATABASE_HOST", "localhost"),
		DBPort:               getenv("DATABASE_PORT", "5432"),
		DBName:               getenv("DATABASE_NAME", "reelgate"),
		DBUser:               getenv("DATABASE_USER", "postgres"),
		DBPassword:           getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:            getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:        getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:        getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime:    getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime:    getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),
		PaymentProvider:      getenv("PAYMENT_PROVIDER", "stripe"),
		PaymentAPIKey:        strings.TrimSpace(getenv("PAYMENT_API_KEY", "")),
		PaymentWebhookSecret: strings.TrimSpace(getenv("PAYMENT_WEBHOOK_SECRET", "")),
		FrontendURL:          strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:3000"), "/"),
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDecimal(key, def string) decimal.Decimal {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		value = def
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil || parsed.IsNegative() {
		parsed, _ = decimal.NewFromString(def)
	}
	return parsed
}
