package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress    string
	DatabaseURI   string
	PublicBaseURL string
	SiteURL       string

	MerchantLogin    string
	MerchantPass1    string
	MerchantPass2    string
	PaymentTestMode  bool
	PaymentURL       string
	GatewayStateURL  string
	PaymentCulture   string
	DownloadTokenTTL time.Duration

	CounterBackend string
	RedisAddr      string
	RedisPassword  string

	KafkaBrokers []string
	KafkaTopic   string

	BlobDir    string
	BlobSecret string
	BlobURLTTL time.Duration

	AdminPasswordHash string
	AdminTokenSecret  string

	CORSAllowedOrigins []string
	NotifyWorkers      int
	NotifyQueueSize    int
	ShutdownTimeout    time.Duration
	LogLevel           string
}

const (
	CounterBackendPostgres = "postgres"
	CounterBackendRedis    = "redis"
)

const (
	defaultRunAddress       = ":8080"
	defaultPublicBaseURL    = "http://localhost:8080"
	defaultSiteURL          = "http://localhost:3000"
	defaultPaymentURL       = "https://auth.robokassa.ru/Merchant/Index.aspx"
	defaultGatewayStateURL  = "https://auth.robokassa.ru/Merchant/WebService/Service.asmx/OpStateExt"
	defaultPaymentCulture   = "ru"
	defaultDownloadTokenTTL = 24 * time.Hour
	defaultRedisAddr        = "localhost:6379"
	defaultKafkaTopic       = "pdfshop.download-ready"
	defaultBlobDir          = "./data/blobs"
	defaultBlobURLTTL       = 5 * time.Minute
	defaultAdminTokenSecret = "change-me-in-production"
	defaultNotifyWorkers    = 2
	defaultNotifyQueueSize  = 64
	defaultShutdownTimeout  = 10 * time.Second
)

// Load parses configuration from an optional .env file, environment variables and flags.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		PublicBaseURL:      getString(lookup, "PUBLIC_BASE_URL", defaultPublicBaseURL),
		SiteURL:            getString(lookup, "SITE_URL", defaultSiteURL),
		MerchantLogin:      getString(lookup, "ROBOKASSA_MERCHANT_LOGIN", ""),
		MerchantPass1:      getString(lookup, "ROBOKASSA_PASSWORD1", ""),
		MerchantPass2:      getString(lookup, "ROBOKASSA_PASSWORD2", ""),
		PaymentTestMode:    getBool(lookup, "ROBOKASSA_TEST_MODE", false),
		PaymentURL:         getString(lookup, "ROBOKASSA_PAYMENT_URL", defaultPaymentURL),
		GatewayStateURL:    getString(lookup, "ROBOKASSA_STATE_URL", defaultGatewayStateURL),
		PaymentCulture:     getString(lookup, "ROBOKASSA_CULTURE", defaultPaymentCulture),
		DownloadTokenTTL:   getDuration(lookup, "DOWNLOAD_TOKEN_TTL", defaultDownloadTokenTTL),
		CounterBackend:     getString(lookup, "INVOICE_COUNTER_BACKEND", CounterBackendPostgres),
		RedisAddr:          getString(lookup, "REDIS_ADDR", defaultRedisAddr),
		RedisPassword:      getString(lookup, "REDIS_PASSWORD", ""),
		KafkaBrokers:       getList(lookup, "KAFKA_BROKERS"),
		KafkaTopic:         getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		BlobDir:            getString(lookup, "BLOB_DIR", defaultBlobDir),
		BlobSecret:         getString(lookup, "BLOB_SECRET", ""),
		BlobURLTTL:         getDuration(lookup, "BLOB_URL_TTL", defaultBlobURLTTL),
		AdminPasswordHash:  getString(lookup, "ADMIN_PASSWORD_HASH", ""),
		AdminTokenSecret:   getString(lookup, "ADMIN_TOKEN_SECRET", defaultAdminTokenSecret),
		CORSAllowedOrigins: getList(lookup, "CORS_ALLOWED_ORIGINS"),
		NotifyWorkers:      getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
		NotifyQueueSize:    getInt(lookup, "NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:           getString(lookup, "LOG_LEVEL", "info"),
	}

	fs := flag.NewFlagSet("pdfshop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.DownloadTokenTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		kafkaBrokersStr    = strings.Join(cfg.KafkaBrokers, ",")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PublicBaseURL, "public-url", cfg.PublicBaseURL, "Externally reachable base URL of this service")
	fs.StringVar(&cfg.SiteURL, "site-url", cfg.SiteURL, "Base URL of the public site hosting result pages")
	fs.BoolVar(&cfg.PaymentTestMode, "test-mode", cfg.PaymentTestMode, "Send IsTest=1 to the payment gateway")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Download token lifetime")
	fs.StringVar(&cfg.CounterBackend, "counter", cfg.CounterBackend, "Invoice counter backend (postgres|redis)")
	fs.StringVar(&kafkaBrokersStr, "kafka", kafkaBrokersStr, "Comma separated Kafka brokers")
	fs.StringVar(&cfg.BlobDir, "blob-dir", cfg.BlobDir, "Directory for stored PDF files")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of notification workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.DownloadTokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitList(kafkaBrokersStr)

	for _, secret := range []struct {
		env    string
		target *string
	}{
		{"ROBOKASSA_PASSWORD1_FILE", &cfg.MerchantPass1},
		{"ROBOKASSA_PASSWORD2_FILE", &cfg.MerchantPass2},
		{"ADMIN_TOKEN_SECRET_FILE", &cfg.AdminTokenSecret},
		{"BLOB_SECRET_FILE", &cfg.BlobSecret},
	} {
		if file, ok := lookup(secret.env); ok && file != "" {
			content, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", strings.ToLower(secret.env), err)
			}
			*secret.target = strings.TrimSpace(string(content))
		}
	}

	if cfg.DownloadTokenTTL <= 0 {
		cfg.DownloadTokenTTL = defaultDownloadTokenTTL
	}

	if cfg.BlobURLTTL <= 0 {
		cfg.BlobURLTTL = defaultBlobURLTTL
	}

	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.BlobSecret == "" {
		cfg.BlobSecret = cfg.AdminTokenSecret
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.MerchantLogin == "" || cfg.MerchantPass1 == "" || cfg.MerchantPass2 == "" {
		return nil, fmt.Errorf("merchant login and both gateway passwords must be provided")
	}

	switch cfg.CounterBackend {
	case CounterBackendPostgres, CounterBackendRedis:
	default:
		return nil, fmt.Errorf("unknown invoice counter backend %q", cfg.CounterBackend)
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string) []string {
	v, _ := lookup(key)
	return splitList(v)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
