package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Storage  StorageConfig
	Flow     FlowConfig
	Log      LogConfig
}

type ServerConfig struct {
	Address      string
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	MaxPoolConns int
}

type AuthConfig struct {
	JWTSecret string
}

type PaymentConfig struct {
	StripeSecretKey string
	StripeBaseURL   string
	DashboardURL    string
}

type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	SignedURLTTL    time.Duration
	MaxUploadBytes  int64
}

type FlowConfig struct {
	TTL time.Duration
	// Location is the range's timezone; calendar dates picked by users are days in it.
	Location *time.Location
}

type LogConfig struct {
	Level  string
	Format string
}

func (dc *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s pool_max_conns=%d",
		dc.Host,
		dc.Port,
		dc.Name,
		dc.User,
		dc.Password,
		dc.MaxPoolConns,
	)
}

// LoadEnvFile loads variables from a .env file when one exists. Variables
// already set in the environment win.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

func NewConfig() (*Config, error) {
	serverCfg, err := newServerConfig()
	if err != nil {
		return nil, fmt.Errorf("server config error: %w", err)
	}

	dbCfg, err := newDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config error: %w", err)
	}

	authCfg, err := newAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("auth config error: %w", err)
	}

	storageCfg, err := newStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("storage config error: %w", err)
	}

	flowTTL, err := getDurationFromEnv("BOOKING_FLOW_TTL", "30m")
	if err != nil {
		return nil, fmt.Errorf("flow ttl parse error: %w", err)
	}

	location, err := time.LoadLocation(getEnvOrDefault("BOOKING_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("booking timezone error: %w", err)
	}

	return &Config{
		Server:   serverCfg,
		Database: dbCfg,
		Auth:     authCfg,
		Payment:  newPaymentConfig(),
		Storage:  storageCfg,
		Flow:     FlowConfig{TTL: flowTTL, Location: location},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}

func newServerConfig() (ServerConfig, error) {
	writeTimeout, err := getDurationFromEnv("SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("write timeout parse error: %w", err)
	}

	readTimeout, err := getDurationFromEnv("SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read timeout parse error: %w", err)
	}

	idleTimeout, err := getDurationFromEnv("SERVER_IDLE_TIMEOUT", "30s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("idle timeout parse error: %w", err)
	}

	return ServerConfig{
		Address:      getEnvOrDefault("SERVER_ADDRESS", ":5000"),
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func newDatabaseConfig() (DatabaseConfig, error) {
	maxConns, err := strconv.Atoi(getEnvOrDefault("MAX_CONNS", "20"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("max connections parse error: %w", err)
	}

	return DatabaseConfig{
		Host:         getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:         getEnvOrDefault("POSTGRES_PORT", "5432"),
		Name:         getEnvOrDefault("POSTGRES_DB", "tactical"),
		User:         getEnvOrDefault("POSTGRES_USER", "postgres"),
		Password:     getEnvOrDefault("POSTGRES_PASSWORD", ""),
		MaxPoolConns: maxConns,
	}, nil
}

func newAuthConfig() (AuthConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("JWT_SECRET is required")
	}
	return AuthConfig{JWTSecret: secret}, nil
}

func newPaymentConfig() PaymentConfig {
	return PaymentConfig{
		StripeSecretKey: getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		StripeBaseURL:   getEnvOrDefault("STRIPE_BASE_URL", ""),
		DashboardURL:    getEnvOrDefault("DASHBOARD_URL", "http://localhost:3000/dashboard"),
	}
}

func newStorageConfig() (StorageConfig, error) {
	ttl, err := getDurationFromEnv("DOCUMENT_URL_TTL", "5m")
	if err != nil {
		return StorageConfig{}, fmt.Errorf("document url ttl parse error: %w", err)
	}

	maxUpload, err := strconv.ParseInt(getEnvOrDefault("DOCUMENT_MAX_BYTES", "10485760"), 10, 64)
	if err != nil {
		return StorageConfig{}, fmt.Errorf("document max bytes parse error: %w", err)
	}

	return StorageConfig{
		Endpoint:        getEnvOrDefault("OSS_ENDPOINT", "https://oss-eu-central-1.aliyuncs.com"),
		AccessKeyID:     getEnvOrDefault("OSS_ACCESS_KEY_ID", ""),
		AccessKeySecret: getEnvOrDefault("OSS_ACCESS_KEY_SECRET", ""),
		Bucket:          getEnvOrDefault("OSS_BUCKET", "booking-documents"),
		SignedURLTTL:    ttl,
		MaxUploadBytes:  maxUpload,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationFromEnv(key, defaultValue string) (time.Duration, error) {
	return time.ParseDuration(getEnvOrDefault(key, defaultValue))
}
