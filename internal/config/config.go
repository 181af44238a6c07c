// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Ledger      LedgerConfig
	Payment     PaymentConfig
	AWS         AWSConfig
	Projector   ProjectorConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

// LedgerConfig carries the policy knobs of the ledger core.
type LedgerConfig struct {
	// GovernanceMintPriceWei is the exact payment a governance mint must
	// carry; GovernanceMintAmount is the fixed token grant per mint.
	GovernanceMintPriceWei uint64
	GovernanceMintAmount   uint64
	// DisputeQuorum is the minimum total voting power cast before a dispute
	// can resolve; DisputeMinBalance gates dispute creation.
	DisputeQuorum     uint64
	DisputeMinBalance uint64
	// AutomatedReporter is the sentinel address the automated-flagging path
	// reports under; it bypasses the holder check.
	AutomatedReporter string
	// FlagServiceKey authenticates the automated-flagging endpoint.
	FlagServiceKey string
	// SuspendedLicenseUse decides whether unconsumed licenses of a suspended
	// parent may still back new derivatives ("allow" or "deny").
	SuspendedLicenseUse string
	// TreasuryAddress receives governance mint proceeds.
	TreasuryAddress string
	// DevFaucet enables the unauthenticated wallet faucet endpoint.
	DevFaucet bool
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
	// WeiPerCent converts a confirmed fiat amount into wallet wei.
	WeiPerCent uint64
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type ProjectorConfig struct {
	// IntervalSeconds between replay passes; 0 disables the background loop.
	IntervalSeconds int
	BatchSize       int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvAsSlice("CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "ip_registry"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168),
		},
		Ledger: LedgerConfig{
			GovernanceMintPriceWei: getEnvAsUint("GOV_MINT_PRICE_WEI", 100000000000000000),
			GovernanceMintAmount:   getEnvAsUint("GOV_MINT_AMOUNT", 100),
			DisputeQuorum:          getEnvAsUint("DISPUTE_QUORUM", 100),
			DisputeMinBalance:      getEnvAsUint("DISPUTE_MIN_BALANCE", 1),
			AutomatedReporter:      getEnv("AUTOMATED_REPORTER", "0x0000000000000000000000000000000000000a11"),
			FlagServiceKey:         getEnv("FLAG_SERVICE_KEY", ""),
			SuspendedLicenseUse:    getEnv("SUSPENDED_LICENSE_USE", "allow"),
			TreasuryAddress:        getEnv("TREASURY_ADDRESS", "0x00000000000000000000000000000000000007ea"),
			DevFaucet:              getEnvAsBool("DEV_FAUCET", true),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			WeiPerCent:           getEnvAsUint("WEI_PER_CENT", 10000000000000),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "ip-registry-content"),
		},
		Projector: ProjectorConfig{
			IntervalSeconds: getEnvAsInt("PROJECTOR_INTERVAL", 2),
			BatchSize:       getEnvAsInt("PROJECTOR_BATCH_SIZE", 200),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Environment == "production" && c.Ledger.DevFaucet {
		return fmt.Errorf("wallet faucet must be disabled in production")
	}

	switch c.Ledger.SuspendedLicenseUse {
	case "allow", "deny":
	default:
		return fmt.Errorf("SUSPENDED_LICENSE_USE must be allow or deny, got %q", c.Ledger.SuspendedLicenseUse)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
