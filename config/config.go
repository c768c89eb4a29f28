package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/gpay-transactions/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	QueuePath         string
	NotifyMaxAttempts int
	NotifyTimeout     time.Duration

	StellarNetwork    string
	HorizonURL        string
	NetworkPassphrase string
	StellarIssuers    map[string]string
	PayoutAccount     string

	AlipayAppID     string
	AlipayNotifyURL string
	WechatAppID     string
	WechatMchID     string
	WechatNotifyURL string
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	maxAttempts, err := strconv.Atoi(getEnvOrDefault("NOTIFY_MAX_ATTEMPTS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_MAX_ATTEMPTS: %w", err)
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("invalid NOTIFY_MAX_ATTEMPTS: must be positive, got %d", maxAttempts)
	}
	timeout, err := time.ParseDuration(getEnvOrDefault("NOTIFY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEOUT: %w", err)
	}

	return &Config{
		Port:              os.Getenv("PORT"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		QueuePath:         getEnvOrDefault("QUEUE_PATH", "notify.db"),
		NotifyMaxAttempts: maxAttempts,
		NotifyTimeout:     timeout,
		StellarNetwork:    getEnvOrDefault("STELLAR_NETWORK", "testnet"),
		HorizonURL:        getEnvOrDefault("HORIZON_URL", "https://horizon-testnet.stellar.org"),
		NetworkPassphrase: getEnvOrDefault("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015"),
		StellarIssuers:    parseIssuers(os.Getenv("STELLAR_ISSUERS")),
		PayoutAccount:     os.Getenv("STELLAR_PAYOUT_ACCOUNT"),
		AlipayAppID:       os.Getenv("ALIPAY_APP_ID"),
		AlipayNotifyURL:   os.Getenv("ALIPAY_NOTIFY_URL"),
		WechatAppID:       os.Getenv("WECHAT_APP_ID"),
		WechatMchID:       os.Getenv("WECHAT_MCH_ID"),
		WechatNotifyURL:   os.Getenv("WECHAT_NOTIFY_URL"),
	}, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.App{}, &models.Charge{}, &models.Refund{}, &models.Transfer{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIssuers reads "USDC:GA...,EURT:GB..." into a code to issuer map.
func parseIssuers(raw string) map[string]string {
	issuers := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		code, issuer, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || code == "" || issuer == "" {
			continue
		}
		issuers[code] = issuer
	}
	return issuers
}
