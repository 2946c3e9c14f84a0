package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SubgraphURL            string
	SubgraphRetryMax       int
	SubgraphRetryBaseDelay time.Duration

	CoinGeckoURL        string
	CoinGeckoDelay      time.Duration
	CoinGeckoRetryMax   int
	NativeCoinID        string
	ReferenceCoinID     string
	QuoteStaleThreshold time.Duration
	QuoteWorkerInterval time.Duration
	QuoteCacheTTL       time.Duration

	MarketplaceFeeBPS         int
	ChainID                   int64
	Network                   string
	DigitalAssetAddress       string
	MarketplaceAdapterAddress string
	KnownOriginOrigin         string

	EthRPCURL          string
	KeystorePath       string
	KeystorePassphrase string

	DatabaseURL string
	RedisURL    string

	HTTPPort  string
	LogLevel  string
	LogFormat string

	SheetsSpreadsheetID   string
	GoogleCredentialsJSON string
	ExportWorkerInterval  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		SubgraphURL:            envOrDefault("SUBGRAPH_URL", "https://api.thegraph.com/subgraphs/name/knownorigin/known-origin"),
		SubgraphRetryMax:       envOrDefaultInt("SUBGRAPH_RETRY_MAX", 5),
		SubgraphRetryBaseDelay: envOrDefaultDuration("SUBGRAPH_RETRY_BASE_DELAY", 2*time.Second),

		CoinGeckoURL:        envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoDelay:      envOrDefaultDuration("COINGECKO_DELAY", 6*time.Second),
		CoinGeckoRetryMax:   envOrDefaultInt("COINGECKO_RETRY_MAX", 5),
		NativeCoinID:        envOrDefault("NATIVE_COIN_ID", "ethereum"),
		ReferenceCoinID:     envOrDefault("REFERENCE_COIN_ID", "decentraland"),
		QuoteStaleThreshold: envOrDefaultDuration("QUOTE_STALE_THRESHOLD", 10*time.Minute),
		QuoteWorkerInterval: envOrDefaultDuration("QUOTE_WORKER_INTERVAL", 5*time.Minute),
		QuoteCacheTTL:       envOrDefaultDuration("QUOTE_CACHE_TTL", 30*time.Second),

		MarketplaceFeeBPS:         envOrDefaultInt("MARKETPLACE_FEE_BPS", 250),
		ChainID:                   int64(envOrDefaultInt("CHAIN_ID", 1)),
		Network:                   envOrDefault("NETWORK", "ETHEREUM"),
		DigitalAssetAddress:       envOrDefaultWarn("DIGITAL_ASSET_ADDRESS", "0xfbeef911dc5821886e1dda71586d90ed28174b7d"),
		MarketplaceAdapterAddress: envOrDefaultWarn("MARKETPLACE_ADAPTER_ADDRESS", ""),
		KnownOriginOrigin:         envOrDefault("KNOWN_ORIGIN_ORIGIN", "https://knownorigin.io"),

		EthRPCURL:          envOrDefault("ETH_RPC_URL", ""),
		KeystorePath:       envOrDefault("KEYSTORE_PATH", ""),
		KeystorePassphrase: envOrDefault("KEYSTORE_PASSPHRASE", ""),

		DatabaseURL: envOrDefault("DATABASE_URL", ""),
		RedisURL:    envOrDefault("REDIS_URL", ""),

		HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),

		SheetsSpreadsheetID:   envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		ExportWorkerInterval:  envOrDefaultDuration("EXPORT_WORKER_INTERVAL", 24*time.Hour),
	}
}

// SheetsEnabled reports whether Google Sheets export is configured.
func (c Config) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != "" && c.GoogleCredentialsJSON != ""
}

// SignerEnabled reports whether a local keystore signer is configured.
func (c Config) SignerEnabled() bool {
	return c.EthRPCURL != "" && c.KeystorePath != ""
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
