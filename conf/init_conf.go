package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	// Network label, e.g. "varity-l3"
	Net string
	// Deployer becomes the first admin and the ledger owner on first start
	Deployer string

	Server   ServerConfig
	Database DatabaseConfig
	Registry RegistryConfig
	Ledger   LedgerConfig
	Token    TokenConfig
	Events   EventsConfig
	Audit    AuditConfig
	Log      LogConfig
}

// ServerConfig HTTP boundary configuration
type ServerConfig struct {
	Port           string // API port
	PathPrefix     string // Path prefix for reverse proxy (e.g., "/appstore")
	SwaggerBaseUrl string // Swagger API base URL
	AllowOrigins   []string
	RateLimit      int    // settlement requests per caller per RatePeriod, 0 disables
	RatePeriod     string // S, M, H or D
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Type     string // pebble
	DataDir  string // PebbleDB data directory
	InMemory bool   // keep everything in memory, for local runs
}

// RegistryConfig app registry configuration
type RegistryConfig struct {
	Categories      []string // recognized categories, exact match
	SupportedChains []uint64 // recognized chain ids
	Tiers           []string // recognized infrastructure tiers
}

// LedgerConfig payment ledger configuration
type LedgerConfig struct {
	Treasury      string // receives platform fees and billing payments
	TokenAddress  string // settlement token
	TokenDecimals int32  // display only
	VerifyAppIDs  bool   // reject pricing for ids unknown to the registry
}

// TokenConfig token transfer gateway configuration
type TokenConfig struct {
	GatewayUrl string
	ApiKey     string
	Timeout    time.Duration
	DryRun     bool // log transfers instead of calling the gateway
}

// EventsConfig fact delivery configuration
type EventsConfig struct {
	LogEnabled  bool
	ZmqEndpoint string // e.g. "tcp://*:28400", empty disables
	ArchiveDsn  string // sqlite file for the fact archive, empty disables
	RecentSize  int    // events kept in memory for /events/recent
}

// AuditConfig revenue audit configuration
type AuditConfig struct {
	Enable   bool
	Interval time.Duration
}

// LogConfig logging configuration
type LogConfig struct {
	Level     string
	Format    string // logfmt or json
	SentryDsn string
}

// Cfg global configuration instance
var Cfg *Config

// InitConfig initialize configuration
func InitConfig() error {
	viper.SetConfigFile(GetYaml())
	viper.SetEnvPrefix("APPSTORE")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("Fatal error config file: %s", err)
	}

	Cfg = loadConfig(viper.GetViper())
	return nil
}

func loadConfig(v *viper.Viper) *Config {
	cfg := &Config{
		Net:      v.GetString("net"),
		Deployer: v.GetString("deployer"),

		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			PathPrefix:     v.GetString("server.path_prefix"),
			SwaggerBaseUrl: v.GetString("server.swagger_base_url"),
			AllowOrigins:   v.GetStringSlice("server.allow_origins"),
			RateLimit:      v.GetInt("server.rate_limit"),
			RatePeriod:     v.GetString("server.rate_period"),
		},

		Database: DatabaseConfig{
			Type:     v.GetString("database.type"),
			DataDir:  v.GetString("database.data_dir"),
			InMemory: v.GetBool("database.in_memory"),
		},

		Registry: RegistryConfig{
			Categories: v.GetStringSlice("registry.categories"),
			Tiers:      v.GetStringSlice("registry.tiers"),
		},

		Ledger: LedgerConfig{
			Treasury:      v.GetString("ledger.treasury"),
			TokenAddress:  v.GetString("ledger.token_address"),
			TokenDecimals: v.GetInt32("ledger.token_decimals"),
			VerifyAppIDs:  v.GetBool("ledger.verify_app_ids"),
		},

		Token: TokenConfig{
			GatewayUrl: v.GetString("token.gateway_url"),
			ApiKey:     v.GetString("token.api_key"),
			Timeout:    v.GetDuration("token.timeout"),
			DryRun:     v.GetBool("token.dry_run"),
		},

		Events: EventsConfig{
			LogEnabled:  v.GetBool("events.log_enabled"),
			ZmqEndpoint: v.GetString("events.zmq_endpoint"),
			ArchiveDsn:  v.GetString("events.archive_dsn"),
			RecentSize:  v.GetInt("events.recent_size"),
		},

		Audit: AuditConfig{
			Enable:   v.GetBool("audit.enable"),
			Interval: v.GetDuration("audit.interval"),
		},

		Log: LogConfig{
			Level:     v.GetString("log.level"),
			Format:    v.GetString("log.format"),
			SentryDsn: v.GetString("log.sentry_dsn"),
		},
	}
	for _, id := range v.GetIntSlice("registry.supported_chains") {
		if id > 0 {
			cfg.Registry.SupportedChains = append(cfg.Registry.SupportedChains, uint64(id))
		}
	}

	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "7290"
	}
	if cfg.Server.SwaggerBaseUrl == "" {
		cfg.Server.SwaggerBaseUrl = "localhost:" + cfg.Server.Port
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		cfg.Server.AllowOrigins = []string{"*"}
	}
	if cfg.Server.RatePeriod == "" {
		cfg.Server.RatePeriod = "M"
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "pebble"
	}
	if cfg.Database.DataDir == "" {
		cfg.Database.DataDir = "./data"
	}
	if len(cfg.Registry.Categories) == 0 {
		cfg.Registry.Categories = DefaultCategories
	}
	if len(cfg.Registry.SupportedChains) == 0 {
		cfg.Registry.SupportedChains = DefaultSupportedChains
	}
	if len(cfg.Registry.Tiers) == 0 {
		cfg.Registry.Tiers = DefaultTiers
	}
	if cfg.Ledger.Treasury == "" {
		cfg.Ledger.Treasury = DefaultTreasury
	}
	if cfg.Ledger.TokenAddress == "" {
		cfg.Ledger.TokenAddress = DefaultTokenAddress
	}
	if cfg.Ledger.TokenDecimals == 0 {
		cfg.Ledger.TokenDecimals = 6
	}
	if cfg.Token.Timeout == 0 {
		cfg.Token.Timeout = 15 * time.Second
	}
	if cfg.Events.RecentSize == 0 {
		cfg.Events.RecentSize = 200
	}
	if cfg.Audit.Interval == 0 {
		cfg.Audit.Interval = time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Defaults taken from the platform's public deployment
var (
	DefaultCategories = []string{
		"Business Tools",
		"Analytics",
		"Finance",
		"Developer Tools",
		"Productivity",
		"Infrastructure",
		"Communication",
		"Data Management",
		"Security",
		"DeFi",
		"NFT",
		"Gaming",
		"Other",
	}

	// Varity L3, Arbitrum Sepolia, Arbitrum One, Ethereum, Polygon, Optimism, Base
	DefaultSupportedChains = []uint64{33529, 421614, 42161, 1, 137, 10, 8453}

	DefaultTiers = []string{"free", "starter", "growth", "enterprise"}
)

const (
	DefaultTreasury     = "0xA0b83bBeF45FeE8c8E158b25b736E05eBd51b793"
	DefaultTokenAddress = "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"
)
