package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Chain       ChainConfig    `mapstructure:"chain"`
	Workers     WorkerConfig   `mapstructure:"workers"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Host           string   `mapstructure:"host"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// ChainConfig contains ledger RPC configuration
type ChainConfig struct {
	RPCEndpoint      string `mapstructure:"rpc_endpoint"`
	Commitment       string `mapstructure:"commitment"`         // confirmed or finalized
	MaxSubmitRetries uint   `mapstructure:"max_submit_retries"` // RPC-node resend budget, not re-submission
	ConfirmInterval  int    `mapstructure:"confirm_interval"`   // seconds between confirmation polls
	ConfirmTimeout   int    `mapstructure:"confirm_timeout"`    // seconds before a watcher gives up
}

// WorkerConfig contains background worker configuration
type WorkerConfig struct {
	SweepSchedule string `mapstructure:"sweep_schedule"` // cron spec for the submitted-trade sweep
	SweepBatch    int    `mapstructure:"sweep_batch"`    // max trades checked per sweep
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build database URL if not provided
	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "porter_service")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	// Chain defaults
	viper.SetDefault("chain.rpc_endpoint", "https://api.devnet.solana.com")
	viper.SetDefault("chain.commitment", "confirmed")
	viper.SetDefault("chain.max_submit_retries", 3)
	viper.SetDefault("chain.confirm_interval", 2)
	viper.SetDefault("chain.confirm_timeout", 300)

	// Worker defaults
	viper.SetDefault("workers.sweep_schedule", "@every 1m")
	viper.SetDefault("workers.sweep_batch", 50)
}

func overrideFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("server.port", p)
		}
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		viper.Set("redis.host", redisHost)
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		viper.Set("redis.password", redisPassword)
	}

	if rpcEndpoint := os.Getenv("CHAIN_RPC_ENDPOINT"); rpcEndpoint != "" {
		viper.Set("chain.rpc_endpoint", rpcEndpoint)
	}
	if commitment := os.Getenv("CHAIN_COMMITMENT"); commitment != "" {
		viper.Set("chain.commitment", commitment)
	}
	if retries := os.Getenv("CHAIN_MAX_SUBMIT_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			viper.Set("chain.max_submit_retries", r)
		}
	}
}

func validate(config *Config) error {
	if config.Chain.RPCEndpoint == "" {
		return fmt.Errorf("chain RPC endpoint is required")
	}

	switch config.Chain.Commitment {
	case "confirmed", "finalized":
	default:
		return fmt.Errorf("chain commitment must be confirmed or finalized, got %q", config.Chain.Commitment)
	}

	if config.Database.URL == "" && (config.Database.Host == "" || config.Database.Name == "") {
		return fmt.Errorf("database configuration is incomplete")
	}

	if config.Chain.ConfirmInterval <= 0 || config.Chain.ConfirmTimeout <= 0 {
		return fmt.Errorf("confirmation interval and timeout must be positive")
	}

	return nil
}
