package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode               string        `mapstructure:"mode"`
	Port               int           `mapstructure:"port"`
	ReadLimit          int64         `mapstructure:"read_limit"`
	PingPeriod         time.Duration `mapstructure:"ping_period"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	SendBuffer         int           `mapstructure:"send_buffer"`
	SlowObserverPolicy string        `mapstructure:"slow_observer_policy"`
	LogLevel           string        `mapstructure:"log_level"`
	TraceExporter      string        `mapstructure:"trace_exporter"`
	OTLPEndpoint       string        `mapstructure:"otlp_endpoint"`
	AnalyzeRateLimit   int           `mapstructure:"analyze_rate_limit"`
	AnalyzeRateWindow  time.Duration `mapstructure:"analyze_rate_window"`
}

// EnvPrefix is prepended to every key when read from the environment,
// e.g. RELAY_PORT or RELAY_PING_PERIOD.
const EnvPrefix = "RELAY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8081)
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("slow_observer_policy", "drop")
	v.SetDefault("log_level", "info")
	v.SetDefault("trace_exporter", "none")
	v.SetDefault("otlp_endpoint", "localhost:4317")
	v.SetDefault("analyze_rate_limit", 10)
	v.SetDefault("analyze_rate_window", "1m")
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Warn().Err(err).Str("module", "config").Msg("failed to decode defaults")
	}
	return &cfg
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then RELAY_* env vars.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("trace_exporter", cfg.TraceExporter).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send_buffer must be positive, got %d", c.SendBuffer)
	}
	if c.PingPeriod <= 0 {
		return fmt.Errorf("ping_period must be positive, got %s", c.PingPeriod)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %s", c.WriteTimeout)
	}
	if c.AnalyzeRateLimit > 0 && c.AnalyzeRateWindow <= 0 {
		return fmt.Errorf("analyze_rate_window must be positive when analyze_rate_limit is set")
	}
	return nil
}
