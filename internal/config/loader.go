package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "LOBBYCHAT"
	envConfigDefaultPath = "LOBBYCHAT_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	defaults := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, defaults)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, defaults); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
		} else {
			return defaults, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	// Decode into a zero value so lists from the file replace the default
	// lists instead of being merged into them.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, configPath, fmt.Errorf("validate config: %w", err)
	}

	return cfg, configPath, nil
}

// setDefaults registers every key so env overrides resolve even when the
// file does not mention them.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("read_header_timeout", cfg.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)

	v.SetDefault("heartbeat.initial_delay", cfg.Heartbeat.InitialDelay)
	v.SetDefault("heartbeat.interval", cfg.Heartbeat.Interval)
	v.SetDefault("heartbeat.ping_timeout", cfg.Heartbeat.PingTimeout)

	v.SetDefault("chat.command_prefix", cfg.Chat.CommandPrefix)
	v.SetDefault("chat.commands", cfg.Chat.Commands)
	v.SetDefault("chat.roster_enabled", cfg.Chat.RosterEnabled)
	v.SetDefault("chat.reserved_names", cfg.Chat.ReservedNames)
	v.SetDefault("chat.name_pattern", cfg.Chat.NamePattern)
	v.SetDefault("chat.max_name_length", cfg.Chat.MaxNameLength)
	v.SetDefault("chat.default_avatar", cfg.Chat.DefaultAvatar)
	v.SetDefault("chat.send_buffer", cfg.Chat.SendBuffer)
	v.SetDefault("chat.rate_limit_per_minute", cfg.Chat.RateLimitPerMinute)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
