package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vovakirdan/wirechat-lobby/internal/core"
)

var validate = validator.New()

// Config holds server configuration values.
type Config struct {
	Addr              string          `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration   `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	LogLevel          string          `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat         string          `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`
	Heartbeat         HeartbeatConfig `mapstructure:"heartbeat" yaml:"heartbeat"`
	Chat              ChatConfig      `mapstructure:"chat" yaml:"chat"`
}

// HeartbeatConfig controls the per-connection keep-alive probe.
type HeartbeatConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay" validate:"gte=0"`
	Interval     time.Duration `mapstructure:"interval" yaml:"interval" validate:"gt=0"`
	PingTimeout  time.Duration `mapstructure:"ping_timeout" yaml:"ping_timeout" validate:"gte=0"`
}

// ChatConfig holds the command table and naming policy.
type ChatConfig struct {
	CommandPrefix string `mapstructure:"command_prefix" yaml:"command_prefix" validate:"required"`
	// Commands maps an action (claim, roster, help) to its tokens; the
	// first token is the one shown to users.
	Commands      map[string][]string `mapstructure:"commands" yaml:"commands" validate:"required,dive,min=1"`
	RosterEnabled bool                `mapstructure:"roster_enabled" yaml:"roster_enabled"`
	ReservedNames []string            `mapstructure:"reserved_names" yaml:"reserved_names"`
	NamePattern   string              `mapstructure:"name_pattern" yaml:"name_pattern"`
	MaxNameLength int                 `mapstructure:"max_name_length" yaml:"max_name_length" validate:"gte=0"`
	DefaultAvatar string              `mapstructure:"default_avatar" yaml:"default_avatar" validate:"omitempty,url"`
	// SendBuffer is the per-connection outbound queue; events beyond it are dropped.
	SendBuffer         int `mapstructure:"send_buffer" yaml:"send_buffer" validate:"gt=0"`
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute" validate:"gte=0"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		Heartbeat: HeartbeatConfig{
			InitialDelay: 15 * time.Second,
			Interval:     30 * time.Second,
			PingTimeout:  10 * time.Second,
		},
		Chat: ChatConfig{
			CommandPrefix: core.DefaultCommandPrefix,
			Commands:      core.DefaultCommands(),
			RosterEnabled: true,
			ReservedNames: append([]string(nil), core.DefaultReservedNames...),
			NamePattern:   core.DefaultNamePattern,
			MaxNameLength: core.DefaultMaxNameLength,
			DefaultAvatar: core.DefaultAvatar,
			SendBuffer:    32,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
}

// Validate checks field constraints and that the chat policy compiles.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Chat.CommandTable(); err != nil {
		return err
	}
	if _, err := c.Chat.NamePolicy(); err != nil {
		return err
	}
	return nil
}

// CommandTable builds the command table described by the config.
func (c ChatConfig) CommandTable() (*core.CommandTable, error) {
	t, err := core.NewCommandTable(c.CommandPrefix, c.Commands)
	if err != nil {
		return nil, fmt.Errorf("chat commands: %w", err)
	}
	return t, nil
}

// NamePolicy builds the naming rules described by the config.
func (c ChatConfig) NamePolicy() (*core.NamePolicy, error) {
	p, err := core.NewNamePolicy(c.ReservedNames, c.NamePattern, c.MaxNameLength)
	if err != nil {
		return nil, fmt.Errorf("chat name policy: %w", err)
	}
	return p, nil
}
