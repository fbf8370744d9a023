package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)

	req.NoError(err)
	req.Equal(path, resolved)
	req.FileExists(path)
	req.Equal(Default().Addr, cfg.Addr)
	req.Equal(30*time.Second, cfg.Heartbeat.Interval)
	req.True(cfg.Chat.RosterEnabled)
	req.Equal([]string{"nick", "ident"}, cfg.Chat.Commands["claim"])
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte(`
addr: ":9090"
heartbeat:
  interval: 45s
chat:
  roster_enabled: false
  reserved_names: [moderator]
  commands:
    claim: [ident]
    roster: [roster]
    help: [help]
`), 0o600))
	t.Setenv("LOBBYCHAT_LOG_LEVEL", "debug")
	t.Setenv("LOBBYCHAT_CHAT_MAX_NAME_LENGTH", "12")

	cfg, _, err := Load(nil, path)

	req.NoError(err)
	req.Equal(":9090", cfg.Addr)
	req.Equal(45*time.Second, cfg.Heartbeat.Interval)
	req.Equal(15*time.Second, cfg.Heartbeat.InitialDelay)
	req.False(cfg.Chat.RosterEnabled)
	req.Equal([]string{"moderator"}, cfg.Chat.ReservedNames)
	req.Equal([]string{"ident"}, cfg.Chat.Commands["claim"])
	req.Equal("debug", cfg.LogLevel)
	req.Equal(12, cfg.Chat.MaxNameLength)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chat:\n  name_pattern: \"[\"\n"), 0o600))

	_, _, err := Load(nil, path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	req := require.New(t)

	cfg := Default()
	req.NoError(cfg.Validate())

	bad := Default()
	bad.Heartbeat.Interval = 0
	req.Error(bad.Validate())

	bad = Default()
	bad.LogLevel = "verbose"
	req.Error(bad.Validate())

	bad = Default()
	bad.Chat.SendBuffer = 0
	req.Error(bad.Validate())

	bad = Default()
	bad.Chat.Commands = map[string][]string{"claim": {"nick"}}
	req.Error(bad.Validate())
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234", LogLevel: "warn"})

	require.Equal(t, ":1234", cfg.Addr)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, Default().ShutdownTimeout, cfg.ShutdownTimeout)
}

func TestLoadReservedNamesReplaceDefaults(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte("chat:\n  reserved_names: [moderator]\n"), 0o600))

	cfg, _, err := Load(nil, path)
	req.NoError(err)
	req.Equal([]string{"moderator"}, cfg.Chat.ReservedNames)

	policy, err := cfg.Chat.NamePolicy()
	req.NoError(err)
	req.True(policy.Reserved("Moderator"))
	req.False(policy.Reserved("root"))
	req.NoError(policy.Validate("root"))
}

func TestLoadEmptyReservedNames(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte("chat:\n  reserved_names: []\n"), 0o600))

	cfg, _, err := Load(nil, path)
	req.NoError(err)
	req.Empty(cfg.Chat.ReservedNames)

	policy, err := cfg.Chat.NamePolicy()
	req.NoError(err)
	req.NoError(policy.Validate("admin"))
}
