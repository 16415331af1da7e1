package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNothingElseSet(t *testing.T) {
	cfg, err := Load("", []string{"--database-uri", "postgres://x"})
	require.NoError(t, err)
	require.Equal(t, Default().BindTo, cfg.BindTo)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "postgres://x", cfg.DatabaseURI)
}

func TestLoadRequiresDatabaseURIFromSomeLayer(t *testing.T) {
	_, err := Load("", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "database-uri")
}

func TestLoadYAMLOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "superlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bind_to: 127.0.0.1:9000\ndatabase_uri: postgres://from-yaml\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.BindTo)
	require.Equal(t, "postgres://from-yaml", cfg.DatabaseURI)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "superlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bind_to: 127.0.0.1:9000\ndatabase_uri: postgres://from-yaml\n"), 0o644))

	t.Setenv("FLWR_BIND_TO", "127.0.0.1:9500")
	t.Setenv("FLWR_DATABASE_URI", "postgres://from-env")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9500", cfg.BindTo)
	require.Equal(t, "postgres://from-env", cfg.DatabaseURI)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("FLWR_BIND_TO", "127.0.0.1:9500")
	t.Setenv("FLWR_DATABASE_URI", "postgres://from-env")

	cfg, err := Load("", []string{"--bind-to", "127.0.0.1:9999"})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.BindTo)
	require.Equal(t, "postgres://from-env", cfg.DatabaseURI)
}

func TestLoadNestedServiceLimitsEnv(t *testing.T) {
	t.Setenv("FLWR_DATABASE_URI", "postgres://from-env")
	t.Setenv("FLWR_FLEET__MESSAGE_EXPIRES_AFTER", "30s")
	t.Setenv("FLWR_DRIVER__MAX_ENCODING_MESSAGE_SIZE", "1048576")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.Fleet.MessageExpiresAfter)
	require.Equal(t, 1048576, cfg.Driver.MaxEncodingMessageSize)
	require.Equal(t, Default().Driver.MaxDecodingMessageSize, cfg.Driver.MaxDecodingMessageSize)
}

func TestToSnakeCaseTreatsAcronymsAsOneWord(t *testing.T) {
	require.Equal(t, "Database_URI", toSnakeCase("DatabaseURI"))
	require.Equal(t, "HTTP2_Keepalive_Interval", toSnakeCase("HTTP2KeepaliveInterval"))
	require.Equal(t, "TCP_Keepalive", toSnakeCase("TCPKeepalive"))
	require.Equal(t, "Bind_To", toSnakeCase("BindTo"))
}

func TestLoadNestedServiceLimitsFlag(t *testing.T) {
	cfg, err := Load("", []string{
		"--database-uri", "postgres://x",
		"--fleet-message-expires-after", "45s",
	})
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, cfg.Fleet.MessageExpiresAfter)
}
