package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	for _, k := range Keys {
		if k == KeyTimeout {
			fs.Duration(FlagName(k), 0, "")
			continue
		}
		fs.String(FlagName(k), "", "")
	}
	return fs
}

func TestLoad_DefaultsAndFirstRunFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")

	cfg, err := Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, filepath.Join(dir, "schedsync.db"), cfg.DatabasePath)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)

	b, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "# server_url:")
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	yaml := "server_url: http://from-file:8080\napp_secret: file-secret\ntimeout: 3s\ndatabase: /tmp/abs.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("SCHEDSYNC_APP_SECRET", "env-secret")
	t.Setenv("SCHEDSYNC_LOG_LEVEL", "debug")

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--log-level", "error"}))

	cfg, err := Load(dir, fs)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8080", cfg.ServerURL)
	assert.Equal(t, "env-secret", cfg.AppSecret)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/abs.db", cfg.DatabasePath)
}

func TestLoad_Transports(t *testing.T) {
	dir := t.TempDir()

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--transport", "GRPC", "--grpc-address", "10.0.0.1:50051"}))
	cfg, err := Load(dir, fs)
	require.NoError(t, err)
	assert.Equal(t, TransportGRPC, cfg.Transport)
	assert.Equal(t, "10.0.0.1:50051", cfg.GRPCAddress)

	fs = newFlagSet()
	require.NoError(t, fs.Parse([]string{"--transport", "carrier-pigeon"}))
	_, err = Load(dir, fs)
	require.ErrorContains(t, err, "unknown transport")
}

func TestLoad_MemoryDatabaseIsKept(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--database", ":memory:"}))
	cfg, err := Load(t.TempDir(), fs)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server_url: [unclosed"), 0o600))
	_, err := Load(dir, nil)
	require.ErrorContains(t, err, "read config")
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "server-url", FlagName(KeyServerURL))
	assert.Equal(t, "timeout", FlagName(KeyTimeout))
}
