package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 9000, cfg.GRPCPort)
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "admin", cfg.Password)
	assert.Equal(t, EdgeModeLayout, cfg.EdgeMode)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.Tracing)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.VendorOverrides)
}

func TestParse_EnvThenFlags(t *testing.T) {
	t.Setenv("WIDS_ADDR", ":9090")
	t.Setenv("WIDS_REFRESH", "2s")
	t.Setenv("WIDS_SEED", "42")
	t.Setenv("WIDS_PASSWORD", "s3cret")
	t.Setenv("WIDS_ALLOWED_ORIGINS", "http://a.local, http://b.local,")
	t.Setenv("WIDS_GRPC", "not-a-number")

	cfg, err := Parse([]string{"-addr", ":7070", "-edge-mode", "nodes", "-debug"})
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.RefreshInterval)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, EdgeModeNodes, cfg.EdgeMode)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)
	// unparsable env falls back to the default
	assert.Equal(t, 9000, cfg.GRPCPort)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  error
	}{
		{name: "edge mode", args: []string{"-edge-mode", "spiral"}, err: ErrInvalidEdgeMode},
		{name: "interval", args: []string{"-refresh", "0s"}, err: ErrInvalidInterval},
		{name: "port", args: []string{"-grpc", "70000"}, err: ErrInvalidPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := Parse([]string{"-password", ""})
	assert.Error(t, err)

	_, err = Parse([]string{"-no-such-flag"})
	assert.Error(t, err)
}

func TestParse_YAMLFile(t *testing.T) {
	path := writeFile(t, "widsview.yaml", `
addr: ":6060"
grpc_port: 0
refresh_interval: 3s
edge_mode: nodes
debug: true
allowed_origins:
  - http://ops.local
session_ttl: 1h
vendor_overrides:
  "00:11:22": Lab AP
`)

	t.Setenv("WIDS_REFRESH", "4s")
	cfg, err := Parse([]string{"-config", path, "-addr", ":6161"})
	require.NoError(t, err)

	assert.Equal(t, ":6161", cfg.Addr, "flag beats file")
	assert.Equal(t, 4*time.Second, cfg.RefreshInterval, "env beats file")
	assert.Equal(t, 0, cfg.GRPCPort)
	assert.Equal(t, EdgeModeNodes, cfg.EdgeMode)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"http://ops.local"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, map[string]string{"00:11:22": "Lab AP"}, cfg.VendorOverrides)
}

func TestParse_YAMLFileFromEnv(t *testing.T) {
	path := writeFile(t, "widsview.yaml", "seed: 11\n")
	t.Setenv("WIDS_CONFIG", path)

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(11), cfg.Seed)

	cfg, err = Parse([]string{"--config=" + writeFile(t, "other.yaml", "seed: 12\n")})
	require.NoError(t, err)
	assert.Equal(t, int64(12), cfg.Seed)
}

func TestParse_YAMLFileErrors(t *testing.T) {
	_, err := Parse([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Parse([]string{"-config", writeFile(t, "bad.yaml", "addr: [unterminated\n")})
	assert.ErrorContains(t, err, "parse config")

	_, err = Parse([]string{"-config", writeFile(t, "mode.yaml", "edge_mode: spiral\n")})
	assert.ErrorIs(t, err, ErrInvalidEdgeMode)
}

func TestParse_DotEnv(t *testing.T) {
	path := writeFile(t, ".env", "WIDS_USERNAME=operator\nWIDS_EDGE_MODE=nodes\n")
	t.Setenv("WIDS_USERNAME", "")
	t.Setenv("WIDS_EDGE_MODE", "")
	require.NoError(t, os.Unsetenv("WIDS_USERNAME"))
	require.NoError(t, os.Unsetenv("WIDS_EDGE_MODE"))

	require.NoError(t, godotenv.Load(path))
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "operator", cfg.Username)
	assert.Equal(t, EdgeModeNodes, cfg.EdgeMode)
}

func TestParse_VendorOverridesFromEnv(t *testing.T) {
	path := writeFile(t, "widsview.yaml", "vendor_overrides:\n  \"aa:bb:cc\": File AP\n")
	t.Setenv("WIDS_VENDOR_OVERRIDES", "00-11-22=Lab AP, 001133 = Bench Sensor")

	cfg, err := Parse([]string{"-config", path})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"00-11-22": "Lab AP", "001133": "Bench Sensor"}, cfg.VendorOverrides, "env beats file")

	t.Setenv("WIDS_VENDOR_OVERRIDES", "00:11:22")
	_, err = Parse(nil)
	assert.ErrorContains(t, err, "malformed pair")
}
