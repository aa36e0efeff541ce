package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Edge endpoint modes accepted by -edge-mode.
const (
	EdgeModeLayout = "layout"
	EdgeModeNodes  = "nodes"
)

var (
	ErrInvalidEdgeMode = errors.New("edge mode must be layout or nodes")
	ErrInvalidInterval = errors.New("refresh interval must be positive")
	ErrInvalidPort     = errors.New("grpc port out of range")
)

// Config holds all application configuration.
type Config struct {
	Addr            string
	GRPCPort        int // 0 disables the gRPC mirror
	RefreshInterval time.Duration
	Seed            int64 // 0 seeds from the clock
	Debug           bool
	Username        string
	Password        string
	EdgeMode        string
	Tracing         bool
	AllowedOrigins  []string
	SessionTTL      time.Duration
	// VendorOverrides maps an OUI prefix to a vendor name, checked before
	// the IEEE registry.
	VendorOverrides map[string]string
}

// fileConfig is the optional YAML file named by -config or WIDS_CONFIG.
type fileConfig struct {
	Addr            string        `yaml:"addr"`
	GRPCPort        *int          `yaml:"grpc_port"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Seed            int64         `yaml:"seed"`
	Debug           *bool         `yaml:"debug"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	EdgeMode        string        `yaml:"edge_mode"`
	Tracing         *bool         `yaml:"tracing"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	SessionTTL      time.Duration     `yaml:"session_ttl"`
	VendorOverrides map[string]string `yaml:"vendor_overrides"`
}

// Load reads an optional .env file, then parses command line flags and
// environment variables to populate Config. Invalid input exits the process.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: ignoring .env: %v\n", err)
	}

	cfg, err := Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

// Parse builds a Config. Precedence, lowest first: defaults, the YAML
// file, environment variables, flags.
func Parse(args []string) (*Config, error) {
	cfg := &Config{
		Addr:            ":8080",
		GRPCPort:        9000,
		RefreshInterval: 5 * time.Second,
		Username:        "admin",
		Password:        "admin",
		EdgeMode:        EdgeModeLayout,
		SessionTTL:      24 * time.Hour,
	}

	path := configPath(args)
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	// Environment Variables
	cfg.Addr = getEnv("WIDS_ADDR", cfg.Addr)
	cfg.GRPCPort = getEnvInt("WIDS_GRPC", cfg.GRPCPort)
	cfg.RefreshInterval = getEnvDuration("WIDS_REFRESH", cfg.RefreshInterval)
	cfg.Seed = int64(getEnvInt("WIDS_SEED", int(cfg.Seed)))
	cfg.Debug = getEnvBool("WIDS_DEBUG", cfg.Debug)
	cfg.Username = getEnv("WIDS_USERNAME", cfg.Username)
	cfg.Password = getEnv("WIDS_PASSWORD", cfg.Password)
	cfg.EdgeMode = getEnv("WIDS_EDGE_MODE", cfg.EdgeMode)
	cfg.Tracing = getEnvBool("WIDS_TRACING", cfg.Tracing)
	cfg.SessionTTL = getEnvDuration("WIDS_SESSION_TTL", cfg.SessionTTL)
	origins := getEnv("WIDS_ALLOWED_ORIGINS", strings.Join(cfg.AllowedOrigins, ","))
	if value, ok := os.LookupEnv("WIDS_VENDOR_OVERRIDES"); ok {
		overrides, err := parsePairs(value)
		if err != nil {
			return nil, fmt.Errorf("WIDS_VENDOR_OVERRIDES: %w", err)
		}
		cfg.VendorOverrides = overrides
	}

	// Command Line Flags (Override Env)
	fs := flag.NewFlagSet("widsview", flag.ContinueOnError)
	fs.String("config", path, "Path to a YAML config file")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.IntVar(&cfg.GRPCPort, "grpc", cfg.GRPCPort, "gRPC server port (0 to disable)")
	fs.DurationVar(&cfg.RefreshInterval, "refresh", cfg.RefreshInterval, "Observation feed refresh interval")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Feed random seed (0 = time based)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.StringVar(&cfg.Username, "username", cfg.Username, "Operator username")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "Operator password")
	fs.StringVar(&cfg.EdgeMode, "edge-mode", cfg.EdgeMode, "Edge endpoint mode: layout or nodes")
	fs.BoolVar(&cfg.Tracing, "tracing", cfg.Tracing, "Export OpenTelemetry spans to stdout")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Session lifetime")
	fs.StringVar(&origins, "origins", origins, "Extra allowed websocket origins (comma separated)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.AllowedOrigins = parseList(origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	if c.EdgeMode != EdgeModeLayout && c.EdgeMode != EdgeModeNodes {
		return fmt.Errorf("%w: %q", ErrInvalidEdgeMode, c.EdgeMode)
	}
	if c.RefreshInterval <= 0 {
		return ErrInvalidInterval
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.GRPCPort)
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password are required")
	}
	return nil
}

// configPath finds -config in args before the flag set is built, falling back to WIDS_CONFIG.
func configPath(args []string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "config" || !strings.HasPrefix(arg, "-") {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("WIDS_CONFIG")
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Addr != "" {
		c.Addr = fc.Addr
	}
	if fc.GRPCPort != nil {
		c.GRPCPort = *fc.GRPCPort
	}
	if fc.RefreshInterval != 0 {
		c.RefreshInterval = fc.RefreshInterval
	}
	if fc.Seed != 0 {
		c.Seed = fc.Seed
	}
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}
	if fc.Username != "" {
		c.Username = fc.Username
	}
	if fc.Password != "" {
		c.Password = fc.Password
	}
	if fc.EdgeMode != "" {
		c.EdgeMode = fc.EdgeMode
	}
	if fc.Tracing != nil {
		c.Tracing = *fc.Tracing
	}
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.SessionTTL != 0 {
		c.SessionTTL = fc.SessionTTL
	}
	if len(fc.VendorOverrides) > 0 {
		c.VendorOverrides = fc.VendorOverrides
	}
	return nil
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parsePairs reads "key=value,key=value". Prefix syntax is checked later
// by the vendor repository.
func parsePairs(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, item := range parseList(s) {
		key, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("malformed pair %q", item)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
