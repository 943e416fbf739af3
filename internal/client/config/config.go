package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyServerURL   = "server_url"
	KeyTransport   = "transport"
	KeyGRPCAddress = "grpc_address"
	KeyAppSecret   = "app_secret"
	KeyDatabase    = "database"
	KeyTimeout     = "timeout"
	KeyLogLevel    = "log_level"
	KeyLogFile     = "log_file"

	TransportHTTP = "http"
	TransportGRPC = "grpc"

	EnvPrefix = "SCHEDSYNC"

	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// Keys lists every setting in the order flags are registered.
var Keys = []string{KeyServerURL, KeyTransport, KeyGRPCAddress, KeyAppSecret, KeyDatabase, KeyTimeout, KeyLogLevel, KeyLogFile}

const defaultConfigYAML = `# schedsync client configuration
# Every key can also be set with a SCHEDSYNC_ environment variable or a flag.

# server_url: http://127.0.0.1:8080
# transport: http
# grpc_address: 127.0.0.1:50051
# app_secret: ""
# database: schedsync.db
# timeout: 15s
# log_level: warn
`

var defaults = map[string]any{
	KeyServerURL:   "http://127.0.0.1:8080",
	KeyTransport:   TransportHTTP,
	KeyGRPCAddress: "127.0.0.1:50051",
	KeyAppSecret:   "",
	KeyDatabase:    "schedsync.db",
	KeyTimeout:     15 * time.Second,
	KeyLogLevel:    "warn",
	KeyLogFile:     "",
}

// Config holds runtime settings for the CLI.
type Config struct {
	Dir          string
	ServerURL    string
	Transport    string
	GRPCAddress  string
	AppSecret    string
	DatabasePath string
	Timeout      time.Duration
	LogLevel     string
	LogFile      string
}

// FlagName is the command-line spelling of a config key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "schedsync"), nil
}

func ensureDefaultConfigFile(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(dir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o600)
}

// Load resolves the configuration stored in dir. Flags in fs whose names
// match FlagName(key) override the file and the environment when set.
func Load(dir string, fs *pflag.FlagSet) (*Config, error) {
	if err := ensureDefaultConfigFile(dir); err != nil {
		return nil, err
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if fs != nil {
		for _, k := range Keys {
			if f := fs.Lookup(FlagName(k)); f != nil {
				if err := v.BindPFlag(k, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Dir:          dir,
		ServerURL:    v.GetString(KeyServerURL),
		Transport:    strings.ToLower(v.GetString(KeyTransport)),
		GRPCAddress:  v.GetString(KeyGRPCAddress),
		AppSecret:    v.GetString(KeyAppSecret),
		DatabasePath: v.GetString(KeyDatabase),
		Timeout:      v.GetDuration(KeyTimeout),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFile:      v.GetString(KeyLogFile),
	}

	if cfg.DatabasePath != ":memory:" && !filepath.IsAbs(cfg.DatabasePath) {
		cfg.DatabasePath = filepath.Join(dir, cfg.DatabasePath)
	}
	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(dir, cfg.LogFile)
	}

	switch cfg.Transport {
	case TransportHTTP:
		if cfg.ServerURL == "" {
			return nil, fmt.Errorf("%s is required for the http transport", KeyServerURL)
		}
	case TransportGRPC:
		if cfg.GRPCAddress == "" {
			return nil, fmt.Errorf("%s is required for the grpc transport", KeyGRPCAddress)
		}
	default:
		return nil, fmt.Errorf("unknown transport %q (valid: http, grpc)", cfg.Transport)
	}
	return cfg, nil
}
