package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/schedsync/internal/timex"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
)

// JsonConfig mirrors Config for JSON files. Durations accept "90s" or
// integer nanoseconds. Keys missing from the file keep their prior value.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	AppSecret                    string         `json:"app_secret"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	ReleaseObjectKey             string         `json:"release_object_key"`
	MaxRequestBodyBytes          int64          `json:"max_request_body_bytes"`
	ShutdownTimeout              timex.Duration `json:"shutdown_timeout"`
	LogLevel                     string         `json:"log_level"`
	LogFile                      string         `json:"log_file"`
	PropagateDeletes             bool           `json:"propagate_deletes"`
	SeedAccounts                 []SeedAccount  `json:"seed_accounts"`
}

// configFilePath extracts -c/--config from args, ignoring every other flag.
func configFilePath(args []string) (string, error) {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.StringP("config", "c", "", "")
	fs.BoolP("help", "h", false, "")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}

// parseJson overlays the JSON config file onto cfg. Comments and trailing
// commas are allowed in the file.
func parseJson(cfg *Config, args []string) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	c := toJson(cfg)
	if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	fromJson(cfg, c)
	return nil
}

func toJson(cfg *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:             cfg.EndpointAddrHTTP,
		EndpointAddrGRPC:             cfg.EndpointAddrGRPC,
		DatabaseDSN:                  cfg.DatabaseDSN,
		AppSecret:                    cfg.AppSecret,
		SecretKey:                    cfg.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: cfg.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: cfg.RefreshTokenValidityDuration},
		S3RootUser:                   cfg.S3RootUser,
		S3RootPassword:               cfg.S3RootPassword,
		S3Bucket:                     cfg.S3Bucket,
		S3Region:                     cfg.S3Region,
		S3BaseEndpoint:               cfg.S3BaseEndpoint,
		ReleaseObjectKey:             cfg.ReleaseObjectKey,
		MaxRequestBodyBytes:          cfg.MaxRequestBodyBytes,
		ShutdownTimeout:              timex.Duration{Duration: cfg.ShutdownTimeout},
		LogLevel:                     cfg.LogLevel,
		LogFile:                      cfg.LogFile,
		PropagateDeletes:             cfg.PropagateDeletes,
		SeedAccounts:                 cfg.SeedAccounts,
	}
}

func fromJson(cfg *Config, c *JsonConfig) {
	cfg.EndpointAddrHTTP = c.EndpointAddrHTTP
	cfg.EndpointAddrGRPC = c.EndpointAddrGRPC
	cfg.DatabaseDSN = c.DatabaseDSN
	cfg.AppSecret = c.AppSecret
	cfg.SecretKey = c.SecretKey
	cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	cfg.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	cfg.S3RootUser = c.S3RootUser
	cfg.S3RootPassword = c.S3RootPassword
	cfg.S3Bucket = c.S3Bucket
	cfg.S3Region = c.S3Region
	cfg.S3BaseEndpoint = c.S3BaseEndpoint
	cfg.ReleaseObjectKey = c.ReleaseObjectKey
	cfg.MaxRequestBodyBytes = c.MaxRequestBodyBytes
	cfg.ShutdownTimeout = c.ShutdownTimeout.Duration
	cfg.LogLevel = c.LogLevel
	cfg.LogFile = c.LogFile
	cfg.PropagateDeletes = c.PropagateDeletes
	cfg.SeedAccounts = c.SeedAccounts
}
