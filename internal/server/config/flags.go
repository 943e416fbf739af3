package config

import (
	"github.com/spf13/pflag"
)

// parseFlags overrides cfg with flags present in args. Unknown flags are
// ignored so that wrappers can pass their own.
//
//	-a, --http-addr          HTTP bind address
//	-g, --grpc-addr          gRPC bind address ("" disables gRPC)
//	-d, --database-dsn       PostgreSQL DSN or "memory"
//	-s, --app-secret         shared application secret
//	-k, --secret-key         JWT signing key
//	-l, --log-level          debug|info|warn|error
func parseFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SortFlags = false

	fs.StringP("config", "c", "", "path to a JSON config file")
	fs.StringVarP(&cfg.EndpointAddrHTTP, "http-addr", "a", cfg.EndpointAddrHTTP, "HTTP bind address")
	fs.StringVarP(&cfg.EndpointAddrGRPC, "grpc-addr", "g", cfg.EndpointAddrGRPC, "gRPC bind address, empty to disable")
	fs.StringVarP(&cfg.DatabaseDSN, "database-dsn", "d", cfg.DatabaseDSN, `PostgreSQL DSN, or "memory"`)
	fs.StringVarP(&cfg.AppSecret, "app-secret", "s", cfg.AppSecret, "shared application secret (X-App-Secret)")
	fs.StringVarP(&cfg.SecretKey, "secret-key", "k", cfg.SecretKey, "HMAC key for bearer tokens")
	fs.DurationVar(&cfg.AccessTokenValidityDuration, "access-token-ttl", cfg.AccessTokenValidityDuration, "bearer token lifetime")
	fs.DurationVar(&cfg.RefreshTokenValidityDuration, "refresh-token-ttl", cfg.RefreshTokenValidityDuration, "refresh token lifetime")
	fs.StringVar(&cfg.S3RootUser, "s3-user", cfg.S3RootUser, "object storage access key")
	fs.StringVar(&cfg.S3RootPassword, "s3-password", cfg.S3RootPassword, "object storage secret key")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "object storage bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "object storage region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "object storage endpoint URL")
	fs.StringVar(&cfg.ReleaseObjectKey, "release-key", cfg.ReleaseObjectKey, "object key served at / and /download")
	fs.Int64Var(&cfg.MaxRequestBodyBytes, "max-body-bytes", cfg.MaxRequestBodyBytes, "request body limit in bytes")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file with rotation instead of stdout")
	fs.BoolVar(&cfg.PropagateDeletes, "propagate-deletes", cfg.PropagateDeletes, "report deletions to other clients")

	return fs.Parse(args)
}
