package config

import (
	"time"

	"github.com/dmitrijs2005/connecthub/internal/common"
)

// Set with -ldflags "-X github.com/dmitrijs2005/connecthub/internal/client/config.buildBackendURL=...".
var (
	buildBackendURL string
	buildAnonKey    string
)

// Config holds runtime settings for the ConnectHub CLI.
//
// Fields:
//   - BackendURL / AnonKey: hosted backend project and its public API key.
//   - DatabaseDSN: when set, data is read and written over a direct Postgres
//     connection instead of the REST data API.
//   - RequestTimeout: deadline applied to each backend call.
//   - FeedLimit: number of posts requested for the feed.
//   - LogLevel / LogFile: diagnostics sink; empty LogFile means stderr.
//   - S3*: S3-compatible storage used for avatar uploads. Uploads are disabled
//     when the keys are empty.
type Config struct {
	BackendURL     string
	AnonKey        string
	DatabaseDSN    string
	RequestTimeout time.Duration
	FeedLimit      int
	LogLevel       string
	LogFile        string
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	AvatarBucket   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = buildBackendURL
	if c.BackendURL == "" {
		c.BackendURL = "http://127.0.0.1:54321"
	}
	c.AnonKey = buildAnonKey
	c.RequestTimeout = 10 * time.Second
	c.FeedLimit = common.DefaultFeedLimit
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
	c.AvatarBucket = "avatars"
}

// StorageEndpoint returns S3Endpoint, falling back to the backend's storage S3 gateway.
func (c *Config) StorageEndpoint() string {
	if c.S3Endpoint != "" {
		return c.S3Endpoint
	}
	return c.BackendURL + "/storage/v1/s3"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
