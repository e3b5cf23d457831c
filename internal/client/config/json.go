package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/flagx"
	"github.com/dmitrijs2005/connecthub/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Zero values
// mean "not set" and leave the corresponding Config field unchanged.
type JsonConfig struct {
	BackendURL     string         `json:"backend_url"`
	AnonKey        string         `json:"anon_key"`
	DatabaseDSN    string         `json:"database_dsn"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	FeedLimit      int            `json:"feed_limit"`
	LogLevel       string         `json:"log_level"`
	LogFile        string         `json:"log_file"`
	S3Endpoint     string         `json:"s3_endpoint"`
	S3Region       string         `json:"s3_region"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
	AvatarBucket   string         `json:"avatar_bucket"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without the flag nothing is loaded. Read and unmarshal errors
// panic: a broken config file is a startup error.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.BackendURL, jc.BackendURL)
	overlay(&cfg.AnonKey, jc.AnonKey)
	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.LogFile, jc.LogFile)
	overlay(&cfg.S3Endpoint, jc.S3Endpoint)
	overlay(&cfg.S3Region, jc.S3Region)
	overlay(&cfg.S3AccessKey, jc.S3AccessKey)
	overlay(&cfg.S3SecretKey, jc.S3SecretKey)
	overlay(&cfg.AvatarBucket, jc.AvatarBucket)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.FeedLimit > 0 {
		cfg.FeedLimit = jc.FeedLimit
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
