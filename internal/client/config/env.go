package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/connecthub/internal/flagx"
	"github.com/joho/godotenv"
)

// loadDotenv is a seam for godotenv.Load.
var loadDotenv = godotenv.Load

// parseEnv overlays Config with CONNECTHUB_* environment variables. Variables
// from the dotenv file named by -env are loaded first; already exported
// variables are never overridden by the file. A missing file is not an error.
func parseEnv(cfg *Config) {
	if err := loadDotenv(flagx.EnvFileFlag()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&cfg.BackendURL, "CONNECTHUB_BACKEND_URL")
	setString(&cfg.AnonKey, "CONNECTHUB_ANON_KEY")
	setString(&cfg.DatabaseDSN, "CONNECTHUB_DATABASE_DSN")
	setString(&cfg.S3Endpoint, "CONNECTHUB_S3_ENDPOINT")
	setString(&cfg.S3Region, "CONNECTHUB_S3_REGION")
	setString(&cfg.S3AccessKey, "CONNECTHUB_S3_ACCESS_KEY")
	setString(&cfg.S3SecretKey, "CONNECTHUB_S3_SECRET_KEY")
	setString(&cfg.AvatarBucket, "CONNECTHUB_AVATAR_BUCKET")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
