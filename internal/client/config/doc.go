// Package config loads runtime configuration for the ConnectHub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults), including backend
//     credentials injected at build time with -ldflags -X.
//  2. Environment variables, optionally read from a dotenv file (-env, default
//     ".env"; a missing file is ignored).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-u string   backend project URL
//	-k string   anonymous API key
//	-d string   direct Postgres DSN (empty: use the REST data API)
//	-t int      per-request timeout (seconds)
//	-n int      feed size
//	-l string   log level (debug, info, warn, error)
//
// # Environment
//
//	CONNECTHUB_BACKEND_URL, CONNECTHUB_ANON_KEY, CONNECTHUB_DATABASE_DSN,
//	CONNECTHUB_S3_ENDPOINT, CONNECTHUB_S3_REGION, CONNECTHUB_S3_ACCESS_KEY,
//	CONNECTHUB_S3_SECRET_KEY, CONNECTHUB_AVATAR_BUCKET
//
// # JSON schema
//
//	{
//	  "backend_url": "https://abc.supabase.co",
//	  "anon_key": "eyJ...",
//	  "request_timeout": "10s",
//	  "feed_limit": 50,
//	  "log_level": "info",
//	  "log_file": "connecthub.log"
//	}
package config
