package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   backend project URL
//	-k string   anonymous API key
//	-d string   direct Postgres DSN
//	-t int      request timeout in seconds
//	-n int      feed size
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with -c/-config and -env.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-k", "-d", "-t", "-n", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "u", cfg.BackendURL, "backend project URL")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "anonymous API key")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "direct Postgres DSN")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.FeedLimit, "n", cfg.FeedLimit, "number of posts in the feed")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
