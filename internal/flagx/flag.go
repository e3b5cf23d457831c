// Package flagx lets independent config stages pick their own flags out of
// os.Args without tripping over flags that belong to another stage.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args made of allowedFlags and their values.
//
// Both "-c conf.json" and "-c=conf.json" forms are recognised. A token that
// starts with '-' is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// stringFlag parses a single string option known under several names from
// os.Args. The last occurrence wins; def is returned when none is present.
func stringFlag(def string, usage string, names ...string) string {
	allowed := make([]string, 0, len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n)
	}
	args := FilterArgs(os.Args[1:], allowed)

	value := def
	fs := flag.NewFlagSet(names[0], flag.ContinueOnError)
	for _, n := range names {
		fs.StringVar(&value, n, def, usage)
	}
	_ = fs.Parse(args)

	return value
}

// JsonConfigFlags returns the JSON config path given with -c or -config, or
// an empty string.
func JsonConfigFlags() string {
	return stringFlag("", "Path to config file", "config", "c")
}

// EnvFileFlag returns the dotenv path given with -env, defaulting to ".env".
func EnvFileFlag() string {
	return stringFlag(".env", "Path to .env file with backend credentials", "env")
}
