package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// envBindings maps flags to the environment variables that supply their defaults.
var envBindings = map[string]string{
	"source":       "COVID_SOURCE",
	"class-prefix": "COVID_CLASS_PREFIX",
	"output":       "COVID_OUTPUT",
	"data-dir":     "COVID_DATA_DIR",
	"log-level":    "COVID_LOG_LEVEL",
}

// loadEnv reads an optional dotenv file and fills every flag the user did not set from
// its environment variable. Variables already present in the environment win over the
// file.
func loadEnv(flags *pflag.FlagSet, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	for name, env := range envBindings {
		f := flags.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if value, ok := os.LookupEnv(env); ok && value != "" {
			if err := flags.Set(name, value); err != nil {
				return fmt.Errorf("applying %s: %w", env, err)
			}
		}
	}

	return nil
}
