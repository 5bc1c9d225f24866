package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "GOPHAUTH_"

// loadDotEnv loads the file named by -env-file, or ./.env when present,
// into the process environment. Variables already set are not overridden.
func loadDotEnv() {
	path := flagx.EnvFileFlag()
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// parseEnv overlays GOPHAUTH_* variables onto config. Unset variables keep
// whatever the earlier layers produced.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
