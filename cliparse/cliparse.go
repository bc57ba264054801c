package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Math engine thresholds. Passed explicitly into engine.Config
	// instead of living as process-wide constants.
	MinVotes      int
	KMin          int
	KMax          int
	KMeansMaxIter int
}

// Defaults for the math thresholds.
const (
	DefaultMinVotes      = 7
	DefaultKMin          = 2
	DefaultKMax          = 5
	DefaultKMeansMaxIter = 64
)

// ParseFlags validates flags and fills in defaults from the environment.
// A .env file in the working directory is loaded first, if present.
func ParseFlags(args []string) (Config, error) {
	// Best-effort: missing .env is not an error
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("opinionmap", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Math thresholds
	fs.IntVar(&cfg.MinVotes, "min-votes", 0, "Minimum votes before a participant/comment enters the math")
	fs.IntVar(&cfg.KMin, "k-min", 0, "Smallest cluster count to evaluate")
	fs.IntVar(&cfg.KMax, "k-max", 0, "Largest cluster count to evaluate")
	fs.IntVar(&cfg.KMeansMaxIter, "kmeans-max-iter", 0, "Iteration cap for k-means refinement")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3340 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	var err error
	if cfg.MinVotes, err = intFromEnv(cfg.MinVotes, "MIN_VOTES", DefaultMinVotes); err != nil {
		return Config{}, err
	}
	if cfg.KMin, err = intFromEnv(cfg.KMin, "KMEANS_KMIN", DefaultKMin); err != nil {
		return Config{}, err
	}
	if cfg.KMax, err = intFromEnv(cfg.KMax, "KMEANS_KMAX", DefaultKMax); err != nil {
		return Config{}, err
	}
	if cfg.KMeansMaxIter, err = intFromEnv(cfg.KMeansMaxIter, "KMEANS_MAX_ITER", DefaultKMeansMaxIter); err != nil {
		return Config{}, err
	}

	if cfg.MinVotes < 1 {
		return Config{}, errors.New("min-votes must be at least 1")
	}
	if cfg.KMin < 2 || cfg.KMax < cfg.KMin {
		return Config{}, errors.New("cluster range requires 2 <= k-min <= k-max")
	}
	if cfg.KMeansMaxIter < 1 {
		return Config{}, errors.New("kmeans-max-iter must be at least 1")
	}

	return cfg, nil
}

// intFromEnv keeps a flag value when set, otherwise reads the named env
// variable, otherwise falls back to def.
func intFromEnv(flagVal int, envName string, def int) (int, error) {
	if flagVal != 0 {
		return flagVal, nil
	}
	if s := os.Getenv(envName); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.New("invalid " + envName + " env variable")
		}
		return v, nil
	}
	return def, nil
}
