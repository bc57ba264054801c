/*
Package cliparse handles configuration from CLI flags and environment variables.

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded before flags are parsed.
CLI flags take precedence over environment variables.

# Settings

Required:

  - DATABASE_URL (-d): connection string (sqlite path or postgres URL)

Optional:

  - PORT (-p): server port (default: 3340)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - MIN_VOTES (--min-votes): engagement floor for the math engine (default: 7)
  - KMEANS_KMIN / KMEANS_KMAX (--k-min / --k-max): cluster count range (default: 2..5)
  - KMEANS_MAX_ITER (--kmeans-max-iter): k-means iteration cap (default: 64)

# Validation

ParseFlags returns an error for a missing database URL, an unknown database
type, or a math threshold outside its valid range. The math thresholds are
handed to the engine as an explicit engine.Config; nothing in the engine
reads the environment.
*/
package cliparse
