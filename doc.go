// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Opinionmap API server.

Opinionmap is a deliberation backend in the Polis style: participants
vote agree/disagree/pass on short comments, and the server projects the
vote matrix into two dimensions, clusters participants into opinion
groups, and surfaces the comments most representative of each group.

# Starting the Server

The server requires a database URL via flag or environment:

	DATABASE_URL=opinionmap.db go run main.go

Or against PostgreSQL:

	go run main.go -t postgres -d "postgres://..."

# Configuration

Settings come from flags, environment variables, or a .env file:

  - DATABASE_URL (-d): Connection string or sqlite path (required)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)
  - PORT (-p): Server port (default: 3340)
  - MIN_VOTES (--min-votes): Votes required before a row/column enters
    the math pipeline (default: 7)
  - KMEANS_KMIN, KMEANS_KMAX (--k-min, --k-max): Cluster count search range
  - KMEANS_MAX_ITER (--kmeans-max-iter): Lloyd iteration cap

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (conversations, comments, votes,
    reports, math)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON envelope helpers
  - models: Request/response types and the Polis response envelope
  - store: SQL access for all persisted entities
  - votematrix: In-memory sparse vote matrix with change fingerprints
  - engine: Imputation, PCA projection, k-means clustering,
    representative comments, correlation matrices
*/
package main
