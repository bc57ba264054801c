// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Logging

WithLogging wraps handlers with structured request/completion logs:

	mux.HandleFunc("GET /api/v3/math/pca", middleware.WithLogging(handler.GetPCA))

# Response Helpers

Every /api/v3 endpoint speaks the Polis envelope:

  - OKResponse: {"status": "ok", "data": ...} with 200
  - ErrorResponse: {"status": "error", "error": "..."} with the given code
  - JSONResponse: raw JSON for non-enveloped endpoints like /health

# Request Helpers

ParseJSONBody decodes a JSON request body into a struct.

# CORS

The CORS middleware reflects the request origin and handles OPTIONS
preflight, allowing browser frontends on other origins to call the API.
*/
package middleware
