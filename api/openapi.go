// Package api holds the OpenAPI description of the JSON and GraphQL
// endpoints.
package api

import _ "embed"

// OpenAPI is api/openapi.yaml, served at /docs/openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
