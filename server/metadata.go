package server

import (
	"net/http"

	"github.com/jonwraymond/ltdstatus/health"
)

// Metadata describes the service at the metadata routes.
type Metadata struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Repository  string `json:"repository"`
	Description string `json:"description"`
	Auth        Auth   `json:"auth"`
}

// Auth names the authentication scheme clients must use.
type Auth struct {
	Type string `json:"type"`
}

// DefaultMetadata returns the metadata for name and version.
func DefaultMetadata(name, version string) Metadata {
	return Metadata{
		Name:        name,
		Version:     version,
		Repository:  "https://github.com/sqre-lsst/sqre-uservice-ltdstatus",
		Description: "API wrapper for LSST The Docs product status",
		Auth:        Auth{Type: "none"},
	}
}

func metadataHandler(m Metadata) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		health.WriteJSON(w, http.StatusOK, m)
	}
}
