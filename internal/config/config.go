// Package config provides configuration management for go-chirper.
package config

import (
	"log"
)

var AppVersion = "-unset-" // will be set at build time

// MainConfig holds the main configuration for go-chirper
type MainConfig struct {
	// Web interface settings
	Web *WebConfig `json:"web"`

	// Database settings
	Database DatabaseConfig `json:"database"`

	AppVersion string `json:"app_version"` // Application version, set at build time
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DataDir string `json:"data_dir"` // Directory for the SQLite database file
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort  int    `json:"listen_port"`
	SSL         bool   `json:"ssl"`
	CertFile    string `json:"cert_file,omitempty"`
	KeyFile     string `json:"key_file,omitempty"`
	StaticDir   string `json:"static_dir"`
	TemplateDir string `json:"template_dir"`
	Debug       bool   `json:"debug"` // Enable debug logging for sessions/auth
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion, // Set application version
		Web: &WebConfig{
			ListenPort:  11990,
			SSL:         false,
			StaticDir:   "web/static",
			TemplateDir: "web/templates",
		},
		Database: DatabaseConfig{
			DataDir: "./data",
		},
	}

	log.Printf("MainConfig initialized (version: %s)", maincfg.AppVersion)
	return maincfg
}
