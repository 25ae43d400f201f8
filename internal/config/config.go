// Package config provides configuration loading for siteaudit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the complete siteaudit configuration.
type Config struct {
	// StoragePath is the directory audit state is persisted under.
	Storage StorageConfig `yaml:"storage"`
	// Graph configures the SharePoint destination for submitted audits.
	Graph GraphConfig `yaml:"graph"`
}

// StorageConfig locates the durable audit state.
type StorageConfig struct {
	// Path is the state directory (default: <user config dir>/siteaudit)
	Path string `yaml:"path"`
}

// GraphConfig identifies the SharePoint site and library uploads go to.
type GraphConfig struct {
	// SiteURL is the host-relative site path, e.g. "contoso.sharepoint.com:/sites/projects"
	SiteURL string `yaml:"site_url"`
	// DocumentLibrary is the library display name
	DocumentLibrary string `yaml:"document_library"`
	// UploadFolder is the folder within the library (empty = library root)
	UploadFolder string `yaml:"upload_folder"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Path: defaultStoragePath()},
		Graph: GraphConfig{
			SiteURL:         "powertectelecom.sharepoint.com:/sites/projects",
			DocumentLibrary: "Shared Documents",
			UploadFolder:    "13 - Project Audit Form Submissions",
		},
	}
}

func defaultStoragePath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".siteaudit"
	}
	return filepath.Join(base, "siteaudit")
}

// Load reads a config file, layering it over defaults. A missing file is
// not an error: the defaults are returned. A file that exists but does not
// parse is an error, unlike the audit record, because a silently ignored
// config would upload audits to the wrong place.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath()
	}
	return cfg, nil
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(defaultStoragePath(), "config.yaml")
}
