package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stopperw/modsync/internal/utils"
)

const (
	// FileName is the per-directory client config.
	FileName = "modsync.json"

	// SyncStateFileName holds the upload-side sync state.
	SyncStateFileName = "modsync.state.json"

	// FilesStateFileName holds the download-side per-file bookkeeping.
	FilesStateFileName = "modsync.files.json"
)

// Config is the per-directory client configuration. It is loaded from the
// target directory and handed to each component explicitly.
type Config struct {
	ModpackID    string   `json:"modpack_id"`
	ServerURL    string   `json:"server_url"`
	APIKey       string   `json:"api_key"`
	IncludeGlobs []string `json:"include_globs"`
	Excludes     []string `json:"excludes"`

	// RequestTimeout overrides the SDK default when positive, seconds.
	RequestTimeoutSecs int `json:"request_timeout_secs,omitempty"`

	Path string `json:"-"`
}

func (c *Config) Validate() error {
	if c.ModpackID == "" {
		return errors.New("config: modpack_id is required")
	}
	if c.ServerURL == "" {
		return errors.New("config: server_url is required")
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSecs > 0 {
		return time.Duration(c.RequestTimeoutSecs) * time.Second
	}
	return 0
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Load reads the client config for a target directory.
func Load(targetDir string) (*Config, error) {
	path := filepath.Join(targetDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no sync config found at %s", path)
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config parse %s: %w", path, err)
	}

	cfg.Path = path
	return &cfg, nil
}
