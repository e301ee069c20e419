package server

import (
	"errors"
	"time"

	"github.com/stopperw/modsync/internal/server/blob"
)

const (
	DefaultAddr           = "0.0.0.0:7040"
	DefaultDBPath         = "modsync.db"
	DefaultUploadsDir     = "uploads"
	DefaultMaxBodySize    = 262144000 // 250 MiB
	DefaultRequestTimeout = 15 * time.Second
)

type Config struct {
	HTTP HTTPConfig
	Auth AuthConfig
	Blob blob.Config

	// DBPath is the sqlite database location.
	DBPath string

	// MaxBodySize bounds request bodies in bytes.
	MaxBodySize int64

	// RequestTimeout applies uniformly to every request. This bounds
	// effective throughput for very large uploads.
	RequestTimeout time.Duration
}

type HTTPConfig struct {
	Addr     string
	CertFile string
	KeyFile  string
}

type AuthConfig struct {
	// MasterKey is the single shared secret every authenticated route
	// compares bearer tokens against.
	MasterKey string
}

func (c *Config) Validate() error {
	if c.Auth.MasterKey == "" {
		return errors.New("config: master key is required")
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.Blob.Dir == "" {
		c.Blob.Dir = DefaultUploadsDir
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	return nil
}
