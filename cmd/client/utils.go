package main

import (
	"github.com/stopperw/modsync/internal/client/config"
	"github.com/stopperw/modsync/internal/modsyncsdk"
)

func targetDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func sdkFor(cfg *config.Config) (*modsyncsdk.Client, error) {
	return modsyncsdk.New(&modsyncsdk.Config{
		ServerURL: cfg.ServerURL,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.RequestTimeout(),
	})
}
