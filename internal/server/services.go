package server

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stopperw/modsync/internal/server/blob"
	"github.com/stopperw/modsync/internal/server/modpack"
)

type Services struct {
	Modpack *modpack.Service
	Blob    *blob.Store
}

func NewServices(config *Config, db *sqlx.DB) (*Services, error) {
	modpackSvc, err := modpack.NewService(db)
	if err != nil {
		return nil, fmt.Errorf("modpack service: %w", err)
	}

	blobStore, err := blob.NewStore(&config.Blob)
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}

	return &Services{
		Modpack: modpackSvc,
		Blob:    blobStore,
	}, nil
}
