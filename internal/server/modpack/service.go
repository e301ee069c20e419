package modpack

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stopperw/modsync/internal/api"
)

var (
	ErrNotFound      = errors.New("modpack: not found")
	ErrAlreadyExists = errors.New("modpack: already exists")
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS modpacks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	game TEXT NOT NULL DEFAULT '',
	game_version TEXT NOT NULL DEFAULT '',
	modloader TEXT NOT NULL DEFAULT '',
	modloader_version TEXT NOT NULL DEFAULT '',
	sync_version INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	modpack TEXT NOT NULL REFERENCES modpacks(id) ON DELETE CASCADE,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	path TEXT NOT NULL,
	state TEXT NOT NULL,
	sync_version INTEGER NOT NULL DEFAULT 0,
	hash TEXT,
	uploaded INTEGER NOT NULL DEFAULT 0,
	UNIQUE (modpack, path)
);

CREATE INDEX IF NOT EXISTS idx_files_modpack ON files(modpack);
CREATE INDEX IF NOT EXISTS idx_files_hash ON files(hash);
`

// Service is the authoritative store for modpacks and their file records.
// Every write is a single statement, so concurrent clients always observe a
// committed row. The pool is injected, never a hidden singleton.
type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) (*Service, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("modpack: init schema: %w", err)
	}
	return &Service{db: db}, nil
}

// CreateModpack allocates a new modpack. Names are unique; a duplicate
// returns ErrAlreadyExists.
func (s *Service) CreateModpack(ctx context.Context, req *api.ModpackCreateRequest) (*Modpack, error) {
	var existing string
	err := s.db.GetContext(ctx, &existing, `SELECT id FROM modpacks WHERE name = ? LIMIT 1`, req.Name)
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("modpack: lookup name: %w", err)
	}

	mp := &Modpack{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Game:             req.Game,
		GameVersion:      req.GameVersion,
		Modloader:        req.Modloader,
		ModloaderVersion: req.ModloaderVersion,
		SyncVersion:      0,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO modpacks (id, name, game, game_version, modloader, modloader_version, sync_version)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		mp.ID, mp.Name, mp.Game, mp.GameVersion, mp.Modloader, mp.ModloaderVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("modpack: insert: %w", err)
	}
	return mp, nil
}

// GetModpack fetches one modpack by id.
func (s *Service) GetModpack(ctx context.Context, id string) (*Modpack, error) {
	var mp Modpack
	err := s.db.GetContext(ctx, &mp,
		`SELECT id, name, game, game_version, modloader, modloader_version, sync_version
		FROM modpacks WHERE id = ? LIMIT 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("modpack: get: %w", err)
	}
	return &mp, nil
}

// ListFiles returns every file record of a modpack, the snapshot clients
// reconcile against.
func (s *Service) ListFiles(ctx context.Context, modpackID string) ([]*FileRecord, error) {
	var files []*FileRecord
	err := s.db.SelectContext(ctx, &files,
		`SELECT id, modpack, created_at, updated_at, path, state, sync_version, hash, uploaded
		FROM files WHERE modpack = ? ORDER BY path`, modpackID)
	if err != nil {
		return nil, fmt.Errorf("modpack: list files: %w", err)
	}
	return files, nil
}

// DeleteModpack removes the modpack and cascades over its file records.
// Blob bytes are left behind on purpose; there is no reclamation.
func (s *Service) DeleteModpack(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modpacks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("modpack: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FileSync upserts the record for (modpack, path). It overwrites path state
// and hash but never bumps sync_version; only a completed upload does that.
// Safe to replay: the same call twice leaves the same row.
func (s *Service) FileSync(ctx context.Context, modpackID, path string, state api.FileState, hash *string) (*FileRecord, error) {
	if _, err := s.GetModpack(ctx, modpackID); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(timeFormat)
	existing, err := s.GetFileByPath(ctx, modpackID, path)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx,
			`UPDATE files SET state = ?, hash = ?, updated_at = ? WHERE id = ?`,
			state.String(), hash, now, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("modpack: filesync update: %w", err)
		}
		return s.GetFileByPath(ctx, modpackID, path)

	case errors.Is(err, ErrNotFound):
		record := &FileRecord{
			ID:          uuid.NewString(),
			Modpack:     modpackID,
			CreatedAt:   now,
			UpdatedAt:   now,
			Path:        path,
			State:       state.String(),
			SyncVersion: 0,
			Hash:        hash,
			Uploaded:    false,
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO files (id, modpack, created_at, updated_at, path, state, sync_version, hash, uploaded)
			VALUES (?, ?, ?, ?, ?, ?, 0, ?, 0)`,
			record.ID, record.Modpack, record.CreatedAt, record.UpdatedAt, record.Path, record.State, record.Hash)
		if err != nil {
			return nil, fmt.Errorf("modpack: filesync insert: %w", err)
		}
		return record, nil

	default:
		return nil, err
	}
}

// GetFileByPath fetches the record for one tracked path.
func (s *Service) GetFileByPath(ctx context.Context, modpackID, path string) (*FileRecord, error) {
	var record FileRecord
	err := s.db.GetContext(ctx, &record,
		`SELECT id, modpack, created_at, updated_at, path, state, sync_version, hash, uploaded
		FROM files WHERE modpack = ? AND path = ? LIMIT 1`, modpackID, path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("modpack: get file: %w", err)
	}
	return &record, nil
}

// GetUploadedByHash returns any record whose content digest matches and
// whose bytes were uploaded. Used for the dedup decision and to authorize
// downloads keyed purely by digest.
func (s *Service) GetUploadedByHash(ctx context.Context, digest string) (*FileRecord, error) {
	var record FileRecord
	err := s.db.GetContext(ctx, &record,
		`SELECT id, modpack, created_at, updated_at, path, state, sync_version, hash, uploaded
		FROM files WHERE hash = ? AND uploaded = 1 LIMIT 1`, digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("modpack: get by hash: %w", err)
	}
	return &record, nil
}

// SetUploaded marks a record's bytes as persisted. This is the only write
// that bumps sync_version.
func (s *Service) SetUploaded(ctx context.Context, fileID, digest string) error {
	now := time.Now().UTC().Format(timeFormat)
	res, err := s.db.ExecContext(ctx,
		`UPDATE files SET uploaded = 1, hash = ?, sync_version = sync_version + 1, updated_at = ? WHERE id = ?`,
		digest, now, fileID)
	if err != nil {
		return fmt.Errorf("modpack: set uploaded: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
