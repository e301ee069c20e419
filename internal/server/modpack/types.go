package modpack

import (
	"log/slog"
	"time"

	"github.com/stopperw/modsync/internal/api"
)

// timeFormat is how timestamps are stored in sqlite.
const timeFormat = time.RFC3339Nano

// Modpack is a named collection of mod files tracked as one sync unit.
type Modpack struct {
	ID               string `db:"id"`
	Name             string `db:"name"`
	Game             string `db:"game"`
	GameVersion      string `db:"game_version"`
	Modloader        string `db:"modloader"`
	ModloaderVersion string `db:"modloader_version"`
	SyncVersion      int64  `db:"sync_version"`
}

// FileRecord is the authoritative row describing one tracked path. It is
// the single source of truth every client reconciles against.
type FileRecord struct {
	ID          string  `db:"id"`
	Modpack     string  `db:"modpack"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
	Path        string  `db:"path"`
	State       string  `db:"state"`
	SyncVersion int64   `db:"sync_version"`
	Hash        *string `db:"hash"`
	Uploaded    bool    `db:"uploaded"`
}

func (m *Modpack) ToAPI() api.Modpack {
	return api.Modpack{
		ID:               m.ID,
		Name:             m.Name,
		Game:             m.Game,
		GameVersion:      m.GameVersion,
		Modloader:        m.Modloader,
		ModloaderVersion: m.ModloaderVersion,
		SyncVersion:      m.SyncVersion,
	}
}

func (f *FileRecord) ToAPI() api.File {
	// The rows are self-written, so a parse failure means the database
	// was corrupted or edited by hand.
	createdAt, err := time.Parse(timeFormat, f.CreatedAt)
	if err != nil {
		slog.Warn("file record has corrupt created_at", "id", f.ID, "value", f.CreatedAt, "error", err)
	}
	updatedAt, err := time.Parse(timeFormat, f.UpdatedAt)
	if err != nil {
		slog.Warn("file record has corrupt updated_at", "id", f.ID, "value", f.UpdatedAt, "error", err)
	}
	return api.File{
		ID:          f.ID,
		Modpack:     f.Modpack,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Path:        f.Path,
		State:       api.ParseFileState(f.State),
		SyncVersion: f.SyncVersion,
		Hash:        f.Hash,
		Uploaded:    f.Uploaded,
	}
}
