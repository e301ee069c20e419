package sync

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stopperw/modsync/internal/api"
)

// Dirtyness tracks what happened to a path since the last successful push.
type Dirtyness string

const (
	DirtyClean   Dirtyness = "Clean"
	DirtyCreated Dirtyness = "Created"
	DirtyUpdated Dirtyness = "Updated"
	DirtyDeleted Dirtyness = "Deleted"
)

// SyncFile is the local record of one path. Deleted entries stay in the
// state as tombstones so the deletion can be replayed to the server.
type SyncFile struct {
	Hash  *string       `json:"hash"`
	State api.FileState `json:"state"`
	Dirty Dirtyness     `json:"dirty"`
}

func NewCreatedFile(hash string) *SyncFile {
	return &SyncFile{
		Hash:  &hash,
		State: api.FileExists,
		Dirty: DirtyCreated,
	}
}

func (f *SyncFile) MakeDeleted() {
	f.State = api.FileDeleted
	f.Dirty = DirtyDeleted
}

func (f *SyncFile) MakeUpdated(hash string) {
	f.Hash = &hash
	f.Dirty = DirtyUpdated
}

func (f *SyncFile) MarkSynced() {
	f.Dirty = DirtyClean
}

// SyncState is the upload-side view persisted between runs.
type SyncState struct {
	StateVersion  uint32               `json:"state_version"`
	UploadVersion uint32               `json:"upload_version"`
	Files         map[string]*SyncFile `json:"files"`
}

func NewSyncState() *SyncState {
	return &SyncState{Files: make(map[string]*SyncFile)}
}

// LoadSyncState reads the persisted state. A missing file yields a fresh
// state; a file that exists but does not parse is an error, because
// silently starting over would re-create every tombstoned path.
func LoadSyncState(path string) (*SyncState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSyncState(), nil
		}
		return nil, err
	}

	var state SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("sync state parse %s: %w", path, err)
	}
	if state.Files == nil {
		state.Files = make(map[string]*SyncFile)
	}
	return &state, nil
}

func (s *SyncState) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
