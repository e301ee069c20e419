package download

import (
	"encoding/json"
	"fmt"
	"os"
)

// FileInfo is the download-side record of one path. Dirty means the local
// copy has not been verified against the server hash since it was last
// observed.
type FileInfo struct {
	SyncVersion int64   `json:"sync_version"`
	Hash        *string `json:"hash"`
	Dirty       bool    `json:"dirty"`

	// DisableSync pins a path: the reconciler never touches it again.
	// Set by hand in the state file.
	DisableSync bool `json:"disable_sync,omitempty"`
}

func newFileInfo(syncVersion int64) *FileInfo {
	return &FileInfo{SyncVersion: syncVersion, Dirty: true}
}

// FilesState maps relative paths to their download bookkeeping.
type FilesState map[string]*FileInfo

// LoadFilesState reads the persisted download state. Missing file means a
// fresh start; a parse failure is an error, never a silent reset.
func LoadFilesState(path string) (FilesState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(FilesState), nil
		}
		return nil, err
	}

	var state FilesState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("files state parse %s: %w", path, err)
	}
	if state == nil {
		state = make(FilesState)
	}
	return state, nil
}

func (s FilesState) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
