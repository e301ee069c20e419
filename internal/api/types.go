package api

import "time"

// Modpack is the wire form of a modpack row.
type Modpack struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Game             string `json:"game,omitempty"`
	GameVersion      string `json:"game_version,omitempty"`
	Modloader        string `json:"modloader,omitempty"`
	ModloaderVersion string `json:"modloader_version,omitempty"`
	SyncVersion      int64  `json:"sync_version"`
}

// File is the wire form of a FileRecord. Hash is nil until a client has
// pushed one via filesync or upload.
type File struct {
	ID          string    `json:"id"`
	Modpack     string    `json:"modpack"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Path        string    `json:"path"`
	State       FileState `json:"state"`
	SyncVersion int64     `json:"sync_version"`
	Hash        *string   `json:"hash"`
	Uploaded    bool      `json:"uploaded"`
}

type HelloResponse struct {
	Version       string `json:"version"`
	VersionNumber int    `json:"version_number"`
}

type ModpackCreateRequest struct {
	Name             string `json:"name" binding:"required"`
	Game             string `json:"game"`
	GameVersion      string `json:"game_version"`
	Modloader        string `json:"modloader"`
	ModloaderVersion string `json:"modloader_version"`
}

type ModpackCreateResponse struct {
	ModpackID string `json:"modpack_id"`
}

type ModpackResponse struct {
	Modpack Modpack `json:"modpack"`
	Files   []File  `json:"files"`
}

type FileSyncRequest struct {
	Path  string    `json:"path" binding:"required"`
	State FileState `json:"state" binding:"required"`
	Hash  *string   `json:"hash"`
}

type FileSyncResponse struct{}

// UploadAction tells the client whether the server wrote new bytes or
// deduplicated against an existing blob.
type UploadAction string

const (
	UploadActionUploaded UploadAction = "Uploaded"
	UploadActionExists   UploadAction = "Exists"
)

type UploadResponse struct {
	Action UploadAction `json:"action"`
	FileID string       `json:"file_id"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}
