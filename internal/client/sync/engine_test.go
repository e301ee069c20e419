package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/client/config"
)

type fakeAPI struct {
	modpack     *api.ModpackResponse
	fileSyncs   []api.FileSyncRequest
	uploads     []string
	fileSyncErr error
}

func (f *fakeAPI) Hello(ctx context.Context) (*api.HelloResponse, error) {
	return &api.HelloResponse{Version: "test"}, nil
}

func (f *fakeAPI) GetModpack(ctx context.Context, modpackID string) (*api.ModpackResponse, error) {
	return f.modpack, nil
}

func (f *fakeAPI) FileSync(ctx context.Context, modpackID string, body *api.FileSyncRequest) error {
	if f.fileSyncErr != nil {
		return f.fileSyncErr
	}
	f.fileSyncs = append(f.fileSyncs, *body)
	return nil
}

func (f *fakeAPI) UploadFile(ctx context.Context, modpackID, relPath, localPath string) (*api.UploadResponse, error) {
	f.uploads = append(f.uploads, relPath)
	return &api.UploadResponse{Action: api.UploadActionUploaded}, nil
}

func (f *fakeAPI) reset() {
	f.fileSyncs = nil
	f.uploads = nil
}

func testEngine(t *testing.T, root string) (*Engine, *fakeAPI) {
	t.Helper()
	cfg := &config.Config{
		ModpackID:    "mp-test",
		ServerURL:    "http://localhost:7040",
		IncludeGlobs: []string{"mods/**"},
	}
	client := &fakeAPI{}
	return NewEngine(root, cfg, client), client
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEngine_FirstRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/a.jar", "aaa")
	writeFile(t, root, "mods/b.jar", "bbb")

	engine, client := testEngine(t, root)
	require.NoError(t, engine.Run(context.Background(), Options{}))

	require.Len(t, client.fileSyncs, 2)
	for _, fs := range client.fileSyncs {
		assert.Equal(t, api.FileExists, fs.State)
		require.NotNil(t, fs.Hash)
	}
	assert.ElementsMatch(t, []string{"mods/a.jar", "mods/b.jar"}, client.uploads)

	state, err := LoadSyncState(filepath.Join(root, config.SyncStateFileName))
	require.NoError(t, err)
	assert.EqualValues(t, 1, state.UploadVersion)
	for _, entry := range state.Files {
		assert.Equal(t, DirtyClean, entry.Dirty)
	}
}

func TestEngine_SecondRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/a.jar", "aaa")

	engine, client := testEngine(t, root)
	require.NoError(t, engine.Run(context.Background(), Options{}))

	client.reset()
	require.NoError(t, engine.Run(context.Background(), Options{}))
	assert.Empty(t, client.fileSyncs)
	assert.Empty(t, client.uploads)
}

func TestEngine_Tombstone(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/a.jar", "aaa")

	engine, client := testEngine(t, root)
	require.NoError(t, engine.Run(context.Background(), Options{}))

	require.NoError(t, os.Remove(filepath.Join(root, "mods", "a.jar")))
	client.reset()
	require.NoError(t, engine.Run(context.Background(), Options{}))

	// Exactly one Deleted filesync, no upload.
	require.Len(t, client.fileSyncs, 1)
	assert.Equal(t, api.FileDeleted, client.fileSyncs[0].State)
	assert.Empty(t, client.uploads)

	// The tombstone stays in the state and is not re-pushed.
	client.reset()
	require.NoError(t, engine.Run(context.Background(), Options{}))
	assert.Empty(t, client.fileSyncs)

	state, err := LoadSyncState(filepath.Join(root, config.SyncStateFileName))
	require.NoError(t, err)
	require.Contains(t, state.Files, "mods/a.jar")
	assert.Equal(t, api.FileDeleted, state.Files["mods/a.jar"].State)
}

func TestEngine_UpdateDetected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/a.jar", "v1")

	engine, client := testEngine(t, root)
	require.NoError(t, engine.Run(context.Background(), Options{}))

	writeFile(t, root, "mods/a.jar", "v2")
	client.reset()
	require.NoError(t, engine.Run(context.Background(), Options{}))

	require.Len(t, client.fileSyncs, 1)
	assert.Equal(t, api.FileExists, client.fileSyncs[0].State)
	assert.Equal(t, []string{"mods/a.jar"}, client.uploads)
}

func TestEngine_ForceSyncPushesCleanEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/a.jar", "aaa")

	engine, client := testEngine(t, root)
	require.NoError(t, engine.Run(context.Background(), Options{}))

	client.reset()
	require.NoError(t, engine.Run(context.Background(), Options{ForceSync: true}))
	assert.Len(t, client.fileSyncs, 1)
	// Clean entries are pushed but not re-uploaded without ForceUpload.
	assert.Empty(t, client.uploads)

	client.reset()
	require.NoError(t, engine.Run(context.Background(), Options{ForceSync: true, ForceUpload: true}))
	assert.Len(t, client.uploads, 1)
}

func TestEngine_SeedFromServer(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/a.jar", "aaa")

	hash := "0000000000000000000000000000000000000000000000000000000000000000"
	engine, client := testEngine(t, root)
	client.modpack = &api.ModpackResponse{
		Modpack: api.Modpack{ID: "mp-test", Name: "Test"},
		Files: []api.File{
			{Path: "mods/a.jar", State: api.FileExists, Hash: &hash, SyncVersion: 3},
		},
	}

	require.NoError(t, engine.Run(context.Background(), Options{SeedFromServer: true}))

	// The server entry is treated as Updated: pushed and re-uploaded.
	require.Len(t, client.fileSyncs, 1)
	assert.Equal(t, []string{"mods/a.jar"}, client.uploads)
}

func TestEngine_FailedPushKeepsPreviousState(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/a.jar", "aaa")

	engine, client := testEngine(t, root)
	client.fileSyncErr = assert.AnError
	require.Error(t, engine.Run(context.Background(), Options{}))

	// No state file was written, so a retry re-diffs from scratch.
	_, err := os.Stat(filepath.Join(root, config.SyncStateFileName))
	assert.True(t, os.IsNotExist(err))

	client.fileSyncErr = nil
	require.NoError(t, engine.Run(context.Background(), Options{}))
	assert.Len(t, client.fileSyncs, 1)
	assert.Len(t, client.uploads, 1)
}

func TestLoadSyncState_ParseError(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, config.SyncStateFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadSyncState(path)
	require.Error(t, err)
}
