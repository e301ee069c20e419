package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/client/config"
	"github.com/stopperw/modsync/internal/modsyncsdk"
)

type fakeAPI struct {
	modpack   *api.ModpackResponse
	blobs     map[string][]byte
	downloads int
}

func (f *fakeAPI) GetModpack(ctx context.Context, modpackID string) (*api.ModpackResponse, error) {
	return f.modpack, nil
}

func (f *fakeAPI) DownloadByHash(ctx context.Context, digest, destPath string) error {
	f.downloads++
	content, ok := f.blobs[digest]
	if !ok {
		return fmt.Errorf("download %s: %w", digest, modsyncsdk.ErrNotFound)
	}
	return os.WriteFile(destPath, content, 0o644)
}

func digestOf(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func serverFile(path, content string, syncVersion int64, state api.FileState) api.File {
	hash := digestOf(content)
	return api.File{Path: path, State: state, Hash: &hash, SyncVersion: syncVersion, Uploaded: true}
}

func testDownloader(t *testing.T, root string, files ...api.File) (*Downloader, *fakeAPI) {
	t.Helper()
	client := &fakeAPI{
		modpack: &api.ModpackResponse{
			Modpack: api.Modpack{ID: "mp-test", Name: "Test"},
			Files:   files,
		},
		blobs: make(map[string][]byte),
	}
	cfg := &config.Config{ModpackID: "mp-test", ServerURL: "http://localhost:7040"}
	return New(root, cfg, client), client
}

func (f *fakeAPI) serve(content string) {
	f.blobs[digestOf(content)] = []byte(content)
}

func TestDownloader_Convergence(t *testing.T) {
	root := t.TempDir()
	d, client := testDownloader(t, root,
		serverFile("mods/a.jar", "aaa", 1, api.FileExists),
		serverFile("mods/nested/b.jar", "bbb", 1, api.FileExists),
	)
	client.serve("aaa")
	client.serve("bbb")

	require.NoError(t, d.Run(context.Background(), Options{}))

	for path, content := range map[string]string{"mods/a.jar": "aaa", "mods/nested/b.jar": "bbb"} {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}
	assert.Equal(t, 2, client.downloads)

	// Repeat run performs zero transfers.
	client.downloads = 0
	require.NoError(t, d.Run(context.Background(), Options{}))
	assert.Zero(t, client.downloads)
}

func TestDownloader_RedownloadsOnServerUpdate(t *testing.T) {
	root := t.TempDir()
	d, client := testDownloader(t, root, serverFile("a.jar", "v1", 1, api.FileExists))
	client.serve("v1")
	require.NoError(t, d.Run(context.Background(), Options{}))

	// Server moves to v2 and bumps sync_version.
	client.modpack.Files = []api.File{serverFile("a.jar", "v2", 2, api.FileExists)}
	client.serve("v2")
	require.NoError(t, d.Run(context.Background(), Options{}))

	data, err := os.ReadFile(filepath.Join(root, "a.jar"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestDownloader_LocalTamperNotRecheckedWithoutForce(t *testing.T) {
	root := t.TempDir()
	d, client := testDownloader(t, root, serverFile("a.jar", "good", 1, api.FileExists))
	client.serve("good")
	require.NoError(t, d.Run(context.Background(), Options{}))

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.jar"), []byte("tampered"), 0o644))

	// Same sync_version and a clean local record: no recheck.
	client.downloads = 0
	require.NoError(t, d.Run(context.Background(), Options{}))
	assert.Zero(t, client.downloads)

	// ForceCheck rehashes and repairs.
	require.NoError(t, d.Run(context.Background(), Options{ForceCheck: true}))
	data, err := os.ReadFile(filepath.Join(root, "a.jar"))
	require.NoError(t, err)
	assert.Equal(t, "good", string(data))
}

func TestDownloader_DeletedRemovesLocalFile(t *testing.T) {
	root := t.TempDir()
	d, client := testDownloader(t, root, serverFile("a.jar", "aaa", 1, api.FileExists))
	client.serve("aaa")
	require.NoError(t, d.Run(context.Background(), Options{}))

	client.modpack.Files = []api.File{serverFile("a.jar", "aaa", 1, api.FileDeleted)}
	require.NoError(t, d.Run(context.Background(), Options{}))

	_, err := os.Stat(filepath.Join(root, "a.jar"))
	assert.True(t, os.IsNotExist(err))

	// Already absent: no-op.
	require.NoError(t, d.Run(context.Background(), Options{}))
}

func TestDownloader_IgnoredIsSkipped(t *testing.T) {
	root := t.TempDir()
	d, client := testDownloader(t, root, serverFile("a.jar", "aaa", 1, api.FileIgnored))
	client.serve("aaa")

	require.NoError(t, d.Run(context.Background(), Options{}))
	assert.Zero(t, client.downloads)
	_, err := os.Stat(filepath.Join(root, "a.jar"))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloader_DisableSyncPinsFile(t *testing.T) {
	root := t.TempDir()
	d, client := testDownloader(t, root, serverFile("a.jar", "aaa", 1, api.FileExists))
	client.serve("aaa")

	state := FilesState{"a.jar": {SyncVersion: 0, Dirty: true, DisableSync: true}}
	require.NoError(t, state.Save(filepath.Join(root, config.FilesStateFileName)))

	require.NoError(t, d.Run(context.Background(), Options{}))
	assert.Zero(t, client.downloads)
}

func TestDownloader_MissingBlobSkipsFileAndContinues(t *testing.T) {
	root := t.TempDir()
	d, client := testDownloader(t, root,
		serverFile("a.jar", "served", 1, api.FileExists),
		serverFile("b.jar", "not served", 1, api.FileExists),
	)
	client.serve("served")

	require.NoError(t, d.Run(context.Background(), Options{}))

	data, err := os.ReadFile(filepath.Join(root, "a.jar"))
	require.NoError(t, err)
	assert.Equal(t, "served", string(data))
	_, err = os.Stat(filepath.Join(root, "b.jar"))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloader_CorruptTransferNeverLandsInPlace(t *testing.T) {
	root := t.TempDir()
	d, client := testDownloader(t, root, serverFile("a.jar", "expected", 1, api.FileExists))
	// Serve wrong bytes under the expected digest.
	client.blobs[digestOf("expected")] = []byte("corrupted")

	require.Error(t, d.Run(context.Background(), Options{}))

	_, err := os.Stat(filepath.Join(root, "a.jar"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "a.jar"+tmpSuffix))
	assert.True(t, os.IsNotExist(err))

	// The state file was not written either.
	_, err = os.Stat(filepath.Join(root, config.FilesStateFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadFilesState_ParseError(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, config.FilesStateFileName)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := LoadFilesState(path)
	require.Error(t, err)

	valid, err := json.Marshal(FilesState{"a.jar": {SyncVersion: 1}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, valid, 0o644))
	state, err := LoadFilesState(path)
	require.NoError(t, err)
	assert.Contains(t, state, "a.jar")
}
