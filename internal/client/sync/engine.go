package sync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/client/config"
)

// API is the server surface the reconciler needs. Satisfied by
// modsyncsdk.Client; tests substitute a fake.
type API interface {
	Hello(ctx context.Context) (*api.HelloResponse, error)
	GetModpack(ctx context.Context, modpackID string) (*api.ModpackResponse, error)
	FileSync(ctx context.Context, modpackID string, body *api.FileSyncRequest) error
	UploadFile(ctx context.Context, modpackID, relPath, localPath string) (*api.UploadResponse, error)
}

type Options struct {
	// ForceSync pushes every entry, not just dirty ones.
	ForceSync bool

	// ForceUpload re-uploads the bytes of every pushed Exists entry.
	ForceUpload bool

	// SeedFromServer replaces the local state with the server listing,
	// every entry marked Updated. Establishes a fresh baseline.
	SeedFromServer bool
}

// Engine reconciles a local directory against the server: scan, three-way
// diff against the persisted state, push the deltas, then persist. The
// state file is rewritten only after the whole run succeeds, so a failed
// run re-diffs from the previous baseline.
type Engine struct {
	root   string
	config *config.Config
	client API
}

func NewEngine(root string, cfg *config.Config, client API) *Engine {
	return &Engine{root: root, config: cfg, client: client}
}

func (e *Engine) Run(ctx context.Context, opts Options) error {
	if _, err := e.client.Hello(ctx); err != nil {
		return fmt.Errorf("server handshake: %w", err)
	}
	slog.Info("server authentication successful, starting synchronization", "server", e.config.ServerURL)

	started := time.Now()

	state, err := e.loadState(ctx, opts.SeedFromServer)
	if err != nil {
		return err
	}

	scanned, err := e.scan()
	if err != nil {
		return err
	}

	e.diff(state, scanned)

	synced, uploaded, err := e.push(ctx, state, opts)
	if err != nil {
		return err
	}

	state.UploadVersion++
	statePath := filepath.Join(e.root, config.SyncStateFileName)
	if err := state.Save(statePath); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	slog.Info(color.GreenString("sync complete"),
		"synced", synced,
		"uploaded", uploaded,
		"took", time.Since(started).Round(time.Millisecond))
	return nil
}

func (e *Engine) loadState(ctx context.Context, seed bool) (*SyncState, error) {
	if !seed {
		return LoadSyncState(filepath.Join(e.root, config.SyncStateFileName))
	}

	slog.Info("seeding local state from server listing")
	modpack, err := e.client.GetModpack(ctx, e.config.ModpackID)
	if err != nil {
		return nil, fmt.Errorf("fetch modpack: %w", err)
	}

	state := NewSyncState()
	for _, file := range modpack.Files {
		state.Files[file.Path] = &SyncFile{
			Hash:  file.Hash,
			State: file.State,
			Dirty: DirtyUpdated,
		}
	}
	return state, nil
}

func (e *Engine) scan() (map[string]string, error) {
	includes := e.config.IncludeGlobs
	if len(includes) == 0 {
		includes = []string{"**"}
	}

	scanner, err := NewScanner(e.root, includes, NewIgnoreList(e.config.Excludes))
	if err != nil {
		return nil, err
	}
	return scanner.Scan()
}

// diff applies the scan result to the state: new paths become Created,
// hash mismatches become Updated, and Exists entries that were not seen
// this run become Deleted tombstones.
func (e *Engine) diff(state *SyncState, scanned map[string]string) {
	for _, path := range sortedKeys(scanned) {
		digest := scanned[path]
		entry, ok := state.Files[path]
		if !ok {
			slog.Info(fmt.Sprintf("[%s] New file: %s", color.GreenString("+"), color.GreenString(path)))
			state.Files[path] = NewCreatedFile(digest)
			continue
		}

		slog.Debug(fmt.Sprintf("[%s] Checking file %s for changes...", color.CyanString("/"), color.CyanString(path)))
		if entry.Hash != nil && *entry.Hash != digest {
			slog.Info(fmt.Sprintf("[%s] File changed: %s", color.YellowString("*"), color.YellowString(path)))
			entry.MakeUpdated(digest)
		}
	}

	for _, path := range sortedKeys(state.Files) {
		entry := state.Files[path]
		if entry.State != api.FileExists {
			continue
		}
		if _, seen := scanned[path]; seen {
			continue
		}
		slog.Info(fmt.Sprintf("[%s] File removed: %s", color.RedString("x"), color.RedString(path)))
		entry.MakeDeleted()
	}
}

func (e *Engine) push(ctx context.Context, state *SyncState, opts Options) (synced, uploaded int, err error) {
	for _, path := range sortedKeys(state.Files) {
		entry := state.Files[path]
		if entry.Dirty == DirtyClean && !opts.ForceSync {
			continue
		}

		slog.Info(fmt.Sprintf("[%s] Synchronizing %s...", color.BlueString("%"), color.BlueString(path)))
		err := e.client.FileSync(ctx, e.config.ModpackID, &api.FileSyncRequest{
			Path:  path,
			State: entry.State,
			Hash:  entry.Hash,
		})
		if err != nil {
			return synced, uploaded, fmt.Errorf("filesync %s: %w", path, err)
		}
		synced++

		if entry.State == api.FileExists &&
			(opts.ForceUpload || entry.Dirty == DirtyCreated || entry.Dirty == DirtyUpdated) {
			slog.Info(fmt.Sprintf("[%s] Uploading %s...", color.MagentaString("@"), color.MagentaString(path)))
			localPath := filepath.Join(e.root, filepath.FromSlash(path))
			if _, err := e.client.UploadFile(ctx, e.config.ModpackID, path, localPath); err != nil {
				return synced, uploaded, fmt.Errorf("upload %s: %w", path, err)
			}
			uploaded++
		}

		entry.MarkSynced()
	}
	return synced, uploaded, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
