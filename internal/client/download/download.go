package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/client/config"
	"github.com/stopperw/modsync/internal/modsyncsdk"
	"github.com/stopperw/modsync/internal/utils"
)

// tmpSuffix marks in-flight downloads. Matching files are excluded from
// upload scans and overwritten freely.
const tmpSuffix = ".modsync-tmp"

// API is the server surface the downloader needs. Satisfied by
// modsyncsdk.Client.
type API interface {
	GetModpack(ctx context.Context, modpackID string) (*api.ModpackResponse, error)
	DownloadByHash(ctx context.Context, digest, destPath string) error
}

type Options struct {
	// ForceCheck rehashes every present file even when nothing suggests
	// it changed.
	ForceCheck bool
}

// Downloader reconciles a local directory against the server snapshot:
// download missing files, verify suspect ones, remove deleted ones. The
// state file is rewritten only after the full pass completes.
type Downloader struct {
	root   string
	config *config.Config
	client API
}

func New(root string, cfg *config.Config, client API) *Downloader {
	return &Downloader{root: root, config: cfg, client: client}
}

func (d *Downloader) Run(ctx context.Context, opts Options) error {
	modpack, err := d.client.GetModpack(ctx, d.config.ModpackID)
	if err != nil {
		return fmt.Errorf("fetch modpack: %w", err)
	}
	slog.Info("applying modpack", "name", modpack.Modpack.Name, "server", d.config.ServerURL)

	started := time.Now()

	statePath := filepath.Join(d.root, config.FilesStateFileName)
	state, err := LoadFilesState(statePath)
	if err != nil {
		return err
	}

	files := make([]api.File, len(modpack.Files))
	copy(files, modpack.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	for _, file := range files {
		if file.State == api.FileIgnored {
			continue
		}
		if err := d.reconcileFile(ctx, state, &file, opts); err != nil {
			return err
		}
	}

	if err := state.Save(statePath); err != nil {
		return fmt.Errorf("save files state: %w", err)
	}

	slog.Info(color.GreenString("sync complete, have fun"),
		"took", time.Since(started).Round(time.Millisecond))
	return nil
}

func (d *Downloader) reconcileFile(ctx context.Context, state FilesState, file *api.File, opts Options) error {
	info, ok := state[file.Path]
	if !ok {
		info = newFileInfo(file.SyncVersion)
		state[file.Path] = info
	}
	if info.DisableSync {
		slog.Debug("sync disabled, skipping", "path", file.Path)
		return nil
	}

	info.Hash = file.Hash
	serverHash := ""
	if file.Hash != nil {
		serverHash = *file.Hash
	}

	localPath := filepath.Join(d.root, filepath.FromSlash(file.Path))
	present := utils.FileExists(localPath)

	switch {
	case file.State == api.FileExists && !present:
		slog.Info(fmt.Sprintf("[%s] File %s added, downloading...", color.GreenString("+"), color.GreenString(file.Path)))
		if err := d.downloadFile(ctx, serverHash, localPath); err != nil {
			if errors.Is(err, modsyncsdk.ErrNotFound) {
				slog.Error("file not on server yet, skipping", "path", file.Path, "error", err)
				return nil
			}
			return err
		}
		slog.Info(fmt.Sprintf("[%s] %s downloaded!", color.GreenString("+"), color.GreenString(file.Path)))

	case file.State == api.FileExists && (info.Dirty || file.SyncVersion > info.SyncVersion || opts.ForceCheck):
		slog.Info(fmt.Sprintf("[%s] Checking file %s...", color.YellowString("*"), color.YellowString(file.Path)))
		digest, err := utils.FileDigest(localPath)
		if err != nil {
			return fmt.Errorf("hash %s: %w", file.Path, err)
		}
		if digest != serverHash {
			slog.Info(fmt.Sprintf("[%s] %s was updated, redownloading...", color.YellowString("#"), color.YellowString(file.Path)))
			if err := d.downloadFile(ctx, serverHash, localPath); err != nil {
				if errors.Is(err, modsyncsdk.ErrNotFound) {
					slog.Error("file not on server yet, skipping", "path", file.Path, "error", err)
					return nil
				}
				return err
			}
			slog.Info(fmt.Sprintf("[%s] %s redownloaded!", color.GreenString("#"), color.GreenString(file.Path)))
		}

	case file.State == api.FileDeleted:
		if present {
			if err := os.Remove(localPath); err != nil {
				return fmt.Errorf("remove %s: %w", file.Path, err)
			}
			slog.Info(fmt.Sprintf("[%s] %s is removed.", color.RedString("-"), color.RedString(file.Path)))
		}

	default:
		// Metadata refresh only.
	}

	info.SyncVersion = file.SyncVersion
	info.Dirty = false
	return nil
}

// downloadFile fetches a blob into a temp name, verifies its digest, and
// renames it into place. A partial or corrupt transfer never replaces an
// existing file.
func (d *Downloader) downloadFile(ctx context.Context, digest, localPath string) error {
	if err := utils.EnsureParent(localPath); err != nil {
		return err
	}

	tmpPath := localPath + tmpSuffix
	if err := d.client.DownloadByHash(ctx, digest, tmpPath); err != nil {
		return err
	}

	got, err := utils.FileDigest(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	if got != digest {
		os.Remove(tmpPath)
		return fmt.Errorf("download integrity: got %s, want %s", got, digest)
	}

	return os.Rename(tmpPath, localPath)
}
