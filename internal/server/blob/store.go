package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stopperw/modsync/internal/utils"
)

var (
	ErrInvalidDigest = errors.New("blob: invalid digest")
	ErrNotFound      = errors.New("blob: not found")
)

type Config struct {
	// Dir is the flat directory holding one file per digest.
	Dir string
}

// Store is a content-addressed blob store on the local filesystem. A blob
// is identified solely by the lowercase hex SHA-256 of its bytes and stored
// under that name in a single flat namespace. There is no reference
// counting and no reclamation; once committed a blob stays.
type Store struct {
	dir string
}

func NewStore(cfg *Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("blob: dir is required")
	}
	if err := utils.EnsureDir(cfg.Dir); err != nil {
		return nil, fmt.Errorf("blob: ensure dir: %w", err)
	}
	return &Store{dir: cfg.Dir}, nil
}

// Staged holds bytes that were streamed to a temporary name. The digest is
// known at this point, so callers can decide between Commit and Discard.
type Staged struct {
	store   *Store
	tmpPath string
	digest  string
	size    int64
	done    bool
}

func (st *Staged) Digest() string { return st.digest }
func (st *Staged) Size() int64    { return st.size }

// Commit renames the staged bytes onto the digest path. Two writers racing
// on the same content both rename identical bytes, so the result is the
// same either way.
func (st *Staged) Commit() error {
	if st.done {
		return nil
	}
	if err := os.Rename(st.tmpPath, filepath.Join(st.store.dir, st.digest)); err != nil {
		return fmt.Errorf("blob: commit %s: %w", st.digest, err)
	}
	st.done = true
	slog.Debug("blob commit", "digest", st.digest, "size", st.size)
	return nil
}

// Discard removes the staged bytes. Safe to call after Commit.
func (st *Staged) Discard() {
	if st.done {
		return
	}
	os.Remove(st.tmpPath)
	st.done = true
}

// Stage streams r into a temporary file in the store directory, hashing as
// it goes. Nothing is visible under a digest name until Commit.
func (s *Store) Stage(r io.Reader) (*Staged, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("blob: create temp: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func(err error) (*Staged, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, err
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		return cleanup(fmt.Errorf("blob: write temp: %w", err))
	}

	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("blob: sync temp: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return cleanup(fmt.Errorf("blob: close temp: %w", err))
	}

	return &Staged{
		store:   s,
		tmpPath: tmpPath,
		digest:  hex.EncodeToString(hasher.Sum(nil)),
		size:    size,
	}, nil
}

// Put stages and immediately commits r. Returns the digest and byte count.
func (s *Store) Put(r io.Reader) (digest string, size int64, err error) {
	staged, err := s.Stage(r)
	if err != nil {
		return "", 0, err
	}
	if err := staged.Commit(); err != nil {
		staged.Discard()
		return "", 0, err
	}
	return staged.Digest(), staged.Size(), nil
}

// Exists reports whether the physical blob for digest is on disk.
func (s *Store) Exists(digest string) bool {
	if !utils.IsDigest(digest) {
		return false
	}
	return utils.FileExists(filepath.Join(s.dir, digest))
}

// Open returns a reader over the blob for digest.
func (s *Store) Open(digest string) (*os.File, error) {
	path, err := s.Path(digest)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Path returns the on-disk location for digest. The digest is validated
// before it touches a path join.
func (s *Store) Path(digest string) (string, error) {
	if !utils.IsDigest(digest) {
		return "", ErrInvalidDigest
	}
	return filepath.Join(s.dir, digest), nil
}
