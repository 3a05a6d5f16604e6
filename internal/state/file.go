package state

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/morikuni/failure/v2"
	"github.com/rsilvagit/examwatch/internal/errs"
	"github.com/rsilvagit/examwatch/internal/log"
)

// FileStore keeps the snapshot in a single JSON file.
// Writes are not atomic; a torn file is read back as an empty snapshot.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore returns a store for path. A nil logger means log.Logger.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = log.Logger
	}
	return &FileStore{path: path, logger: logger.With("path", path)}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("No state file yet, starting empty")
		return Snapshot{}, nil
	}
	if err != nil {
		s.warn(err, "Could not read state file, starting fresh")
		return Snapshot{}, nil
	}

	snap, err := decode(data)
	if err != nil {
		s.warn(err, "Could not parse state file, starting fresh")
		return Snapshot{}, nil
	}
	s.logger.Debug("State loaded", "entries", len(snap))
	return snap, nil
}

func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(snap)
	if err != nil {
		return failure.Translate(err, errs.StateSaveError,
			failure.Message("Could not encode state"),
		)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return failure.Translate(err, errs.StateSaveError,
			failure.Message("Could not create state directory"),
			failure.Context{"path": s.path},
		)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return failure.Translate(err, errs.StateSaveError,
			failure.Message("Could not write state file"),
			failure.Context{"path": s.path},
		)
	}
	return nil
}

func (s *FileStore) warn(err error, msg string) {
	err = failure.Translate(err, errs.StateLoadError)
	s.logger.Warn(msg, "error", err)
}
