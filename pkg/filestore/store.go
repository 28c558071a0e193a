package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

const ext = ".json"

// maxIDLength bounds file names well below common filesystem limits.
const maxIDLength = 128

// Store keeps one file per session in a directory. The modification time of
// a file is the start of its current lifetime, so Touch is a single
// os.Chtimes call that never rewrites the payload.
//
// All paths are confined to the base directory: ids may only contain ASCII
// letters, digits, '-' and '_'. Other ids yield session.ErrInvalidID.
type Store struct {
	baseDir string
	ttl     time.Duration
	now     func() time.Time
	codec   session.Codec
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for modification times and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithCodec replaces the JSON encoding of payloads.
func WithCodec(c session.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// New creates a Store in dir, creating the directory if needed.
func New(dir string, ttl time.Duration, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, ErrInvalidConfig
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Join(ErrFailedToGetAbsolutePath, err)
	}
	if err := os.MkdirAll(absDir, 0o700); err != nil {
		return nil, errors.Join(ErrFailedToCreateDirectory, err)
	}

	s := &Store{
		baseDir: absDir,
		ttl:     session.NormalizeTTL(ttl),
		now:     time.Now,
		codec:   session.JSONCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromConfig creates a Store in cfg.Dir.
func NewFromConfig(cfg Config, ttl time.Duration, opts ...Option) (*Store, error) {
	return New(cfg.Dir, ttl, opts...)
}

// Dir returns the absolute base directory.
func (s *Store) Dir() string { return s.baseDir }

// New returns an empty record.
func (s *Store) New() session.Data { return session.Data{} }

// TTL returns the session lifespan.
func (s *Store) TTL() time.Duration { return s.ttl }

// Get returns session.ErrNotFound for missing or expired files.
func (s *Store) Get(_ context.Context, id string) (session.Data, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.expired(info) {
		return nil, session.ErrNotFound
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.codec.Unmarshal(raw)
}

// Set writes the file atomically and starts a new lifetime.
func (s *Store) Set(_ context.Context, id string, data session.Data) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	raw, err := s.codec.Marshal(data)
	if err != nil {
		return err
	}
	return s.write(path, raw, s.now())
}

// Touch starts a new lifetime for a live file.
func (s *Store) Touch(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if s.expired(info) {
		return nil
	}

	now := s.now()
	if err := os.Chtimes(path, now, now); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Delete removes the file.
func (s *Store) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear empties the payload and keeps the modification time.
func (s *Store) Clear(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	raw, err := s.codec.Marshal(session.Data{})
	if err != nil {
		return err
	}
	return s.write(path, raw, info.ModTime())
}

// IDs returns the ids of live files, sorted.
func (s *Store) IDs(_ context.Context) ([]string, error) {
	var ids []string
	err := s.walk(func(id string, info fs.FileInfo) error {
		if !s.expired(info) {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}

// FlushExpired removes expired files.
func (s *Store) FlushExpired(ctx context.Context) error {
	return s.walk(func(id string, info fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.expired(info) {
			return nil
		}
		err := os.Remove(filepath.Join(s.baseDir, id+ext))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

// walk calls fn for every session file in the base directory.
func (s *Store) walk(fn func(id string, info fs.FileInfo) error) error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(strings.TrimSuffix(name, ext), info); err != nil {
			return err
		}
	}
	return nil
}

// write replaces path with raw through a temporary file and sets its
// modification time to mtime.
func (s *Store) write(path string, raw []byte, mtime time.Time) error {
	tmp, err := os.CreateTemp(s.baseDir, ".tmp-*")
	if err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err := os.Chtimes(tmpPath, mtime, mtime); err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	return nil
}

func (s *Store) expired(info fs.FileInfo) bool {
	return s.now().After(info.ModTime().Add(s.ttl))
}

func (s *Store) path(id string) (string, error) {
	if !validID(id) {
		return "", errors.Join(session.ErrInvalidID, fmt.Errorf("id %q", id))
	}
	return filepath.Join(s.baseDir, id+ext), nil
}

func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
