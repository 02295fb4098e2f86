package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SnapshotStore archives backup snapshots. The backup endpoint streams the
// snapshot to the client and also drops a copy here, so an expo-day machine
// keeps restorable state on disk even if nobody saved the download.
type SnapshotStore interface {
	Put(name string, r io.Reader) (string, error) // returns the stored name
	Get(name string) (io.ReadCloser, error)
	Latest() (string, io.ReadCloser, error)
}

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data/backups"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

// TimestampedName builds the canonical snapshot file name for a moment in time.
func TimestampedName(t time.Time) string {
	return "backup-" + t.UTC().Format("20060102-150405") + ".json"
}

func (s *FSStore) Put(name string, r io.Reader) (string, error) {
	if name == "" {
		return "", errors.New("empty snapshot name")
	}
	dst := filepath.Join(s.base, filepath.Base(name))
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return filepath.Base(name), nil
}

func (s *FSStore) Get(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.base, filepath.Base(name)))
}

// Latest returns the most recent snapshot by name; the timestamped naming
// makes lexical order chronological.
func (s *FSStore) Latest() (string, io.ReadCloser, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return "", nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil, errors.New("no snapshots")
	}
	sort.Strings(names)
	name := names[len(names)-1]
	rc, err := s.Get(name)
	return name, rc, err
}
