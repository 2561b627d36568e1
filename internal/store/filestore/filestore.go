// Package filestore keeps the booking collection in a single JSON file.
//
// Every write serializes the whole collection to a temporary file in the same
// directory and renames it over the canonical file, so a crash never leaves a
// truncated collection behind. Read-modify-write cycles are serialized inside
// one process only; separate processes sharing the file are not coordinated.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/novendor/novendor-site/server/internal/model"
	"github.com/novendor/novendor-site/server/internal/store"
)

// Open returns a store backed by path. The parent directory and an empty
// collection are created on first use.
func Open(path string) (store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("filestore path is empty")
	}
	s := &fileStore{path: path}
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s, nil
}

type fileStore struct {
	path string
	mu   sync.Mutex
}

func (s *fileStore) Bookings() store.Bookings { return &bookings{s: s} }

// HealthPing implements health.HealthPinger by reading the collection.
func (s *fileStore) HealthPing(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

func (s *fileStore) ensure() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create store dir: %v", model.ErrStorage, err)
	}
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return s.save(nil)
	} else if err != nil {
		return fmt.Errorf("%w: stat %s: %v", model.ErrStorage, s.path, err)
	}
	return nil
}

func (s *fileStore) load() ([]model.Booking, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", model.ErrStorage, s.path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var out []model.Booking
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", model.ErrStorage, s.path, err)
	}
	return out, nil
}

// save writes all records through a temp file and an atomic rename.
func (s *fileStore) save(all []model.Booking) error {
	if all == nil {
		all = []model.Booking{}
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode bookings: %v", model.ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create store dir: %v", model.ErrStorage, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", model.ErrStorage, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: write temp file: %v", model.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: sync temp file: %v", model.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: close temp file: %v", model.ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: replace %s: %v", model.ErrStorage, s.path, err)
	}
	return nil
}

type bookings struct{ s *fileStore }

func (b *bookings) Create(ctx context.Context, rec *model.Booking) (*model.Booking, error) {
	if rec == nil || rec.ID == "" {
		return nil, fmt.Errorf("%w: booking id is required", model.ErrStorage)
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	all, err := b.s.load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == rec.ID {
			return nil, fmt.Errorf("%w: booking %s already exists", model.ErrStorage, rec.ID)
		}
	}
	out := *rec
	all = append(all, out)
	if err := b.s.save(all); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *bookings) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	all, err := b.s.load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			out := all[i]
			return &out, nil
		}
	}
	return nil, model.ErrNotFound
}

func (b *bookings) Update(ctx context.Context, id string, fn store.UpdateFunc) (*model.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	all, err := b.s.load()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range all {
		if all[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, model.ErrNotFound
	}

	next, err := fn(all[idx])
	if err != nil {
		return nil, err
	}
	next.ID = id
	all[idx] = next
	if err := b.s.save(all); err != nil {
		return nil, err
	}
	return &next, nil
}
