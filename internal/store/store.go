package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"menucal/internal/menu"
)

// ErrNotFound is returned when no snapshot exists for a month.
var ErrNotFound = errors.New("no menu snapshot for month")

// Store persists one MonthlyMenu snapshot per (year, month) as a JSON
// file. Snapshots are replaced wholesale on each scrape, never patched
// in place.
type Store struct {
	dir string
	mu  sync.RWMutex
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) pathFor(year int, month time.Month) string {
	return filepath.Join(s.dir, fmt.Sprintf("menus-%04d-%02d.json", year, int(month)))
}

// SaveMonthly writes the snapshot atomically (temp file + rename).
func (s *Store) SaveMonthly(m menu.MonthlyMenu) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	path := s.pathFor(m.Year, m.Month)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadMonthly reads the snapshot for one month. Derived item fields
// are reconstructed by the model's deserialization, not merely copied.
func (s *Store) LoadMonthly(year int, month time.Month) (menu.MonthlyMenu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.pathFor(year, month))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return menu.MonthlyMenu{}, ErrNotFound
		}
		return menu.MonthlyMenu{}, err
	}

	var m menu.MonthlyMenu
	if err := json.Unmarshal(data, &m); err != nil {
		return menu.MonthlyMenu{}, err
	}
	return m, nil
}

// Weeks flattens every stored snapshot's weeks, sorted ascending by
// start date, for queries that may cross month boundaries.
func (s *Store) Weeks() ([]menu.WeeklyMenu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []menu.WeeklyMenu{}, nil
		}
		return nil, err
	}

	weeks := make([]menu.WeeklyMenu, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "menus-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		var m menu.MonthlyMenu
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", name, err)
		}
		weeks = append(weeks, m.Weeks...)
	}

	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].StartDate.Before(weeks[j].StartDate.Time)
	})
	return weeks, nil
}
