// Package cache persists normalized backtest records as flat JSON
// files, one per (lab, backtest) pair, so repeated analysis runs never
// re-fetch what they already have and can operate fully offline.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/metrics"
	"github.com/iamcos/haaslab/internal/models"
)

// Store is a flat-file record store rooted at a single directory.
// Writes are idempotent: the same record always serializes to the same
// bytes, so re-caching a backtest never alters history.
type Store struct {
	dir     string
	refresh bool
	logger  *logrus.Logger
	mu      sync.Mutex
}

// NewStore creates a store rooted at dir. Directories are created
// lazily on the first write. With refresh enabled, Put overwrites
// existing entries instead of skipping them.
func NewStore(dir string, refresh bool, logger *logrus.Logger) *Store {
	return &Store{
		dir:     dir,
		refresh: refresh,
		logger:  logger,
	}
}

// labDir is the per-lab subdirectory. Grouping records by lab keeps
// lookups exact even when IDs contain separator characters.
func (s *Store) labDir(labID string) string {
	return filepath.Join(s.dir, labID)
}

// filename builds the on-disk path for one record:
// {lab_id}/{backtest_id}.json
func (s *Store) filename(labID, backtestID string) string {
	return filepath.Join(s.labDir(labID), backtestID+".json")
}

// Has reports whether a record is already cached.
func (s *Store) Has(labID, backtestID string) bool {
	_, err := os.Stat(s.filename(labID, backtestID))
	return err == nil
}

// Put writes one record. Unless the store is in refresh mode, an
// existing entry is left untouched.
func (s *Store) Put(record models.BacktestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.refresh && s.Has(record.LabID, record.BacktestID) {
		return nil
	}

	if err := os.MkdirAll(s.labDir(record.LabID), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", record.BacktestID, err)
	}

	if err := os.WriteFile(s.filename(record.LabID, record.BacktestID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	metrics.RecordsCachedTotal.Inc()
	return nil
}

// GetAll loads every cached record for a lab. Corrupt entries are
// skipped with a warning; they never abort the load.
func (s *Store) GetAll(labID string) ([]models.BacktestRecord, error) {
	labDir := s.labDir(labID)
	entries, err := os.ReadDir(labDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var records []models.BacktestRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(labDir, name))
		if err != nil {
			s.logger.WithField("file", name).WithError(err).Warn("Skipping unreadable cache entry")
			continue
		}

		var record models.BacktestRecord
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.WithField("file", name).WithError(err).Warn("Skipping corrupt cache entry")
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// Stats summarizes the cache contents for the cache subcommand.
type Stats struct {
	FileCount  int   `json:"file_count"`
	TotalBytes int64 `json:"total_bytes"`
}

// GetStats returns file count and total size across the whole store.
func (s *Store) GetStats() (Stats, error) {
	var stats Stats
	labs, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, lab := range labs {
		if !lab.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(s.dir, lab.Name()))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			stats.FileCount++
			stats.TotalBytes += info.Size()
		}
	}
	return stats, nil
}

// Clear removes all cached records for one lab, or every record when
// labID is empty.
func (s *Store) Clear(labID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if labID != "" {
		return s.clearLab(labID)
	}

	labs, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	for _, lab := range labs {
		if !lab.IsDir() {
			continue
		}
		n, err := s.clearLab(lab.Name())
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

func (s *Store) clearLab(labID string) (int, error) {
	labDir := s.labDir(labID)
	entries, err := os.ReadDir(labDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(labDir, name)); err != nil {
			s.logger.WithField("file", name).WithError(err).Warn("Failed to remove cache entry")
			continue
		}
		removed++
	}
	return removed, nil
}
