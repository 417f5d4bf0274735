package dataset

import (
	"encoding/gob"
	"fmt"
	"os"
	"strings"
	"time"

	"ecom-insights/internal/models"
)

const cacheVersion = "v1"

// cacheEntry persists parsed records only. Computed metrics are never
// written anywhere; they are recomputed from the snapshot on every request.
type cacheEntry struct {
	Records       []models.Transaction
	Excluded      int64
	SourceModTime time.Time
	SavedAt       time.Time
}

func (l *Loader) cacheFilename() string {
	return fmt.Sprintf("%s/%s_%s.gob", l.cacheDir, strings.ReplaceAll(l.csvPath, "/", "_"), cacheVersion)
}

func (l *Loader) saveCache(records []models.Transaction, excluded int64, sourceModTime time.Time) error {
	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(l.cacheFilename())
	if err != nil {
		return err
	}
	defer file.Close()

	entry := cacheEntry{
		Records:       records,
		Excluded:      excluded,
		SourceModTime: sourceModTime,
		SavedAt:       time.Now().UTC(),
	}

	return gob.NewEncoder(file).Encode(entry)
}

// loadCache returns the cached parse only when the source file is unchanged.
func (l *Loader) loadCache(sourceModTime time.Time) (*cacheEntry, error) {
	file, err := os.Open(l.cacheFilename())
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(file).Decode(&entry); err != nil {
		return nil, err
	}

	if !entry.SourceModTime.Equal(sourceModTime) {
		return nil, fmt.Errorf("cache stale: source modified")
	}

	return &entry, nil
}
