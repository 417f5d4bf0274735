package dataset

import (
	"sync/atomic"
	"time"

	"ecom-insights/internal/models"
)

// Snapshot is one immutable view of the dataset. All analytics read a single
// snapshot for the whole computation; records must not be mutated after
// publication.
type Snapshot struct {
	ID       string
	Records  []models.Transaction
	Excluded int64
	LoadedAt time.Time
}

// LatestDate returns the most recent purchase date in the snapshot.
func (s *Snapshot) LatestDate() (time.Time, bool) {
	var latest time.Time
	found := false
	for i := range s.Records {
		if !found || s.Records[i].PurchaseDate.After(latest) {
			latest = s.Records[i].PurchaseDate
			found = true
		}
	}
	return latest, found
}

// Store publishes snapshots with a single atomic pointer swap. Readers never
// block and never observe a half-loaded dataset.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Current returns the published snapshot, or false if no load has succeeded
// since process start.
func (s *Store) Current() (*Snapshot, bool) {
	snap := s.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap, true
}
