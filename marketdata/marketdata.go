// Package marketdata serves calibration quotes to the curve builders, from
// an in-memory map or from a Postgres quote table.
package marketdata

import (
	"fmt"
	"sync"
	"time"
)

// QuoteStore resolves a quote id to its value on a given date.
type QuoteStore interface {
	Quote(asOf time.Time, id string) (float64, error)
}

// MissingQuoteError reports a quote absent from the store.
type MissingQuoteError struct {
	AsOf time.Time
	ID   string
}

func (e *MissingQuoteError) Error() string {
	return fmt.Sprintf("marketdata: no quote %s as of %s", e.ID, e.AsOf.Format("2006-01-02"))
}

func dateKey(d time.Time) string { return d.Format("2006-01-02") }

// MapStore is a mutex-guarded in-memory QuoteStore keyed by date and quote
// id. It is the store of choice for tests and one-off runs.
type MapStore struct {
	mu     sync.RWMutex
	quotes map[string]map[string]float64
}

// NewMapStore returns an empty store.
func NewMapStore() *MapStore {
	return &MapStore{quotes: make(map[string]map[string]float64)}
}

// Set stores a quote, replacing any previous value for the same date and id.
func (s *MapStore) Set(asOf time.Time, id string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := dateKey(asOf)
	if s.quotes[day] == nil {
		s.quotes[day] = make(map[string]float64)
	}
	s.quotes[day][id] = value
}

func (s *MapStore) Quote(asOf time.Time, id string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.quotes[dateKey(asOf)][id]; ok {
		return v, nil
	}
	return 0, &MissingQuoteError{AsOf: asOf, ID: id}
}
