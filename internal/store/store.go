package store

import (
	"sync"

	"github.com/Barton98/Energy-management-system/internal/models"
)

// Store holds all in-memory service state: the reading log and the
// per-device alert lists. Both are append-only and insertion-ordered;
// nothing is removed until the process exits. A single mutex guards
// every mutation so that concurrent requests cannot interleave appends.
type Store struct {
	mu       sync.Mutex
	readings []models.Reading
	alerts   map[string][]models.Alert
	alertN   int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		readings: make([]models.Reading, 0, 256),
		alerts:   make(map[string][]models.Alert),
	}
}

// Append commits one reading and, when alert is non-nil, the alert it
// raised, in a single critical section.
func (s *Store) Append(r models.Reading, alert *models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = append(s.readings, r)
	if alert != nil {
		s.alerts[r.DeviceID] = append(s.alerts[r.DeviceID], *alert)
		s.alertN++
	}
}

// AppendBatch commits a batch of readings and their alerts atomically:
// either all of them become visible or none do. alertsByDevice maps a
// device identifier to the alerts raised by readings in this batch, in
// batch order.
func (s *Store) AppendBatch(readings []models.Reading, alertsByDevice map[string][]models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = append(s.readings, readings...)
	for deviceID, raised := range alertsByDevice {
		s.alerts[deviceID] = append(s.alerts[deviceID], raised...)
		s.alertN += len(raised)
	}
}

// AlertsFor returns a copy of the alert list for the given device in
// insertion order. Unknown devices yield an empty, non-nil slice.
func (s *Store) AlertsFor(deviceID string) []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.alerts[deviceID]
	out := make([]models.Alert, len(stored))
	copy(out, stored)
	return out
}

// Counts returns the current reading and alert totals.
func (s *Store) Counts() (readings, alerts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings), s.alertN
}
