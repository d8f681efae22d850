package simulator

import (
	"sync"

	"github.com/Barton98/Energy-management-system/internal/models"
)

// Buffer holds readings that failed delivery, in insertion order. It
// only ever grows until a successful batch resend clears it whole;
// there is no partial drain and no per-item retry count.
type Buffer struct {
	mu    sync.Mutex
	items []models.Reading
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add appends one reading.
func (b *Buffer) Add(r models.Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, r)
}

// Items returns a copy of the buffered readings in insertion order.
func (b *Buffer) Items() []models.Reading {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Reading, len(b.items))
	copy(out, b.items)
	return out
}

// Clear drops everything. Called only after the whole buffer was
// delivered as one batch.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = b.items[:0]
}

// Len returns the number of buffered readings.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
