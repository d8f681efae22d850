package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/Barton98/Energy-management-system/internal/models"
)

// Generator produces synthetic PV readings with a monotonically
// increasing sequence number and range-bounded measurements.
type Generator struct {
	deviceID string
	seq      int64
	rng      *rand.Rand
	now      func() time.Time
}

// NewGenerator creates a generator for the given device.
func NewGenerator(deviceID string) *Generator {
	return &Generator{
		deviceID: deviceID,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// Next returns the next synthetic reading.
func (g *Generator) Next() models.Reading {
	g.seq++
	return models.Reading{
		DeviceID:  g.deviceID,
		Timestamp: g.now().UTC().Format(time.RFC3339Nano),
		SeqNo:     g.seq,
		VoltageV:  ptr(round2(g.inRange(400, 500))),
		CurrentA:  ptr(round2(g.inRange(2, 5))),
		PowerW:    ptr(round1(g.inRange(1000, 2000))),
		TempC:     ptr(round1(g.inRange(20, 90))),
		Status:    models.StatusOK,
	}
}

func (g *Generator) inRange(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func ptr(v float64) *float64 { return &v }
