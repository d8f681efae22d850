package simulator

import (
	"context"
	"time"

	"github.com/Barton98/Energy-management-system/internal/logger"
	"github.com/Barton98/Energy-management-system/internal/metrics"
)

// Simulator generates readings on a fixed interval and guarantees each
// one is eventually delivered via store-and-forward: a failed single
// send buffers the reading; the next successful single send flushes the
// whole buffer as one batch.
type Simulator struct {
	gen      *Generator
	client   Deliverer
	buffer   *Buffer
	interval time.Duration
}

// Config holds simulator configuration
type Config struct {
	Generator *Generator
	Client    Deliverer
	Interval  time.Duration
}

// New creates a simulator.
func New(cfg Config) *Simulator {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	return &Simulator{
		gen:      cfg.Generator,
		client:   cfg.Client,
		buffer:   NewBuffer(),
		interval: interval,
	}
}

// Buffer exposes the internal buffer, mainly for tests.
func (s *Simulator) Buffer() *Buffer {
	return s.buffer
}

// Run executes the sample loop until ctx is cancelled. Delivery
// failures are never fatal; they only grow the buffer.
func (s *Simulator) Run(ctx context.Context) error {
	log := logger.WithComponent("simulator")
	log.Info().Dur("interval", s.interval).Msg("simulator started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if n := s.buffer.Len(); n > 0 {
				log.Warn().Int("buffered", n).Msg("stopping with undelivered readings")
			}
			log.Info().Msg("simulator stopped")
			return nil
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// cycle runs one iteration: generate, attempt single delivery, and on
// success flush the buffer. A cycle that buffers a fresh reading does
// not also attempt a batch resend.
func (s *Simulator) cycle(ctx context.Context) {
	log := logger.WithComponent("simulator")

	reading := s.gen.Next()

	if err := s.client.Send(ctx, reading); err != nil {
		s.buffer.Add(reading)
		metrics.SimulatorSendsTotal.WithLabelValues("single", "failed").Inc()
		metrics.SimulatorBufferSize.Set(float64(s.buffer.Len()))
		log.Warn().
			Err(err).
			Int64("seq_no", reading.SeqNo).
			Int("buffered", s.buffer.Len()).
			Msg("delivery failed, reading buffered")
		return
	}

	metrics.SimulatorSendsTotal.WithLabelValues("single", "ok").Inc()
	log.Debug().Int64("seq_no", reading.SeqNo).Msg("reading delivered")

	if s.buffer.Len() == 0 {
		return
	}

	s.flush(ctx)
}

// flush attempts to deliver the whole buffer as one batch. The buffer
// is cleared only when the batch succeeds; on failure it is left
// untouched for the next successful cycle.
func (s *Simulator) flush(ctx context.Context) {
	log := logger.WithComponent("simulator")
	items := s.buffer.Items()

	log.Info().Int("count", len(items)).Msg("resending buffered readings")

	if err := s.client.SendBatch(ctx, items); err != nil {
		metrics.SimulatorSendsTotal.WithLabelValues("batch", "failed").Inc()
		log.Warn().Err(err).Int("count", len(items)).Msg("batch resend failed, buffer kept")
		return
	}

	s.buffer.Clear()
	metrics.SimulatorSendsTotal.WithLabelValues("batch", "ok").Inc()
	metrics.SimulatorBufferSize.Set(0)
	log.Info().Int("count", len(items)).Msg("buffer cleared")
}
