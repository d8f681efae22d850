package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Barton98/Energy-management-system/internal/models"
)

// stubDeliverer scripts single-send outcomes and records batch calls.
type stubDeliverer struct {
	sendErrs   []error
	sendCalls  int
	batchErr   error
	batchCalls [][]models.Reading
}

func (s *stubDeliverer) Send(ctx context.Context, r models.Reading) error {
	var err error
	if s.sendCalls < len(s.sendErrs) {
		err = s.sendErrs[s.sendCalls]
	}
	s.sendCalls++
	return err
}

func (s *stubDeliverer) SendBatch(ctx context.Context, rs []models.Reading) error {
	batch := make([]models.Reading, len(rs))
	copy(batch, rs)
	s.batchCalls = append(s.batchCalls, batch)
	return s.batchErr
}

func newTestSimulator(d Deliverer) *Simulator {
	return New(Config{
		Generator: NewGenerator("PV_SIM"),
		Client:    d,
		Interval:  time.Hour, // cycles driven manually in tests
	})
}

func TestCycle_FailureBuffersReading(t *testing.T) {
	down := errors.New("connection refused")
	stub := &stubDeliverer{sendErrs: []error{down}}
	sim := newTestSimulator(stub)

	sim.cycle(context.Background())

	if got := sim.buffer.Len(); got != 1 {
		t.Fatalf("expected 1 buffered reading, got %d", got)
	}
	if len(stub.batchCalls) != 0 {
		t.Error("no batch attempt may follow a freshly buffered reading")
	}
}

func TestCycle_StoreAndForward(t *testing.T) {
	down := errors.New("connection refused")
	stub := &stubDeliverer{sendErrs: []error{down, down, down, nil}}
	sim := newTestSimulator(stub)

	// Three cycles with the network down
	for i := 0; i < 3; i++ {
		sim.cycle(context.Background())
	}

	if got := sim.buffer.Len(); got != 3 {
		t.Fatalf("expected 3 buffered readings, got %d", got)
	}
	buffered := sim.buffer.Items()
	for i, r := range buffered {
		if r.SeqNo != int64(i+1) {
			t.Errorf("buffer out of order at %d: seq %d", i, r.SeqNo)
		}
	}

	// Connectivity returns: the next successful single delivery must
	// flush the whole buffer as one batch in the original order.
	sim.cycle(context.Background())

	if len(stub.batchCalls) != 1 {
		t.Fatalf("expected exactly 1 batch call, got %d", len(stub.batchCalls))
	}
	batch := stub.batchCalls[0]
	if len(batch) != 3 {
		t.Fatalf("expected batch of 3, got %d", len(batch))
	}
	for i, r := range batch {
		if r.SeqNo != int64(i+1) {
			t.Errorf("batch out of order at %d: seq %d", i, r.SeqNo)
		}
	}

	if got := sim.buffer.Len(); got != 0 {
		t.Errorf("expected empty buffer after successful resend, got %d", got)
	}
}

func TestCycle_BatchFailureKeepsBuffer(t *testing.T) {
	down := errors.New("connection refused")
	stub := &stubDeliverer{
		sendErrs: []error{down, nil},
		batchErr: errors.New("timeout"),
	}
	sim := newTestSimulator(stub)

	sim.cycle(context.Background()) // buffers seq 1
	sim.cycle(context.Background()) // single ok, batch fails

	if len(stub.batchCalls) != 1 {
		t.Fatalf("expected 1 batch attempt, got %d", len(stub.batchCalls))
	}
	if got := sim.buffer.Len(); got != 1 {
		t.Errorf("failed batch must leave buffer untouched, got %d items", got)
	}

	// Next successful cycle retries the whole buffer
	stub.batchErr = nil
	sim.cycle(context.Background())

	if len(stub.batchCalls) != 2 {
		t.Fatalf("expected 2 batch attempts, got %d", len(stub.batchCalls))
	}
	if got := sim.buffer.Len(); got != 0 {
		t.Errorf("expected empty buffer, got %d items", got)
	}
}

func TestCycle_NoBatchWhenBufferEmpty(t *testing.T) {
	stub := &stubDeliverer{}
	sim := newTestSimulator(stub)

	sim.cycle(context.Background())
	sim.cycle(context.Background())

	if len(stub.batchCalls) != 0 {
		t.Errorf("expected no batch calls, got %d", len(stub.batchCalls))
	}
	if stub.sendCalls != 2 {
		t.Errorf("expected 2 single sends, got %d", stub.sendCalls)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	stub := &stubDeliverer{}
	sim := New(Config{
		Generator: NewGenerator("PV_SIM"),
		Client:    stub,
		Interval:  5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- sim.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop after cancel")
	}

	if stub.sendCalls == 0 {
		t.Error("expected at least one delivery attempt")
	}
}

func TestGenerator_Ranges(t *testing.T) {
	gen := NewGenerator("PV_SIM")

	for i := 0; i < 100; i++ {
		r := gen.Next()

		if r.DeviceID != "PV_SIM" {
			t.Fatalf("unexpected device ID %q", r.DeviceID)
		}
		if r.SeqNo != int64(i+1) {
			t.Fatalf("sequence not monotonic: expected %d, got %d", i+1, r.SeqNo)
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("generated reading invalid: %v", err)
		}

		checkRange(t, "voltage_v", *r.VoltageV, 400, 500)
		checkRange(t, "current_a", *r.CurrentA, 2, 5)
		checkRange(t, "power_w", *r.PowerW, 1000, 2000)
		checkRange(t, "temp_c", *r.TempC, 20, 90)
	}
}

func checkRange(t *testing.T, name string, v, lo, hi float64) {
	t.Helper()
	if v < lo || v > hi {
		t.Errorf("%s out of range: %v not in [%v,%v]", name, v, lo, hi)
	}
}
