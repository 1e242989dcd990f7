package events

import (
	"sync"
	"testing"

	"github.com/lixenwraith/frameloop/parameter"
)

// TestSignalQueueFIFO verifies signals come out in push order
func TestSignalQueueFIFO(t *testing.T) {
	q := NewSignalQueue()

	q.Push(Signal{Kind: SignalFocusLost})
	q.Push(Signal{Kind: SignalSurfaceChanged, Width: 80, Height: 24})
	q.Push(Signal{Kind: SignalFocusGained})

	got := q.Consume()
	if len(got) != 3 {
		t.Fatalf("consumed %d signals, want 3", len(got))
	}
	if got[0].Kind != SignalFocusLost || got[1].Kind != SignalSurfaceChanged || got[2].Kind != SignalFocusGained {
		t.Errorf("order = %v %v %v, want FocusLost SurfaceChanged FocusGained",
			got[0].Kind, got[1].Kind, got[2].Kind)
	}
	if got[1].Width != 80 || got[1].Height != 24 {
		t.Errorf("surface dims = %dx%d, want 80x24", got[1].Width, got[1].Height)
	}
}

// TestSignalQueueEmptyConsume verifies an empty queue yields nil
func TestSignalQueueEmptyConsume(t *testing.T) {
	q := NewSignalQueue()
	if got := q.Consume(); got != nil {
		t.Errorf("Consume on empty = %v, want nil", got)
	}
}

// TestSignalQueueConsumeDrains verifies a second consume finds nothing
func TestSignalQueueConsumeDrains(t *testing.T) {
	q := NewSignalQueue()
	q.Push(Signal{Kind: SignalHidden})

	if got := q.Consume(); len(got) != 1 {
		t.Fatalf("first consume = %d signals, want 1", len(got))
	}
	if got := q.Consume(); got != nil {
		t.Errorf("second consume = %v, want nil", got)
	}
}

// TestSignalQueueOverflowDropsOldest verifies ring overwrite semantics
func TestSignalQueueOverflowDropsOldest(t *testing.T) {
	q := NewSignalQueue()

	total := parameter.SignalQueueSize + 10
	for i := 0; i < total; i++ {
		q.Push(Signal{Kind: SignalSurfaceChanged, Width: i})
	}

	got := q.Consume()
	if len(got) != parameter.SignalQueueSize {
		t.Fatalf("consumed %d, want %d", len(got), parameter.SignalQueueSize)
	}
	if got[0].Width != 10 {
		t.Errorf("oldest surviving width = %d, want 10 (first 10 overwritten)", got[0].Width)
	}
	if got[len(got)-1].Width != total-1 {
		t.Errorf("newest width = %d, want %d", got[len(got)-1].Width, total-1)
	}
}

// TestSignalQueueConcurrentProducers verifies nothing is lost below capacity
func TestSignalQueueConcurrentProducers(t *testing.T) {
	q := NewSignalQueue()

	const producers = 4
	const perProducer = 32 // Total 128, under capacity

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(Signal{Kind: SignalFocusLost})
			}
		}()
	}
	wg.Wait()

	total := 0
	for {
		batch := q.Consume()
		if batch == nil {
			break
		}
		total += len(batch)
	}
	if total != producers*perProducer {
		t.Errorf("consumed %d signals, want %d", total, producers*perProducer)
	}
}
