package lookup

import (
	"fmt"
	"sync"
	"testing"
)

func TestQueue_FIFOWithDuplicates(t *testing.T) {
	in := []string{"a", "b", "a", "c", "a"}
	q := NewQueue(in)
	in[0] = "mutated"

	want := []string{"a", "b", "a", "c", "a"}
	for i, w := range want {
		got, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Dequeue() #%d ok = false", i)
		}
		if got != w {
			t.Errorf("Dequeue() #%d = %q, want %q", i, got, w)
		}
	}

	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue() on empty queue ok = true")
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_EnqueueAfterDrain(t *testing.T) {
	q := NewQueue(nil)
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue() on new empty queue ok = true")
	}

	q.Enqueue("x")
	if got, ok := q.Dequeue(); !ok || got != "x" {
		t.Errorf("Dequeue() = %q, %v, want x, true", got, ok)
	}
}

func TestQueue_CompactsLongRuns(t *testing.T) {
	q := NewQueue(nil)
	for round := 0; round < 10; round++ {
		for i := 0; i < 100; i++ {
			q.Enqueue(fmt.Sprintf("%d-%d", round, i))
		}
		for i := 0; i < 100; i++ {
			want := fmt.Sprintf("%d-%d", round, i)
			if got, _ := q.Dequeue(); got != want {
				t.Fatalf("Dequeue() = %q, want %q", got, want)
			}
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_ConcurrentAccess(t *testing.T) {
	q := NewQueue(nil)
	const producers, perProducer = 4, 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(fmt.Sprintf("%d-%d", p, i))
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var mu sync.Mutex
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				id, ok := q.Dequeue()
				if !ok {
					return
				}
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != producers*perProducer {
		t.Errorf("dequeued %d distinct items, want %d", len(seen), producers*perProducer)
	}
}
