package queue

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

// TestBasicOperations tests push and receive of a single producer
func TestBasicOperations(t *testing.T) {
	q := NewMPSC[int](0)
	defer q.Close()

	for i := 0; i < 10; i++ {
		if !q.Push(i) {
			t.Fatalf("Failed to push item %d", i)
		}
	}

	for i := 0; i < 10; i++ {
		select {
		case val := <-q.Recv():
			if val != i {
				t.Errorf("Expected %d, got %v", i, val)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for item %d", i)
		}
	}

	select {
	case val := <-q.Recv():
		t.Errorf("Queue should be empty, but got %v", val)
	case <-time.After(10 * time.Millisecond):
	}
}

// TestLimit tests that pushes fail once limit items are pending
func TestLimit(t *testing.T) {
	const limit = 4
	q := NewMPSC[int](limit)
	defer q.Close()

	// the consumer holds one item while blocked on the unbuffered channel, it still counts as pending
	for i := 0; i < limit; i++ {
		if !q.Push(i) {
			t.Fatalf("Failed to push item %d below limit", i)
		}
	}
	if q.Push(limit) {
		t.Fatal("Push should fail when limit items are pending")
	}
	if q.Len() != limit {
		t.Errorf("Expected %d pending items, got %d", limit, q.Len())
	}

	<-q.Recv()

	// the counter is decremented after the hand-off
	deadline := time.Now().Add(time.Second)
	for q.Len() != limit-1 && time.Now().Before(deadline) {
		runtime.Gosched()
	}
	if !q.Push(limit) {
		t.Error("Push should succeed once an item was received")
	}
}

// TestConcurrentProducers verifies that every item of many producers arrives exactly once
func TestConcurrentProducers(t *testing.T) {
	q := NewMPSC[int](0)
	defer q.Close()

	const numProducers = 10
	const itemsPerProducer = 1000
	totalItems := numProducers * itemsPerProducer

	received := make(map[int]bool, totalItems)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for len(received) < totalItems {
			select {
			case val := <-q.Recv():
				if received[val] {
					t.Errorf("Duplicate item received: %v", val)
				}
				received[val] = true
			case <-time.After(2 * time.Second):
				t.Errorf("Timeout waiting for items, received %d of %d", len(received), totalItems)
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(producerID int) {
			defer wg.Done()
			base := producerID * itemsPerProducer
			for i := 0; i < itemsPerProducer; i++ {
				if !q.Push(base + i) {
					t.Errorf("Producer %d failed to push item %d", producerID, i)
				}
				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Timeout waiting for consumer to finish")
	}
	if len(received) != totalItems {
		t.Errorf("Expected %d items, got %d", totalItems, len(received))
	}
}

// TestCloseQueue verifies that pending items are delivered after Close
func TestCloseQueue(t *testing.T) {
	q := NewMPSC[string](0)
	items := []string{"a", "b", "c"}
	for _, item := range items {
		q.Push(item)
	}

	q.Close()
	if !q.IsClosed() {
		t.Error("Queue should report closed")
	}
	if q.Push("d") {
		t.Error("Should not be able to push after queue is closed")
	}

	for _, want := range items {
		select {
		case val := <-q.Recv():
			if val != want {
				t.Errorf("Expected %s, got %s", want, val)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for item %s after close", want)
		}
	}

	select {
	case _, ok := <-q.Recv():
		if ok {
			t.Error("Channel should be closed but is still open")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Channel was not closed after draining")
	}
}

// TestOrderingSingleProducer tests that a single producer keeps FIFO order
func TestOrderingSingleProducer(t *testing.T) {
	q := NewMPSC[int](0)
	defer q.Close()

	const itemCount = 10000
	go func() {
		for i := 0; i < itemCount; i++ {
			q.Push(i)
		}
	}()

	for i := 0; i < itemCount; i++ {
		select {
		case val := <-q.Recv():
			if val != i {
				t.Fatalf("Expected %d, got %d", i, val)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for item %d", i)
		}
	}
}

// BenchmarkSingleProducer benchmarks the queue with a single producer
func BenchmarkSingleProducer(b *testing.B) {
	q := NewMPSC[int](0)
	defer q.Close()

	go func() {
		for range q.Recv() {
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(i)
	}
}

// BenchmarkMultiProducer benchmarks the queue with multiple producers
func BenchmarkMultiProducer(b *testing.B) {
	q := NewMPSC[int](0)
	defer q.Close()

	go func() {
		for range q.Recv() {
		}
	}()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Push(i)
			i++
		}
	})
}
