package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTryDrainEmpty(t *testing.T) {
	q := New[int]()
	done := make(chan []int)
	go func() { done <- q.TryDrain() }()

	select {
	case got := <-done:
		if got != nil {
			t.Errorf("Expected nil from empty queue, got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("TryDrain blocked on an empty queue")
	}
}

func TestTryDrainPreservesOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		q.Send(i)
	}

	got := q.TryDrain()
	if len(got) != 5 {
		t.Fatalf("Expected 5 items, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("Item %d: expected %d, got %d", i, i, v)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Expected queue to be empty after drain, got %d", q.Len())
	}
}

func TestUnboundedKeepsEverything(t *testing.T) {
	q := New[int]()
	for i := 0; i < 10000; i++ {
		q.Send(i)
	}
	if q.Len() != 10000 {
		t.Errorf("Expected 10000 items, got %d", q.Len())
	}
	if q.Dropped() != 0 {
		t.Errorf("Unbounded queue dropped %d items", q.Dropped())
	}
}

func TestBoundedDropsOldest(t *testing.T) {
	q := NewBounded[int](3)
	for i := 1; i <= 5; i++ {
		q.Send(i)
	}

	got := q.TryDrain()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
	if q.Dropped() != 2 {
		t.Errorf("Expected 2 dropped, got %d", q.Dropped())
	}
}

func TestNewBoundedZeroIsUnbounded(t *testing.T) {
	q := NewBounded[int](0)
	for i := 0; i < 100; i++ {
		q.Send(i)
	}
	if q.Len() != 100 {
		t.Errorf("Expected 100 items, got %d", q.Len())
	}
}

func TestSendAfterClose(t *testing.T) {
	q := New[string]()
	q.Send("a")
	q.Close()
	q.Close()

	if q.Send("b") {
		t.Error("Send should report false after Close")
	}

	v, ok := q.Recv(context.Background())
	if !ok || v != "a" {
		t.Errorf("Expected buffered item 'a', got %q ok=%v", v, ok)
	}
	if _, ok := q.Recv(context.Background()); ok {
		t.Error("Expected Recv to report closed")
	}
}

func TestRecvBlocksUntilSend(t *testing.T) {
	q := New[int]()
	got := make(chan int, 1)
	go func() {
		v, _ := q.Recv(context.Background())
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("Recv returned before any Send")
	case <-time.After(20 * time.Millisecond):
	}

	q.Send(42)
	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("Expected 42, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Recv did not wake up after Send")
	}
}

func TestRecvContextCancel(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := q.Recv(ctx); ok {
		t.Error("Expected Recv to fail on cancelled context")
	}
}

func TestConcurrentProducers(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				q.Send(i)
			}
		}()
	}
	wg.Wait()

	if n := len(q.TryDrain()); n != 1000 {
		t.Errorf("Expected 1000 items, got %d", n)
	}
}
