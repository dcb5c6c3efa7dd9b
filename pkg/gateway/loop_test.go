package gateway

import (
	"sync"
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	loop := NewLoop(nil)
	go loop.Run()
	defer loop.Stop()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		loop.Post(func() { got = append(got, i) })
	}
	if !loop.Do(func() {}) {
		t.Fatal("Do() = false")
	}

	if len(got) != 100 {
		t.Fatalf("ran %d tasks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestLoopPostFromManyGoroutines(t *testing.T) {
	loop := NewLoop(nil)
	go loop.Run()
	defer loop.Stop()

	var (
		wg    sync.WaitGroup
		count int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				loop.Post(func() { count++ })
			}
		}()
	}
	wg.Wait()
	loop.Do(func() {})

	if count != 400 {
		t.Errorf("count = %d, want 400", count)
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	loop := NewLoop(nil)
	go loop.Run()
	defer loop.Stop()

	loop.Post(func() { panic("boom") })

	ran := false
	if !loop.Do(func() { ran = true }) {
		t.Fatal("Do() = false after a panicking task")
	}
	if !ran {
		t.Error("task after panic did not run")
	}
}

func TestLoopStop(t *testing.T) {
	loop := NewLoop(nil)
	go loop.Run()

	loop.Stop()
	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	if loop.Post(func() {}) {
		t.Error("Post() = true after Stop")
	}
	if loop.Do(func() {}) {
		t.Error("Do() = true after Stop")
	}

	// Stop is idempotent.
	loop.Stop()
}
