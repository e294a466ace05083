package importer

import (
	"sync"
	"testing"
)

func TestTracker_BeginRejectsInFlight(t *testing.T) {
	tr := NewTracker()
	if !tr.Begin("ext-1") {
		t.Fatalf("first Begin rejected")
	}
	if tr.Begin("ext-1") {
		t.Fatalf("second Begin accepted while importing")
	}
	// A different external id is unaffected.
	if !tr.Begin("ext-2") {
		t.Fatalf("Begin for unrelated id rejected")
	}

	tr.Finish("ext-1", State{Status: StatusError, Err: "boom"})
	if !tr.Begin("ext-1") {
		t.Fatalf("Begin after terminal state rejected")
	}
}

func TestTracker_GetDistinguishesNeverAttempted(t *testing.T) {
	tr := NewTracker()
	if _, ok := tr.Get("ext-1"); ok {
		t.Fatalf("unattempted id reported as tracked")
	}
	tr.Begin("ext-1")
	tr.Finish("ext-1", State{Status: StatusSuccess, MatchID: "match-9"})
	state, ok := tr.Get("ext-1")
	if !ok || state.Status != StatusSuccess || state.MatchID != "match-9" {
		t.Fatalf("state = %+v ok = %v", state, ok)
	}
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Begin("ext-1")
	snap := tr.Snapshot()
	snap["ext-1"] = State{Status: StatusError}
	if state, _ := tr.Get("ext-1"); state.Status != StatusImporting {
		t.Fatalf("snapshot mutation leaked into tracker")
	}
}

func TestTracker_ConcurrentBeginSingleWinner(t *testing.T) {
	tr := NewTracker()
	const goroutines = 32
	var wg sync.WaitGroup
	wins := make(chan bool, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- tr.Begin("ext-1")
		}()
	}
	wg.Wait()
	close(wins)
	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}
}
