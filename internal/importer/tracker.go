package importer

import "sync"

// Status is the import lifecycle state of one external match id.
type Status string

const (
	// StatusIdle means no import has been attempted. Tracker entries are
	// never stored in this state; it is the implied default.
	StatusIdle Status = "idle"
	// StatusImporting means an import command is in flight.
	StatusImporting Status = "importing"
	// StatusSuccess means the last import created the match (or reused it)
	// and at least the required number of markets.
	StatusSuccess Status = "success"
	// StatusDuplicate is a pre-flight classification only: the external id
	// is already known to the catalog. It never results from a failed
	// import and does not block one.
	StatusDuplicate Status = "duplicate"
	// StatusError means the last import terminated in a failure.
	StatusError Status = "error"
)

// State is the tracked outcome for one external id.
type State struct {
	Status  Status `json:"status"`
	MatchID string `json:"matchId,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Tracker maps external match ids to their import lifecycle state. It is the
// only mutable state shared between concurrent import commands; Begin is the
// atomic check-and-set that enforces at most one in-flight import per
// external id.
type Tracker struct {
	mu     sync.Mutex
	states map[string]State
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]State)}
}

// Begin transitions the id into importing. It returns false, without any
// state change, when an import for the id is already in flight.
func (t *Tracker) Begin(externalID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[externalID].Status == StatusImporting {
		return false
	}
	t.states[externalID] = State{Status: StatusImporting}
	return true
}

// Finish records the terminal state of an import that Begin admitted.
func (t *Tracker) Finish(externalID string, state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[externalID] = state
}

// Get returns the tracked state for an id. ok is false for ids that were
// never attempted.
func (t *Tracker) Get(externalID string) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.states[externalID]
	return state, ok
}

// Snapshot copies the full state map for status display.
func (t *Tracker) Snapshot() map[string]State {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]State, len(t.states))
	for id, state := range t.states {
		out[id] = state
	}
	return out
}
