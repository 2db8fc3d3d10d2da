package conversation

// State is the position of the store in the submission lifecycle
type State string

const (
	// StateIdle accepts user submissions
	StateIdle State = "idle"
	// StateSubmitting holds a user message and waits out the reply delay
	StateSubmitting State = "submitting"
	// StateSynthesizing runs classification and synthesis
	StateSynthesizing State = "synthesizing"
	// StateAppended and StateErrored record how the last submission ended.
	// The store returns to StateIdle in the same step, so they are only
	// reported by LastOutcome.
	StateAppended State = "appended"
	StateErrored  State = "errored"
)

// Busy reports whether a submission is in flight
func (st State) Busy() bool {
	return st == StateSubmitting || st == StateSynthesizing
}

// State returns the current lifecycle state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastOutcome returns StateAppended or StateErrored for the most recent
// finished submission, or StateIdle if none has finished yet.
func (s *Store) LastOutcome() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}
