package interview

import "time"

// InteractionState is the consolidated per-tick interaction state.
// Computed once per tick from the session's flags; the pause predicate
// is a pure function of this enum plus the modal kind, which keeps the
// individual flags from drifting out of sync with each other.
type InteractionState int

const (
	// StateUnacknowledged: the question is on screen but the student
	// has not typed a character and no prior answer exists. The clock
	// does not run against an unacknowledged first question.
	StateUnacknowledged InteractionState = iota
	// StateEngaged: the student is working on the current topic.
	StateEngaged
	// StateGenerating: a generation request is in flight.
	StateGenerating
	// StateSpeaking: the spoken-audio-out collaborator is playing.
	StateSpeaking
)

func (s InteractionState) String() string {
	switch s {
	case StateUnacknowledged:
		return "unacknowledged"
	case StateEngaged:
		return "engaged"
	case StateGenerating:
		return "generating"
	case StateSpeaking:
		return "speaking"
	}
	return "unknown"
}

// interactionStateOf collapses the raw flags into a single state.
// Generation and playback take precedence over engagement: either one
// pauses the clock no matter what the student is doing.
func interactionStateOf(engaged, generating, speaking bool) InteractionState {
	switch {
	case generating:
		return StateGenerating
	case speaking:
		return StateSpeaking
	case engaged:
		return StateEngaged
	}
	return StateUnacknowledged
}

// timerRuns is the pause predicate. The topic clock advances only
// while the student is engaged and nothing is pending. It keeps
// ticking during manual-confirm, so confirmation dithering costs time;
// it stops during auto-countdown.
func timerRuns(phase Phase, st InteractionState, modal ModalKind) bool {
	if phase != PhaseInterview {
		return false
	}
	if modal == ModalAutoCountdown {
		return false
	}
	return st == StateEngaged
}

// topicTimer tracks real elapsed wall-clock time between ticks rather
// than assuming a fixed callback cadence, so short irregular intervals
// do not compound into drift.
type topicTimer struct {
	last      time.Time
	exhausted bool
}

func (t *topicTimer) reset(now time.Time) {
	t.last = now
	t.exhausted = false
}

// elapsed returns the wall-clock seconds since the previous tick and
// records now as the new reference point.
func (t *topicTimer) elapsed(now time.Time) float64 {
	if t.last.IsZero() {
		t.last = now
		return 0
	}
	d := now.Sub(t.last).Seconds()
	t.last = now
	if d < 0 {
		return 0
	}
	return d
}

// apply decrements remaining by delta, clamping at zero, and reports
// whether this tick crossed zero for the first time. Re-crossing after
// the event has fired is a no-op.
func (t *topicTimer) apply(remaining, delta float64) (float64, bool) {
	next := remaining - delta
	if next < 0 {
		next = 0
	}
	crossed := next == 0 && remaining > 0 && !t.exhausted
	if crossed {
		t.exhausted = true
	}
	return next, crossed
}
