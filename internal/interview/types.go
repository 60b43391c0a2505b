package interview

import "github.com/google/uuid"

// Phase is the top-level session state.
type Phase string

const (
	PhaseUpload     Phase = "upload"
	PhaseAnalyzing  Phase = "analyzing"
	PhasePreparing  Phase = "preparing"
	PhaseInterview  Phase = "interview"
	PhaseFinalizing Phase = "finalizing"
	PhaseResult     Phase = "result"
)

// Modality is the interaction mode, fixed for the session once the
// interview begins.
type Modality string

const (
	ModalityTyped  Modality = "typed"
	ModalitySpoken Modality = "spoken"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerSystem  Speaker = "system"
	SpeakerStudent Speaker = "student"
)

// TopicStatus transitions pending → active → done and never goes back.
type TopicStatus string

const (
	TopicPending TopicStatus = "pending"
	TopicActive  TopicStatus = "active"
	TopicDone    TopicStatus = "done"
)

// ModalKind is the transient transition modal shown to the user. It
// reflects timer/advance state, it never drives it.
type ModalKind string

const (
	ModalNone          ModalKind = ""
	ModalManualConfirm ModalKind = "manual-confirm"
	ModalAutoCountdown ModalKind = "auto-countdown"
)

// AdvanceReason records what triggered a topic transition.
type AdvanceReason string

const (
	AdvanceManual AdvanceReason = "manual"
	AdvanceAuto   AdvanceReason = "auto"
)

// Turn is one utterance within a topic's conversation. Turns are
// append-only; the first turn of an asked topic is always the system's.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Topic is one discussion block derived from the submitted document.
type Topic struct {
	ID           string
	Title        string
	Remaining    float64 // seconds, never negative
	Status       TopicStatus
	Turns        []Turn
	HasBeenAsked bool
}

// hasStudentTurn reports whether the student has answered anything on
// this topic yet.
func (t *Topic) hasStudentTurn() bool {
	for _, turn := range t.Turns {
		if turn.Speaker == SpeakerStudent {
			return true
		}
	}
	return false
}

// Assessment is the final structured judgment produced at the end of
// the interview.
type Assessment struct {
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	OverallComment string   `json:"overall_comment"`
}

// TopicSnapshot is the read-only view of a topic exposed to the UI.
type TopicSnapshot struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	RemainingSeconds int         `json:"remaining_seconds"`
	Status           TopicStatus `json:"status"`
	Turns            []Turn      `json:"turns"`
	HasBeenAsked     bool        `json:"has_been_asked"`
}

// Snapshot is the full session view exposed to the UI layer and tests.
type Snapshot struct {
	SessionID          string          `json:"session_id"`
	Phase              Phase           `json:"phase"`
	Modality           Modality        `json:"modality"`
	CurrentTopic       int             `json:"current_topic"`
	Topics             []TopicSnapshot `json:"topics"`
	Modal              ModalKind       `json:"modal"`
	CountdownRemaining int             `json:"countdown_remaining"`
	Assessment         *Assessment     `json:"assessment,omitempty"`
}

// AnswerResult is returned by answer submission and topic preparation:
// the system's next question, plus synthesized audio and the recognized
// transcript in spoken mode.
type AnswerResult struct {
	Question   string `json:"question"`
	Audio      []byte `json:"audio,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// ArchiveRecord is the completed-interview summary handed to the
// archive sink once a session reaches its result.
type ArchiveRecord struct {
	SessionID  uuid.UUID
	Modality   Modality
	TopicCount int
	Transcript string
	Assessment Assessment
}
