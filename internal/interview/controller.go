package interview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NATS subjects for session lifecycle events.
const (
	SubjectSessionStarted   = "viva.session.started"
	SubjectTopicAdvanced    = "viva.topic.advanced"
	SubjectSessionCompleted = "viva.session.completed"
)

// Config holds the orchestrator's tunables.
type Config struct {
	TopicSeconds       int           // time budget per topic
	GraceSeconds       int           // auto-countdown after a topic's time expires
	DocumentExcerptLen int           // max runes of document text sent to generators
	AnalyzeTimeout     time.Duration
	GenerateTimeout    time.Duration
	TranscribeTimeout  time.Duration
	SummaryTimeout     time.Duration
	TickInterval       time.Duration
}

func DefaultConfig() Config {
	return Config{
		TopicSeconds:       180,
		GraceSeconds:       5,
		DocumentExcerptLen: 4000,
		AnalyzeTimeout:     30 * time.Second,
		GenerateTimeout:    30 * time.Second,
		TranscribeTimeout:  15 * time.Second,
		SummaryTimeout:     30 * time.Second,
		TickInterval:       250 * time.Millisecond,
	}
}

// Deps are the collaborators the controller orchestrates. Events and
// Archive are optional; Transcriber and Synthesizer are only required
// for spoken sessions. A nil Clock means time.Now.
type Deps struct {
	Analyzer    Analyzer
	Questions   QuestionGenerator
	Summaries   SummaryGenerator
	Transcriber Transcriber
	Synthesizer Synthesizer
	Events      EventSink
	Archive     ArchiveSink
	Logger      *slog.Logger
	Clock       func() time.Time
}

// Controller is the interview session orchestrator: a phase state
// machine driving analysis → interview → finalization. All session
// state is owned here and mutated only through its action methods;
// timers and network callbacks never touch it directly.
type Controller struct {
	cfg  Config
	deps Deps

	mu           sync.Mutex
	sessionID    uuid.UUID
	epoch        uint64 // bumped on reset; stale async resolutions check it
	phase        Phase
	modality     Modality
	documentText string
	topics       []*Topic
	current      int

	modal     ModalKind
	countdown float64

	typed        bool // student typed since the current question was asked
	playing      bool // UI-reported speech playback in progress
	genInFlight  bool // at most one generation request per topic at a time
	retryPending bool // last turn is a student answer awaiting a regenerated question

	timer      topicTimer
	advGuard   advanceGuard
	assessment *Assessment
}

func New(cfg Config, deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Controller{
		cfg:   cfg,
		deps:  deps,
		phase: PhaseUpload,
	}
}

func (c *Controller) now() time.Time { return c.deps.Clock() }

// Run drives the topic clock until ctx is cancelled. Remaining time is
// derived from wall-clock deltas, so the tick interval only bounds
// reaction latency, not accuracy.
func (c *Controller) Run(ctx context.Context) {
	interval := c.cfg.TickInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick updates the active topic's clock and the grace countdown. Safe
// to call at any cadence.
func (c *Controller) Tick() {
	c.mu.Lock()
	now := c.now()
	delta := c.timer.elapsed(now)
	if c.phase != PhaseInterview {
		c.mu.Unlock()
		return
	}
	topic := c.topics[c.current]
	wasCountdown := c.modal == ModalAutoCountdown

	st := interactionStateOf(c.typed || topic.hasStudentTurn(), c.genInFlight, c.playing)
	if timerRuns(c.phase, st, c.modal) {
		var crossed bool
		topic.Remaining, crossed = c.timer.apply(topic.Remaining, delta)
		if crossed {
			c.modal = ModalAutoCountdown
			c.countdown = float64(c.cfg.GraceSeconds)
			c.deps.Logger.Info("topic time exhausted",
				"session_id", c.sessionID,
				"topic", topic.Title,
				"grace_seconds", c.cfg.GraceSeconds,
			)
		}
	}

	fire := false
	if wasCountdown && c.modal == ModalAutoCountdown {
		c.countdown -= delta
		if c.countdown <= 0 {
			c.countdown = 0
			c.modal = ModalNone
			fire = true
		}
	}
	c.mu.Unlock()

	if fire {
		go func() {
			if _, err := c.advance(context.Background(), AdvanceAuto); err != nil {
				c.deps.Logger.Error("automatic advance failed", "error", err)
			}
		}()
	}
}

// SubmitDocument analyzes the upload, creates the session atomically,
// and prepares the first topic's opening question. The modality is
// fixed here for the life of the session.
func (c *Controller) SubmitDocument(ctx context.Context, document string, modality Modality) (AnswerResult, error) {
	if modality != ModalityTyped && modality != ModalitySpoken {
		return AnswerResult{}, &ValidationError{Msg: "modality must be typed or spoken"}
	}

	c.mu.Lock()
	if c.phase != PhaseUpload {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "a session is already in progress; reset first"}
	}
	epoch := c.epoch
	c.phase = PhaseAnalyzing
	c.mu.Unlock()

	actx, cancel := context.WithTimeout(ctx, c.cfg.AnalyzeTimeout)
	res, err := c.deps.Analyzer.Analyze(actx, document)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "session was reset during analysis"}
	}
	if err != nil {
		c.phase = PhaseUpload
		c.mu.Unlock()
		if IsValidation(err) {
			return AnswerResult{}, err
		}
		return AnswerResult{}, &GenerationError{Op: "analyze document", Err: err}
	}

	topics := make([]*Topic, 0, len(res.Topics))
	for _, spec := range res.Topics {
		id := spec.ID
		if id == "" {
			id = uuid.NewString()
		}
		topics = append(topics, &Topic{
			ID:        id,
			Title:     spec.Title,
			Remaining: float64(c.cfg.TopicSeconds),
			Status:    TopicPending,
		})
	}
	c.sessionID = uuid.New()
	c.topics = topics
	c.current = 0
	c.modality = modality
	c.documentText = res.ExtractedText
	c.assessment = nil
	c.phase = PhasePreparing
	sid := c.sessionID
	c.mu.Unlock()

	c.publish(SubjectSessionStarted, map[string]any{
		"session_id":  sid.String(),
		"modality":    string(modality),
		"topic_count": len(topics),
	})

	return c.prepareTopic(ctx, epoch, 0)
}

// prepareTopic generates the opening question for topic idx and enters
// the interview phase. A generation failure here is the harshest one:
// the topic cannot start without its question, so the session falls
// back to upload.
func (c *Controller) prepareTopic(ctx context.Context, epoch uint64, idx int) (AnswerResult, error) {
	c.mu.Lock()
	if c.epoch != epoch || c.phase != PhasePreparing || c.current != idx {
		c.mu.Unlock()
		return AnswerResult{}, nil
	}
	topic := c.topics[idx]
	req := QuestionRequest{
		TopicTitle:      topic.Title,
		DocumentExcerpt: c.excerptLocked(),
		Modality:        c.modality,
	}
	c.mu.Unlock()

	gctx, cancel := context.WithTimeout(ctx, c.cfg.GenerateTimeout)
	question, err := c.deps.Questions.GenerateQuestion(gctx, req)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch || c.phase != PhasePreparing || c.current != idx {
		c.mu.Unlock()
		return AnswerResult{}, nil
	}
	if err != nil {
		c.deps.Logger.Error("opening question generation failed",
			"session_id", c.sessionID,
			"topic", topic.Title,
			"error", err,
		)
		c.resetLocked()
		c.mu.Unlock()
		return AnswerResult{}, &GenerationError{Op: "prepare opening question", Err: err}
	}
	topic.Status = TopicActive
	topic.HasBeenAsked = true
	topic.Turns = append(topic.Turns, Turn{Speaker: SpeakerSystem, Text: question})
	c.typed = false
	c.playing = false
	c.genInFlight = false
	c.retryPending = false
	c.modal = ModalNone
	c.countdown = 0
	c.timer.reset(c.now())
	c.phase = PhaseInterview
	spoken := c.modality == ModalitySpoken
	c.mu.Unlock()

	result := AnswerResult{Question: question}
	if spoken {
		result.Audio = c.synthesize(ctx, question)
	}
	return result, nil
}

// advance moves the session off the current topic exactly once per
// invocation, whether triggered by a manual confirmation or by the
// grace countdown elapsing. A concurrent second trigger is a no-op.
func (c *Controller) advance(ctx context.Context, reason AdvanceReason) (AnswerResult, error) {
	if !c.advGuard.tryClaim() {
		return AnswerResult{}, nil
	}
	defer c.advGuard.release()

	c.mu.Lock()
	if c.phase != PhaseInterview {
		c.mu.Unlock()
		return AnswerResult{}, nil
	}
	epoch := c.epoch
	cur := c.current
	topic := c.topics[cur]
	if topic.Status != TopicActive {
		c.mu.Unlock()
		return AnswerResult{}, &InvariantViolation{Msg: "advance with no active topic"}
	}
	topic.Status = TopicDone
	c.modal = ModalNone
	c.countdown = 0
	// Leaving the topic cancels pending playback and capture.
	c.playing = false
	c.genInFlight = false
	c.retryPending = false
	last := cur+1 >= len(c.topics)
	if last {
		c.phase = PhaseFinalizing
	} else {
		c.current = cur + 1
		c.phase = PhasePreparing
	}
	sid := c.sessionID
	c.mu.Unlock()

	c.publish(SubjectTopicAdvanced, map[string]any{
		"session_id": sid.String(),
		"from_topic": cur,
		"reason":     string(reason),
		"final":      last,
	})

	if last {
		return AnswerResult{}, c.finalize(ctx, epoch)
	}
	return c.prepareTopic(ctx, epoch, cur+1)
}

// RequestManualAdvance opens the manual confirmation modal. The topic
// clock keeps ticking while it is open, so dithering costs time.
func (c *Controller) RequestManualAdvance() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseInterview {
		return &ValidationError{Msg: "no interview in progress"}
	}
	if c.modal == ModalNone {
		c.modal = ModalManualConfirm
	}
	return nil
}

// ConfirmAdvance commits the pending transition, manual-confirm or
// auto-countdown alike. Confirming during the grace countdown cancels
// the automatic trigger; the claim in advance guarantees only one of
// the two ever runs.
func (c *Controller) ConfirmAdvance(ctx context.Context) (AnswerResult, error) {
	c.mu.Lock()
	if c.phase != PhaseInterview || c.modal == ModalNone {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "no pending topic transition to confirm"}
	}
	c.modal = ModalNone
	c.countdown = 0
	c.mu.Unlock()
	return c.advance(ctx, AdvanceManual)
}

// CancelManualConfirm dismisses the manual confirmation modal. The
// auto-countdown cannot be cancelled, only confirmed.
func (c *Controller) CancelManualConfirm() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal != ModalManualConfirm {
		return &ValidationError{Msg: "no manual confirmation to cancel"}
	}
	c.modal = ModalNone
	return nil
}

// NotifyTyping records that the student started interacting with the
// current question, which lets the topic clock run.
func (c *Controller) NotifyTyping() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseInterview {
		c.typed = true
	}
}

// NotifyPlayback records UI-reported speech playback state. The topic
// clock pauses while the system's question is being read aloud.
func (c *Controller) NotifyPlayback(started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseInterview && c.modality == ModalitySpoken {
		c.playing = started
	}
}

// Reset destroys the session and returns to upload. The only way back
// to upload besides a failed preparation.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// resetLocked clears all session state and bumps the epoch so that any
// in-flight asynchronous resolution discards itself.
func (c *Controller) resetLocked() {
	c.epoch++
	c.sessionID = uuid.Nil
	c.phase = PhaseUpload
	c.modality = ""
	c.documentText = ""
	c.topics = nil
	c.current = 0
	c.modal = ModalNone
	c.countdown = 0
	c.typed = false
	c.playing = false
	c.genInFlight = false
	c.retryPending = false
	c.assessment = nil
	c.timer = topicTimer{}
}

// Snapshot returns a deep copy of the session state for the UI layer.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Phase:              c.phase,
		Modality:           c.modality,
		CurrentTopic:       c.current,
		Modal:              c.modal,
		CountdownRemaining: int(c.countdown),
		Assessment:         c.assessment,
	}
	if c.sessionID != uuid.Nil {
		snap.SessionID = c.sessionID.String()
	}
	for _, t := range c.topics {
		snap.Topics = append(snap.Topics, TopicSnapshot{
			ID:               t.ID,
			Title:            t.Title,
			RemainingSeconds: int(t.Remaining),
			Status:           t.Status,
			Turns:            append([]Turn(nil), t.Turns...),
			HasBeenAsked:     t.HasBeenAsked,
		})
	}
	return snap
}

// excerptLocked returns the leading slice of the document text sent
// along with generation requests. Caller holds c.mu.
func (c *Controller) excerptLocked() string {
	runes := []rune(c.documentText)
	if len(runes) <= c.cfg.DocumentExcerptLen {
		return c.documentText
	}
	return string(runes[:c.cfg.DocumentExcerptLen])
}

// synthesize renders a question as audio, best effort. A synthesis
// failure never blocks the question itself.
func (c *Controller) synthesize(ctx context.Context, text string) []byte {
	if c.deps.Synthesizer == nil {
		return nil
	}
	sctx, cancel := context.WithTimeout(ctx, c.cfg.GenerateTimeout)
	defer cancel()
	audio, err := c.deps.Synthesizer.Synthesize(sctx, text)
	if err != nil {
		c.deps.Logger.Warn("speech synthesis failed", "error", err)
		return nil
	}
	return audio
}

func (c *Controller) publish(subject string, data any) {
	if c.deps.Events == nil {
		return
	}
	if err := c.deps.Events.Publish(subject, data); err != nil {
		c.deps.Logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
