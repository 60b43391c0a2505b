package interview

import (
	"context"
	"strings"
)

// SubmitAnswer appends the student's answer and the generated
// follow-up question to the active topic, as a pair: a snapshot never
// shows the student's turn without the system's reply once the call
// resolves. On generation failure the answer is still appended and the
// caller may retry via RetryQuestion.
func (c *Controller) SubmitAnswer(ctx context.Context, text string) (AnswerResult, error) {
	answer := strings.TrimSpace(text)
	if answer == "" {
		return AnswerResult{}, &ValidationError{Msg: "answer is empty"}
	}

	c.mu.Lock()
	if c.phase != PhaseInterview {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "no interview in progress"}
	}
	if c.modal == ModalAutoCountdown {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "topic time is up"}
	}
	if c.genInFlight {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "a question is already being generated"}
	}
	if c.retryPending {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "previous answer is awaiting a retried question"}
	}
	epoch := c.epoch
	cur := c.current
	topic := c.topics[cur]
	req := QuestionRequest{
		TopicTitle:      topic.Title,
		DocumentExcerpt: c.excerptLocked(),
		PriorTurns:      append([]Turn(nil), topic.Turns...),
		LatestAnswer:    answer,
		Modality:        c.modality,
	}
	c.genInFlight = true
	c.typed = true
	c.mu.Unlock()

	gctx, cancel := context.WithTimeout(ctx, c.cfg.GenerateTimeout)
	question, err := c.deps.Questions.GenerateQuestion(gctx, req)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch || c.phase != PhaseInterview || c.current != cur {
		// The session moved on while the request was in flight. The
		// response belongs to a topic that is no longer active; drop it.
		c.mu.Unlock()
		c.deps.Logger.Info("discarded stale question response", "topic", req.TopicTitle)
		return AnswerResult{}, nil
	}
	c.genInFlight = false
	if err != nil {
		// The student's answer is never discarded.
		topic.Turns = append(topic.Turns, Turn{Speaker: SpeakerStudent, Text: answer})
		c.retryPending = true
		c.mu.Unlock()
		return AnswerResult{}, &GenerationError{Op: "generate question", Err: err}
	}
	topic.Turns = append(topic.Turns,
		Turn{Speaker: SpeakerStudent, Text: answer},
		Turn{Speaker: SpeakerSystem, Text: question},
	)
	c.typed = false
	spoken := c.modality == ModalitySpoken
	c.mu.Unlock()

	result := AnswerResult{Question: question}
	if spoken {
		result.Audio = c.synthesize(ctx, question)
	}
	return result, nil
}

// RetryQuestion re-requests the system turn for an answer whose
// generation previously failed. The dangling student turn stays where
// it is; only the system's reply is appended on success.
func (c *Controller) RetryQuestion(ctx context.Context) (AnswerResult, error) {
	c.mu.Lock()
	if c.phase != PhaseInterview {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "no interview in progress"}
	}
	if !c.retryPending {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "nothing to retry"}
	}
	if c.modal == ModalAutoCountdown {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "topic time is up"}
	}
	if c.genInFlight {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "a question is already being generated"}
	}
	epoch := c.epoch
	cur := c.current
	topic := c.topics[cur]
	n := len(topic.Turns)
	if n == 0 || topic.Turns[n-1].Speaker != SpeakerStudent {
		c.mu.Unlock()
		return AnswerResult{}, &InvariantViolation{Msg: "retry pending but last turn is not the student's"}
	}
	req := QuestionRequest{
		TopicTitle:      topic.Title,
		DocumentExcerpt: c.excerptLocked(),
		PriorTurns:      append([]Turn(nil), topic.Turns[:n-1]...),
		LatestAnswer:    topic.Turns[n-1].Text,
		Modality:        c.modality,
	}
	c.genInFlight = true
	c.mu.Unlock()

	gctx, cancel := context.WithTimeout(ctx, c.cfg.GenerateTimeout)
	question, err := c.deps.Questions.GenerateQuestion(gctx, req)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch || c.phase != PhaseInterview || c.current != cur {
		c.mu.Unlock()
		c.deps.Logger.Info("discarded stale retry response", "topic", req.TopicTitle)
		return AnswerResult{}, nil
	}
	c.genInFlight = false
	if err != nil {
		c.mu.Unlock()
		return AnswerResult{}, &GenerationError{Op: "retry question", Err: err}
	}
	topic.Turns = append(topic.Turns, Turn{Speaker: SpeakerSystem, Text: question})
	c.retryPending = false
	c.typed = false
	spoken := c.modality == ModalitySpoken
	c.mu.Unlock()

	result := AnswerResult{Question: question}
	if spoken {
		result.Audio = c.synthesize(ctx, question)
	}
	return result, nil
}

// SubmitAudioAnswer transcribes a spoken answer and feeds it through
// the same SubmitAnswer contract typed answers use. Silence is
// rejected before any turn is appended.
func (c *Controller) SubmitAudioAnswer(ctx context.Context, audio []byte, contextHint string) (AnswerResult, error) {
	c.mu.Lock()
	if c.phase != PhaseInterview {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "no interview in progress"}
	}
	if c.modality != ModalitySpoken {
		c.mu.Unlock()
		return AnswerResult{}, &ValidationError{Msg: "session is not in spoken mode"}
	}
	c.mu.Unlock()

	if len(audio) == 0 {
		return AnswerResult{}, &ValidationError{Msg: "no audio captured"}
	}
	if c.deps.Transcriber == nil {
		return AnswerResult{}, &ValidationError{Msg: "transcription is not configured"}
	}

	tctx, cancel := context.WithTimeout(ctx, c.cfg.TranscribeTimeout)
	text, err := c.deps.Transcriber.Transcribe(tctx, audio, contextHint)
	cancel()
	if err != nil {
		return AnswerResult{}, &GenerationError{Op: "transcribe answer", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return AnswerResult{}, &ValidationError{Msg: "no speech detected"}
	}

	result, err := c.SubmitAnswer(ctx, text)
	if err != nil {
		return result, err
	}
	result.Transcript = text
	return result, nil
}
