package interview

import (
	"context"
	"strings"
)

// finalize assembles the full transcript and requests the closing
// assessment. It always delivers the session to result: a generation
// failure substitutes a placeholder assessment rather than stranding
// the user at the terminal phase.
func (c *Controller) finalize(ctx context.Context, epoch uint64) error {
	c.mu.Lock()
	if c.epoch != epoch || c.phase != PhaseFinalizing {
		c.mu.Unlock()
		return nil
	}
	req := SummaryRequest{
		Transcript:      buildTranscript(c.topics),
		TopicTitles:     topicTitles(c.topics),
		DocumentExcerpt: c.excerptLocked(),
	}
	sid := c.sessionID
	modality := c.modality
	topicCount := len(c.topics)
	c.mu.Unlock()

	sctx, cancel := context.WithTimeout(ctx, c.cfg.SummaryTimeout)
	assessment, err := c.deps.Summaries.GenerateSummary(sctx, req)
	cancel()
	if err != nil {
		c.deps.Logger.Warn("summary generation failed, using placeholder",
			"session_id", sid,
			"error", err,
		)
		assessment = placeholderAssessment()
	}

	c.mu.Lock()
	if c.epoch != epoch || c.phase != PhaseFinalizing {
		c.mu.Unlock()
		return nil
	}
	c.assessment = &assessment
	c.phase = PhaseResult
	c.mu.Unlock()

	c.publish(SubjectSessionCompleted, map[string]any{
		"session_id":  sid.String(),
		"topic_count": topicCount,
		"assessed":    err == nil,
	})

	if c.deps.Archive != nil {
		actx, acancel := context.WithTimeout(context.Background(), c.cfg.SummaryTimeout)
		defer acancel()
		rec := ArchiveRecord{
			SessionID:  sid,
			Modality:   modality,
			TopicCount: topicCount,
			Transcript: req.Transcript,
			Assessment: assessment,
		}
		if aerr := c.deps.Archive.Archive(actx, rec); aerr != nil {
			c.deps.Logger.Warn("interview archive failed", "session_id", sid, "error", aerr)
		}
	}
	return nil
}

// buildTranscript concatenates every topic's turns, in topic order
// then turn order, into a single readable transcript.
func buildTranscript(topics []*Topic) string {
	var b strings.Builder
	for _, t := range topics {
		b.WriteString("## ")
		b.WriteString(t.Title)
		b.WriteString("\n")
		for _, turn := range t.Turns {
			switch turn.Speaker {
			case SpeakerSystem:
				b.WriteString("Interviewer: ")
			case SpeakerStudent:
				b.WriteString("Student: ")
			}
			b.WriteString(turn.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func topicTitles(topics []*Topic) []string {
	titles := make([]string, len(topics))
	for i, t := range topics {
		titles[i] = t.Title
	}
	return titles
}

// placeholderAssessment is the well-defined substitute used when the
// assessment service fails or times out.
func placeholderAssessment() Assessment {
	return Assessment{
		Strengths: []string{},
		Weaknesses: []string{
			"The automated assessment could not be generated because the evaluation service was unavailable.",
		},
		OverallComment: "No automated assessment is available for this interview. Review the transcript manually.",
	}
}
