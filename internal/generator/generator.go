package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vivalabs/viva/internal/anthropic"
	"github.com/vivalabs/viva/internal/interview"
)

// Generator produces interview questions and the closing assessment
// through the LLM. It implements interview.QuestionGenerator and
// interview.SummaryGenerator.
type Generator struct {
	llm    *anthropic.Client
	logger *slog.Logger
}

func New(llm *anthropic.Client, logger *slog.Logger) *Generator {
	return &Generator{llm: llm, logger: logger}
}

// GenerateQuestion asks the LLM for the next system turn given the
// topic, the document excerpt, and the conversation so far.
func (g *Generator) GenerateQuestion(ctx context.Context, req interview.QuestionRequest) (string, error) {
	var convo strings.Builder
	for _, turn := range req.PriorTurns {
		switch turn.Speaker {
		case interview.SpeakerSystem:
			convo.WriteString("Examiner: ")
		case interview.SpeakerStudent:
			convo.WriteString("Student: ")
		}
		convo.WriteString(turn.Text)
		convo.WriteString("\n")
	}
	if convo.Len() == 0 {
		convo.WriteString("(none yet — this is the opening question)\n")
	}

	style := "typed chat"
	if req.Modality == interview.ModalitySpoken {
		style = "spoken dialogue — keep the question short and easy to say aloud"
	}

	prompt := fmt.Sprintf(questionUserPrompt, req.TopicTitle, req.DocumentExcerpt, convo.String(), req.LatestAnswer, style)

	raw, err := g.llm.Complete(ctx, questionSystemPrompt, []anthropic.Message{
		{Role: "user", Content: prompt},
	}, 512)
	if err != nil {
		return "", fmt.Errorf("llm question: %w", err)
	}
	question := strings.TrimSpace(raw)
	if question == "" {
		return "", fmt.Errorf("llm returned an empty question")
	}
	return question, nil
}

type llmAssessment struct {
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	OverallComment string   `json:"overall_comment"`
}

// GenerateSummary asks the LLM for the final structured assessment of
// the whole interview. The result is valid even when the student gave
// no answers; nil slices are normalized to empty ones.
func (g *Generator) GenerateSummary(ctx context.Context, req interview.SummaryRequest) (interview.Assessment, error) {
	prompt := fmt.Sprintf(summaryUserPrompt,
		strings.Join(req.TopicTitles, "\n- "),
		req.DocumentExcerpt,
		req.Transcript,
	)

	raw, err := g.llm.Complete(ctx, summarySystemPrompt, []anthropic.Message{
		{Role: "user", Content: prompt},
	}, 2048)
	if err != nil {
		return interview.Assessment{}, fmt.Errorf("llm summary: %w", err)
	}

	var resp llmAssessment
	if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
		g.logger.Error("failed to parse summary response", "error", err, "raw", raw)
		return interview.Assessment{}, fmt.Errorf("parse summary: %w", err)
	}

	assessment := interview.Assessment{
		Strengths:      resp.Strengths,
		Weaknesses:     resp.Weaknesses,
		OverallComment: strings.TrimSpace(resp.OverallComment),
	}
	if assessment.Strengths == nil {
		assessment.Strengths = []string{}
	}
	if assessment.Weaknesses == nil {
		assessment.Weaknesses = []string{}
	}
	if assessment.OverallComment == "" {
		assessment.OverallComment = "The interview produced too little material for a confident judgment."
	}
	return assessment, nil
}

func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
