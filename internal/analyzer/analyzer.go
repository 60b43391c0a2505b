package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/vivalabs/viva/internal/anthropic"
	"github.com/vivalabs/viva/internal/interview"
)

// minDocumentChars is the smallest document worth interviewing about.
const minDocumentChars = 100

// maxTopics caps the analysis result; the collaborator contract is
// 1–5 topics.
const maxTopics = 5

// Analyzer derives interview topics from a submitted document via the
// LLM.
type Analyzer struct {
	llm    *anthropic.Client
	logger *slog.Logger
}

func New(llm *anthropic.Client, logger *slog.Logger) *Analyzer {
	return &Analyzer{llm: llm, logger: logger}
}

type llmTopics struct {
	Topics []interview.TopicSpec `json:"topics"`
}

// Analyze validates the document text and asks the LLM for 1–5
// discussion topics. Returns ValidationError when no usable text is
// present and InvalidTopicsError when the model yields zero topics.
func (a *Analyzer) Analyze(ctx context.Context, document string) (interview.AnalysisResult, error) {
	text := strings.TrimSpace(document)
	if !usableText(text) {
		return interview.AnalysisResult{}, &interview.ValidationError{
			Msg: fmt.Sprintf("document contains no usable text (need at least %d characters of prose)", minDocumentChars),
		}
	}

	prompt := fmt.Sprintf(analysisUserPrompt, text)
	a.logger.Info("analyzing document", "document_len", len(text))

	raw, err := a.llm.Complete(ctx, analysisSystemPrompt, []anthropic.Message{
		{Role: "user", Content: prompt},
	}, 1024)
	if err != nil {
		return interview.AnalysisResult{}, fmt.Errorf("llm analysis: %w", err)
	}

	var resp llmTopics
	if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
		a.logger.Error("failed to parse analysis response", "error", err, "raw", raw)
		return interview.AnalysisResult{}, fmt.Errorf("parse analysis: %w", err)
	}

	topics := resp.Topics[:0:0]
	for _, t := range resp.Topics {
		if strings.TrimSpace(t.Title) == "" {
			continue
		}
		topics = append(topics, t)
	}
	if len(topics) == 0 {
		return interview.AnalysisResult{}, &interview.InvalidTopicsError{Count: 0}
	}
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	a.logger.Info("analysis complete", "topics", len(topics))
	return interview.AnalysisResult{Topics: topics, ExtractedText: text}, nil
}

// usableText requires a minimum amount of prose, not just whitespace
// or control bytes from a binary upload.
func usableText(text string) bool {
	if len(text) < minDocumentChars {
		return false
	}
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
		}
		if letters >= minDocumentChars/2 {
			return true
		}
	}
	return false
}

// extractJSON strips a markdown code fence if the model wrapped its
// JSON in one.
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
