package interview

import "context"

// TopicSpec is one topic proposed by document analysis.
type TopicSpec struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AnalysisResult is the outcome of document analysis: 1–5 topics plus
// the usable text extracted from the upload.
type AnalysisResult struct {
	Topics        []TopicSpec
	ExtractedText string
}

// Analyzer derives interview topics from a submitted document.
// Returns ValidationError if no usable text, InvalidTopicsError if the
// analysis yields zero topics.
type Analyzer interface {
	Analyze(ctx context.Context, document string) (AnalysisResult, error)
}

// QuestionRequest carries everything the generator needs to produce
// the next system turn for a topic.
type QuestionRequest struct {
	TopicTitle      string
	DocumentExcerpt string
	PriorTurns      []Turn
	LatestAnswer    string
	Modality        Modality
}

// QuestionGenerator produces the next interview question. The
// collaborator guarantees no timeout of its own; callers impose one.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, req QuestionRequest) (string, error)
}

// SummaryRequest is the input to the final assessment.
type SummaryRequest struct {
	Transcript      string
	TopicTitles     []string
	DocumentExcerpt string
}

// SummaryGenerator produces the closing structured assessment. Must
// return a valid (possibly empty-but-valid) assessment even when the
// student produced no answers.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, req SummaryRequest) (Assessment, error)
}

// Transcriber converts captured speech to text. Silence yields an
// empty string, not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contextHint string) (string, error)
}

// Synthesizer renders a system turn as playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// EventSink publishes session lifecycle events. Optional; a nil sink
// disables publishing.
type EventSink interface {
	Publish(subject string, data any) error
}

// ArchiveSink records completed interviews. Optional; never read back
// to resume a session.
type ArchiveSink interface {
	Archive(ctx context.Context, rec ArchiveRecord) error
}
