package interview

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// Scenario D: a summary failure still lands the session at result,
// with a failure-explanatory placeholder in weaknesses and empty
// strengths.
func TestFinalize_FailureSubstitutesPlaceholder(t *testing.T) {
	rig := newTestRig(1, 180)
	rig.summaries.fn = func(SummaryRequest) (Assessment, error) {
		return Assessment{}, fmt.Errorf("summary service exploded")
	}
	rig.start(t, ModalityTyped)
	rig.confirmAdvance(t)

	snap := rig.ctrl.Snapshot()
	if snap.Phase != PhaseResult {
		t.Fatalf("expected result phase despite summary failure, got %s", snap.Phase)
	}
	if snap.Assessment == nil {
		t.Fatal("expected placeholder assessment")
	}
	if len(snap.Assessment.Strengths) != 0 {
		t.Errorf("expected empty strengths, got %v", snap.Assessment.Strengths)
	}
	if len(snap.Assessment.Weaknesses) != 1 || !strings.Contains(snap.Assessment.Weaknesses[0], "could not be generated") {
		t.Errorf("expected failure-explanatory weakness, got %v", snap.Assessment.Weaknesses)
	}
	if snap.Assessment.OverallComment == "" {
		t.Error("expected a non-empty overall comment")
	}
}

func TestFinalize_SummaryRequestCarriesContext(t *testing.T) {
	rig := newTestRig(2, 180)
	rig.start(t, ModalityTyped)
	if _, err := rig.ctrl.SubmitAnswer(context.Background(), "first topic answer"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	rig.confirmAdvance(t)
	if _, err := rig.ctrl.SubmitAnswer(context.Background(), "second topic answer"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	rig.confirmAdvance(t)

	rig.summaries.mu.Lock()
	req := rig.summaries.last
	rig.summaries.mu.Unlock()

	if len(req.TopicTitles) != 2 {
		t.Fatalf("expected 2 topic titles, got %v", req.TopicTitles)
	}
	if req.TopicTitles[0] != "Topic 1" || req.TopicTitles[1] != "Topic 2" {
		t.Errorf("topic titles wrong or out of order: %v", req.TopicTitles)
	}
	if req.DocumentExcerpt == "" {
		t.Error("expected document excerpt in summary request")
	}
	if !strings.Contains(req.Transcript, "Student: first topic answer") {
		t.Errorf("transcript missing labeled student turn:\n%s", req.Transcript)
	}
	if !strings.Contains(req.Transcript, "Interviewer: ") {
		t.Errorf("transcript missing labeled system turns:\n%s", req.Transcript)
	}
}

func TestBuildTranscript_TopicThenTurnOrder(t *testing.T) {
	topics := []*Topic{
		{
			Title: "Methodology",
			Turns: []Turn{
				{Speaker: SpeakerSystem, Text: "Why this sample size?"},
				{Speaker: SpeakerStudent, Text: "Power analysis said so."},
			},
		},
		{
			Title: "Conclusions",
			Turns: []Turn{
				{Speaker: SpeakerSystem, Text: "What would falsify this?"},
			},
		},
	}

	got := buildTranscript(topics)
	iMeth := strings.Index(got, "## Methodology")
	iQ1 := strings.Index(got, "Interviewer: Why this sample size?")
	iA1 := strings.Index(got, "Student: Power analysis said so.")
	iConc := strings.Index(got, "## Conclusions")
	iQ2 := strings.Index(got, "Interviewer: What would falsify this?")
	if iMeth < 0 || iQ1 < 0 || iA1 < 0 || iConc < 0 || iQ2 < 0 {
		t.Fatalf("transcript missing sections:\n%s", got)
	}
	if !(iMeth < iQ1 && iQ1 < iA1 && iA1 < iConc && iConc < iQ2) {
		t.Errorf("transcript order wrong:\n%s", got)
	}
}

func TestBuildTranscript_EmptyTurns(t *testing.T) {
	topics := []*Topic{{Title: "Untouched"}}
	got := buildTranscript(topics)
	if !strings.Contains(got, "## Untouched") {
		t.Errorf("expected topic heading even with no turns, got %q", got)
	}
}

func TestPlaceholderAssessment_Shape(t *testing.T) {
	a := placeholderAssessment()
	if a.Strengths == nil || len(a.Strengths) != 0 {
		t.Errorf("expected empty non-nil strengths, got %v", a.Strengths)
	}
	if len(a.Weaknesses) == 0 {
		t.Error("expected explanatory weaknesses")
	}
	if a.OverallComment == "" {
		t.Error("expected overall comment")
	}
}
