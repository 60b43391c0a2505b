package interview

import (
	"context"
	"testing"
	"time"
)

func TestInteractionStateOf(t *testing.T) {
	tests := []struct {
		name       string
		engaged    bool
		generating bool
		speaking   bool
		want       InteractionState
	}{
		{"nothing happening", false, false, false, StateUnacknowledged},
		{"student engaged", true, false, false, StateEngaged},
		{"generation in flight", true, true, false, StateGenerating},
		{"generation beats speaking", false, true, true, StateGenerating},
		{"speaking", true, false, true, StateSpeaking},
		{"speaking before engagement", false, false, true, StateSpeaking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interactionStateOf(tt.engaged, tt.generating, tt.speaking)
			if got != tt.want {
				t.Errorf("interactionStateOf(%v, %v, %v) = %s, want %s",
					tt.engaged, tt.generating, tt.speaking, got, tt.want)
			}
		})
	}
}

func TestTimerRuns(t *testing.T) {
	tests := []struct {
		name  string
		phase Phase
		state InteractionState
		modal ModalKind
		want  bool
	}{
		{"engaged, no modal", PhaseInterview, StateEngaged, ModalNone, true},
		{"engaged during manual-confirm keeps ticking", PhaseInterview, StateEngaged, ModalManualConfirm, true},
		{"auto-countdown pauses", PhaseInterview, StateEngaged, ModalAutoCountdown, false},
		{"unacknowledged question", PhaseInterview, StateUnacknowledged, ModalNone, false},
		{"generation in flight", PhaseInterview, StateGenerating, ModalNone, false},
		{"audio playing", PhaseInterview, StateSpeaking, ModalNone, false},
		{"not interviewing", PhasePreparing, StateEngaged, ModalNone, false},
		{"finalizing", PhaseFinalizing, StateEngaged, ModalNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timerRuns(tt.phase, tt.state, tt.modal)
			if got != tt.want {
				t.Errorf("timerRuns(%s, %s, %q) = %v, want %v", tt.phase, tt.state, tt.modal, got, tt.want)
			}
		})
	}
}

func TestTopicTimer_ElapsedUsesWallClock(t *testing.T) {
	var tm topicTimer
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tm.reset(base)

	// Irregular tick cadence must sum to true elapsed time.
	if got := tm.elapsed(base.Add(700 * time.Millisecond)); got != 0.7 {
		t.Errorf("first delta = %v, want 0.7", got)
	}
	if got := tm.elapsed(base.Add(1 * time.Second)); got != 0.3 {
		t.Errorf("second delta = %v, want 0.3", got)
	}
}

func TestTopicTimer_FirstTickIsZero(t *testing.T) {
	var tm topicTimer
	if got := tm.elapsed(time.Now()); got != 0 {
		t.Errorf("expected zero delta before a reference point, got %v", got)
	}
}

func TestTopicTimer_ClockGoingBackwards(t *testing.T) {
	var tm topicTimer
	base := time.Now()
	tm.reset(base)
	if got := tm.elapsed(base.Add(-5 * time.Second)); got != 0 {
		t.Errorf("expected zero delta for backwards clock, got %v", got)
	}
}

func TestTopicTimer_Apply(t *testing.T) {
	tests := []struct {
		name        string
		remaining   float64
		delta       float64
		wantLeft    float64
		wantCrossed bool
	}{
		{"normal decrement", 10, 1.5, 8.5, false},
		{"exact zero crossing", 2, 2, 0, true},
		{"overshoot clamps at zero", 1, 5, 0, true},
		{"already zero", 0, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tm topicTimer
			left, crossed := tm.apply(tt.remaining, tt.delta)
			if left != tt.wantLeft {
				t.Errorf("remaining = %v, want %v", left, tt.wantLeft)
			}
			if crossed != tt.wantCrossed {
				t.Errorf("crossed = %v, want %v", crossed, tt.wantCrossed)
			}
			if left < 0 {
				t.Errorf("remaining went negative: %v", left)
			}
		})
	}
}

func TestTopicTimer_ZeroCrossingFiresOnce(t *testing.T) {
	var tm topicTimer
	left, crossed := tm.apply(1, 2)
	if !crossed || left != 0 {
		t.Fatalf("expected first crossing, got crossed=%v left=%v", crossed, left)
	}
	// Re-crossing while already exhausted is a no-op.
	if _, crossed := tm.apply(0.5, 1); crossed {
		t.Error("expected no second crossing event")
	}
	tm.reset(time.Now())
	if _, crossed := tm.apply(1, 2); !crossed {
		t.Error("expected crossing to rearm after reset")
	}
}

// Tick integration: the clock only runs once the student has begun
// interacting with the current question.
func TestTick_UnacknowledgedQuestionDoesNotBurnTime(t *testing.T) {
	rig := newTestRig(1, 180)
	rig.start(t, ModalityTyped)

	rig.clock.Advance(30 * time.Second)
	rig.ctrl.Tick()
	if got := rig.ctrl.Snapshot().Topics[0].RemainingSeconds; got != 180 {
		t.Errorf("clock ran against unacknowledged question: %d", got)
	}

	rig.ctrl.NotifyTyping()
	rig.clock.Advance(30 * time.Second)
	rig.ctrl.Tick()
	if got := rig.ctrl.Snapshot().Topics[0].RemainingSeconds; got != 150 {
		t.Errorf("expected 150s remaining after 30s engaged, got %d", got)
	}
}

func TestTick_ManualConfirmKeepsTicking(t *testing.T) {
	rig := newTestRig(1, 180)
	rig.start(t, ModalityTyped)
	rig.ctrl.NotifyTyping()
	rig.clock.Advance(10 * time.Second)
	rig.ctrl.Tick()

	if err := rig.ctrl.RequestManualAdvance(); err != nil {
		t.Fatalf("RequestManualAdvance failed: %v", err)
	}
	rig.clock.Advance(10 * time.Second)
	rig.ctrl.Tick()

	if got := rig.ctrl.Snapshot().Topics[0].RemainingSeconds; got != 160 {
		t.Errorf("expected dithering on manual-confirm to cost time, remaining = %d", got)
	}
}

func TestTick_PlaybackPausesClock(t *testing.T) {
	rig := newTestRig(1, 180)
	rig.start(t, ModalitySpoken)
	rig.ctrl.NotifyTyping()

	rig.ctrl.NotifyPlayback(true)
	rig.clock.Advance(20 * time.Second)
	rig.ctrl.Tick()
	if got := rig.ctrl.Snapshot().Topics[0].RemainingSeconds; got != 180 {
		t.Errorf("clock ran during playback: %d", got)
	}

	rig.ctrl.NotifyPlayback(false)
	rig.clock.Advance(20 * time.Second)
	rig.ctrl.Tick()
	if got := rig.ctrl.Snapshot().Topics[0].RemainingSeconds; got != 160 {
		t.Errorf("expected 160s after playback finished, got %d", got)
	}
}

// Scenario C: time expiry opens exactly one auto-countdown modal with
// the full grace period on it.
func TestTick_ExpiryOpensAutoCountdownOnce(t *testing.T) {
	rig := newTestRig(2, 10)
	rig.start(t, ModalityTyped)
	rig.ctrl.NotifyTyping()

	rig.clock.Advance(11 * time.Second)
	rig.ctrl.Tick()

	snap := rig.ctrl.Snapshot()
	if snap.Modal != ModalAutoCountdown {
		t.Fatalf("expected auto-countdown modal, got %q", snap.Modal)
	}
	if snap.CountdownRemaining != 5 {
		t.Errorf("expected countdown 5, got %d", snap.CountdownRemaining)
	}
	if snap.Topics[0].RemainingSeconds != 0 {
		t.Errorf("expected 0s remaining, got %d", snap.Topics[0].RemainingSeconds)
	}

	// Further ticks while the modal is open never re-cross zero.
	rig.clock.Advance(2 * time.Second)
	rig.ctrl.Tick()
	snap = rig.ctrl.Snapshot()
	if snap.Modal != ModalAutoCountdown {
		t.Fatalf("modal vanished early: %q", snap.Modal)
	}
	if snap.CountdownRemaining != 3 {
		t.Errorf("expected countdown 3 after 2s, got %d", snap.CountdownRemaining)
	}
	if snap.Topics[0].RemainingSeconds != 0 {
		t.Errorf("remaining seconds changed under the modal: %d", snap.Topics[0].RemainingSeconds)
	}
}

// Confirming during the grace countdown advances exactly once and
// cancels the automatic trigger.
func TestTick_ConfirmDuringCountdownAdvancesOnce(t *testing.T) {
	rig := newTestRig(2, 10)
	rig.start(t, ModalityTyped)
	rig.ctrl.NotifyTyping()

	rig.clock.Advance(11 * time.Second)
	rig.ctrl.Tick()
	if got := rig.ctrl.Snapshot().Modal; got != ModalAutoCountdown {
		t.Fatalf("expected auto-countdown modal, got %q", got)
	}

	if _, err := rig.ctrl.ConfirmAdvance(context.Background()); err != nil {
		t.Fatalf("ConfirmAdvance failed: %v", err)
	}

	snap := rig.ctrl.Snapshot()
	if snap.CurrentTopic != 1 {
		t.Fatalf("expected current topic 1, got %d", snap.CurrentTopic)
	}
	if snap.Phase != PhaseInterview {
		t.Fatalf("expected interview phase, got %s", snap.Phase)
	}

	// The countdown that was pending must not fire a second advance.
	rig.clock.Advance(10 * time.Second)
	rig.ctrl.Tick()
	time.Sleep(50 * time.Millisecond)
	if got := rig.ctrl.Snapshot().CurrentTopic; got != 1 {
		t.Errorf("automatic advance fired after manual confirm: topic %d", got)
	}
	// One opening question per topic entered, nothing more.
	if got := rig.questions.callCount(); got != 2 {
		t.Errorf("expected 2 question generations, got %d", got)
	}
}

func TestTick_GraceElapsedAdvancesAutomatically(t *testing.T) {
	rig := newTestRig(2, 10)
	rig.start(t, ModalityTyped)
	rig.ctrl.NotifyTyping()

	rig.clock.Advance(11 * time.Second)
	rig.ctrl.Tick()
	rig.clock.Advance(6 * time.Second)
	rig.ctrl.Tick()

	// The automatic advance runs asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rig.ctrl.Snapshot().CurrentTopic == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	snap := rig.ctrl.Snapshot()
	if snap.CurrentTopic != 1 {
		t.Fatalf("expected automatic advance to topic 1, got %d", snap.CurrentTopic)
	}
	if snap.Topics[0].Status != TopicDone {
		t.Errorf("expected topic 0 done, got %s", snap.Topics[0].Status)
	}
	if snap.Modal != ModalNone {
		t.Errorf("expected modal cleared, got %q", snap.Modal)
	}
}

// remainingSeconds is non-increasing while active and never negative.
func TestTick_RemainingNonIncreasingNeverNegative(t *testing.T) {
	rig := newTestRig(1, 5)
	rig.start(t, ModalityTyped)
	rig.ctrl.NotifyTyping()

	prev := rig.ctrl.Snapshot().Topics[0].RemainingSeconds
	for i := 0; i < 10; i++ {
		rig.clock.Advance(1 * time.Second)
		rig.ctrl.Tick()
		got := rig.ctrl.Snapshot().Topics[0].RemainingSeconds
		if got > prev {
			t.Fatalf("remaining increased from %d to %d", prev, got)
		}
		if got < 0 {
			t.Fatalf("remaining went negative: %d", got)
		}
		prev = got
	}
}
