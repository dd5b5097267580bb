package lessonplay

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screens/success"
	"github.com/abhisek/myenglish/internal/tutor"
)

// noMiniGame never triggers the mini-game draw.
type noMiniGame struct{}

func (noMiniGame) Float64() float64 { return 0.99 }

// newTestScreen starts the first lesson on a controller backed by the
// built-in content and feeds the snapshot to a new screen.
func newTestScreen(t *testing.T) (*LessonScreen, *lesson.Controller) {
	t.Helper()
	ctrl := lesson.New(
		tutor.New(nil, nil, tutor.DefaultConfig(), nil),
		learner.New(),
		lesson.Options{Rand: noMiniGame{}},
	)
	t.Cleanup(func() { ctrl.Close() })

	id := curriculum.First().ID
	s := New(ctrl, id)
	st, err := ctrl.StartLesson(context.Background(), id)
	if err != nil {
		t.Fatalf("start lesson: %v", err)
	}
	s.Update(stateMsg{State: st})
	return s, ctrl
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestStartsInReading(t *testing.T) {
	s, _ := newTestScreen(t)

	if s.state.Session == nil || s.state.Session.Skill != lesson.SkillReading {
		t.Fatal("expected a READING session after start")
	}
	if s.Title() != curriculum.First().Title {
		t.Errorf("expected title %q, got %q", curriculum.First().Title, s.Title())
	}
	if view := s.View(100, 30); !strings.Contains(view, "Reading") {
		t.Error("view should show the step progress")
	}
}

func TestEnterInReadingAdvancesToWriting(t *testing.T) {
	s, _ := newTestScreen(t)

	_, cmd := s.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter in READING should advance")
	}
	if !s.pending {
		t.Error("screen should be pending while the call runs")
	}

	msg, ok := cmd().(stateMsg)
	if !ok {
		t.Fatal("expected a stateMsg")
	}
	if msg.Err != nil {
		t.Fatalf("advance: %v", msg.Err)
	}
	s.Update(msg)

	if s.pending {
		t.Error("pending should clear once the snapshot arrives")
	}
	if got := s.state.Session.Skill; got != lesson.SkillWriting {
		t.Errorf("expected WRITING, got %s", got)
	}
}

func TestKeysWhilePendingShowBusyNotice(t *testing.T) {
	s, _ := newTestScreen(t)
	s.pending = true

	_, cmd := s.Update(key(tea.KeyTab))
	if cmd != nil {
		t.Error("no call should start while another is pending")
	}
	if s.notice != noticeBusy {
		t.Errorf("expected busy notice, got %q", s.notice)
	}
}

func TestEscAsksBeforeLeaving(t *testing.T) {
	s, ctrl := newTestScreen(t)

	if _, cmd := s.Update(key(tea.KeyEscape)); cmd != nil {
		t.Error("first esc should only ask for confirmation")
	}
	if !s.confirmExit {
		t.Fatal("expected exit confirmation")
	}

	s.Update(key('n'))
	if s.confirmExit {
		t.Error("n should cancel the confirmation")
	}
	if !ctrl.State().Active() {
		t.Error("lesson should still be running")
	}

	s.Update(key(tea.KeyEscape))
	_, cmd := s.Update(key('y'))
	if cmd == nil {
		t.Fatal("y should leave the lesson")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if ctrl.State().Active() {
		t.Error("leaving should end the session")
	}
}

func TestCompletionReplacesWithSuccess(t *testing.T) {
	s, _ := newTestScreen(t)

	c := lesson.Completion{LessonID: "unit-1", LessonTitle: "Basic Personal Information", XPAwarded: 100}
	_, cmd := s.Update(stateMsg{State: lesson.State{Completion: &c}})
	if cmd == nil {
		t.Fatal("completion should open the success screen")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := msg.Screen.(*success.SuccessScreen); !ok {
		t.Errorf("expected success screen, got %T", msg.Screen)
	}

	// A second snapshot must not replace again.
	if _, cmd := s.Update(stateMsg{State: lesson.State{Completion: &c}}); cmd != nil {
		t.Error("success screen should only be opened once")
	}
}

func TestSessionEndedElsewhereShowsError(t *testing.T) {
	s, _ := newTestScreen(t)

	s.Update(stateMsg{State: lesson.State{}})
	if s.errMsg != noticeLessonEnded {
		t.Errorf("expected %q, got %q", noticeLessonEnded, s.errMsg)
	}

	_, cmd := s.Update(key('x'))
	if cmd == nil {
		t.Fatal("any key should leave after an error")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestControllerErrorsBecomeNotices(t *testing.T) {
	tests := []struct {
		err    error
		notice string
	}{
		{lesson.ErrBusy, noticeBusy},
		{lesson.ErrNotAdvanceable, noticeNotDone},
		{lesson.ErrMiniGamePending, noticeMiniGame},
		{lesson.ErrAudioUnavailable, noticeNoAudio},
	}
	for _, tt := range tests {
		s, ctrl := newTestScreen(t)
		s.Update(stateMsg{State: ctrl.State(), Err: tt.err})
		if s.notice != tt.notice {
			t.Errorf("%v: expected notice %q, got %q", tt.err, tt.notice, s.notice)
		}
		if s.errMsg != "" {
			t.Errorf("%v: should not end the screen", tt.err)
		}
	}

	s, ctrl := newTestScreen(t)
	s.Update(stateMsg{State: ctrl.State(), Err: errors.New("boom")})
	if s.errMsg != "boom" {
		t.Errorf("unexpected errors should end the screen, got %q", s.errMsg)
	}
}

func TestSolvedMiniGameSchedulesResumeOnce(t *testing.T) {
	s, _ := newTestScreen(t)

	st := lesson.State{Session: &lesson.Session{
		ID:    "s-1",
		Skill: lesson.SkillMiniGame,
		MiniGame: &lesson.MiniGame{
			Words:  []string{"name", "My", "is", "Ben"},
			Chosen: []int{1, 0, 2, 3},
			Solved: true,
		},
	}}
	if _, cmd := s.Update(stateMsg{State: st}); cmd == nil {
		t.Fatal("a solved mini-game should schedule the resume")
	}
	if _, cmd := s.Update(stateMsg{State: st}); cmd != nil {
		t.Error("the resume should be scheduled only once")
	}
}

func TestPassedDictationSchedulesSpeaking(t *testing.T) {
	s, _ := newTestScreen(t)

	st := lesson.State{Session: &lesson.Session{
		ID:       "s-1",
		Skill:    lesson.SkillTest,
		Test:     &lesson.Test{DictationPhrase: "I like cats.", Stage: lesson.StageDictation},
		Accepted: true,
	}}
	if _, cmd := s.Update(stateMsg{State: st}); cmd == nil {
		t.Fatal("a passed dictation should schedule the speaking stage")
	}
	if _, cmd := s.Update(stateMsg{State: st}); cmd != nil {
		t.Error("speaking should be scheduled only once")
	}
}

func TestStaleDelayedMessagesAreIgnored(t *testing.T) {
	s, _ := newTestScreen(t)

	if _, cmd := s.Update(resumeMsg{SessionID: "other"}); cmd != nil {
		t.Error("resume for another session should be ignored")
	}
	if _, cmd := s.Update(beginSpeakingMsg{SessionID: "other"}); cmd != nil {
		t.Error("speaking for another session should be ignored")
	}
}

func TestLookupModeOnlyInReadingAndListening(t *testing.T) {
	s, _ := newTestScreen(t)

	s.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	if !s.lookupMode {
		t.Fatal("ctrl+l in READING should enter lookup mode")
	}
	s.Update(key(tea.KeyEscape))
	if s.lookupMode {
		t.Error("esc should leave lookup mode")
	}
	if s.confirmExit {
		t.Error("esc in lookup mode should not ask to leave")
	}

	s.state.Session.Skill = lesson.SkillWriting
	s.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	if s.lookupMode {
		t.Error("lookup should not be available in WRITING")
	}
}

func TestKeyHintsFollowActivity(t *testing.T) {
	s, _ := newTestScreen(t)

	if !hasHint(s, "Look up") {
		t.Error("READING should offer look up")
	}

	s.state.Session.Skill = lesson.SkillMiniGame
	if !hasHint(s, "Check") || hasHint(s, "Skip") {
		t.Error("MINIGAME hints should offer check and no skip")
	}

	s.confirmExit = true
	if !hasHint(s, "Leave lesson") {
		t.Error("confirmation should show its own hints")
	}
}

func hasHint(s *LessonScreen, desc string) bool {
	for _, h := range s.KeyHints() {
		if h.Description == desc {
			return true
		}
	}
	return false
}
