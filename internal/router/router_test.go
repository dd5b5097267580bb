package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/myenglish/internal/screen"
)

// fakeScreen records what the router does to it.
type fakeScreen struct {
	title string
	inits int
	seen  []tea.Msg
}

func (s *fakeScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.seen = append(s.seen, msg)
	return s, nil
}

func (s *fakeScreen) View(int, int) string { return "view:" + s.title }
func (s *fakeScreen) Title() string        { return s.title }

func TestLessonFlowThroughTheStack(t *testing.T) {
	home := &fakeScreen{title: "Home"}
	r := New(home)

	lesson := &fakeScreen{title: "Basic Personal Information"}
	r.Update(Open(lesson)())
	if r.Depth() != 2 || r.Active() != lesson {
		t.Fatalf("lesson should be on top, depth %d", r.Depth())
	}
	if lesson.inits != 1 {
		t.Errorf("opened screen should be initialized once, got %d", lesson.inits)
	}

	done := &fakeScreen{title: "Lesson Complete"}
	r.Update(Swap(done)())
	if r.Depth() != 2 || r.Active() != done {
		t.Fatal("success screen should replace the lesson")
	}
	if done.inits != 1 {
		t.Error("replacement should be initialized")
	}

	cmd := r.Update(Back()())
	if r.Active() != home {
		t.Fatal("back should uncover home")
	}
	if cmd == nil {
		t.Fatal("pop should notify the uncovered screen")
	}
	popped, ok := cmd().(PoppedMsg)
	if !ok {
		t.Fatalf("expected PoppedMsg, got %T", cmd())
	}
	if popped.Closed != "Lesson Complete" {
		t.Errorf("Closed = %q", popped.Closed)
	}

	r.Update(popped)
	if len(home.seen) != 1 {
		t.Errorf("home should receive the PoppedMsg, saw %d messages", len(home.seen))
	}
}

func TestRootIsNeverPopped(t *testing.T) {
	home := &fakeScreen{title: "Home"}
	r := New(home)

	if cmd := r.Pop(); cmd != nil {
		t.Error("popping the root should do nothing")
	}
	if r.Depth() != 1 || r.Active() != home {
		t.Error("root should stay")
	}
}

func TestOnlyActiveScreenGetsMessages(t *testing.T) {
	home := &fakeScreen{title: "Home"}
	profile := &fakeScreen{title: "Profile"}
	r := New(home)
	r.Push(profile)

	r.Update(tea.KeyPressMsg{Code: 'a'})
	if len(profile.seen) != 1 || len(home.seen) != 0 {
		t.Errorf("profile saw %d, home saw %d", len(profile.seen), len(home.seen))
	}
	if got := r.View(80, 24); got != "view:Profile" {
		t.Errorf("View = %q", got)
	}
}

func TestNavigationMessagesAreNotForwarded(t *testing.T) {
	home := &fakeScreen{title: "Home"}
	r := New(home)

	r.Update(PushScreenMsg{Screen: &fakeScreen{title: "History"}})
	r.Update(PopScreenMsg{})
	if len(home.seen) != 0 {
		t.Errorf("navigation messages leaked to the screen: %v", home.seen)
	}
}
