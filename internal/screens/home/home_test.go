package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screens/history"
	"github.com/abhisek/myenglish/internal/screens/lessonplay"
	"github.com/abhisek/myenglish/internal/screens/profile"
	"github.com/abhisek/myenglish/internal/store"
	"github.com/abhisek/myenglish/internal/tutor"
)

type noEvents struct{}

func (noEvents) QueryLessonEvents(context.Context, store.QueryOpts) ([]store.LessonEvent, error) {
	return nil, nil
}

func newTestHome(t *testing.T, p learner.Profile, events history.EventSource) *HomeScreen {
	t.Helper()
	ctrl := lesson.New(tutor.New(nil, nil, tutor.DefaultConfig(), nil), p, lesson.Options{})
	t.Cleanup(func() { ctrl.Close() })
	return New(Deps{Controller: ctrl, Events: events})
}

func TestOnlyUnlockedLessonsAreEnabled(t *testing.T) {
	h := newTestHome(t, learner.New(), nil)

	lessons := curriculum.All()
	for i, l := range lessons {
		item := h.menu.Items[i]
		if want := i != 0; item.Disabled != want {
			t.Errorf("%s: expected disabled=%v", l.ID, want)
		}
	}
	if h.menu.Selected != 0 {
		t.Errorf("expected the first lesson selected, got %d", h.menu.Selected)
	}
}

func TestMenuItemsWithoutHistory(t *testing.T) {
	h := newTestHome(t, learner.New(), nil)
	if got, want := len(h.menu.Items), len(curriculum.All())+2; got != want {
		t.Errorf("expected %d items, got %d", want, got)
	}

	h = newTestHome(t, learner.New(), noEvents{})
	if got, want := len(h.menu.Items), len(curriculum.All())+3; got != want {
		t.Errorf("expected %d items with history, got %d", want, got)
	}
}

func TestEnterOpensLesson(t *testing.T) {
	h := newTestHome(t, learner.New(), nil)

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should open the lesson")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*lessonplay.LessonScreen); !ok {
		t.Errorf("expected lesson screen, got %T", push.Screen)
	}
}

func TestNavigationSkipsLockedLessons(t *testing.T) {
	h := newTestHome(t, learner.New(), nil)

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	profileIdx := len(curriculum.All())
	if h.menu.Selected != profileIdx {
		t.Fatalf("expected PROFILE selected, got %d", h.menu.Selected)
	}

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*profile.ProfileScreen); !ok {
		t.Errorf("expected profile screen, got %T", push.Screen)
	}
}

func TestPoppedRefreshesProfile(t *testing.T) {
	p := learner.New()
	ctrl := lesson.New(tutor.New(nil, nil, tutor.DefaultConfig(), nil), p, lesson.Options{})
	t.Cleanup(func() { ctrl.Close() })
	h := New(Deps{Controller: ctrl})

	ctrl.SetBio("I like tea.")
	h.Update(router.PoppedMsg{})
	if h.profile.Bio != "I like tea." {
		t.Error("home should reload the profile when uncovered")
	}
}

func TestViewShowsStatsAndBanner(t *testing.T) {
	p := learner.New()
	p.XP = 300
	h := newTestHome(t, p, nil)

	view := h.View(120, 40)
	if !strings.Contains(view, "300 XP") {
		t.Error("view should show XP")
	}
	if !strings.Contains(view, "No LLM API key") {
		t.Error("view should warn when no provider is configured")
	}

	h.deps.LLMReady = true
	if strings.Contains(h.View(120, 40), "No LLM API key") {
		t.Error("banner should be hidden when a provider is configured")
	}
}
