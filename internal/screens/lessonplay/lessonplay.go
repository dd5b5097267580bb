// Package lessonplay is the screen that plays one lesson. It forwards
// learner input to the lesson controller and renders the snapshots it
// returns; it never changes lesson state itself.
package lessonplay

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screen"
	"github.com/abhisek/myenglish/internal/screens/success"
	"github.com/abhisek/myenglish/internal/tutor"
	"github.com/abhisek/myenglish/internal/ui/components"
	"github.com/abhisek/myenglish/internal/ui/layout"
	"github.com/abhisek/myenglish/internal/ui/theme"
)

const pollInterval = 500 * time.Millisecond

// Notices shown under the activity.
const (
	noticeBusy         = "Espera un momento…"
	noticeNotDone      = "Completa la actividad antes de continuar."
	noticeMiniGame     = "Resuelve el mini-juego primero."
	noticeNoAudio      = "El audio aún no está disponible."
	noticeLessonEnded  = "La lección ha terminado."
	noticeLookupPrompt = "Escribe la palabra que quieres buscar."
)

// LessonScreen plays a lesson.
type LessonScreen struct {
	ctrl     *lesson.Controller
	lessonID string

	state   lesson.State
	loaded  bool
	pending bool // a controller call is in flight

	input components.TextInput
	bank  components.WordBank
	spin  spinner.Model

	lookupMode  bool
	confirmExit bool
	notice      string
	errMsg      string

	// Presentation delays are scheduled once per session and skill entry.
	skill           lesson.Skill
	resumeScheduled bool
	speakScheduled  bool
	sessionID       string

	done bool // replaced by the success screen
}

var _ screen.Screen = (*LessonScreen)(nil)
var _ screen.KeyHintProvider = (*LessonScreen)(nil)
var _ screen.EscapeHandler = (*LessonScreen)(nil)

// New creates a screen that starts lessonID on Init.
func New(ctrl *lesson.Controller, lessonID string) *LessonScreen {
	return &LessonScreen{
		ctrl:     ctrl,
		lessonID: lessonID,
		input:    components.NewTextInput("Type your answer...", 500),
		spin: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

func (s *LessonScreen) Init() tea.Cmd {
	id := s.lessonID
	return tea.Batch(
		s.call(func(ctx context.Context) (lesson.State, error) {
			return s.ctrl.StartLesson(ctx, id)
		}),
		s.input.Init(),
		s.spin.Tick,
		pollCmd(),
	)
}

func (s *LessonScreen) Title() string {
	if s.state.Session != nil {
		return s.state.Session.Lesson.Title
	}
	return "Lesson"
}

// HandlesEscape keeps Esc inside the screen so leaving asks first.
func (s *LessonScreen) HandlesEscape() bool {
	return true
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		s.pending = false
		return s, s.apply(msg.State, msg.Err)

	case noticeMsg:
		s.notice = msg.Text
		return s, nil

	case pollTickMsg:
		if s.errMsg != "" {
			return s, nil
		}
		if s.loaded {
			if cmd := s.apply(s.ctrl.State(), nil); cmd != nil {
				return s, tea.Batch(cmd, pollCmd())
			}
		}
		return s, pollCmd()

	case resumeMsg:
		if msg.SessionID != s.sessionID {
			return s, nil
		}
		return s, s.call(s.ctrl.ResumeAfterMiniGame)

	case beginSpeakingMsg:
		if msg.SessionID != s.sessionID {
			return s, nil
		}
		return s, s.call(func(context.Context) (lesson.State, error) {
			return s.ctrl.BeginSpeaking()
		})

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// apply stores a snapshot and reacts to what changed. It returns the
// commands the change calls for.
func (s *LessonScreen) apply(st lesson.State, err error) tea.Cmd {
	s.loaded = true
	if err != nil {
		s.handleErr(err)
	}

	if st.Session == nil {
		s.state = st
		if st.Completion != nil && !s.done {
			s.done = true
			c := *st.Completion
			return router.Swap(success.New(s.ctrl, c))
		}
		if s.errMsg == "" && s.sessionID != "" && !s.done {
			s.errMsg = noticeLessonEnded
		}
		return nil
	}

	sess := st.Session
	if sess.ID != s.sessionID || sess.Skill != s.skill {
		s.sessionID = sess.ID
		s.skill = sess.Skill
		s.resumeScheduled = false
		s.speakScheduled = false
		s.lookupMode = false
		s.input.Reset()
	}
	if s.state.Session == nil || s.state.Session.StepIndex != sess.StepIndex || s.state.Session.Skill != sess.Skill {
		s.notice = ""
	}
	s.state = st
	s.input.SetDisabled(sess.Processing || s.pending)

	var cmds []tea.Cmd
	if g := sess.MiniGame; sess.Skill == lesson.SkillMiniGame && g != nil {
		s.bank = s.bank.Sync(g.Words, g.Chosen)
		if g.Solved && !s.resumeScheduled {
			s.resumeScheduled = true
			cmds = append(cmds, delay(lesson.MiniGameResumeDelay, resumeMsg{SessionID: sess.ID}))
		}
	}
	if t := sess.Test; sess.Skill == lesson.SkillTest && t != nil &&
		t.Stage == lesson.StageDictation && sess.Accepted && !s.speakScheduled {
		s.speakScheduled = true
		cmds = append(cmds, delay(lesson.DictationAdvanceDelay, beginSpeakingMsg{SessionID: sess.ID}))
	}
	return tea.Batch(cmds...)
}

// handleErr turns controller errors into notices. Unexpected errors end
// the screen.
func (s *LessonScreen) handleErr(err error) {
	switch {
	case errors.Is(err, lesson.ErrBusy):
		s.notice = noticeBusy
	case errors.Is(err, lesson.ErrNotAdvanceable):
		s.notice = noticeNotDone
	case errors.Is(err, lesson.ErrMiniGamePending):
		s.notice = noticeMiniGame
	case errors.Is(err, lesson.ErrAudioUnavailable):
		s.notice = noticeNoAudio
	case errors.Is(err, lesson.ErrWrongPhase), errors.Is(err, lesson.ErrInvalidToken):
		// Stale input from a previous activity.
	case errors.Is(err, lesson.ErrNoSession):
		if s.errMsg == "" {
			s.errMsg = noticeLessonEnded
		}
	default:
		s.errMsg = err.Error()
	}
}

func (s *LessonScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, s.leave()
	}

	if s.confirmExit {
		switch key {
		case "y", "Y":
			s.confirmExit = false
			return s, s.leave()
		case "n", "N", "esc":
			s.confirmExit = false
		}
		return s, nil
	}

	sess := s.state.Session
	if sess == nil {
		if key == "esc" {
			return s, s.leave()
		}
		return s, nil
	}

	switch key {
	case "esc":
		switch {
		case sess.Lookup != nil:
			return s, s.do(func(context.Context) (lesson.State, error) {
				return s.ctrl.DismissLookup(), nil
			})
		case s.lookupMode:
			s.lookupMode = false
			s.notice = ""
			s.input.Reset()
		default:
			s.confirmExit = true
		}
		return s, nil
	case "ctrl+x":
		s.ctrl.StopAudio()
		return s, nil
	case "ctrl+p":
		return s, s.play(sess)
	}

	if s.pending || sess.Processing {
		if key != "enter" && usesInput(sess) {
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return s, cmd
		}
		s.notice = noticeBusy
		return s, nil
	}

	switch key {
	case "tab":
		return s, s.call(func(ctx context.Context) (lesson.State, error) {
			return s.ctrl.Advance(ctx, false)
		})
	case "ctrl+n":
		return s, s.call(func(ctx context.Context) (lesson.State, error) {
			return s.ctrl.Advance(ctx, true)
		})
	case "ctrl+l":
		if sess.Skill == lesson.SkillReading || sess.Skill == lesson.SkillListening {
			s.lookupMode = !s.lookupMode
			s.notice = ""
			if s.lookupMode {
				s.notice = noticeLookupPrompt
			}
			s.input.Reset()
		}
		return s, nil
	}

	if sess.Skill == lesson.SkillMiniGame {
		return s, s.handleMiniGameKey(key, msg)
	}

	if key == "enter" {
		return s, s.submit(sess)
	}

	if usesInput(sess) || s.lookupMode {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LessonScreen) handleMiniGameKey(key string, msg tea.KeyPressMsg) tea.Cmd {
	g := s.state.Session.MiniGame
	if g == nil || g.Solved {
		return nil
	}
	switch key {
	case "enter", "space", " ":
		i := s.bank.Current()
		if i < 0 {
			return nil
		}
		return s.do(func(context.Context) (lesson.State, error) {
			return s.ctrl.PickToken(i)
		})
	case "backspace":
		if len(g.Chosen) == 0 {
			return nil
		}
		last := g.Chosen[len(g.Chosen)-1]
		return s.do(func(context.Context) (lesson.State, error) {
			return s.ctrl.RemoveToken(last)
		})
	case "c":
		return s.do(func(context.Context) (lesson.State, error) {
			return s.ctrl.CheckMiniGame()
		})
	}
	s.bank = s.bank.Update(msg)
	return nil
}

// submit sends the input to the handler of the current activity.
func (s *LessonScreen) submit(sess *lesson.Session) tea.Cmd {
	text := s.input.Value()

	if s.lookupMode {
		if s.input.Blank() {
			return nil
		}
		s.input.Reset()
		s.lookupMode = false
		s.notice = ""
		return s.call(func(ctx context.Context) (lesson.State, error) {
			return s.ctrl.LookupWord(ctx, text)
		})
	}

	switch sess.Skill {
	case lesson.SkillReading:
		return s.call(func(ctx context.Context) (lesson.State, error) {
			return s.ctrl.Advance(ctx, false)
		})
	case lesson.SkillTest:
		if sess.Test != nil && sess.Test.Stage == lesson.StageSpeaking {
			return s.do(func(context.Context) (lesson.State, error) {
				return s.ctrl.SubmitSpeaking(nil)
			})
		}
		if sess.Test == nil || sess.Test.Stage != lesson.StageDictation || sess.Accepted {
			return nil
		}
	case lesson.SkillReinforcement:
		if sess.Reinforcement != nil && sess.Reinforcement.Resolved {
			return nil
		}
	}

	if s.input.Blank() {
		return nil
	}
	s.input.Reset()

	switch sess.Skill {
	case lesson.SkillWriting, lesson.SkillListening:
		return s.call(func(ctx context.Context) (lesson.State, error) {
			return s.ctrl.SubmitText(ctx, text)
		})
	case lesson.SkillRoleplay:
		return s.call(func(ctx context.Context) (lesson.State, error) {
			return s.ctrl.SubmitTurn(ctx, text)
		})
	case lesson.SkillTest:
		return s.do(func(context.Context) (lesson.State, error) {
			return s.ctrl.SubmitDictation(text)
		})
	case lesson.SkillReinforcement:
		return s.do(func(context.Context) (lesson.State, error) {
			return s.ctrl.SubmitReinforcement(text)
		})
	}
	return nil
}

// play starts the audio the current activity offers.
func (s *LessonScreen) play(sess *lesson.Session) tea.Cmd {
	var fn func() error
	switch sess.Skill {
	case lesson.SkillReading, lesson.SkillListening:
		fn = s.ctrl.PlayPassage
	case lesson.SkillTest:
		fn = s.ctrl.PlayDictation
	case lesson.SkillRoleplay:
		id := lastTutorMessage(sess)
		if id == "" {
			return nil
		}
		fn = func() error { return s.ctrl.ReplayMessage(id) }
	default:
		return nil
	}
	return func() tea.Msg {
		if err := fn(); err != nil {
			return noticeMsg{Text: noticeNoAudio}
		}
		return noticeMsg{}
	}
}

// leave abandons the lesson and returns to the previous screen.
func (s *LessonScreen) leave() tea.Cmd {
	s.ctrl.Exit()
	return router.Back()
}

// call runs a provider-backed controller method off the UI goroutine.
func (s *LessonScreen) call(fn func(context.Context) (lesson.State, error)) tea.Cmd {
	s.pending = true
	s.notice = ""
	s.input.SetDisabled(true)
	return func() tea.Msg {
		st, err := fn(context.Background())
		return stateMsg{State: st, Err: err}
	}
}

// do runs a local controller method; it returns quickly, so the input
// stays enabled.
func (s *LessonScreen) do(fn func(context.Context) (lesson.State, error)) tea.Cmd {
	return func() tea.Msg {
		st, err := fn(context.Background())
		return stateMsg{State: st, Err: err}
	}
}

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.confirmExit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave lesson"},
			{Key: "N", Description: "Keep going"},
		}
	}
	sess := s.state.Session
	if sess == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}

	var hints []layout.KeyHint
	switch sess.Skill {
	case lesson.SkillReading:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Continue"},
			layout.KeyHint{Key: "Ctrl+L", Description: "Look up"},
			layout.KeyHint{Key: "Ctrl+P", Description: "Listen"},
		)
	case lesson.SkillListening:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Submit"},
			layout.KeyHint{Key: "Ctrl+L", Description: "Look up"},
			layout.KeyHint{Key: "Ctrl+P", Description: "Replay"},
		)
	case lesson.SkillRoleplay:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Send"},
			layout.KeyHint{Key: "Ctrl+P", Description: "Replay tutor"},
		)
	case lesson.SkillMiniGame:
		hints = append(hints,
			layout.KeyHint{Key: "←→", Description: "Move"},
			layout.KeyHint{Key: "Enter", Description: "Place"},
			layout.KeyHint{Key: "⌫", Description: "Undo"},
			layout.KeyHint{Key: "C", Description: "Check"},
		)
	case lesson.SkillTest:
		if sess.Test != nil && sess.Test.Stage == lesson.StageSpeaking {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Record"})
		} else {
			hints = append(hints,
				layout.KeyHint{Key: "Enter", Description: "Check"},
				layout.KeyHint{Key: "Ctrl+P", Description: "Listen"},
			)
		}
	default:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
	}
	if s.state.CanAdvance {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Next"})
	}
	if sess.Skill != lesson.SkillMiniGame {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+N", Description: "Skip"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Leave"})
}

// usesInput reports whether the activity takes typed text.
func usesInput(sess *lesson.Session) bool {
	switch sess.Skill {
	case lesson.SkillWriting, lesson.SkillListening, lesson.SkillRoleplay, lesson.SkillReinforcement:
		return true
	case lesson.SkillTest:
		return sess.Test != nil && sess.Test.Stage == lesson.StageDictation
	}
	return false
}

func lastTutorMessage(sess *lesson.Session) string {
	for i := len(sess.Transcript) - 1; i >= 0; i-- {
		if sess.Transcript[i].Role == tutor.RoleModel {
			return sess.Transcript[i].ID
		}
	}
	return ""
}

func delay(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}
