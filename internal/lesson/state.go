package lesson

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/tutor"
)

// FeedbackKind classifies the banner shown after a submission.
type FeedbackKind int

const (
	FeedbackNeutral FeedbackKind = iota
	FeedbackSuccess
	FeedbackError
)

// Feedback is the result banner of the latest submission.
type Feedback struct {
	Text string
	Kind FeedbackKind
}

// Message is one line of the roleplay transcript.
type Message struct {
	ID         string
	Role       tutor.Role
	Text       string
	Timestamp  time.Time
	Correction string // tutor's corrected version of the preceding user line
	Feedback   string // grammar notes on the preceding user line
}

// Listening is the LISTENING payload.
type Listening struct {
	Script   string
	Question string
}

// Test is the TEST payload.
type Test struct {
	DictationPhrase string
	SpeakingPrompt  string
	Stage           TestStage

	// Audio is the synthesized dictation phrase, nil if synthesis failed.
	Audio []byte
}

// MiniGame is the MINIGAME payload. Words are identified by their index
// in Words, so repeated words are distinct tokens.
type MiniGame struct {
	Words           []string
	Chosen          []int
	CorrectSentence string
	Solved          bool

	// ResumeStep is the step the mini-game pre-empted.
	ResumeStep int
}

// Available returns the indices of words not yet chosen, in bank order.
func (m *MiniGame) Available() []int {
	out := make([]int, 0, len(m.Words)-len(m.Chosen))
	for i := range m.Words {
		if !slices.Contains(m.Chosen, i) {
			out = append(out, i)
		}
	}
	return out
}

// Sentence joins the chosen words with single spaces.
func (m *MiniGame) Sentence() string {
	words := make([]string, len(m.Chosen))
	for i, idx := range m.Chosen {
		words[i] = m.Words[idx]
	}
	return strings.Join(words, " ")
}

// Reinforcement is the REINFORCEMENT payload.
type Reinforcement struct {
	Question      string
	CorrectAnswer string
	Type          tutor.ExerciseType
	Resolved      bool
}

// Lookup is a transient word definition shown over READING or LISTENING.
type Lookup struct {
	Word       string
	Loading    bool
	Definition tutor.WordDefinition
}

// Audio cache keys. Roleplay messages are keyed by message ID.
const (
	AudioPassage   = "passage"
	AudioDictation = "dictation"
)

// Session is the state of one lesson run.
type Session struct {
	ID        string
	Lesson    curriculum.Lesson
	StartedAt time.Time

	// StepIndex is the numbered step (0..4). It does not change while a
	// mini-game or reinforcement is shown.
	StepIndex int
	Skill     Skill

	Intro   string
	Content string

	Feedback   *Feedback
	Transcript []Message

	Listening     *Listening
	Test          *Test
	MiniGame      *MiniGame
	Reinforcement *Reinforcement
	Lookup        *Lookup

	// Processing is set while a provider-backed handler is in flight.
	Processing bool

	// Accepted is set once the current phase's text submission passed.
	Accepted bool

	// audio holds synthesized speech by cache key. Buffers are never
	// mutated once stored.
	audio map[string][]byte

	// epoch counts activity entries. Detached speech started in one
	// activity is dropped once the session has moved on.
	epoch int
}

// Topic returns the topic practised in this session.
func (s *Session) Topic() string {
	return s.Lesson.Topic()
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Lesson.Topics = slices.Clone(s.Lesson.Topics)
	c.Transcript = slices.Clone(s.Transcript)
	c.audio = nil
	if s.Feedback != nil {
		f := *s.Feedback
		c.Feedback = &f
	}
	if s.Listening != nil {
		l := *s.Listening
		c.Listening = &l
	}
	if s.Test != nil {
		t := *s.Test
		c.Test = &t
	}
	if s.MiniGame != nil {
		m := *s.MiniGame
		m.Words = slices.Clone(s.MiniGame.Words)
		m.Chosen = slices.Clone(s.MiniGame.Chosen)
		c.MiniGame = &m
	}
	if s.Reinforcement != nil {
		r := *s.Reinforcement
		c.Reinforcement = &r
	}
	if s.Lookup != nil {
		l := *s.Lookup
		c.Lookup = &l
	}
	return &c
}

// Completion describes a finished lesson.
type Completion struct {
	LessonID    string
	LessonTitle string
	XPAwarded   int
	Unlocked    string // newly unlocked lesson ID, "" if none
}

// State is a snapshot of everything the presentation layer renders. It
// shares nothing mutable with the controller.
type State struct {
	Profile learner.Profile

	// Session is nil when no lesson is running.
	Session *Session

	// Completion is set after a lesson reaches SUCCESS, until the next
	// lesson starts or the learner exits.
	Completion *Completion

	// CanAdvance reports whether Advance would proceed.
	CanAdvance bool

	// AudioReady lists the cache keys with synthesized speech.
	AudioReady map[string]bool
}

// Active reports whether a lesson is running.
func (s State) Active() bool {
	return s.Session != nil
}

func snapshotAudio(m map[string][]byte) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range maps.Keys(m) {
		out[k] = true
	}
	return out
}
