package lesson

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/store"
	"github.com/abhisek/myenglish/internal/tutor"
)

// fakeTutor returns scripted content and records what it was asked.
type fakeTutor struct {
	mu sync.Mutex

	evals   []tutor.Evaluation
	replies []tutor.TutorReply
	review  tutor.FinalReview
	reinf   tutor.Reinforcement
	game    tutor.MiniGame
	speech  bool

	// synth, when set, replaces the default speech result. It runs
	// without f.mu held so it may block.
	synth func(text string) []byte

	evalContexts []string
	histories    [][]tutor.Turn
	spoken       []string
	lessonCalls  int
	gameCalls    int
	lookups      []string
}

func newFakeTutor() *fakeTutor {
	return &fakeTutor{
		review: tutor.FinalReview{
			DictationPhrase: "I like cats.",
			SpeakingPrompt:  "Describe your best friend.",
		},
		reinf: tutor.Reinforcement{
			Question:      "Traduce: El gato negro",
			CorrectAnswer: "The black cat",
			Type:          tutor.ExerciseTranslation,
		},
		game: tutor.MiniGame{
			Scrambled:       []string{"is", "name", "My", "Ben"},
			CorrectSentence: "My name is Ben",
		},
		speech: true,
	}
}

func (f *fakeTutor) GenerateLessonContext(_ context.Context, _ curriculum.Level, topic string) tutor.LessonContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lessonCalls++
	return tutor.LessonContext{Intro: "Leamos.", Content: "- Hello! I am Ana from " + topic + "."}
}

func (f *fakeTutor) GenerateListeningChallenge(context.Context, curriculum.Level, string) tutor.ListeningChallenge {
	return tutor.ListeningChallenge{Script: "- Ben bought a red shirt at the bank.", Question: "What color was the shirt?"}
}

func (f *fakeTutor) EvaluateTextSubmission(_ context.Context, _ curriculum.Level, _, _, promptContext string, _ []string) tutor.Evaluation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalContexts = append(f.evalContexts, promptContext)
	if len(f.evals) == 0 {
		return tutor.Evaluation{Correct: true, Feedback: "Bien.", Score: 90, ErrorKeywords: []string{}}
	}
	ev := f.evals[0]
	f.evals = f.evals[1:]
	return ev
}

func (f *fakeTutor) GenerateTutorReply(_ context.Context, _ curriculum.Level, _ string, history []tutor.Turn, _ string) tutor.TutorReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories = append(f.histories, history)
	if len(f.replies) == 0 {
		return tutor.TutorReply{TutorText: "Tell me more."}
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r
}

func (f *fakeTutor) GenerateFinalReview(context.Context, curriculum.Level, string) tutor.FinalReview {
	return f.review
}

func (f *fakeTutor) GenerateReinforcement(context.Context, []string) tutor.Reinforcement {
	return f.reinf
}

func (f *fakeTutor) GenerateProfileImprovement(_ context.Context, bio string, _ curriculum.Level) tutor.ProfileImprovement {
	return tutor.ProfileImprovement{ImprovedText: bio + " Improved.", Feedback: "Más fluido."}
}

func (f *fakeTutor) GenerateMiniGame(context.Context, curriculum.Level) tutor.MiniGame {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gameCalls++
	return f.game
}

func (f *fakeTutor) DefineWord(_ context.Context, word, passage string) tutor.WordDefinition {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, passage)
	return tutor.WordDefinition{Definition: "definición de " + word, Example: "Example."}
}

func (f *fakeTutor) SynthesizeSpeech(_ context.Context, text string) []byte {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	synth := f.synth
	f.mu.Unlock()
	if synth != nil {
		return synth(text)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.speech {
		return nil
	}
	return []byte(text)
}

// fixedRand always returns v.
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

// seqRand returns its values in order, then 1.
type seqRand struct {
	vals []float64
}

func (r *seqRand) Float64() float64 {
	if len(r.vals) == 0 {
		return 1
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v
}

// fakePlayer records what was played.
type fakePlayer struct {
	mu     sync.Mutex
	played []string
	stops  int
}

func (p *fakePlayer) Play(label string, _ []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, label)
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePlayer) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

func (p *fakePlayer) labels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

// memEvents collects lesson events in memory.
type memEvents struct {
	mu     sync.Mutex
	events []store.LessonEventData
}

func (m *memEvents) AppendLessonEvent(_ context.Context, data store.LessonEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
	return nil
}

func (m *memEvents) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Action
	}
	return out
}

func newController(t *testing.T, ft *fakeTutor, r Rand) (*Controller, *fakePlayer) {
	t.Helper()
	player := &fakePlayer{}
	c := New(ft, learner.New(), Options{Rand: r, Player: player})
	t.Cleanup(func() { c.Close() })
	return c, player
}

func TestUnitOneToSuccess(t *testing.T) {
	ft := newFakeTutor()
	events := &memEvents{}
	c := New(ft, learner.New(), Options{Rand: fixedRand(1), Player: &fakePlayer{}, Events: events})
	defer c.Close()
	ctx := context.Background()

	st, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	assert.Equal(t, SkillReading, st.Session.Skill)
	assert.Equal(t, 0, st.Session.StepIndex)
	assert.Equal(t, "Leamos.", st.Session.Intro)
	assert.True(t, st.CanAdvance)

	st, err = c.Advance(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SkillWriting, st.Session.Skill)
	assert.Equal(t, "Topic: Introductions", st.Session.Content)
	assert.False(t, st.CanAdvance)

	st, err = c.SubmitText(ctx, "My name is Ana. I am from Peru.")
	require.NoError(t, err)
	require.NotNil(t, st.Session.Feedback)
	assert.Equal(t, FeedbackSuccess, st.Session.Feedback.Kind)
	assert.Equal(t, "¡Excelente! Bien.", st.Session.Feedback.Text)
	assert.True(t, st.CanAdvance)

	st, err = c.Advance(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SkillListening, st.Session.Skill)
	assert.Nil(t, st.Session.Feedback)

	st, err = c.SubmitText(ctx, "It was red.")
	require.NoError(t, err)
	assert.True(t, st.CanAdvance)

	st, err = c.Advance(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SkillRoleplay, st.Session.Skill)
	require.Len(t, st.Session.Transcript, 1)
	assert.Equal(t, "Hi! I'm Leo. Let's talk about introductions. What can you tell me?", st.Session.Transcript[0].Text)

	for _, line := range []string{"I am Ana and I live in Lima.", "I like meeting new people."} {
		st, err = c.SubmitTurn(ctx, line)
		require.NoError(t, err)
	}
	assert.Len(t, st.Session.Transcript, 5)

	st, err = c.Advance(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SkillTest, st.Session.Skill)
	assert.Equal(t, 4, st.Session.StepIndex)
	assert.Equal(t, StageDictation, st.Session.Test.Stage)
	assert.True(t, st.AudioReady[AudioDictation])

	st, err = c.SubmitDictation("i like cats")
	require.NoError(t, err)
	assert.Equal(t, FeedbackSuccess, st.Session.Feedback.Kind)

	st, err = c.BeginSpeaking()
	require.NoError(t, err)
	assert.Equal(t, StageSpeaking, st.Session.Test.Stage)
	assert.False(t, st.CanAdvance)

	st, err = c.SubmitSpeaking([]byte("recording"))
	require.NoError(t, err)
	assert.Equal(t, StageDone, st.Session.Test.Stage)
	assert.True(t, st.CanAdvance)

	st, err = c.Advance(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, st.Session)
	require.NotNil(t, st.Completion)
	assert.Equal(t, "unit-1", st.Completion.LessonID)
	assert.Equal(t, "unit-2", st.Completion.Unlocked)
	assert.Equal(t, 100, st.Profile.XP)
	assert.Equal(t, []string{"unit-1", "unit-2"}, st.Profile.Unlocked)

	_, err = c.Advance(ctx, false)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 100, c.State().Profile.XP, "completion is rewarded once")

	acts := events.actions()
	assert.Equal(t, store.ActionStarted, acts[0])
	assert.Equal(t, store.ActionCompleted, acts[len(acts)-1])
}

func TestStartLesson_Locked(t *testing.T) {
	c, _ := newController(t, newFakeTutor(), fixedRand(1))

	st, err := c.StartLesson(context.Background(), "unit-2")
	assert.ErrorIs(t, err, ErrLessonLocked)
	assert.Nil(t, st.Session)

	_, err = c.StartLesson(context.Background(), "no-such-unit")
	assert.Error(t, err)
}

func TestIncorrectWritingKeepsStep(t *testing.T) {
	ft := newFakeTutor()
	ft.evals = []tutor.Evaluation{
		{Correct: false, Feedback: "Falta el verbo.", Score: 40, ErrorKeywords: []string{"missing verb", "articles"}},
		{Correct: false, Feedback: "Casi.", Score: 60, ErrorKeywords: []string{}},
	}
	c, _ := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)

	st, err := c.SubmitText(ctx, "I Ana")
	require.NoError(t, err)
	assert.Equal(t, FeedbackError, st.Session.Feedback.Kind)
	assert.Equal(t, "Atención: Falta el verbo.", st.Session.Feedback.Text)
	assert.Equal(t, []string{"missing verb", "articles"}, st.Profile.ErrorTokens)
	assert.Equal(t, 1, st.Session.StepIndex)
	assert.Equal(t, SkillWriting, st.Session.Skill)
	assert.False(t, st.CanAdvance)

	st, err = c.SubmitText(ctx, "I am Ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"missing verb", "articles", "I am Ana"}, st.Profile.ErrorTokens, "raw text is recorded when no keywords")

	_, err = c.Advance(ctx, false)
	assert.ErrorIs(t, err, ErrNotAdvanceable)
	assert.Equal(t, 1, c.State().Session.StepIndex)
}

func TestPassScoreThreshold(t *testing.T) {
	tests := []struct {
		score    int
		accepted bool
	}{
		{75, false},
		{76, true},
	}
	for _, tt := range tests {
		ft := newFakeTutor()
		ft.evals = []tutor.Evaluation{{Correct: false, Feedback: "ok", Score: tt.score}}
		c, _ := newController(t, ft, fixedRand(1))
		ctx := context.Background()

		_, err := c.StartLesson(ctx, "unit-1")
		require.NoError(t, err)
		_, err = c.Advance(ctx, false)
		require.NoError(t, err)

		st, err := c.SubmitText(ctx, "Some answer here.")
		require.NoError(t, err)
		assert.Equal(t, tt.accepted, st.Session.Accepted, "score %d", tt.score)
	}
}

func TestListeningUsesQuestionAsContext(t *testing.T) {
	ft := newFakeTutor()
	c, _ := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)
	_, err = c.SubmitText(ctx, "My name is Ana.")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)
	_, err = c.SubmitText(ctx, "Red.")
	require.NoError(t, err)

	assert.Equal(t, []string{"Topic: Introductions", "What color was the shirt?"}, ft.evalContexts)
}

func TestBlankSubmissionsIgnored(t *testing.T) {
	ft := newFakeTutor()
	c, _ := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)

	st, err := c.SubmitText(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, st.Session.Feedback)
	assert.Empty(t, ft.evalContexts)
}

func TestSubmitInWrongPhase(t *testing.T) {
	c, _ := newController(t, newFakeTutor(), fixedRand(1))
	ctx := context.Background()

	_, err := c.SubmitText(ctx, "hello")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)

	_, err = c.SubmitText(ctx, "hello")
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = c.SubmitTurn(ctx, "hello")
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = c.SubmitDictation("hello")
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = c.SubmitReinforcement("hello")
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = c.CheckMiniGame()
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = c.ResumeAfterMiniGame(ctx)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestSkipReentersCurrentStep(t *testing.T) {
	ft := newFakeTutor()
	c, _ := newController(t, ft, fixedRand(0))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)

	st, err := c.Advance(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, SkillReading, st.Session.Skill)
	assert.Equal(t, 0, st.Session.StepIndex)
	assert.Equal(t, 2, ft.lessonCalls)
	assert.Equal(t, 0, ft.gameCalls, "skip never draws a mini-game")
}

func TestExitDiscardsSession(t *testing.T) {
	c, player := newController(t, newFakeTutor(), fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)

	st := c.Exit()
	assert.False(t, st.Active())
	assert.Nil(t, st.Completion)
	assert.Equal(t, 0, st.Profile.XP)
	assert.GreaterOrEqual(t, player.stopCount(), 1)
}

func TestStateIsSnapshot(t *testing.T) {
	c, _ := newController(t, newFakeTutor(), fixedRand(1))
	ctx := context.Background()

	st, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	st.Session.Intro = "changed"
	st.Session.Lesson.Topics[0] = "changed"
	st.Profile.Unlocked[0] = "changed"

	fresh := c.State()
	assert.Equal(t, "Leamos.", fresh.Session.Intro)
	assert.Equal(t, "Introductions", fresh.Session.Lesson.Topics[0])
	assert.Equal(t, "unit-1", fresh.Profile.Unlocked[0])
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, canTransition(SkillReading, SkillWriting))
	assert.True(t, canTransition(SkillRoleplay, SkillMiniGame))
	assert.True(t, canTransition(SkillMiniGame, SkillTest))
	assert.True(t, canTransition(SkillTest, SkillReinforcement))
	assert.True(t, canTransition(SkillTest, SkillTest))
	assert.False(t, canTransition(SkillReading, SkillTest))
	assert.False(t, canTransition(SkillTest, SkillMiniGame))
	assert.False(t, canTransition(SkillReinforcement, SkillTest))
	assert.False(t, canTransition(SkillMiniGame, SkillMiniGame))
	assert.False(t, canTransition(SkillSuccess, SkillReading))

	assert.Equal(t, "ROLEPLAY", SkillRoleplay.String())
	assert.Equal(t, "UNKNOWN", Skill(99).String())
	assert.Equal(t, "speaking", StageSpeaking.String())
}

func TestPassageAudio(t *testing.T) {
	ft := newFakeTutor()
	c, player := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	c.Wait()

	st := c.State()
	assert.True(t, st.AudioReady[AudioPassage])
	assert.Empty(t, player.labels(), "reading passage is not auto-played")

	require.NoError(t, c.PlayPassage())
	assert.Equal(t, []string{AudioPassage}, player.labels())

	assert.ErrorIs(t, c.PlayDictation(), ErrAudioUnavailable)
}

func TestSpeechFailureLeavesStateAlone(t *testing.T) {
	ft := newFakeTutor()
	ft.speech = false
	c, player := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	c.Wait()

	st := c.State()
	assert.Empty(t, st.AudioReady)
	assert.ErrorIs(t, c.PlayPassage(), ErrAudioUnavailable)
	assert.Empty(t, player.labels())
}

func TestDelaysAreDefined(t *testing.T) {
	assert.Equal(t, 2*time.Second, MiniGameResumeDelay)
	assert.Equal(t, 1500*time.Millisecond, DictationAdvanceDelay)
	assert.Equal(t, Config{PassScore: 75, MiniGameChance: 0.10}, DefaultConfig())
}

// gatedSpeech blocks synthesis of texts starting with prefix until the
// returned release func is called. Texts in silent fail.
func gatedSpeech(ft *fakeTutor, prefix string, silent ...string) (release func()) {
	gate := make(chan struct{})
	ft.synth = func(text string) []byte {
		for _, s := range silent {
			if strings.HasPrefix(text, s) {
				return nil
			}
		}
		if strings.HasPrefix(text, prefix) {
			<-gate
		}
		return []byte(text)
	}
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func TestLateReadingAudioNotUsedInListening(t *testing.T) {
	ft := newFakeTutor()
	release := gatedSpeech(ft, "- Hello!", "- Ben")
	c, player := newController(t, ft, fixedRand(1))
	t.Cleanup(release)
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)
	_, err = c.SubmitText(ctx, "My name is Ana. I am from Spain.")
	require.NoError(t, err)
	st, err := c.Advance(ctx, false)
	require.NoError(t, err)
	require.Equal(t, SkillListening, st.Session.Skill)

	release()
	c.Wait()

	st = c.State()
	assert.False(t, st.AudioReady[AudioPassage], "reading audio must not become the listening passage")
	assert.ErrorIs(t, c.PlayPassage(), ErrAudioUnavailable)
	assert.Empty(t, player.labels())
}

func TestLateAutoplayAfterExitIsSilent(t *testing.T) {
	ft := newFakeTutor()
	release := gatedSpeech(ft, "- Ben")
	c, player := newController(t, ft, fixedRand(1))
	t.Cleanup(release)
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)
	_, err = c.SubmitText(ctx, "My name is Ana. I am from Spain.")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)

	c.Exit()
	release()
	c.Wait()

	assert.NotContains(t, player.labels(), AudioPassage)
}

func TestLookupInFlightDroppedOnNextActivity(t *testing.T) {
	ft := newFakeTutor()
	c, _ := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)

	// A lookup that lands while the next activity loads.
	c.mu.Lock()
	c.session.Lookup = &Lookup{Word: "Ana", Loading: true}
	c.mu.Unlock()

	st, err := c.Advance(ctx, false)
	require.NoError(t, err)
	require.Equal(t, SkillWriting, st.Session.Skill)
	assert.Nil(t, st.Session.Lookup)
}
