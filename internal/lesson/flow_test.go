package lesson

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/tutor"
)

// toRoleplay runs a fresh unit-1 session up to ROLEPLAY.
func toRoleplay(t *testing.T, c *Controller) {
	t.Helper()
	ctx := context.Background()
	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)
	_, err = c.SubmitText(ctx, "My name is Ana.")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)
	_, err = c.SubmitText(ctx, "It was red.")
	require.NoError(t, err)
	st, err := c.Advance(ctx, false)
	require.NoError(t, err)
	require.Equal(t, SkillRoleplay, st.Session.Skill)
}

// toTest runs a fresh unit-1 session up to TEST.
func toTest(t *testing.T, c *Controller) {
	t.Helper()
	toRoleplay(t, c)
	ctx := context.Background()
	for range 2 {
		_, err := c.SubmitTurn(ctx, "I like to talk.")
		require.NoError(t, err)
	}
	st, err := c.Advance(ctx, false)
	require.NoError(t, err)
	require.Equal(t, SkillTest, st.Session.Skill)
}

func TestMiniGamePreemptsAndResumes(t *testing.T) {
	ft := newFakeTutor()
	c, _ := newController(t, ft, &seqRand{vals: []float64{0.05}})
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)

	st, err := c.Advance(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SkillMiniGame, st.Session.Skill)
	assert.Equal(t, 0, st.Session.StepIndex, "mini-game keeps the step index")
	assert.Equal(t, 1, st.Session.MiniGame.ResumeStep)
	assert.Equal(t, "¡Bonus Round! Ordena la frase correctamente.", st.Session.Intro)
	assert.False(t, st.CanAdvance)

	_, err = c.Advance(ctx, false)
	assert.ErrorIs(t, err, ErrMiniGamePending)
	_, err = c.ResumeAfterMiniGame(ctx)
	assert.ErrorIs(t, err, ErrMiniGamePending)

	// Words: is(0) name(1) My(2) Ben(3).
	for _, i := range []int{2, 1, 0, 3} {
		_, err = c.PickToken(i)
		require.NoError(t, err)
	}
	st, err = c.CheckMiniGame()
	require.NoError(t, err)
	assert.True(t, st.Session.MiniGame.Solved)
	assert.Equal(t, "¡Genial! Frase correcta.", st.Session.Feedback.Text)

	st, err = c.ResumeAfterMiniGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, SkillWriting, st.Session.Skill)
	assert.Equal(t, 1, st.Session.StepIndex, "pre-empted step entered exactly once")
	assert.Nil(t, st.Session.MiniGame)

	_, err = c.SubmitText(ctx, "My name is Ana.")
	require.NoError(t, err)
	st, err = c.Advance(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SkillListening, st.Session.Skill)
	assert.Equal(t, 2, st.Session.StepIndex)
}

func TestMiniGameNotDrawnFromTest(t *testing.T) {
	ft := newFakeTutor()
	r := &seqRand{}
	c, _ := newController(t, ft, r)
	toTest(t, c)
	ctx := context.Background()

	r.vals = []float64{0}
	_, err := c.SubmitDictation("I like cats")
	require.NoError(t, err)
	_, err = c.BeginSpeaking()
	require.NoError(t, err)
	_, err = c.SubmitSpeaking(nil)
	require.NoError(t, err)

	st, err := c.Advance(ctx, false)
	require.NoError(t, err)
	assert.NotNil(t, st.Completion)
	assert.Equal(t, 0, ft.gameCalls)
}

func TestMiniGameWrongOrder(t *testing.T) {
	c, _ := newController(t, newFakeTutor(), fixedRand(0))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)

	for _, i := range []int{1, 2, 0, 3} {
		_, err = c.PickToken(i)
		require.NoError(t, err)
	}
	st, err := c.CheckMiniGame()
	require.NoError(t, err)
	assert.False(t, st.Session.MiniGame.Solved)
	assert.Equal(t, FeedbackError, st.Session.Feedback.Kind)
	assert.Equal(t, "name My is Ben", st.Session.MiniGame.Sentence())

	st, err = c.RemoveToken(1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 3}, st.Session.MiniGame.Chosen)
	assert.Equal(t, []int{1}, st.Session.MiniGame.Available())

	_, err = c.PickToken(2)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = c.PickToken(9)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = c.RemoveToken(1)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiniGameIsCaseSensitive(t *testing.T) {
	ft := newFakeTutor()
	ft.game = tutor.MiniGame{Scrambled: []string{"ben", "name", "My", "is"}, CorrectSentence: "My name is Ben"}
	c, _ := newController(t, ft, fixedRand(0))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)

	for _, i := range []int{2, 1, 3, 0} {
		_, err = c.PickToken(i)
		require.NoError(t, err)
	}
	st, err := c.CheckMiniGame()
	require.NoError(t, err)
	assert.False(t, st.Session.MiniGame.Solved)
}

func TestMiniGameDuplicateWords(t *testing.T) {
	ft := newFakeTutor()
	ft.game = tutor.MiniGame{Scrambled: []string{"the", "cat", "saw", "the", "dog"}, CorrectSentence: "the cat saw the dog"}
	c, _ := newController(t, ft, fixedRand(0))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)

	_, err = c.PickToken(3)
	require.NoError(t, err)
	st, err := c.PickToken(0)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0}, st.Session.MiniGame.Chosen, "each 'the' is its own token")
	assert.Equal(t, []int{1, 2, 4}, st.Session.MiniGame.Available())

	for _, i := range []int{1, 2, 4} {
		_, err = c.PickToken(i)
		require.NoError(t, err)
	}
	st, err = c.CheckMiniGame()
	require.NoError(t, err)
	assert.False(t, st.Session.MiniGame.Solved, "\"the the cat saw dog\" is wrong")

	_, err = c.RemoveToken(0)
	require.NoError(t, err)
	_, err = c.RemoveToken(1)
	require.NoError(t, err)
	_, err = c.RemoveToken(2)
	require.NoError(t, err)
	_, err = c.RemoveToken(4)
	require.NoError(t, err)
	for _, i := range []int{1, 2, 0, 4} {
		_, err = c.PickToken(i)
		require.NoError(t, err)
	}
	st, err = c.CheckMiniGame()
	require.NoError(t, err)
	assert.True(t, st.Session.MiniGame.Solved)
}

func TestRoleplayTurns(t *testing.T) {
	ft := newFakeTutor()
	ft.replies = []tutor.TutorReply{
		{TutorText: "Why do you like it?", Feedback: "Usa 'like to'.", Correction: "I like to play football."},
		{TutorText: "Great!", Correction: "Because it is fun."},
	}
	c, player := newController(t, ft, fixedRand(1))
	toRoleplay(t, c)
	ctx := context.Background()

	st := c.State()
	assert.False(t, st.CanAdvance, "one message")
	_, err := c.Advance(ctx, false)
	assert.ErrorIs(t, err, ErrNotAdvanceable)

	st, err = c.SubmitTurn(ctx, "I like play football.")
	require.NoError(t, err)
	require.Len(t, st.Session.Transcript, 3)
	assert.Equal(t, tutor.RoleUser, st.Session.Transcript[1].Role)
	assert.Equal(t, "I like play football.", st.Session.Transcript[1].Text)
	reply := st.Session.Transcript[2]
	assert.Equal(t, tutor.RoleModel, reply.Role)
	assert.Equal(t, "I like to play football.", reply.Correction)
	assert.Equal(t, "Usa 'like to'.", reply.Feedback)
	assert.Equal(t, []string{"Speaking structure"}, st.Profile.ErrorTokens)
	assert.False(t, st.CanAdvance, "three messages")

	// The tutor sees the learner's line as the last history entry.
	require.Len(t, ft.histories, 1)
	h := ft.histories[0]
	assert.Equal(t, tutor.Turn{Role: tutor.RoleUser, Text: "I like play football."}, h[len(h)-1])

	st, err = c.SubmitTurn(ctx, "Because it is fun.")
	require.NoError(t, err)
	assert.Len(t, st.Session.Transcript, 5)
	assert.Equal(t, []string{"Speaking structure"}, st.Profile.ErrorTokens, "matching correction is not an error")
	assert.True(t, st.CanAdvance)

	c.Wait()
	labels := player.labels()
	assert.Contains(t, labels, st.Session.Transcript[0].ID, "opener is spoken")
	assert.Contains(t, labels, st.Session.Transcript[4].ID)
	require.NoError(t, c.ReplayMessage(st.Session.Transcript[2].ID))
	assert.ErrorIs(t, c.ReplayMessage("unknown"), ErrAudioUnavailable)
}

func TestReinforcementLoop(t *testing.T) {
	ft := newFakeTutor()
	c, _ := newController(t, ft, fixedRand(1))
	toTest(t, c)
	ctx := context.Background()

	st, err := c.SubmitDictation("I like dogs")
	require.NoError(t, err)
	assert.Equal(t, FeedbackError, st.Session.Feedback.Kind)
	assert.Equal(t, []string{"Listening", "Spelling"}, st.Profile.ErrorTokens)
	_, err = c.BeginSpeaking()
	assert.ErrorIs(t, err, ErrWrongPhase)

	_, err = c.SubmitDictation("I LIKE CATS!")
	require.NoError(t, err)
	_, err = c.BeginSpeaking()
	require.NoError(t, err)
	_, err = c.SubmitSpeaking([]byte{1})
	require.NoError(t, err)

	st, err = c.Advance(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SkillReinforcement, st.Session.Skill)
	assert.Equal(t, 4, st.Session.StepIndex)
	assert.Equal(t, "Traduce: El gato negro", st.Session.Reinforcement.Question)
	assert.False(t, st.CanAdvance)

	st, err = c.SubmitReinforcement("A dark cat")
	require.NoError(t, err)
	assert.Equal(t, "La respuesta correcta era: The black cat", st.Session.Feedback.Text)
	assert.NotEmpty(t, st.Profile.ErrorTokens)

	st, err = c.SubmitReinforcement("  the black cat is mine ")
	require.NoError(t, err)
	assert.True(t, st.Session.Reinforcement.Resolved)
	assert.Equal(t, "¡Muy bien! Error corregido.", st.Session.Feedback.Text)
	assert.Empty(t, st.Profile.ErrorTokens)

	st, err = c.Advance(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, st.Completion)
	assert.Equal(t, 100, st.Profile.XP)
	assert.True(t, st.Profile.IsUnlocked("unit-2"))
}

func TestDictationNormalization(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"I like cats.", "i like cats", true},
		{"Hello, world!", "hello world", true},
		{"  Wait!  ", "wait", true},
		{"I like cats?", "i like cats", false},
		{"I like cats", "I like the cats", false},
	}
	for _, tt := range tests {
		got := normalizeDictation(tt.a) == normalizeDictation(tt.b)
		assert.Equal(t, tt.same, got, "%q vs %q", tt.a, tt.b)
	}
}

func TestErrorTokensBounded(t *testing.T) {
	ft := newFakeTutor()
	for i := range 12 {
		ft.evals = append(ft.evals, tutor.Evaluation{Feedback: "x", Score: 10, ErrorKeywords: []string{fmt.Sprintf("e%d", i)}})
	}
	c, _ := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)

	var st State
	for range 12 {
		st, err = c.SubmitText(ctx, "bad answer")
		require.NoError(t, err)
	}
	require.Len(t, st.Profile.ErrorTokens, learner.MaxErrorTokens)
	assert.Equal(t, "e2", st.Profile.ErrorTokens[0])
	assert.Equal(t, "e11", st.Profile.ErrorTokens[9])
}

func TestLookupWord(t *testing.T) {
	ft := newFakeTutor()
	c, _ := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)

	st, err := c.LookupWord(ctx, "Hello!")
	require.NoError(t, err)
	require.NotNil(t, st.Session.Lookup)
	assert.Equal(t, "Hello", st.Session.Lookup.Word)
	assert.False(t, st.Session.Lookup.Loading)
	assert.Equal(t, "definición de Hello", st.Session.Lookup.Definition.Definition)
	assert.False(t, st.Session.Processing, "lookup does not use the processing gate")

	st = c.DismissLookup()
	assert.Nil(t, st.Session.Lookup)

	_, err = c.Advance(ctx, false)
	require.NoError(t, err)
	_, err = c.LookupWord(ctx, "topic")
	assert.ErrorIs(t, err, ErrWrongPhase, "not available while writing")

	_, err = c.SubmitText(ctx, "My name is Ana.")
	require.NoError(t, err)
	_, err = c.Advance(ctx, false)
	require.NoError(t, err)
	_, err = c.LookupWord(ctx, "bank")
	require.NoError(t, err)

	require.Len(t, ft.lookups, 2)
	assert.Equal(t, "- Hello! I am Ana from Introductions.", ft.lookups[0])
	assert.Equal(t, "- Ben bought a red shirt at the bank.", ft.lookups[1], "listening uses the script")
}

func TestBio(t *testing.T) {
	c, _ := newController(t, newFakeTutor(), fixedRand(1))
	ctx := context.Background()

	st, fb, err := c.ImproveBio(ctx)
	require.NoError(t, err)
	assert.Empty(t, fb)
	assert.Empty(t, st.Profile.Bio)

	st = c.SetBio("  I am nurse.  ")
	assert.Equal(t, "I am nurse.", st.Profile.Bio)
	assert.False(t, st.Profile.BioUpdatedAt.IsZero())

	st, fb, err = c.ImproveBio(ctx)
	require.NoError(t, err)
	assert.Equal(t, "I am nurse. Improved.", st.Profile.Bio)
	assert.Equal(t, "Tutor: Más fluido.", fb)
}

func TestBusyGate(t *testing.T) {
	ft := newFakeTutor()
	c, _ := newController(t, ft, fixedRand(1))
	ctx := context.Background()

	_, err := c.StartLesson(ctx, "unit-1")
	require.NoError(t, err)

	c.mu.Lock()
	c.session.Processing = true
	c.mu.Unlock()

	_, err = c.Advance(ctx, false)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = c.StartLesson(ctx, "unit-1")
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, c.State().CanAdvance)
}
