// Package lesson runs a lesson: it owns the learner profile and the current
// session, moves the session through READING, WRITING, LISTENING, ROLEPLAY
// and TEST, and branches into mini-games and reinforcement exercises.
//
// Controller methods are the only mutators. Each returns a State snapshot
// that the caller may keep and render without further locking.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/store"
	"github.com/abhisek/myenglish/internal/tutor"
)

var (
	ErrNoSession        = errors.New("no lesson in progress")
	ErrBusy             = errors.New("a request is already in progress")
	ErrLessonLocked     = errors.New("lesson is locked")
	ErrNotAdvanceable   = errors.New("current activity is not complete")
	ErrMiniGamePending  = errors.New("mini-game is not solved")
	ErrWrongPhase       = errors.New("not available in the current activity")
	ErrInvalidToken     = errors.New("invalid word token")
	ErrAudioUnavailable = errors.New("audio not available")
)

// Presentation delays. The controller never sleeps; the UI waits these out
// before calling ResumeAfterMiniGame and BeginSpeaking.
const (
	MiniGameResumeDelay   = 2 * time.Second
	DictationAdvanceDelay = 1500 * time.Millisecond
)

// Config tunes lesson flow.
type Config struct {
	// PassScore is the evaluation score above which a text answer is
	// accepted even when not marked correct.
	PassScore int

	// MiniGameChance is the probability that an advance is pre-empted by
	// a mini-game.
	MiniGameChance float64
}

// DefaultConfig returns the standard lesson tuning.
func DefaultConfig() Config {
	return Config{
		PassScore:      75,
		MiniGameChance: 0.10,
	}
}

// Rand is the random source for mini-game draws.
type Rand interface {
	Float64() float64
}

// NewRand returns a seeded Rand.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Tutor generates lesson content. *tutor.Client implements it.
type Tutor interface {
	GenerateLessonContext(ctx context.Context, level curriculum.Level, topic string) tutor.LessonContext
	GenerateListeningChallenge(ctx context.Context, level curriculum.Level, topic string) tutor.ListeningChallenge
	EvaluateTextSubmission(ctx context.Context, level curriculum.Level, topic, userText, promptContext string, errorTokens []string) tutor.Evaluation
	GenerateTutorReply(ctx context.Context, level curriculum.Level, topic string, history []tutor.Turn, lastUserText string) tutor.TutorReply
	GenerateFinalReview(ctx context.Context, level curriculum.Level, topic string) tutor.FinalReview
	GenerateReinforcement(ctx context.Context, errorTokens []string) tutor.Reinforcement
	GenerateProfileImprovement(ctx context.Context, bio string, level curriculum.Level) tutor.ProfileImprovement
	GenerateMiniGame(ctx context.Context, level curriculum.Level) tutor.MiniGame
	DefineWord(ctx context.Context, word, context string) tutor.WordDefinition
	SynthesizeSpeech(ctx context.Context, text string) []byte
}

// Player plays one sound at a time. *audio.Player implements it.
type Player interface {
	Play(label string, pcm []byte)
	Stop()
}

// EventRecorder receives lesson lifecycle events. store.EventRepo
// implements it.
type EventRecorder interface {
	AppendLessonEvent(ctx context.Context, data store.LessonEventData) error
}

// Options configures a Controller. Zero fields take defaults.
type Options struct {
	Config Config
	Rand   Rand
	Player Player
	Events EventRecorder
	Logger *zap.Logger
	Now    func() time.Time
}

// Controller drives lessons for one learner.
type Controller struct {
	tutor  Tutor
	cfg    Config
	rnd    Rand
	player Player
	events EventRecorder
	log    *zap.Logger
	now    func() time.Time

	// bg outlives individual calls; detached speech tasks run under it.
	bg       context.Context
	bgCancel context.CancelFunc
	wg       sync.WaitGroup

	mu         sync.Mutex
	profile    learner.Profile
	session    *Session
	completion *Completion
	bioBusy    bool
}

// New creates a Controller for profile.
func New(t Tutor, profile learner.Profile, opts Options) *Controller {
	c := &Controller{
		tutor:   t,
		cfg:     opts.Config,
		rnd:     opts.Rand,
		player:  opts.Player,
		events:  opts.Events,
		log:     opts.Logger,
		now:     opts.Now,
		profile: profile.Clone(),
	}
	if c.cfg == (Config{}) {
		c.cfg = DefaultConfig()
	}
	if c.rnd == nil {
		c.rnd = NewRand(uint64(time.Now().UnixNano()))
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.Named("lesson")
	if c.now == nil {
		c.now = time.Now
	}
	c.bg, c.bgCancel = context.WithCancel(context.Background())
	return c
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Profile returns a copy of the learner profile.
func (c *Controller) Profile() learner.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.Clone()
}

// Wait blocks until detached speech tasks finish.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels detached work and stops playback.
func (c *Controller) Close() error {
	c.bgCancel()
	c.wg.Wait()
	c.stopAudio()
	return nil
}

// StartLesson opens lessonID at READING, replacing any current session.
func (c *Controller) StartLesson(ctx context.Context, lessonID string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := curriculum.Get(lessonID)
	if err != nil {
		return c.stateLocked(), fmt.Errorf("start lesson: %w", err)
	}
	if !c.profile.IsUnlocked(l.ID) {
		return c.stateLocked(), fmt.Errorf("start lesson %s: %w", l.ID, ErrLessonLocked)
	}
	if c.session != nil && c.session.Processing {
		return c.stateLocked(), ErrBusy
	}

	c.stopAudio()
	sess := &Session{
		ID:         uuid.NewString(),
		Lesson:     l,
		StartedAt:  c.now(),
		StepIndex:  0,
		Skill:      SkillReading,
		Transcript: []Message{},
		audio:      make(map[string][]byte),
	}
	c.session = sess
	c.completion = nil

	c.log.Info("lesson started",
		zap.String("session_id", sess.ID),
		zap.String("lesson", l.ID),
		zap.String("level", string(l.Level)),
	)
	c.recordLocked(sess, store.ActionStarted, false, 0, l.Title)

	return c.enterLocked(ctx, sess, SkillReading, 0)
}

// Advance moves to the next activity. With skip set, the current activity
// is entered again with fresh content instead, and no mini-game is drawn.
func (c *Controller) Advance(ctx context.Context, skip bool) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.session
	if sess == nil {
		return c.stateLocked(), ErrNoSession
	}
	if sess.Processing {
		return c.stateLocked(), ErrBusy
	}

	if skip {
		if sess.Skill == SkillMiniGame {
			return c.stateLocked(), ErrMiniGamePending
		}
		return c.enterLocked(ctx, sess, sess.Skill, sess.StepIndex)
	}

	if err := c.canAdvanceLocked(); err != nil {
		return c.stateLocked(), err
	}
	to, target := c.routeLocked(sess)
	if to == SkillSuccess {
		c.completeLocked(sess)
		return c.stateLocked(), nil
	}
	return c.enterLocked(ctx, sess, to, target)
}

// ResumeAfterMiniGame enters the step a solved mini-game pre-empted.
func (c *Controller) ResumeAfterMiniGame(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.session
	switch {
	case sess == nil:
		return c.stateLocked(), ErrNoSession
	case sess.Skill != SkillMiniGame:
		return c.stateLocked(), ErrWrongPhase
	case sess.Processing:
		return c.stateLocked(), ErrBusy
	case !sess.MiniGame.Solved:
		return c.stateLocked(), ErrMiniGamePending
	}

	step := sess.MiniGame.ResumeStep
	return c.enterLocked(ctx, sess, stepSkills[step], step)
}

// Exit abandons the current session, or dismisses a completed one.
func (c *Controller) Exit() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess := c.session; sess != nil {
		c.log.Info("lesson exited",
			zap.String("session_id", sess.ID),
			zap.Stringer("skill", sess.Skill),
		)
		c.recordLocked(sess, store.ActionExited, false, 0, "")
	}
	c.session = nil
	c.completion = nil
	c.stopAudio()
	return c.stateLocked()
}

// routeLocked picks the skill an advance from sess leads to, and the step
// index it belongs to.
func (c *Controller) routeLocked(sess *Session) (Skill, int) {
	if sess.Skill == SkillReinforcement {
		return SkillSuccess, sess.StepIndex
	}

	target := sess.StepIndex + 1
	if target < StepCount {
		if sess.Skill != SkillTest && c.rnd.Float64() < c.cfg.MiniGameChance {
			return SkillMiniGame, target
		}
		return stepSkills[target], target
	}

	if c.profile.HasErrors() {
		return SkillReinforcement, sess.StepIndex
	}
	return SkillSuccess, sess.StepIndex
}

// canAdvanceLocked reports why Advance would refuse to proceed, or nil.
func (c *Controller) canAdvanceLocked() error {
	sess := c.session
	if sess == nil {
		return ErrNoSession
	}
	if sess.Processing {
		return ErrBusy
	}

	switch sess.Skill {
	case SkillMiniGame:
		return ErrMiniGamePending
	case SkillWriting, SkillListening:
		if !sess.Accepted {
			return ErrNotAdvanceable
		}
	case SkillRoleplay:
		if len(sess.Transcript) < 4 {
			return ErrNotAdvanceable
		}
	case SkillTest:
		if sess.Test == nil || sess.Test.Stage != StageDone {
			return ErrNotAdvanceable
		}
	case SkillReinforcement:
		if sess.Reinforcement == nil || !sess.Reinforcement.Resolved {
			return ErrNotAdvanceable
		}
	case SkillSuccess:
		return ErrWrongPhase
	}
	return nil
}

// entry is the generated content for entering a skill.
type entry struct {
	context       tutor.LessonContext
	listening     tutor.ListeningChallenge
	review        tutor.FinalReview
	dictation     []byte
	reinforcement tutor.Reinforcement
	game          tutor.MiniGame
}

// enterLocked moves sess into skill to at step. It is called with c.mu
// held, releases it while content is generated, and returns with it held.
func (c *Controller) enterLocked(ctx context.Context, sess *Session, to Skill, step int) (State, error) {
	from := sess.Skill
	if !canTransition(from, to) {
		return c.stateLocked(), fmt.Errorf("%s -> %s: %w", from, to, ErrWrongPhase)
	}

	level, topic := sess.Lesson.Level, sess.Topic()
	tokens := slices.Clone(c.profile.ErrorTokens)
	sess.Processing = true
	sess.Lookup = nil

	c.mu.Unlock()
	e := c.load(ctx, to, level, topic, tokens)
	c.mu.Lock()

	if c.session != sess {
		return c.stateLocked(), ErrNoSession
	}
	sess.Processing = false
	c.applyLocked(sess, to, step, e)

	c.log.Info("activity entered",
		zap.String("session_id", sess.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("step", sess.StepIndex),
	)
	c.recordLocked(sess, store.ActionPhase, false, 0, from.String())
	return c.stateLocked(), nil
}

// load generates what entering to needs. It runs without the lock.
func (c *Controller) load(ctx context.Context, to Skill, level curriculum.Level, topic string, tokens []string) entry {
	var e entry
	switch to {
	case SkillReading:
		e.context = c.tutor.GenerateLessonContext(ctx, level, topic)
	case SkillListening:
		e.listening = c.tutor.GenerateListeningChallenge(ctx, level, topic)
	case SkillTest:
		e.review = c.tutor.GenerateFinalReview(ctx, level, topic)
		e.dictation = c.tutor.SynthesizeSpeech(ctx, e.review.DictationPhrase)
	case SkillReinforcement:
		e.reinforcement = c.tutor.GenerateReinforcement(ctx, tokens)
	case SkillMiniGame:
		e.game = c.tutor.GenerateMiniGame(ctx, level)
	}
	return e
}

func (c *Controller) applyLocked(sess *Session, to Skill, step int, e entry) {
	sess.epoch++
	sess.Skill = to
	sess.Feedback = nil
	sess.Lookup = nil
	sess.Accepted = false
	if to != SkillMiniGame && to != SkillReinforcement {
		sess.StepIndex = step
	}
	if to != SkillMiniGame {
		sess.MiniGame = nil
	}

	topic := sess.Topic()
	switch to {
	case SkillReading:
		sess.Intro = e.context.Intro
		sess.Content = e.context.Content
		delete(sess.audio, AudioPassage)
		c.speakDetached(sess, AudioPassage, sess.Content, false)

	case SkillWriting:
		sess.Intro = "Práctica de Escritura. Escribe un pequeño párrafo (2-3 frases) usando el vocabulario del tema."
		sess.Content = "Topic: " + topic

	case SkillListening:
		sess.Intro = "Escucha la historia con atención a los detalles y responde la pregunta."
		sess.Listening = &Listening{Script: e.listening.Script, Question: e.listening.Question}
		sess.Content = e.listening.Question
		delete(sess.audio, AudioPassage)
		c.speakDetached(sess, AudioPassage, e.listening.Script, true)

	case SkillRoleplay:
		sess.Intro = fmt.Sprintf("Conversación: Habla con Leo sobre %s. Intenta dar respuestas completas.", topic)
		if len(sess.Transcript) == 0 {
			opener := Message{
				ID:        uuid.NewString(),
				Role:      tutor.RoleModel,
				Text:      fmt.Sprintf("Hi! I'm Leo. Let's talk about %s. What can you tell me?", strings.ToLower(topic)),
				Timestamp: c.now(),
			}
			sess.Transcript = append(sess.Transcript, opener)
			c.speakDetached(sess, opener.ID, opener.Text, true)
		}

	case SkillTest:
		sess.Intro = "¡Desafío Final! Dictado complejo y Expresión Oral detallada."
		sess.Test = &Test{
			DictationPhrase: e.review.DictationPhrase,
			SpeakingPrompt:  e.review.SpeakingPrompt,
			Stage:           StageDictation,
			Audio:           e.dictation,
		}
		delete(sess.audio, AudioDictation)
		if e.dictation != nil {
			sess.audio[AudioDictation] = e.dictation
		}

	case SkillReinforcement:
		sess.Intro = "Repasemos algunos errores antes de terminar para asegurar el aprendizaje."
		sess.Reinforcement = &Reinforcement{
			Question:      e.reinforcement.Question,
			CorrectAnswer: e.reinforcement.CorrectAnswer,
			Type:          e.reinforcement.Type,
		}

	case SkillMiniGame:
		sess.Intro = "¡Bonus Round! Ordena la frase correctamente."
		sess.MiniGame = &MiniGame{
			Words:           slices.Clone(e.game.Scrambled),
			Chosen:          []int{},
			CorrectSentence: e.game.CorrectSentence,
			ResumeStep:      step,
		}
	}
}

// completeLocked ends sess successfully.
func (c *Controller) completeLocked(sess *Session) {
	unlocked := c.profile.Complete(sess.Lesson.ID)
	c.completion = &Completion{
		LessonID:    sess.Lesson.ID,
		LessonTitle: sess.Lesson.Title,
		XPAwarded:   learner.CompletionReward,
		Unlocked:    unlocked,
	}
	c.session = nil

	c.log.Info("lesson completed",
		zap.String("session_id", sess.ID),
		zap.String("lesson", sess.Lesson.ID),
		zap.Int("xp", c.profile.XP),
		zap.String("unlocked", unlocked),
	)
	c.recordLocked(sess, store.ActionCompleted, true, 0, unlocked)
}

// recordErrorLocked adds keywords to the error FIFO, or text itself when
// there are none.
func (c *Controller) recordErrorLocked(text string, keywords []string) {
	if len(keywords) > 0 {
		c.profile.AddErrorTokens(keywords...)
		return
	}
	c.profile.AddErrorTokens(text)
}

func (c *Controller) stateLocked() State {
	st := State{
		Profile:    c.profile.Clone(),
		Session:    c.session.clone(),
		CanAdvance: c.canAdvanceLocked() == nil,
	}
	if c.completion != nil {
		comp := *c.completion
		st.Completion = &comp
	}
	if c.session != nil {
		st.AudioReady = snapshotAudio(c.session.audio)
	}
	return st
}

// recordLocked appends a lesson event. Failures are logged and dropped.
func (c *Controller) recordLocked(sess *Session, action string, accepted bool, score int, detail string) {
	if c.events == nil {
		return
	}
	err := c.events.AppendLessonEvent(c.bg, store.LessonEventData{
		SessionID: sess.ID,
		LessonID:  sess.Lesson.ID,
		Action:    action,
		Skill:     sess.Skill.String(),
		StepIndex: sess.StepIndex,
		Accepted:  accepted,
		Score:     score,
		Detail:    detail,
	})
	if err != nil {
		c.log.Debug("record lesson event", zap.String("action", action), zap.Error(err))
	}
}
