package lesson

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/myenglish/internal/store"
	"github.com/abhisek/myenglish/internal/tutor"
)

// Feedback texts shown to the learner.
const (
	feedbackDictationOK   = "¡Perfecto! Escritura impecable."
	feedbackDictationMiss = "Escucha de nuevo con atención a los detalles."
	feedbackSpeakingOK    = "¡Gran trabajo! Has completado el desafío."
	feedbackReinforceOK   = "¡Muy bien! Error corregido."
	feedbackMiniGameOK    = "¡Genial! Frase correcta."
	feedbackMiniGameMiss  = "Intenta de nuevo."

	// speakingStructureToken marks a roleplay line the tutor had to correct.
	speakingStructureToken = "Speaking structure"
)

// SubmitText grades a WRITING or LISTENING answer. An answer is accepted
// when marked correct or scored above Config.PassScore; otherwise its
// mistakes are added to the learner's error tokens. Blank text is ignored.
func (c *Controller) SubmitText(ctx context.Context, text string) (State, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.activeLocked(SkillWriting, SkillListening)
	if err != nil || text == "" {
		return c.stateLocked(), err
	}

	promptContext := sess.Content
	if sess.Skill == SkillListening {
		promptContext = "Answer"
		if sess.Listening != nil && sess.Listening.Question != "" {
			promptContext = sess.Listening.Question
		}
	}
	level, topic := sess.Lesson.Level, sess.Topic()
	tokens := c.profile.Clone().ErrorTokens
	sess.Feedback = nil
	sess.Processing = true

	c.mu.Unlock()
	ev := c.tutor.EvaluateTextSubmission(ctx, level, topic, text, promptContext, tokens)
	c.mu.Lock()

	if c.session != sess {
		return c.stateLocked(), ErrNoSession
	}
	sess.Processing = false

	sess.Accepted = ev.Correct || ev.Score > c.cfg.PassScore
	if sess.Accepted {
		sess.Feedback = &Feedback{Text: "¡Excelente! " + ev.Feedback, Kind: FeedbackSuccess}
	} else {
		sess.Feedback = &Feedback{Text: "Atención: " + ev.Feedback, Kind: FeedbackError}
		c.recordErrorLocked(text, ev.ErrorKeywords)
	}

	c.log.Debug("text evaluated",
		zap.String("session_id", sess.ID),
		zap.Stringer("skill", sess.Skill),
		zap.Bool("accepted", sess.Accepted),
		zap.Int("score", ev.Score),
	)
	c.recordLocked(sess, store.ActionSubmitted, sess.Accepted, ev.Score, strings.Join(ev.ErrorKeywords, ", "))
	return c.stateLocked(), nil
}

// normalizeDictation lower-cases s, drops periods, commas and exclamation
// marks, and trims it.
func normalizeDictation(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(".", "", ",", "", "!", "").Replace(s)
	return strings.TrimSpace(s)
}

// SubmitDictation checks what the learner typed against the dictation
// phrase. A match is shown as success; the UI then waits
// DictationAdvanceDelay and calls BeginSpeaking.
func (c *Controller) SubmitDictation(text string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.activeLocked(SkillTest)
	if err != nil {
		return c.stateLocked(), err
	}
	if sess.Test == nil || sess.Test.Stage != StageDictation || sess.Accepted {
		return c.stateLocked(), ErrWrongPhase
	}
	if strings.TrimSpace(text) == "" {
		return c.stateLocked(), nil
	}

	if normalizeDictation(text) == normalizeDictation(sess.Test.DictationPhrase) {
		sess.Accepted = true
		sess.Feedback = &Feedback{Text: feedbackDictationOK, Kind: FeedbackSuccess}
	} else {
		sess.Feedback = &Feedback{Text: feedbackDictationMiss, Kind: FeedbackError}
		c.profile.AddErrorTokens("Listening", "Spelling")
	}
	c.recordLocked(sess, store.ActionSubmitted, sess.Accepted, 0, StageDictation.String())
	return c.stateLocked(), nil
}

// BeginSpeaking moves a passed dictation on to the speaking stage.
func (c *Controller) BeginSpeaking() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.activeLocked(SkillTest)
	if err != nil {
		return c.stateLocked(), err
	}
	if sess.Test == nil || sess.Test.Stage != StageDictation || !sess.Accepted {
		return c.stateLocked(), ErrWrongPhase
	}
	sess.Test.Stage = StageSpeaking
	sess.Accepted = false
	sess.Feedback = nil
	return c.stateLocked(), nil
}

// SubmitSpeaking resolves the speaking stage. Any recording is accepted.
func (c *Controller) SubmitSpeaking(recording []byte) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.activeLocked(SkillTest)
	if err != nil {
		return c.stateLocked(), err
	}
	if sess.Test == nil || sess.Test.Stage != StageSpeaking {
		return c.stateLocked(), ErrWrongPhase
	}
	sess.Test.Stage = StageDone
	sess.Accepted = true
	sess.Feedback = &Feedback{Text: feedbackSpeakingOK, Kind: FeedbackSuccess}

	c.log.Debug("speaking submitted", zap.String("session_id", sess.ID), zap.Int("bytes", len(recording)))
	c.recordLocked(sess, store.ActionSubmitted, true, 0, StageSpeaking.String())
	return c.stateLocked(), nil
}

// SubmitTurn adds the learner's roleplay line and the tutor's reply. The
// learner's line is in the transcript before the tutor is asked.
func (c *Controller) SubmitTurn(ctx context.Context, text string) (State, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.activeLocked(SkillRoleplay)
	if err != nil || text == "" {
		return c.stateLocked(), err
	}

	sess.Transcript = append(sess.Transcript, Message{
		ID:        uuid.NewString(),
		Role:      tutor.RoleUser,
		Text:      text,
		Timestamp: c.now(),
	})
	history := make([]tutor.Turn, len(sess.Transcript))
	for i, m := range sess.Transcript {
		history[i] = tutor.Turn{Role: m.Role, Text: m.Text}
	}
	level, topic := sess.Lesson.Level, sess.Topic()
	sess.Feedback = nil
	sess.Processing = true

	c.mu.Unlock()
	reply := c.tutor.GenerateTutorReply(ctx, level, topic, history, text)
	c.mu.Lock()

	if c.session != sess {
		return c.stateLocked(), ErrNoSession
	}
	sess.Processing = false

	msg := Message{
		ID:         uuid.NewString(),
		Role:       tutor.RoleModel,
		Text:       reply.TutorText,
		Timestamp:  c.now(),
		Correction: reply.Correction,
		Feedback:   reply.Feedback,
	}
	sess.Transcript = append(sess.Transcript, msg)

	corrected := reply.Correction != "" && reply.Correction != text
	if corrected {
		c.profile.AddErrorTokens(speakingStructureToken)
	}
	c.speakDetached(sess, msg.ID, msg.Text, true)

	c.recordLocked(sess, store.ActionSubmitted, !corrected, 0, reply.Correction)
	return c.stateLocked(), nil
}

// SubmitReinforcement checks an answer to the reinforcement exercise. It
// is accepted when it contains the expected answer, ignoring case and
// surrounding space; acceptance clears every error token.
func (c *Controller) SubmitReinforcement(answer string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.activeLocked(SkillReinforcement)
	if err != nil {
		return c.stateLocked(), err
	}
	r := sess.Reinforcement
	if r == nil || r.Resolved {
		return c.stateLocked(), ErrWrongPhase
	}
	if strings.TrimSpace(answer) == "" {
		return c.stateLocked(), nil
	}

	got := strings.ToLower(strings.TrimSpace(answer))
	want := strings.ToLower(strings.TrimSpace(r.CorrectAnswer))
	if strings.Contains(got, want) {
		r.Resolved = true
		c.profile.ClearErrorTokens()
		sess.Feedback = &Feedback{Text: feedbackReinforceOK, Kind: FeedbackSuccess}
	} else {
		sess.Feedback = &Feedback{Text: "La respuesta correcta era: " + r.CorrectAnswer, Kind: FeedbackError}
	}
	c.recordLocked(sess, store.ActionSubmitted, r.Resolved, 0, "")
	return c.stateLocked(), nil
}

// activeLocked returns the session if it is idle and in one of skills.
func (c *Controller) activeLocked(skills ...Skill) (*Session, error) {
	sess := c.session
	if sess == nil {
		return nil, ErrNoSession
	}
	if sess.Processing {
		return nil, ErrBusy
	}
	for _, s := range skills {
		if sess.Skill == s {
			return sess, nil
		}
	}
	return nil, ErrWrongPhase
}
