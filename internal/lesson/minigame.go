package lesson

import (
	"fmt"
	"slices"

	"github.com/abhisek/myenglish/internal/store"
)

// PickToken moves word index i from the bank to the end of the answer.
func (c *Controller) PickToken(i int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.miniGameLocked()
	if err != nil {
		return c.stateLocked(), err
	}
	if i < 0 || i >= len(g.Words) || slices.Contains(g.Chosen, i) {
		return c.stateLocked(), fmt.Errorf("pick %d: %w", i, ErrInvalidToken)
	}
	g.Chosen = append(g.Chosen, i)
	c.session.Feedback = nil
	return c.stateLocked(), nil
}

// RemoveToken returns word index i from the answer to the bank.
func (c *Controller) RemoveToken(i int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.miniGameLocked()
	if err != nil {
		return c.stateLocked(), err
	}
	pos := slices.Index(g.Chosen, i)
	if pos < 0 {
		return c.stateLocked(), fmt.Errorf("remove %d: %w", i, ErrInvalidToken)
	}
	g.Chosen = slices.Delete(g.Chosen, pos, pos+1)
	c.session.Feedback = nil
	return c.stateLocked(), nil
}

// CheckMiniGame compares the chosen words, joined by single spaces, with
// the correct sentence. The comparison is exact and case-sensitive. A
// wrong answer may be reordered and checked again without limit.
func (c *Controller) CheckMiniGame() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.miniGameLocked()
	if err != nil {
		return c.stateLocked(), err
	}
	sess := c.session
	if g.Sentence() == g.CorrectSentence {
		g.Solved = true
		sess.Feedback = &Feedback{Text: feedbackMiniGameOK, Kind: FeedbackSuccess}
	} else {
		sess.Feedback = &Feedback{Text: feedbackMiniGameMiss, Kind: FeedbackError}
	}
	c.recordLocked(sess, store.ActionSubmitted, g.Solved, 0, g.Sentence())
	return c.stateLocked(), nil
}

// miniGameLocked returns the unsolved mini-game of the current session.
func (c *Controller) miniGameLocked() (*MiniGame, error) {
	sess, err := c.activeLocked(SkillMiniGame)
	if err != nil {
		return nil, err
	}
	if sess.MiniGame == nil || sess.MiniGame.Solved {
		return nil, ErrWrongPhase
	}
	return sess.MiniGame, nil
}
