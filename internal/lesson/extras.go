package lesson

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// LookupWord defines word in the context of the current passage. It runs
// beside the Processing gate and only touches Session.Lookup. A lookup
// dismissed, replaced, or overtaken by the next activity while loading is
// dropped.
func (c *Controller) LookupWord(ctx context.Context, word string) (State, error) {
	word = strings.Trim(word, " \t\n.,!?;:\"'()[]")

	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.session
	if sess == nil {
		return c.stateLocked(), ErrNoSession
	}
	if sess.Skill != SkillReading && sess.Skill != SkillListening {
		return c.stateLocked(), ErrWrongPhase
	}
	if word == "" {
		return c.stateLocked(), nil
	}
	if sess.Lookup != nil && sess.Lookup.Loading {
		return c.stateLocked(), ErrBusy
	}

	passage := sess.Content
	if sess.Skill == SkillListening && sess.Listening != nil {
		passage = sess.Listening.Script
	}
	lookup := &Lookup{Word: word, Loading: true}
	sess.Lookup = lookup

	c.mu.Unlock()
	def := c.tutor.DefineWord(ctx, word, passage)
	c.mu.Lock()

	if c.session != sess || sess.Lookup != lookup {
		return c.stateLocked(), nil
	}
	lookup.Loading = false
	lookup.Definition = def
	return c.stateLocked(), nil
}

// DismissLookup hides the current word definition.
func (c *Controller) DismissLookup() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.Lookup = nil
	}
	return c.stateLocked()
}

// SetBio replaces the learner's bio.
func (c *Controller) SetBio(bio string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.profile.SetBio(strings.TrimSpace(bio), c.now())
	return c.stateLocked()
}

// ImproveBio asks the tutor to rewrite the bio and replaces it with the
// result. It returns the tutor's explanation of the changes.
func (c *Controller) ImproveBio(ctx context.Context) (State, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bioBusy {
		return c.stateLocked(), "", ErrBusy
	}
	bio, level := c.profile.Bio, c.profile.Level
	if strings.TrimSpace(bio) == "" {
		return c.stateLocked(), "", nil
	}
	c.bioBusy = true

	c.mu.Unlock()
	imp := c.tutor.GenerateProfileImprovement(ctx, bio, level)
	c.mu.Lock()

	c.bioBusy = false
	c.profile.SetBio(imp.ImprovedText, c.now())
	c.log.Debug("bio improved", zap.Int("before", len(bio)), zap.Int("after", len(imp.ImprovedText)))
	return c.stateLocked(), "Tutor: " + imp.Feedback, nil
}

// PlayPassage plays the current READING or LISTENING passage.
func (c *Controller) PlayPassage() error {
	return c.playCached(AudioPassage)
}

// PlayDictation plays the TEST dictation phrase.
func (c *Controller) PlayDictation() error {
	return c.playCached(AudioDictation)
}

// ReplayMessage plays a roleplay message again.
func (c *Controller) ReplayMessage(id string) error {
	return c.playCached(id)
}

// StopAudio stops whatever is playing.
func (c *Controller) StopAudio() {
	c.stopAudio()
}

func (c *Controller) playCached(key string) error {
	c.mu.Lock()
	sess := c.session
	if sess == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	pcm := sess.audio[key]
	c.mu.Unlock()

	if pcm == nil || c.player == nil {
		return ErrAudioUnavailable
	}
	c.player.Play(key, pcm)
	return nil
}

func (c *Controller) stopAudio() {
	if c.player != nil {
		c.player.Stop()
	}
}

// speakDetached synthesizes text in the background and caches it under
// key, playing it when autoplay is set. The result is dropped when the
// session has left the activity that asked for it. It never blocks the
// caller and its failure leaves the session untouched.
func (c *Controller) speakDetached(sess *Session, key, text string, autoplay bool) {
	if strings.TrimSpace(text) == "" {
		return
	}
	epoch := sess.epoch
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		pcm := c.tutor.SynthesizeSpeech(c.bg, text)
		if pcm == nil {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.session != sess || sess.epoch != epoch {
			c.log.Debug("late speech dropped", zap.String("key", key))
			return
		}
		sess.audio[key] = pcm
		// Under the lock, so Exit and the next activity cannot interleave.
		if autoplay && c.player != nil {
			c.player.Play(key, pcm)
		}
	}()
}
