// Package learner holds the in-memory learner profile. Nothing here is
// persisted; a profile lives for the life of the process.
package learner

import (
	"slices"
	"time"

	"github.com/abhisek/myenglish/internal/curriculum"
)

// MaxErrorTokens is the maximum number of recent error tokens kept.
const MaxErrorTokens = 10

// CompletionReward is the XP awarded for completing a lesson.
const CompletionReward = 100

// DefaultName is the display name of a new learner.
const DefaultName = "Student"

// Profile is the learner's progress.
type Profile struct {
	// Name is shown on the profile screen.
	Name string

	// Level is the learner's CEFR level. Prompts are tailored to it.
	Level curriculum.Level

	// XP only grows: CompletionReward per completed lesson.
	XP int

	// Streak is informational and starts at 1.
	Streak int

	// Unlocked holds lesson IDs in the order they were unlocked.
	// It always contains the first catalog lesson.
	Unlocked []string

	// ErrorTokens is a FIFO of short markers describing recent mistakes,
	// oldest first, at most MaxErrorTokens long.
	ErrorTokens []string

	// Bio is free text the learner writes about themself.
	Bio string

	// BioUpdatedAt is when Bio last changed (zero if never).
	BioUpdatedAt time.Time
}

// New returns the profile of a new learner: A1, no XP, streak 1, and only
// the first lesson unlocked.
func New() Profile {
	return Profile{
		Name:     DefaultName,
		Level:    curriculum.LevelA1,
		Streak:   1,
		Unlocked: []string{curriculum.First().ID},
	}
}

// IsUnlocked reports whether the lesson may be started.
func (p *Profile) IsUnlocked(lessonID string) bool {
	return slices.Contains(p.Unlocked, lessonID)
}

// Unlock adds lessonID to the unlocked set. It returns false if the lesson
// was already unlocked.
func (p *Profile) Unlock(lessonID string) bool {
	if p.IsUnlocked(lessonID) {
		return false
	}
	p.Unlocked = append(p.Unlocked, lessonID)
	return true
}

// AddErrorTokens appends tokens, evicting the oldest beyond MaxErrorTokens.
// Blank tokens are skipped.
func (p *Profile) AddErrorTokens(tokens ...string) {
	for _, t := range tokens {
		if t == "" {
			continue
		}
		p.ErrorTokens = append(p.ErrorTokens, t)
	}
	if len(p.ErrorTokens) > MaxErrorTokens {
		p.ErrorTokens = slices.Clone(p.ErrorTokens[len(p.ErrorTokens)-MaxErrorTokens:])
	}
}

// ClearErrorTokens empties the error FIFO.
func (p *Profile) ClearErrorTokens() {
	p.ErrorTokens = nil
}

// HasErrors reports whether any error tokens are pending.
func (p *Profile) HasErrors() bool {
	return len(p.ErrorTokens) > 0
}

// Complete records the completion of lessonID: it awards CompletionReward
// XP, unlocks the next catalog lesson, and clears error tokens. It returns
// the ID of a newly unlocked lesson, or "".
func (p *Profile) Complete(lessonID string) string {
	p.XP += CompletionReward
	p.ClearErrorTokens()

	next, ok := curriculum.Next(lessonID)
	if ok && p.Unlock(next.ID) {
		return next.ID
	}
	return ""
}

// SetBio replaces the bio.
func (p *Profile) SetBio(bio string, now time.Time) {
	p.Bio = bio
	p.BioUpdatedAt = now
}

// Clone returns a deep copy safe to hand to another goroutine.
func (p Profile) Clone() Profile {
	p.Unlocked = slices.Clone(p.Unlocked)
	p.ErrorTokens = slices.Clone(p.ErrorTokens)
	return p
}
