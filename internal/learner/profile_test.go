package learner

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/myenglish/internal/curriculum"
)

func TestNew(t *testing.T) {
	p := New()
	assert.Equal(t, curriculum.LevelA1, p.Level)
	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, []string{"unit-1"}, p.Unlocked)
	assert.Equal(t, DefaultName, p.Name)
	assert.False(t, p.HasErrors())
}

func TestAddErrorTokens_FIFO(t *testing.T) {
	p := New()
	for i := 1; i <= 9; i++ {
		p.AddErrorTokens(fmt.Sprintf("e%d", i))
	}
	require.Len(t, p.ErrorTokens, 9)

	p.AddErrorTokens("x", "y", "z")
	require.Len(t, p.ErrorTokens, MaxErrorTokens)
	assert.Equal(t, []string{"e3", "e4", "e5", "e6", "e7", "e8", "e9", "x", "y", "z"}, p.ErrorTokens)
}

func TestAddErrorTokens_SkipsBlank(t *testing.T) {
	p := New()
	p.AddErrorTokens("", "Listening", "")
	assert.Equal(t, []string{"Listening"}, p.ErrorTokens)
}

func TestUnlock(t *testing.T) {
	p := New()
	assert.False(t, p.IsUnlocked("unit-2"))
	assert.True(t, p.Unlock("unit-2"))
	assert.False(t, p.Unlock("unit-2"), "second unlock is a no-op")
	assert.Equal(t, []string{"unit-1", "unit-2"}, p.Unlocked)
}

func TestComplete(t *testing.T) {
	p := New()
	p.AddErrorTokens("Spelling")

	unlocked := p.Complete("unit-1")
	assert.Equal(t, "unit-2", unlocked)
	assert.Equal(t, CompletionReward, p.XP)
	assert.Empty(t, p.ErrorTokens)
	assert.True(t, p.IsUnlocked("unit-2"))

	// Replaying a lesson still awards XP but unlocks nothing new.
	unlocked = p.Complete("unit-1")
	assert.Equal(t, "", unlocked)
	assert.Equal(t, 2*CompletionReward, p.XP)
	assert.Len(t, p.Unlocked, 2)
}

func TestComplete_LastLesson(t *testing.T) {
	p := New()
	assert.Equal(t, "", p.Complete("unit-c1-1"))
	assert.Equal(t, CompletionReward, p.XP)
}

func TestClone(t *testing.T) {
	p := New()
	p.AddErrorTokens("a")
	c := p.Clone()
	c.ErrorTokens[0] = "changed"
	c.Unlocked[0] = "changed"
	assert.Equal(t, "a", p.ErrorTokens[0])
	assert.Equal(t, "unit-1", p.Unlocked[0])
}

func TestSetBio(t *testing.T) {
	p := New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.SetBio("I am Ana.", now)
	assert.Equal(t, "I am Ana.", p.Bio)
	assert.Equal(t, now, p.BioUpdatedAt)
}
