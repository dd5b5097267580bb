package lessonplay

import (
	"time"

	"github.com/abhisek/myenglish/internal/lesson"
)

// stateMsg carries the snapshot returned by a controller call.
type stateMsg struct {
	State lesson.State
	Err   error
}

// noticeMsg carries the outcome of a call that returns no snapshot.
type noticeMsg struct {
	Text string
}

// resumeMsg fires once the solved mini-game has been shown long enough.
type resumeMsg struct {
	SessionID string
}

// beginSpeakingMsg fires once a passed dictation has been shown long enough.
type beginSpeakingMsg struct {
	SessionID string
}

// pollTickMsg refreshes the snapshot so detached audio and in-flight
// roleplay lines show up.
type pollTickMsg time.Time
