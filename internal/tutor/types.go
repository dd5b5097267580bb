package tutor

// LessonContext is the reading phase material.
type LessonContext struct {
	Intro   string // Spanish instructions
	Content string // English dialogue or story, one line per turn
}

// ListeningChallenge is a script to listen to and a comprehension question.
type ListeningChallenge struct {
	Script   string
	Question string
}

// Evaluation is the verdict on a free-text answer.
type Evaluation struct {
	Correct       bool
	Feedback      string
	Score         int // 0..100
	ErrorKeywords []string
}

// Role identifies who said a roleplay line.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one roleplay transcript line as sent to the provider.
type Turn struct {
	Role Role
	Text string
}

// TutorReply is the tutor's answer to a roleplay turn.
type TutorReply struct {
	TutorText  string
	Feedback   string // Spanish grammar notes, may be empty
	Correction string // corrected learner sentence, may be empty
}

// FinalReview is the material for the test phase.
type FinalReview struct {
	DictationPhrase string
	SpeakingPrompt  string
}

// ExerciseType is the kind of reinforcement exercise.
type ExerciseType string

const (
	ExerciseTranslation ExerciseType = "translation"
	ExerciseFillBlank   ExerciseType = "fill_blank"
)

// Reinforcement is a remedial exercise built from recent error tokens.
type Reinforcement struct {
	Question      string
	CorrectAnswer string
	Type          ExerciseType
}

// ProfileImprovement is a rewritten bio with an explanation.
type ProfileImprovement struct {
	ImprovedText string
	Feedback     string
}

// MiniGame is a word-order puzzle.
type MiniGame struct {
	Scrambled       []string
	CorrectSentence string
}

// WordDefinition explains a word in context.
type WordDefinition struct {
	Definition string // Spanish
	Example    string // English sentence
}
