package tutor

import "github.com/abhisek/myenglish/internal/llm"

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func object(props map[string]any, required ...any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// LessonContextSchema defines the JSON schema for reading material.
var LessonContextSchema = &llm.Schema{
	Name:        "lesson-context",
	Description: "Reading activity instructions and an English dialogue or story",
	Definition: object(map[string]any{
		"intro":   str("Motivating instructions for the reading activity, in Latin American Spanish"),
		"content": str("English dialogue or story, 8-12 lines, one line per turn, dialogue lines start with '- '"),
	}, "intro", "content"),
}

// ListeningSchema defines the JSON schema for a listening challenge.
var ListeningSchema = &llm.Schema{
	Name:        "listening-challenge",
	Description: "A spoken script and one comprehension question about it",
	Definition: object(map[string]any{
		"script":   str("Dialogue or story of 100-150 words, one line per turn"),
		"question": str("Comprehension question in English about a detail from the middle of the script"),
	}, "script", "question"),
}

// EvaluationSchema defines the JSON schema for grading a free-text answer.
var EvaluationSchema = &llm.Schema{
	Name:        "text-evaluation",
	Description: "Verdict, feedback and score for a learner's written answer",
	Definition: object(map[string]any{
		"correct":  map[string]any{"type": "boolean"},
		"feedback": str("Explanation of grammar or vocabulary mistakes, in Latin American Spanish"),
		"score": map[string]any{
			"type":        "integer",
			"description": "Overall quality from 0 to 100",
		},
		"errorKeywords": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Short markers naming each mistake, empty when correct",
		},
	}, "correct", "feedback", "score", "errorKeywords"),
}

// TutorReplySchema defines the JSON schema for a roleplay reply.
var TutorReplySchema = &llm.Schema{
	Name:        "tutor-reply",
	Description: "The tutor's next roleplay line with optional correction of the learner",
	Definition: object(map[string]any{
		"tutorText":  str("Natural English reply that keeps the conversation going with an open question"),
		"feedback":   str("Grammar notes on the learner's last line in Spanish, empty if none"),
		"correction": str("Corrected version of the learner's last line, empty if it was correct"),
	}, "tutorText", "feedback", "correction"),
}

// FinalReviewSchema defines the JSON schema for the test phase.
var FinalReviewSchema = &llm.Schema{
	Name:        "final-review",
	Description: "A dictation sentence and a speaking challenge",
	Definition: object(map[string]any{
		"dictationPhrase": str("One long sentence of 10-15 words with adjectives and connectors"),
		"speakingPrompt":  str("A speaking task that needs at least three sentences to answer"),
	}, "dictationPhrase", "speakingPrompt"),
}

// ReinforcementSchema defines the JSON schema for a remedial exercise.
var ReinforcementSchema = &llm.Schema{
	Name:        "reinforcement",
	Description: "A remedial exercise targeting recent mistakes",
	Definition: object(map[string]any{
		"question":      str("The exercise prompt, in Spanish for translations"),
		"correctAnswer": str("The expected English answer"),
		"type": map[string]any{
			"type": "string",
			"enum": []any{string(ExerciseTranslation), string(ExerciseFillBlank)},
		},
	}, "question", "correctAnswer", "type"),
}

// ProfileImprovementSchema defines the JSON schema for a rewritten bio.
var ProfileImprovementSchema = &llm.Schema{
	Name:        "profile-improvement",
	Description: "A more fluent version of the learner's bio and an explanation of the changes",
	Definition: object(map[string]any{
		"improvedText": str("The rewritten bio in English"),
		"feedback":     str("Key changes explained in Spanish"),
	}, "improvedText", "feedback"),
}

// MiniGameSchema defines the JSON schema for the word-order game.
var MiniGameSchema = &llm.Schema{
	Name:        "mini-game",
	Description: "A sentence and its words in shuffled order",
	Definition: object(map[string]any{
		"scrambled": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Every word of correctSentence exactly once, shuffled",
		},
		"correctSentence": str("A sentence of 6-9 words"),
	}, "scrambled", "correctSentence"),
}

// DefinitionSchema defines the JSON schema for a word lookup.
var DefinitionSchema = &llm.Schema{
	Name:        "word-definition",
	Description: "Meaning of a word in context and an example sentence",
	Definition: object(map[string]any{
		"definition": str("Clear meaning in Spanish"),
		"example":    str("A different English sentence using the word"),
	}, "definition", "example"),
}
