package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/myenglish/internal/curriculum"
)

const tutorSystemPrompt = `You are Leo, an expert and encouraging English tutor for Spanish-speaking learners. Instructions and feedback for the learner are written in Latin American Spanish; the English practice material is written in natural English matched to the learner's CEFR level.`

func buildLessonContextMessage(level curriculum.Level, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s\nTopic: %q\n", level, topic)
	b.WriteString(`
Instructions:
1. intro: Clear, motivating instructions in Spanish for a READING activity. Say what we will learn today.
2. content: A detailed dialogue or story of at least 8-12 lines.
   - Go beyond greetings; introduce interesting vocabulary for the level.
   - Start dialogue lines with "- ".
   - Put every sentence on its own line.`)
	return b.String()
}

func buildListeningMessage(level curriculum.Level, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s\nTopic: %q\n", level, topic)
	b.WriteString(`
Instructions:
1. script: A natural dialogue or story of 100-150 words. Include specific details (times, colors, places, feelings) that act as distractors.
2. question: One comprehension question in English.
   - Do not ask about something stated in the first sentence.
   - Ask about a reason, a consequence, or a detail from the middle.
   - Good: "Why did Ben buy the red shirt instead of the blue one?" Bad: "What did Ben buy?"`)
	return b.String()
}

func buildEvaluationMessage(level curriculum.Level, topic, userText, promptContext string, errorTokens []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s\nTopic: %q\n", level, topic)
	fmt.Fprintf(&b, "Context/question: %q\n", promptContext)
	fmt.Fprintf(&b, "Learner answer: %q\n", userText)
	fmt.Fprintf(&b, "Previous mistakes: [%s]\n", strings.Join(errorTokens, ", "))
	b.WriteString(`
Rules:
1. The answer must be complete and grammatically acceptable.
2. If it is too short (one word) and the question needed more, mark it incorrect or ask for more detail.
3. feedback: Explain the grammar or vocabulary mistake in Spanish, if any.
4. errorKeywords: Short markers for each mistake.`)
	return b.String()
}

func buildTutorReplyMessage(level curriculum.Level, topic string, history []Turn, lastUserText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Roleplay as Leo.\nLevel: %s\nTopic: %s\n", level, topic)
	b.WriteString("History:\n")
	b.WriteString(FormatHistory(history))
	fmt.Fprintf(&b, "\nLearner: %q\n", lastUserText)
	b.WriteString(`
Instructions:
1. tutorText: Reply naturally.
   - Do not accept one-word answers (Yes/No). If the learner is brief, politely ask them to elaborate or ask "Why?".
   - Ask open questions so the learner talks more.
2. feedback: Explain grammar mistakes in Spanish, if any.
3. correction: The corrected version of what the learner said.`)
	return b.String()
}

func buildFinalReviewMessage(level curriculum.Level, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Final test.\nLevel: %s\nTopic: %s\n", level, topic)
	b.WriteString(`
Instructions:
1. dictationPhrase: One COMPLEX sentence of 10-15 words with adjectives and connectors (and, but, because).
2. speakingPrompt: A speaking challenge that needs at least three sentences, e.g. "Describe your best friend in detail: appearance, personality, and hobbies."`)
	return b.String()
}

func buildReinforcementMessage(errorTokens []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The learner recently failed on: [%s]\n", strings.Join(errorTokens, ", "))
	b.WriteString(`
Instructions:
Create one challenging exercise targeting those mistakes.
- translation: give a full Spanish sentence to translate, not a single word.
- fill_blank: give a sentence with enough context to infer the missing word.`)
	return b.String()
}

func buildProfileMessage(bio string, level curriculum.Level) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s\nLearner bio: %q\n", level, bio)
	b.WriteString(`
Instructions:
- Make the bio sound more fluent and native.
- Add logical connectors where missing.
- feedback: Explain the key changes in Spanish.`)
	return b.String()
}

func buildMiniGameMessage(level curriculum.Level) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word-order game.\nLevel: %s\n", level)
	b.WriteString(`
Instructions:
1. correctSentence: A sentence of medium difficulty (6-9 words).
2. scrambled: The words of correctSentence in shuffled order, each word exactly once.`)
	return b.String()
}

func buildDefinitionMessage(word, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word: %q\nContext: %q\n", word, context)
	b.WriteString(`
Instructions:
1. definition: A clear, useful meaning in Spanish.
2. example: A complete English sentence using the word, different from the context.`)
	return b.String()
}

// FormatHistory renders the trailing HistoryWindow turns as "role: text" lines.
func FormatHistory(history []Turn) string {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	lines := make([]string, len(history))
	for i, t := range history {
		lines[i] = fmt.Sprintf("%s: %s", t.Role, t.Text)
	}
	return strings.Join(lines, "\n")
}
