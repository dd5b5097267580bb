package tutor

// Every call has two static fallbacks: one used when the call itself fails
// (network, quota, no provider) and one used when the provider answered
// with something that could not be parsed.

var (
	lessonContextFailed      = LessonContext{Intro: "Hola, vamos a practicar.", Content: "- Hello!\n- Hi there."}
	lessonContextUnparseable = LessonContext{
		Intro:   "Bienvenido. Lee el siguiente texto con atención.",
		Content: "- Hello!\n- Hi there.\n- How are you?\n- I am fine.",
	}

	listeningFailed      = ListeningChallenge{Script: "Audio not available.", Question: "Error?"}
	listeningUnparseable = ListeningChallenge{
		Script:   "- Hello.\n- Hi, I am looking for a bank.",
		Question: "What is he looking for?",
	}

	evaluationFailed      = Evaluation{Feedback: "Error de servicio.", ErrorKeywords: []string{}}
	evaluationUnparseable = Evaluation{Feedback: "Evaluación no disponible.", ErrorKeywords: []string{}}

	tutorReplyFailed      = TutorReply{TutorText: "Could you repeat that?", Feedback: "Error de conexión."}
	tutorReplyUnparseable = TutorReply{TutorText: "Interesting! Tell me more."}

	finalReviewFailed      = FinalReview{DictationPhrase: "The sky is blue today.", SpeakingPrompt: "How are you?"}
	finalReviewUnparseable = FinalReview{
		DictationPhrase: "English is important for my future career.",
		SpeakingPrompt:  "Talk about your family.",
	}

	reinforcementFailed      = Reinforcement{Question: "Traduce: Hola", CorrectAnswer: "Hello", Type: ExerciseTranslation}
	reinforcementUnparseable = Reinforcement{Question: "Traduce: El gato negro", CorrectAnswer: "The black cat", Type: ExerciseTranslation}

	miniGameFailed      = MiniGame{Scrambled: []string{"Love", "I", "English"}, CorrectSentence: "I Love English"}
	miniGameUnparseable = MiniGame{Scrambled: []string{"is", "name", "My", "Ben"}, CorrectSentence: "My name is Ben"}

	definitionFailed      = WordDefinition{Definition: "No pudimos cargar la definición."}
	definitionUnparseable = WordDefinition{Definition: "Definición no disponible", Example: "-"}
)

// The profile fallbacks echo the current bio back unchanged.
const (
	profileFailedFeedback      = "Error."
	profileUnparseableFeedback = "Sin cambios."
)
