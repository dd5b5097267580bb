// Package tutor is the client for generated lesson content. Every call
// returns usable content: failures are logged and replaced with a static
// fallback, so callers never handle provider errors.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/llm"
)

// Purpose labels attached to each request for the event log.
const (
	PurposeLessonContext = "lesson-context"
	PurposeListening     = "listening"
	PurposeEvaluate      = "evaluate"
	PurposeTutorReply    = "tutor-reply"
	PurposeFinalReview   = "final-review"
	PurposeReinforcement = "reinforcement"
	PurposeProfile       = "profile"
	PurposeMiniGame      = "mini-game"
	PurposeDefine        = "define"
)

var errNoProvider = errors.New("no content provider configured")

// Client generates lesson content through an llm.Provider and speech
// through an llm.SpeechSynthesizer. Either may be nil, in which case the
// corresponding calls always fall back.
type Client struct {
	provider llm.Provider
	speech   llm.SpeechSynthesizer
	cfg      Config
	log      *zap.Logger
}

// New creates a Client. A nil logger disables logging.
func New(provider llm.Provider, speech llm.SpeechSynthesizer, cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{provider: provider, speech: speech, cfg: cfg, log: log.Named("tutor")}
}

// GenerateLessonContext returns reading instructions and material.
func (c *Client) GenerateLessonContext(ctx context.Context, level curriculum.Level, topic string) LessonContext {
	var out struct {
		Intro   string `json:"intro"`
		Content string `json:"content"`
	}
	err := c.call(ctx, PurposeLessonContext, LessonContextSchema, buildLessonContextMessage(level, topic), c.cfg.Temperature, &out)
	if err == nil && out.Content == "" {
		err = invalid(PurposeLessonContext, "empty content")
	}
	if err != nil {
		return pick(c.fallback(PurposeLessonContext, err), lessonContextUnparseable, lessonContextFailed)
	}
	return LessonContext{Intro: out.Intro, Content: out.Content}
}

// GenerateListeningChallenge returns a script and a comprehension question.
func (c *Client) GenerateListeningChallenge(ctx context.Context, level curriculum.Level, topic string) ListeningChallenge {
	var out struct {
		Script   string `json:"script"`
		Question string `json:"question"`
	}
	err := c.call(ctx, PurposeListening, ListeningSchema, buildListeningMessage(level, topic), c.cfg.Temperature, &out)
	if err == nil && (out.Script == "" || out.Question == "") {
		err = invalid(PurposeListening, "empty script or question")
	}
	if err != nil {
		return pick(c.fallback(PurposeListening, err), listeningUnparseable, listeningFailed)
	}
	return ListeningChallenge{Script: out.Script, Question: out.Question}
}

// EvaluateTextSubmission grades userText against promptContext. Missing
// fields default to an incorrect, zero-score verdict.
func (c *Client) EvaluateTextSubmission(ctx context.Context, level curriculum.Level, topic, userText, promptContext string, errorTokens []string) Evaluation {
	var out struct {
		Correct       *bool    `json:"correct"`
		Feedback      *string  `json:"feedback"`
		Score         *int     `json:"score"`
		ErrorKeywords []string `json:"errorKeywords"`
	}
	msg := buildEvaluationMessage(level, topic, userText, promptContext, errorTokens)
	if err := c.call(ctx, PurposeEvaluate, EvaluationSchema, msg, c.cfg.EvalTemperature, &out); err != nil {
		return cloneEvaluation(pick(c.fallback(PurposeEvaluate, err), evaluationUnparseable, evaluationFailed))
	}

	ev := Evaluation{
		Feedback:      evaluationUnparseable.Feedback,
		ErrorKeywords: []string{},
	}
	if out.Correct != nil {
		ev.Correct = *out.Correct
	}
	if out.Feedback != nil {
		ev.Feedback = *out.Feedback
	}
	if out.Score != nil {
		ev.Score = min(max(*out.Score, 0), 100)
	}
	for _, k := range out.ErrorKeywords {
		if k = strings.TrimSpace(k); k != "" {
			ev.ErrorKeywords = append(ev.ErrorKeywords, k)
		}
	}
	return ev
}

// GenerateTutorReply answers the learner's last roleplay line. history
// should include that line; only the trailing HistoryWindow turns are sent.
func (c *Client) GenerateTutorReply(ctx context.Context, level curriculum.Level, topic string, history []Turn, lastUserText string) TutorReply {
	var out struct {
		TutorText  string `json:"tutorText"`
		Feedback   string `json:"feedback"`
		Correction string `json:"correction"`
	}
	msg := buildTutorReplyMessage(level, topic, history, lastUserText)
	err := c.call(ctx, PurposeTutorReply, TutorReplySchema, msg, c.cfg.Temperature, &out)
	if err == nil && out.TutorText == "" {
		err = invalid(PurposeTutorReply, "empty tutor text")
	}
	if err != nil {
		return pick(c.fallback(PurposeTutorReply, err), tutorReplyUnparseable, tutorReplyFailed)
	}
	return TutorReply{TutorText: out.TutorText, Feedback: out.Feedback, Correction: out.Correction}
}

// GenerateFinalReview returns the dictation phrase and speaking prompt.
func (c *Client) GenerateFinalReview(ctx context.Context, level curriculum.Level, topic string) FinalReview {
	var out struct {
		DictationPhrase string `json:"dictationPhrase"`
		SpeakingPrompt  string `json:"speakingPrompt"`
	}
	err := c.call(ctx, PurposeFinalReview, FinalReviewSchema, buildFinalReviewMessage(level, topic), c.cfg.Temperature, &out)
	if err == nil && (out.DictationPhrase == "" || out.SpeakingPrompt == "") {
		err = invalid(PurposeFinalReview, "empty dictation phrase or speaking prompt")
	}
	if err != nil {
		return pick(c.fallback(PurposeFinalReview, err), finalReviewUnparseable, finalReviewFailed)
	}
	return FinalReview{DictationPhrase: out.DictationPhrase, SpeakingPrompt: out.SpeakingPrompt}
}

// GenerateReinforcement returns an exercise targeting errorTokens.
func (c *Client) GenerateReinforcement(ctx context.Context, errorTokens []string) Reinforcement {
	var out struct {
		Question      string `json:"question"`
		CorrectAnswer string `json:"correctAnswer"`
		Type          string `json:"type"`
	}
	err := c.call(ctx, PurposeReinforcement, ReinforcementSchema, buildReinforcementMessage(errorTokens), c.cfg.Temperature, &out)
	if err == nil && (out.Question == "" || strings.TrimSpace(out.CorrectAnswer) == "") {
		err = invalid(PurposeReinforcement, "empty question or answer")
	}
	if err != nil {
		return pick(c.fallback(PurposeReinforcement, err), reinforcementUnparseable, reinforcementFailed)
	}

	typ := ExerciseType(out.Type)
	if typ != ExerciseFillBlank {
		typ = ExerciseTranslation
	}
	return Reinforcement{Question: out.Question, CorrectAnswer: out.CorrectAnswer, Type: typ}
}

// GenerateProfileImprovement rewrites bio. On failure the bio comes back
// unchanged.
func (c *Client) GenerateProfileImprovement(ctx context.Context, bio string, level curriculum.Level) ProfileImprovement {
	var out struct {
		ImprovedText string `json:"improvedText"`
		Feedback     string `json:"feedback"`
	}
	err := c.call(ctx, PurposeProfile, ProfileImprovementSchema, buildProfileMessage(bio, level), c.cfg.Temperature, &out)
	if err == nil && strings.TrimSpace(out.ImprovedText) == "" {
		err = invalid(PurposeProfile, "empty improved text")
	}
	if err != nil {
		fb := pick(c.fallback(PurposeProfile, err), profileUnparseableFeedback, profileFailedFeedback)
		return ProfileImprovement{ImprovedText: bio, Feedback: fb}
	}
	return ProfileImprovement{ImprovedText: out.ImprovedText, Feedback: out.Feedback}
}

// GenerateMiniGame returns a word-order puzzle. The target sentence is
// whitespace-normalized (words joined by single spaces), since a solved
// puzzle is the chosen words joined that way. If the scrambled words are
// not a permutation of the sentence's words, they are rebuilt from the
// sentence so the puzzle stays solvable.
func (c *Client) GenerateMiniGame(ctx context.Context, level curriculum.Level) MiniGame {
	var out struct {
		Scrambled       []string `json:"scrambled"`
		CorrectSentence string   `json:"correctSentence"`
	}
	err := c.call(ctx, PurposeMiniGame, MiniGameSchema, buildMiniGameMessage(level), c.cfg.Temperature, &out)
	words := strings.Fields(out.CorrectSentence)
	if err == nil && len(words) == 0 {
		err = invalid(PurposeMiniGame, "empty sentence")
	}
	if err != nil {
		g := pick(c.fallback(PurposeMiniGame, err), miniGameUnparseable, miniGameFailed)
		return MiniGame{Scrambled: slices.Clone(g.Scrambled), CorrectSentence: g.CorrectSentence}
	}

	sentence := strings.Join(words, " ")
	if !isPermutation(out.Scrambled, words) {
		c.log.Warn("mini-game words do not match sentence, rebuilding",
			zap.Strings("scrambled", out.Scrambled), zap.String("sentence", sentence))
		out.Scrambled = Rotate(words)
	}
	return MiniGame{Scrambled: out.Scrambled, CorrectSentence: sentence}
}

// DefineWord explains word as used in context.
func (c *Client) DefineWord(ctx context.Context, word, context string) WordDefinition {
	var out struct {
		Definition string `json:"definition"`
		Example    string `json:"example"`
	}
	err := c.call(ctx, PurposeDefine, DefinitionSchema, buildDefinitionMessage(word, context), c.cfg.EvalTemperature, &out)
	if err == nil && out.Definition == "" {
		err = invalid(PurposeDefine, "empty definition")
	}
	if err != nil {
		return pick(c.fallback(PurposeDefine, err), definitionUnparseable, definitionFailed)
	}
	return WordDefinition{Definition: out.Definition, Example: out.Example}
}

// SynthesizeSpeech returns mono s16le PCM at llm.SpeechSampleRate, or nil
// when speech is unavailable or the call fails.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) []byte {
	if c.speech == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	pcm, err := c.speech.Synthesize(ctx, text)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.log.Warn("speech synthesis failed", zap.Int("chars", len(text)), zap.Error(err))
		}
		return nil
	}
	return pcm
}

// HasSpeech reports whether a speech backend is configured.
func (c *Client) HasSpeech() bool {
	return c.speech != nil
}

// call sends one structured request and decodes the reply into out.
func (c *Client) call(ctx context.Context, purpose string, schema *llm.Schema, userMsg string, temperature float64, out any) error {
	if c.provider == nil {
		return errNoProvider
	}

	ctx = llm.WithPurpose(ctx, purpose)
	req := llm.Request{
		System: tutorSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      schema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: temperature,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("%s generation: %w", purpose, err)
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("parse %s response: %w", purpose, err),
		}
	}
	return nil
}

// fallback logs err and reports whether the reply arrived but could not
// be used (true) or the call failed (false).
func (c *Client) fallback(purpose string, err error) bool {
	reason := llm.Reason(err)
	unparseable := reason == llm.ReasonInvalid || reason == llm.ReasonTruncated
	c.log.Warn("content request failed, using fallback",
		zap.String("purpose", purpose),
		zap.String("reason", reason),
		zap.Bool("unparseable", unparseable),
		zap.Error(err),
	)
	return unparseable
}

func invalid(purpose, reason string) error {
	return &llm.ErrInvalidResponse{Err: fmt.Errorf("%s: %s", purpose, reason)}
}

func pick[T any](unparseable bool, ifUnparseable, ifFailed T) T {
	if unparseable {
		return ifUnparseable
	}
	return ifFailed
}

func cloneEvaluation(e Evaluation) Evaluation {
	e.ErrorKeywords = slices.Clone(e.ErrorKeywords)
	if e.ErrorKeywords == nil {
		e.ErrorKeywords = []string{}
	}
	return e
}

// isPermutation reports whether a and b hold the same words with the same
// multiplicities.
func isPermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(b))
	for _, w := range b {
		counts[w]++
	}
	for _, w := range a {
		w = strings.TrimSpace(w)
		if counts[w] == 0 {
			return false
		}
		counts[w]--
	}
	return true
}

// Rotate returns a copy of words shifted right by half their length,
// rounded up. Sentences of distinct words never come back in order.
func Rotate(words []string) []string {
	out := make([]string, len(words))
	if len(words) == 0 {
		return out
	}
	shift := (len(words) + 1) / 2
	for i, w := range words {
		out[(i+shift)%len(words)] = w
	}
	return out
}
