package lessonplay

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/tutor"
	"github.com/abhisek/myenglish/internal/ui/components"
	"github.com/abhisek/myenglish/internal/ui/layout"
	"github.com/abhisek/myenglish/internal/ui/theme"
)

var stepLabels = []string{"Reading", "Writing", "Listening", "Roleplay", "Test"}

// roleplayMinMessages mirrors the controller's advance rule for the
// counter shown to the learner.
const roleplayMinMessages = 4

func (s *LessonScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return layout.Centered("\n\n"+s.errMsg+"\n\npress any key to go back", width,
			lipgloss.NewStyle().Foreground(theme.Error))
	case s.confirmExit:
		return layout.Centered("\n\nLeave this lesson?\n\nYour progress in it will be lost.\n\n[Y] Leave   [N] Stay", width,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true))
	case s.state.Session == nil:
		return layout.Centered("\n\n"+s.spin.View()+" Preparing your lesson...", width,
			lipgloss.NewStyle().Foreground(theme.TextDim))
	}

	sess := s.state.Session
	cw := max(width-4, 20)

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(components.NewStepProgress(stepLabels, sess.StepIndex, cw-2).View())
	b.WriteString("\n\n")
	b.WriteString(renderBadge(sess))
	b.WriteString("\n")
	if sess.Intro != "" {
		b.WriteString(layout.Paragraph(sess.Intro, width, theme.Hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch sess.Skill {
	case lesson.SkillReading:
		b.WriteString(s.renderReading(sess, cw))
	case lesson.SkillWriting:
		b.WriteString(s.renderWriting(sess, cw))
	case lesson.SkillListening:
		b.WriteString(s.renderListening(sess, cw))
	case lesson.SkillRoleplay:
		b.WriteString(s.renderRoleplay(sess, cw, height))
	case lesson.SkillTest:
		b.WriteString(s.renderTest(sess, cw))
	case lesson.SkillMiniGame:
		b.WriteString(s.renderMiniGame(sess, cw))
	case lesson.SkillReinforcement:
		b.WriteString(s.renderReinforcement(sess, cw))
	}

	if sess.Lookup != nil {
		b.WriteString("\n")
		b.WriteString(indent(renderLookup(sess.Lookup, s.spin.View(), cw)))
	}
	if fb := sess.Feedback; fb != nil {
		b.WriteString("\n")
		b.WriteString(indent(components.Banner(fb.Text, fb.Kind == lesson.FeedbackSuccess, cw)))
	}
	if s.pending || sess.Processing {
		b.WriteString("\n  " + s.spin.View() + lipgloss.NewStyle().Foreground(theme.TextDim).Render(" Thinking..."))
	}
	if s.notice != "" {
		b.WriteString("\n  " + lipgloss.NewStyle().Foreground(theme.Accent).Render(s.notice))
	}
	return b.String()
}

func (s *LessonScreen) renderReading(sess *lesson.Session, cw int) string {
	var b strings.Builder
	b.WriteString(indent(components.Card(sess.Content, cw)))
	b.WriteString("\n")
	b.WriteString(s.audioLine(lesson.AudioPassage, "listen to the text"))
	if s.lookupMode {
		b.WriteString("\n  " + s.input.View())
	}
	return b.String()
}

func (s *LessonScreen) renderWriting(sess *lesson.Session, cw int) string {
	var b strings.Builder
	b.WriteString(indent(components.Card(sess.Content, cw)))
	b.WriteString("\n\n  ")
	b.WriteString(s.input.View())
	return b.String()
}

func (s *LessonScreen) renderListening(sess *lesson.Session, cw int) string {
	var b strings.Builder
	b.WriteString(s.audioLine(lesson.AudioPassage, "replay the recording"))
	b.WriteString("\n")
	if sess.Accepted && sess.Listening != nil {
		b.WriteString(indent(components.Card(sess.Listening.Script, cw)))
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(theme.Label.Render(sess.Content))
	b.WriteString("\n\n  ")
	b.WriteString(s.input.View())
	return b.String()
}

func (s *LessonScreen) renderRoleplay(sess *lesson.Session, cw, height int) string {
	lines := renderTranscript(sess.Transcript, cw)

	// Keep the latest lines on screen.
	budget := max(height-18, 4)
	if len(lines) > budget {
		lines = lines[len(lines)-budget:]
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString("  " + l + "\n")
	}
	b.WriteString("\n  ")
	b.WriteString(s.input.View())
	b.WriteString("\n  ")
	counter := fmt.Sprintf("Messages: %d/%d", min(len(sess.Transcript), roleplayMinMessages), roleplayMinMessages)
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(counter))
	return b.String()
}

func renderTranscript(msgs []lesson.Message, cw int) []string {
	wrap := lipgloss.NewStyle().Width(max(cw-4, 10))
	var out []string
	for _, m := range msgs {
		switch m.Role {
		case tutor.RoleModel:
			out = append(out, strings.Split(wrap.Render(theme.TutorLine.Render("Leo: ")+m.Text), "\n")...)
			if m.Correction != "" {
				out = append(out, theme.CorrectionLine.Render("  ✎ "+m.Correction))
			}
			if m.Feedback != "" {
				out = append(out, strings.Split(wrap.Render(theme.Hint.Render("  "+m.Feedback)), "\n")...)
			}
		default:
			out = append(out, strings.Split(wrap.Render(theme.UserLine.Render("You: ")+m.Text), "\n")...)
		}
	}
	return out
}

func (s *LessonScreen) renderTest(sess *lesson.Session, cw int) string {
	t := sess.Test
	if t == nil {
		return ""
	}
	var b strings.Builder
	switch t.Stage {
	case lesson.StageDictation:
		b.WriteString("  " + theme.Label.Render("Dictation: listen and type the sentence."))
		b.WriteString("\n")
		b.WriteString(s.audioLine(lesson.AudioDictation, "play the sentence"))
		b.WriteString("\n\n  ")
		b.WriteString(s.input.View())
	case lesson.StageSpeaking, lesson.StageDone:
		b.WriteString("  " + theme.Label.Render("Speaking: answer out loud."))
		b.WriteString("\n")
		b.WriteString(indent(components.Card(t.SpeakingPrompt, cw)))
		if t.Stage == lesson.StageSpeaking {
			b.WriteString("\n  " + theme.Hint.Render("Press Enter to record your answer."))
		}
	}
	return b.String()
}

func (s *LessonScreen) renderMiniGame(sess *lesson.Session, cw int) string {
	g := sess.MiniGame
	if g == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("  " + theme.Label.Render("Mini-game! Put the words in order."))
	b.WriteString("\n\n")
	b.WriteString(indent(components.Card(components.SentenceView(g.Words, g.Chosen), cw)))
	b.WriteString("\n\n")
	if g.Solved {
		b.WriteString("  " + theme.Correct.Render("✓ "+g.CorrectSentence))
	} else {
		b.WriteString(indent(s.bank.View()))
	}
	return b.String()
}

func (s *LessonScreen) renderReinforcement(sess *lesson.Session, cw int) string {
	r := sess.Reinforcement
	if r == nil {
		return ""
	}
	kind := "Translate"
	if r.Type == tutor.ExerciseFillBlank {
		kind = "Fill in the blank"
	}
	var b strings.Builder
	b.WriteString("  " + theme.Label.Render("Review your mistakes: "+kind))
	b.WriteString("\n")
	b.WriteString(indent(components.Card(r.Question, cw)))
	if !r.Resolved {
		b.WriteString("\n\n  ")
		b.WriteString(s.input.View())
	}
	return b.String()
}

func renderLookup(l *lesson.Lookup, spin string, cw int) string {
	title := theme.Label.Render(l.Word)
	if l.Loading {
		return components.Card(title+"\n"+spin+" looking it up...", cw)
	}
	body := l.Definition.Definition
	if ex := l.Definition.Example; ex != "" && ex != "-" {
		body += "\n" + theme.Hint.Render("e.g. "+ex)
	}
	return components.Card(title+"\n"+body+"\n"+theme.Hint.Render("Esc to close"), cw)
}

func renderBadge(sess *lesson.Session) string {
	label := sess.Skill.String()
	color := theme.Primary
	switch sess.Skill {
	case lesson.SkillMiniGame:
		color = theme.Highlight
	case lesson.SkillReinforcement:
		color = theme.Accent
	}
	return "  " + lipgloss.NewStyle().
		Foreground(theme.BgDark).
		Background(color).
		Bold(true).
		Padding(0, 1).
		Render(label) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("  "+sess.Topic())
}

func (s *LessonScreen) audioLine(key, action string) string {
	if s.state.AudioReady[key] {
		return "  " + lipgloss.NewStyle().Foreground(theme.Secondary).Render("♪ Ctrl+P to "+action)
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render("♪ preparing audio...")
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
