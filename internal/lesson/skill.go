package lesson

import "slices"

// Skill is the activity a session is currently in.
type Skill int

const (
	SkillReading       Skill = iota // Read generated material
	SkillWriting                    // Write a short paragraph on the topic
	SkillListening                  // Listen to a script and answer a question
	SkillRoleplay                   // Converse with the tutor
	SkillTest                       // Dictation then speaking
	SkillReinforcement              // Remedial exercise from recent mistakes
	SkillMiniGame                   // Word-order bonus round
	SkillSuccess                    // Lesson completed
)

var skillNames = [...]string{
	SkillReading:       "READING",
	SkillWriting:       "WRITING",
	SkillListening:     "LISTENING",
	SkillRoleplay:      "ROLEPLAY",
	SkillTest:          "TEST",
	SkillReinforcement: "REINFORCEMENT",
	SkillMiniGame:      "MINIGAME",
	SkillSuccess:       "SUCCESS",
}

func (s Skill) String() string {
	if s < 0 || int(s) >= len(skillNames) {
		return "UNKNOWN"
	}
	return skillNames[s]
}

// StepCount is the number of numbered steps, READING through TEST.
const StepCount = 5

// stepSkills maps a step index to the skill entered for it.
var stepSkills = [StepCount]Skill{
	SkillReading,
	SkillWriting,
	SkillListening,
	SkillRoleplay,
	SkillTest,
}

// transitions lists the skills reachable from each skill. Every phase
// change goes through this table.
var transitions = map[Skill][]Skill{
	SkillReading:       {SkillWriting, SkillMiniGame},
	SkillWriting:       {SkillListening, SkillMiniGame},
	SkillListening:     {SkillRoleplay, SkillMiniGame},
	SkillRoleplay:      {SkillTest, SkillMiniGame},
	SkillTest:          {SkillReinforcement, SkillSuccess},
	SkillReinforcement: {SkillSuccess},
	SkillMiniGame:      {SkillWriting, SkillListening, SkillRoleplay, SkillTest},
}

// canTransition reports whether the table allows from -> to. Re-entering
// the current skill is allowed except for MINIGAME and SUCCESS.
func canTransition(from, to Skill) bool {
	if from == to {
		return from != SkillSuccess && from != SkillMiniGame
	}
	return slices.Contains(transitions[from], to)
}

// TestStage is the sub-state of the TEST skill.
type TestStage int

const (
	StageDictation TestStage = iota
	StageSpeaking
	StageDone
)

func (s TestStage) String() string {
	switch s {
	case StageDictation:
		return "dictation"
	case StageSpeaking:
		return "speaking"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
