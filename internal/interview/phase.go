package interview

import "fmt"

// Phase is a stage of the interview.
type Phase string

const (
	PhaseKnockout   Phase = "knockout"
	PhaseTechnical  Phase = "technical"
	PhaseSoftSkills Phase = "soft_skills"
	PhaseClosing    Phase = "closing"
)

// QuestionPhases are the phases that ask questions, in interview order.
var QuestionPhases = []Phase{PhaseKnockout, PhaseTechnical, PhaseSoftSkills}

var nextPhase = map[Phase]Phase{
	PhaseKnockout:   PhaseTechnical,
	PhaseTechnical:  PhaseSoftSkills,
	PhaseSoftSkills: PhaseClosing,
	PhaseClosing:    PhaseClosing,
}

// Next returns the phase that follows p. Closing and unknown phases lead to closing.
func (p Phase) Next() Phase {
	if next, ok := nextPhase[p]; ok {
		return next
	}
	return PhaseClosing
}

// Valid reports whether p is one of the four known phases.
func (p Phase) Valid() bool {
	_, ok := nextPhase[p]
	return ok
}

// AsksQuestions reports whether p has generator and evaluator nodes.
func (p Phase) AsksQuestions() bool {
	return p.Valid() && p != PhaseClosing
}

func (p Phase) String() string {
	return string(p)
}

// ParsePhase converts s to a Phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown interview phase %q", s)
	}
	return p, nil
}

// Role identifies the author of a transcript message.
type Role string

const (
	RoleAgent     Role = "agent"
	RoleCandidate Role = "candidate"
)
