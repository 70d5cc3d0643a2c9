package interview

import "strings"

// Node identifies a step of the interview graph.
type Node string

const (
	NodeInitialize         Node = "initialize"
	NodeKnockout           Node = "knockout"
	NodeEvaluateKnockout   Node = "evaluate_knockout"
	NodeTechnical          Node = "technical"
	NodeEvaluateTechnical  Node = "evaluate_technical"
	NodeSoftSkills         Node = "soft_skills"
	NodeEvaluateSoftSkills Node = "evaluate_soft_skills"
	NodeClosing            Node = "closing"
)

type routeKey struct {
	phase    Phase
	answered bool
}

var transitions = map[routeKey]Node{
	{PhaseKnockout, false}:   NodeKnockout,
	{PhaseKnockout, true}:    NodeEvaluateKnockout,
	{PhaseTechnical, false}:  NodeTechnical,
	{PhaseTechnical, true}:   NodeEvaluateTechnical,
	{PhaseSoftSkills, false}: NodeSoftSkills,
	{PhaseSoftSkills, true}:  NodeEvaluateSoftSkills,
	{PhaseClosing, false}:    NodeClosing,
	{PhaseClosing, true}:     NodeClosing,
}

// Route picks the next node for st. The second result is false when the current
// phase is unknown; such states are sent to closing.
func Route(st *State) (Node, bool) {
	if !st.ShouldContinue {
		return NodeClosing, true
	}

	node, ok := transitions[routeKey{phase: st.CurrentPhase, answered: strings.TrimSpace(st.CandidateMessage) != ""}]
	if !ok {
		return NodeClosing, false
	}

	return node, true
}
