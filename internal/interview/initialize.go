package interview

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

const (
	// DefaultCVContextLength is the number of CV runes kept in the candidate context.
	DefaultCVContextLength = 1000

	defaultSeniority     = "mid"
	defaultCandidateName = "Candidate"
)

// DefaultMaxQuestions is used for phases without a configured cap.
var DefaultMaxQuestions = map[Phase]int{
	PhaseKnockout:   3,
	PhaseTechnical:  5,
	PhaseSoftSkills: 3,
}

var ErrInvalidState = errors.New("invalid interview state")

// Config holds the per-deployment interview settings.
type Config struct {
	MaxQuestions    map[Phase]int
	CVContextLength int
}

// Initialize prepares st for a superstep. A state without phase counters is a new
// session: it starts in knockout with zeroed counters. Missing defaults are filled in
// on every call.
func Initialize(st *State, cfg Config) error {
	if st == nil {
		return fmt.Errorf("%w: state is nil", ErrInvalidState)
	}
	if strings.TrimSpace(st.ApplicationID) == "" {
		return fmt.Errorf("%w: application id is required", ErrInvalidState)
	}

	if st.PhaseCounter == nil {
		st.CurrentPhase = PhaseKnockout
		st.CompletedPhases = nil
		st.PhaseCounter = make(map[Phase]int, len(QuestionPhases))
		st.RejectionReason = ""
	}
	if st.CurrentPhase == "" {
		st.CurrentPhase = PhaseKnockout
	}

	limits := cfg.MaxQuestions
	if limits == nil {
		limits = DefaultMaxQuestions
	}
	if st.MaxQuestions == nil {
		st.MaxQuestions = maps.Clone(limits)
	}
	for _, p := range QuestionPhases {
		if _, ok := st.MaxQuestions[p]; !ok {
			st.MaxQuestions[p] = limits[p]
		}
		if _, ok := st.PhaseCounter[p]; !ok {
			st.PhaseCounter[p] = 0
		}
	}

	if st.Candidate.Name == "" {
		st.Candidate.Name = defaultCandidateName
	}
	if st.Candidate.Seniority == "" {
		st.Candidate.Seniority = defaultSeniority
	}

	cvLimit := cfg.CVContextLength
	if cvLimit <= 0 {
		cvLimit = DefaultCVContextLength
	}
	if runes := []rune(st.Candidate.CVText); len(runes) > cvLimit {
		st.Candidate.CVText = string(runes[:cvLimit])
	}

	st.CandidateMessage = strings.TrimSpace(st.CandidateMessage)
	st.NextQuestion = ""
	if st.RejectionReason != "" {
		st.ShouldContinue = false
	}

	return nil
}
