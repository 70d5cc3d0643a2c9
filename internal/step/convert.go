package step

import (
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/interview-agent/internal/interview"
)

func toState(req *Request) (*interview.State, error) {
	snap := req.State

	st := &interview.State{
		ApplicationID:    req.ApplicationID,
		JobPostingID:     snap.JobPostingID,
		CandidateID:      snap.CandidateID,
		CurrentPhase:     interview.Phase(snap.CurrentPhase),
		CandidateMessage: req.CandidateMessage,
		ShouldContinue:   true,
		Job: interview.JobContext{
			Title:            snap.JobContext.Title,
			Description:      snap.JobContext.Description,
			RequiredSkills:   snap.JobContext.RequiredSkills,
			NiceToHaveSkills: snap.JobContext.NiceToHaveSkills,
			KnockoutCriteria: snap.JobContext.KnockoutCriteria,
			CustomQuestions:  snap.JobContext.CustomQuestions,
		},
	}

	if c := snap.CandidateContext; c != nil {
		st.Candidate = interview.CandidateContext{
			Name:           c.Name,
			Email:          c.Email,
			CVText:         c.CVText,
			Seniority:      c.Seniority,
			ExpectedSalary: c.ExpectedSalary,
		}
	}

	for _, p := range snap.CompletedPhases {
		st.CompletedPhases = append(st.CompletedPhases, interview.Phase(p))
	}

	// Stored transcripts are not guaranteed to arrive sorted. Indexes were checked to be 0..n-1.
	history := slices.Clone(snap.ConversationHistory)
	slices.SortFunc(history, func(a, b Message) int { return a.OrderIndex - b.OrderIndex })
	for _, m := range history {
		st.Messages = append(st.Messages, interview.Message{
			Role:       interview.Role(m.Role),
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			Category:   interview.Phase(m.Category),
			OrderIndex: m.OrderIndex,
		})
	}

	st.PhaseCounter = phaseMap(snap.PhaseCounter)
	st.MaxQuestions = phaseMap(snap.MaxQuestions)

	var err error
	if st.KnockoutScores, err = decodeScores("knockout_scores", snap.KnockoutScores); err != nil {
		return nil, err
	}
	if st.TechnicalScores, err = decodeScores("technical_scores", snap.TechnicalScores); err != nil {
		return nil, err
	}
	if st.SoftSkillsScores, err = decodeScores("soft_skills_scores", snap.SoftSkillsScores); err != nil {
		return nil, err
	}

	if snap.RejectionReason != nil {
		st.RejectionReason = *snap.RejectionReason
	}

	return st, nil
}

func phaseMap(in map[string]int) map[interview.Phase]int {
	if in == nil {
		return nil
	}
	out := make(map[interview.Phase]int, len(in))
	for k, v := range in {
		out[interview.Phase(k)] = v
	}
	return out
}

// decodeScores accepts loosely typed score entries, e.g. scores sent as strings.
func decodeScores(field string, raw []map[string]any) ([]interview.ScoreEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []interview.ScoreEntry
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &entries,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: field, Message: err.Error()}}}
	}

	for i, e := range entries {
		if e.Score < 0 || e.Score > 5 {
			return nil, &ValidationError{Fields: []FieldError{{
				Field:   fmt.Sprintf("%s[%d].score", field, i),
				Message: "must be between 0 and 5",
			}}}
		}
	}

	return entries, nil
}

func encodeScores(entries []interview.ScoreEntry) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		var m map[string]any
		if err := mapstructure.Decode(e, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func toMessages(in []interview.Message) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		out = append(out, Message{
			Role:       string(m.Role),
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			Category:   string(m.Category),
			OrderIndex: m.OrderIndex,
		})
	}
	return out
}

func toSnapshot(st *interview.State) (*Snapshot, error) {
	snap := &Snapshot{
		JobPostingID:        st.JobPostingID,
		CandidateID:         st.CandidateID,
		CurrentPhase:        st.CurrentPhase.String(),
		CompletedPhases:     make([]string, 0, len(st.CompletedPhases)),
		ConversationHistory: toMessages(st.Messages),
		PhaseCounter:        make(map[string]int, len(st.PhaseCounter)),
		MaxQuestions:        make(map[string]int, len(st.MaxQuestions)),
		JobContext: JobContext{
			Title:            st.Job.Title,
			Description:      st.Job.Description,
			RequiredSkills:   st.Job.RequiredSkills,
			NiceToHaveSkills: st.Job.NiceToHaveSkills,
			KnockoutCriteria: st.Job.KnockoutCriteria,
			CustomQuestions:  st.Job.CustomQuestions,
		},
		CandidateContext: &CandidateContext{
			Name:           st.Candidate.Name,
			Email:          st.Candidate.Email,
			CVText:         st.Candidate.CVText,
			Seniority:      st.Candidate.Seniority,
			ExpectedSalary: st.Candidate.ExpectedSalary,
		},
	}

	for _, p := range st.CompletedPhases {
		snap.CompletedPhases = append(snap.CompletedPhases, p.String())
	}
	for p, v := range st.PhaseCounter {
		snap.PhaseCounter[p.String()] = v
	}
	for p, v := range st.MaxQuestions {
		snap.MaxQuestions[p.String()] = v
	}
	if st.RejectionReason != "" {
		reason := st.RejectionReason
		snap.RejectionReason = &reason
	}

	var err error
	if snap.KnockoutScores, err = encodeScores(st.KnockoutScores); err != nil {
		return nil, err
	}
	if snap.TechnicalScores, err = encodeScores(st.TechnicalScores); err != nil {
		return nil, err
	}
	if snap.SoftSkillsScores, err = encodeScores(st.SoftSkillsScores); err != nil {
		return nil, err
	}

	return snap, nil
}
