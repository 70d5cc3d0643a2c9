package step

import "github.com/spigell/interview-agent/internal/interview"

// Request is one inbound candidate message plus the state snapshot owned by the caller.
type Request struct {
	ApplicationID    string    `json:"application_id" validate:"required"`
	CandidateMessage string    `json:"candidate_message"`
	State            *Snapshot `json:"interview_state" validate:"required"`
}

// Snapshot is the wire form of the interview state.
type Snapshot struct {
	JobPostingID        string            `json:"job_posting_id"`
	CandidateID         string            `json:"candidate_id"`
	CurrentPhase        string            `json:"current_phase" validate:"omitempty,oneof=knockout technical soft_skills closing"`
	CompletedPhases     []string          `json:"completed_phases" validate:"omitempty,dive,oneof=knockout technical soft_skills"`
	ConversationHistory []Message         `json:"conversation_history" validate:"omitempty,dive"`
	PhaseCounter        map[string]int    `json:"phase_counter" validate:"omitempty,dive,keys,oneof=knockout technical soft_skills,endkeys,gte=0"`
	KnockoutScores      []map[string]any  `json:"knockout_scores"`
	TechnicalScores     []map[string]any  `json:"technical_scores"`
	SoftSkillsScores    []map[string]any  `json:"soft_skills_scores"`
	JobContext          JobContext        `json:"job_context"`
	CandidateContext    *CandidateContext `json:"candidate_context,omitempty" validate:"omitempty"`
	MaxQuestions        map[string]int    `json:"max_questions_per_phase" validate:"omitempty,dive,keys,oneof=knockout technical soft_skills,endkeys,gte=0,lte=20"`
	RejectionReason     *string           `json:"rejection_reason,omitempty"`
}

type Message struct {
	Role       string `json:"role" validate:"required,oneof=agent candidate"`
	Content    string `json:"content" validate:"required"`
	Timestamp  string `json:"timestamp,omitempty"`
	Category   string `json:"category" validate:"required,oneof=knockout technical soft_skills closing"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

type JobContext struct {
	Title            string         `json:"title" validate:"required"`
	Description      string         `json:"description,omitempty"`
	RequiredSkills   map[string]any `json:"required_skills,omitempty"`
	NiceToHaveSkills map[string]any `json:"nice_to_have_skills,omitempty"`
	KnockoutCriteria []string       `json:"knockout_criteria,omitempty"`
	CustomQuestions  []string       `json:"custom_questions,omitempty"`
}

type CandidateContext struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	CVText         string `json:"cv_text,omitempty"`
	Seniority      string `json:"seniority,omitempty"`
	ExpectedSalary *int   `json:"expected_salary,omitempty" validate:"omitempty,gte=0"`
}

type ScoresSummary struct {
	KnockoutCompleted   int `json:"knockout_completed"`
	TechnicalCompleted  int `json:"technical_completed"`
	SoftSkillsCompleted int `json:"soft_skills_completed"`
	TotalQuestions      int `json:"total_questions"`
}

// Result is the outcome of one step.
type Result struct {
	NextQuestion    string                 `json:"next_question"`
	Score           float64                `json:"score"`
	Phase           string                 `json:"phase"`
	ShouldContinue  bool                   `json:"should_continue"`
	ScoresSummary   ScoresSummary          `json:"scores_summary"`
	RejectionReason *string                `json:"rejection_reason"`
	OrderIndex      int                    `json:"order_index"`
	NewMessages     []Message              `json:"new_messages"`
	FinalScores     *interview.FinalScores `json:"final_scores,omitempty"`
	State           *Snapshot              `json:"interview_state"`
}
