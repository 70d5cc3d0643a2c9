package interview

import (
	"slices"
	"time"

	"github.com/spigell/interview-agent/internal/scoring"
)

// Message is one transcript entry.
type Message struct {
	Role       Role   `json:"role" mapstructure:"role"`
	Content    string `json:"content" mapstructure:"content"`
	Timestamp  string `json:"timestamp,omitempty" mapstructure:"timestamp"`
	Category   Phase  `json:"category" mapstructure:"category"`
	OrderIndex int    `json:"order_index" mapstructure:"order_index"`
}

// ScoreEntry is the evaluation of one answered question.
type ScoreEntry struct {
	Question    string  `json:"question" mapstructure:"question"`
	Answer      string  `json:"answer" mapstructure:"answer"`
	Score       float64 `json:"score" mapstructure:"score"`
	Explanation string  `json:"explanation" mapstructure:"explanation"`
	AutoReject  bool    `json:"auto_reject,omitempty" mapstructure:"auto_reject,omitempty"`
	Difficulty  string  `json:"difficulty,omitempty" mapstructure:"difficulty,omitempty"`
	Competency  string  `json:"competency,omitempty" mapstructure:"competency,omitempty"`
}

// JobContext describes the job posting the candidate applied to.
type JobContext struct {
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	RequiredSkills   map[string]any `json:"required_skills,omitempty"`
	NiceToHaveSkills map[string]any `json:"nice_to_have_skills,omitempty"`
	KnockoutCriteria []string       `json:"knockout_criteria,omitempty"`
	CustomQuestions  []string       `json:"custom_questions,omitempty"`
}

// CandidateContext describes the candidate being interviewed.
type CandidateContext struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	CVText         string `json:"cv_text,omitempty"`
	Seniority      string `json:"seniority,omitempty"`
	ExpectedSalary *int   `json:"expected_salary,omitempty"`
}

// FinalScores are computed once, by the closing node.
type FinalScores struct {
	CVScore               float64                `json:"cv_score"`
	CVExplanation         string                 `json:"cv_explanation"`
	TechnicalScoreAvg     float64                `json:"technical_score_avg"`
	TechnicalExplanation  string                 `json:"technical_explanation"`
	SoftSkillsScoreAvg    float64                `json:"soft_skills_score_avg"`
	SoftSkillsExplanation string                 `json:"soft_skills_explanation"`
	GlobalScore           float64                `json:"global_score"`
	GlobalExplanation     string                 `json:"global_explanation"`
	Recommendation        scoring.Recommendation `json:"recommendation"`
}

// State is the mutable record of one interview session, threaded through every node.
type State struct {
	ApplicationID string
	JobPostingID  string
	CandidateID   string

	Job       JobContext
	Candidate CandidateContext

	CurrentPhase    Phase
	CompletedPhases []Phase
	Messages        []Message

	// CandidateMessage is the inbound answer of the current step. The evaluator consumes it.
	CandidateMessage string

	KnockoutScores   []ScoreEntry
	TechnicalScores  []ScoreEntry
	SoftSkillsScores []ScoreEntry

	PhaseCounter map[Phase]int
	MaxQuestions map[Phase]int

	ShouldContinue  bool
	NextQuestion    string
	RejectionReason string

	Final *FinalScores
}

// Scores returns the score list of a question phase.
func (s *State) Scores(p Phase) []ScoreEntry {
	switch p {
	case PhaseKnockout:
		return s.KnockoutScores
	case PhaseTechnical:
		return s.TechnicalScores
	case PhaseSoftSkills:
		return s.SoftSkillsScores
	default:
		return nil
	}
}

func (s *State) appendScore(p Phase, e ScoreEntry) {
	switch p {
	case PhaseKnockout:
		s.KnockoutScores = append(s.KnockoutScores, e)
	case PhaseTechnical:
		s.TechnicalScores = append(s.TechnicalScores, e)
	case PhaseSoftSkills:
		s.SoftSkillsScores = append(s.SoftSkillsScores, e)
	}
}

// LastScore returns the most recent score across the question phases, or 0.
func (s *State) LastScore() float64 {
	for _, p := range slices.Backward(QuestionPhases) {
		if scores := s.Scores(p); len(scores) > 0 {
			return scores[len(scores)-1].Score
		}
	}
	return 0
}

// AnsweredQuestions is the number of evaluated answers across all phases.
func (s *State) AnsweredQuestions() int {
	return len(s.KnockoutScores) + len(s.TechnicalScores) + len(s.SoftSkillsScores)
}

func (s *State) appendMessage(role Role, content string, p Phase, at time.Time) Message {
	msg := Message{
		Role:       role,
		Content:    content,
		Timestamp:  at.UTC().Format(time.RFC3339),
		Category:   p,
		OrderIndex: len(s.Messages),
	}
	s.Messages = append(s.Messages, msg)
	return msg
}

// lastQuestion returns the most recent agent message asked in phase p.
func (s *State) lastQuestion(p Phase) (Message, bool) {
	for _, msg := range slices.Backward(s.Messages) {
		if msg.Role == RoleAgent && msg.Category == p {
			return msg, true
		}
	}
	return Message{}, false
}

func (s *State) questionsAsked(p Phase) []string {
	var questions []string
	for _, msg := range s.Messages {
		if msg.Role == RoleAgent && msg.Category == p {
			questions = append(questions, msg.Content)
		}
	}
	return questions
}

// IsCompleted reports whether p was permanently left.
func (s *State) IsCompleted(p Phase) bool {
	return slices.Contains(s.CompletedPhases, p)
}

// completePhase leaves p for good and moves to the next phase.
func (s *State) completePhase(p Phase) {
	if !s.IsCompleted(p) {
		s.CompletedPhases = append(s.CompletedPhases, p)
	}
	s.CurrentPhase = p.Next()
}

func (s *State) limitReached(p Phase) bool {
	return s.PhaseCounter[p] >= s.MaxQuestions[p]
}
