package gemini

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/interview-agent/internal/interview"
)

//go:embed prompts/*.md
var promptFS embed.FS

const (
	technicalCVExcerpt = 800
	noneListed         = "None"
)

var skillLabels = map[string]string{
	"languages":        "Languages",
	"frameworks":       "Frameworks",
	"databases":        "Databases",
	"tools":            "Tools",
	"years_experience": "Years of experience",
}

func loadPrompt(name string) (string, error) {
	data, err := promptFS.ReadFile("prompts/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	return string(data), nil
}

// renderPrompt fills the {{KEY}} placeholders of the named template.
func renderPrompt(name string, vars map[string]string) (string, error) {
	template, err := loadPrompt(name)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template), nil
}

func formatList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	if b.Len() == 0 {
		return noneListed
	}
	return b.String()
}

func formatSkills(skills map[string]any) string {
	if len(skills) == 0 {
		return "No technical skills specified"
	}

	keys := make([]string, 0, len(skills))
	for key := range skills {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		label, ok := skillLabels[key]
		if !ok {
			label = strings.ReplaceAll(key, "_", " ")
		}
		value := formatSkillValue(skills[key])
		if value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
	}
	if len(lines) == 0 {
		return "No technical skills specified"
	}
	return strings.Join(lines, "\n")
}

func formatSkillValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := formatSkillValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

func formatPerformance(p interview.Performance) string {
	switch p.Trend {
	case interview.TrendDeepen:
		return fmt.Sprintf("The candidate is answering VERY WELL (average %.1f/5). Go DEEPER on the last topic and raise the difficulty.", p.RecentAverage)
	case interview.TrendSteady:
		return fmt.Sprintf("The candidate is answering ACCEPTABLY (average %.1f/5). Keep a similar level.", p.RecentAverage)
	case interview.TrendSwitch:
		return fmt.Sprintf("The candidate is answering WEAKLY (average %.1f/5). SWITCH topic or LOWER the complexity.", p.RecentAverage)
	default:
		return "No previous technical questions. This is the first one."
	}
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

func excerpt(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return orDefault(string(runes), "Not provided")
}

func questionPrompt(req interview.QuestionRequest) (string, error) {
	switch req.Phase {
	case interview.PhaseKnockout:
		return renderPrompt("knockout_question", map[string]string{
			"JOB_TITLE":          req.Job.Title,
			"KNOCKOUT_CRITERIA":  formatList(req.Job.KnockoutCriteria),
			"CV_TEXT":            orDefault(req.Candidate.CVText, "Not provided"),
			"PREVIOUS_QUESTIONS": formatList(req.PreviousQuestions),
		})
	case interview.PhaseTechnical:
		return renderPrompt("technical_question", map[string]string{
			"JOB_TITLE":          req.Job.Title,
			"REQUIRED_SKILLS":    formatSkills(req.Job.RequiredSkills),
			"SENIORITY":          strings.ToUpper(orDefault(req.Candidate.Seniority, "mid")),
			"CV_TEXT":            excerpt(req.Candidate.CVText, technicalCVExcerpt),
			"PREVIOUS_QUESTIONS": formatList(req.PreviousQuestions),
			"PERFORMANCE":        formatPerformance(req.Performance),
		})
	case interview.PhaseSoftSkills:
		return renderPrompt("soft_skills_question", map[string]string{
			"JOB_TITLE":          req.Job.Title,
			"JOB_DESCRIPTION":    orDefault(req.Job.Description, "Not provided"),
			"PREVIOUS_QUESTIONS": formatList(req.PreviousQuestions),
		})
	default:
		return "", fmt.Errorf("no question prompt for phase %q", req.Phase)
	}
}

func evaluationPrompt(req interview.EvaluationRequest) (string, error) {
	switch req.Phase {
	case interview.PhaseKnockout:
		return renderPrompt("knockout_evaluation", map[string]string{
			"JOB_TITLE":         req.Job.Title,
			"KNOCKOUT_CRITERIA": formatList(req.Job.KnockoutCriteria),
			"QUESTION":          req.Question,
			"ANSWER":            req.Answer,
		})
	case interview.PhaseTechnical:
		return renderPrompt("technical_evaluation", map[string]string{
			"JOB_TITLE":       req.Job.Title,
			"REQUIRED_SKILLS": formatSkills(req.Job.RequiredSkills),
			"SENIORITY":       orDefault(req.Seniority, "mid"),
			"QUESTION":        req.Question,
			"ANSWER":          req.Answer,
		})
	case interview.PhaseSoftSkills:
		return renderPrompt("soft_skills_evaluation", map[string]string{
			"COMPETENCY": orDefault(req.Competency, interview.DefaultCompetency),
			"QUESTION":   req.Question,
			"ANSWER":     req.Answer,
			"RED_FLAGS":  formatList(req.RedFlags),
		})
	default:
		return "", fmt.Errorf("no evaluation prompt for phase %q", req.Phase)
	}
}
