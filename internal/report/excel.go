// Package report exports a finished interview to an xlsx workbook.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/interview-agent/internal/interview"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	transcriptSheet = "Transcript"
	scoresSheet     = "Answers"

	headerColor = "4472C4"
)

var phaseTitles = map[interview.Phase]string{
	interview.PhaseKnockout:   "Knockout",
	interview.PhaseTechnical:  "Technical",
	interview.PhaseSoftSkills: "Soft skills",
	interview.PhaseClosing:    "Closing",
}

// Export writes the transcript, per-answer scores and final scores of st to path.
// The .xlsx extension is added when missing. It returns the path written.
func Export(st *interview.State, path string, generated time.Time) (string, error) {
	if st == nil {
		return "", fmt.Errorf("nothing to export: state is nil")
	}

	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", err
	}
	for _, name := range []string{transcriptSheet, scoresSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return "", err
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return "", err
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return "", err
	}

	if err := writeSummary(f, st, generated, header); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeTranscript(f, st, header, wrap); err != nil {
		return "", fmt.Errorf("failed to create transcript sheet: %w", err)
	}
	if err := writeAnswers(f, st, header, wrap); err != nil {
		return "", fmt.Errorf("failed to create answers sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	return path, nil
}

func writeSummary(f *excelize.File, st *interview.State, generated time.Time, header int) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 80); err != nil {
		return err
	}

	rows := [][]any{
		{"Interview Report"},
		{"Application", st.ApplicationID},
		{"Candidate", st.Candidate.Name},
		{"Seniority", st.Candidate.Seniority},
		{"Job", st.Job.Title},
		{"Generated", generated.UTC().Format(time.RFC3339)},
		{"Questions answered", st.AnsweredQuestions()},
	}
	if st.RejectionReason != "" {
		rows = append(rows, []any{"Rejection reason", st.RejectionReason})
	}

	if fs := st.Final; fs != nil {
		rows = append(rows,
			[]any{},
			[]any{"Scores"},
			[]any{"CV", fs.CVScore, fs.CVExplanation},
			[]any{"Technical", fs.TechnicalScoreAvg, fs.TechnicalExplanation},
			[]any{"Soft skills", fs.SoftSkillsScoreAvg, fs.SoftSkillsExplanation},
			[]any{"Global", fs.GlobalScore, fs.GlobalExplanation},
			[]any{"Recommendation", string(fs.Recommendation)},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
		if len(row) == 1 {
			if err := f.SetCellStyle(summarySheet, cell, cell, header); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeTranscript(f *excelize.File, st *interview.State, header, wrap int) error {
	headers := []any{"#", "Phase", "Role", "Message", "Timestamp"}
	widths := []float64{6, 14, 12, 90, 22}

	if err := writeHeader(f, transcriptSheet, headers, widths, header); err != nil {
		return err
	}

	for i, msg := range st.Messages {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{msg.OrderIndex, phaseTitle(msg.Category), string(msg.Role), msg.Content, msg.Timestamp}
		if err := f.SetSheetRow(transcriptSheet, cell, &row); err != nil {
			return err
		}
		if err := f.SetCellStyle(transcriptSheet, fmt.Sprintf("D%d", i+2), fmt.Sprintf("D%d", i+2), wrap); err != nil {
			return err
		}
	}

	return freezeHeader(f, transcriptSheet)
}

func writeAnswers(f *excelize.File, st *interview.State, header, wrap int) error {
	headers := []any{"Phase", "Question", "Answer", "Score", "Explanation"}
	widths := []float64{14, 50, 50, 8, 60}

	if err := writeHeader(f, scoresSheet, headers, widths, header); err != nil {
		return err
	}

	r := 2
	for _, p := range interview.QuestionPhases {
		for _, e := range st.Scores(p) {
			cell, err := excelize.CoordinatesToCellName(1, r)
			if err != nil {
				return err
			}
			row := []any{phaseTitle(p), e.Question, e.Answer, e.Score, e.Explanation}
			if err := f.SetSheetRow(scoresSheet, cell, &row); err != nil {
				return err
			}
			if err := f.SetCellStyle(scoresSheet, fmt.Sprintf("B%d", r), fmt.Sprintf("E%d", r), wrap); err != nil {
				return err
			}
			r++
		}
	}

	return freezeHeader(f, scoresSheet)
}

func writeHeader(f *excelize.File, sheet string, headers []any, widths []float64, style int) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func phaseTitle(p interview.Phase) string {
	if title, ok := phaseTitles[p]; ok {
		return title
	}
	return string(p)
}
