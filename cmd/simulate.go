package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spigell/interview-agent/internal/interview"
	"github.com/spigell/interview-agent/internal/report"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// simulation is the input of the simulate command.
type simulation struct {
	JobPostingID string                     `json:"job_posting_id"`
	CandidateID  string                     `json:"candidate_id"`
	Job          interview.JobContext       `json:"job_context"`
	Candidate    interview.CandidateContext `json:"candidate_context"`
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a full interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		simulate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String("job", "", "json file with job_context and candidate_context")
	simulateCmd.Flags().String("cv", "", "text file with the candidate CV, overrides candidate_context.cv_text")
	simulateCmd.Flags().String("report", "", "export the finished interview to this xlsx file")
	simulateCmd.MarkFlagRequired("job")
}

func simulate(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger("stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	sim, err := loadSimulation(cmd.Flag("job").Value.String(), cmd.Flag("cv").Value.String())
	if err != nil {
		logger.Fatal("loading the simulation", zap.Error(err))
	}

	machine, err := newMachine(ctx, config, logger)
	if err != nil {
		logger.Fatal("wiring the interview machine", zap.Error(err))
	}

	st := &interview.State{
		ApplicationID:  uuid.NewString(),
		JobPostingID:   sim.JobPostingID,
		CandidateID:    sim.CandidateID,
		Job:            sim.Job,
		Candidate:      sim.Candidate,
		ShouldContinue: true,
	}

	logger.Info("starting a simulated interview", zap.String("application_id", st.ApplicationID), zap.String("job", st.Job.Title))

	if err := converse(ctx, machine, st); err != nil {
		logger.Fatal("running the interview", zap.Error(err))
	}

	printFinal(st)

	if path := cmd.Flag("report").Value.String(); path != "" {
		written, err := report.Export(st, path, time.Now())
		if err != nil {
			logger.Fatal("exporting the report", zap.Error(err))
		}
		logger.Info("report exported", zap.String("filename", written))
	}
}

func loadSimulation(jobFile, cvFile string) (*simulation, error) {
	data, err := os.ReadFile(jobFile)
	if err != nil {
		return nil, err
	}

	var sim simulation
	if err := json.Unmarshal(data, &sim); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", jobFile, err)
	}
	if strings.TrimSpace(sim.Job.Title) == "" {
		return nil, errors.New("job_context.title is required")
	}

	if cvFile != "" {
		cv, err := os.ReadFile(cvFile)
		if err != nil {
			return nil, err
		}
		sim.Candidate.CVText = string(cv)
	}

	return &sim, nil
}

// converse runs supersteps until the interview closes, reading each answer from the terminal.
func converse(ctx context.Context, machine *interview.Machine, st *interview.State) error {
	answer := promptui.Prompt{
		Label: "Answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer is empty")
			}
			return nil
		},
	}

	for {
		if _, err := machine.Run(ctx, st); err != nil {
			return err
		}

		fmt.Printf("\n[%s] %s\n\n", st.CurrentPhase, st.NextQuestion)

		if !st.ShouldContinue {
			return nil
		}

		text, err := answer.Run()
		if err != nil {
			return err
		}
		st.CandidateMessage = text
	}
}

func printFinal(st *interview.State) {
	if st.Final == nil {
		return
	}

	pretty, _ := json.MarshalIndent(st.Final, "", "  ")
	fmt.Printf("Final scores:\n%s\n", pretty)
}
