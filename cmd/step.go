package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spigell/interview-agent/internal/step"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Run one interview step from a request file and print the result",
	Run: func(cmd *cobra.Command, _ []string) {
		runStep(cmd)
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)

	stepCmd.Flags().StringP("file", "f", "-", "request json file, - reads stdin")
}

func runStep(cmd *cobra.Command) {
	ctx := context.Background()

	// stdout carries the result.
	logger, err := newLogger("stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	req, err := readRequest(cmd.Flag("file").Value.String(), cmd.InOrStdin())
	if err != nil {
		logger.Fatal("reading the step request", zap.Error(err))
	}

	machine, err := newMachine(ctx, config, logger)
	if err != nil {
		logger.Fatal("wiring the interview machine", zap.Error(err))
	}

	res, err := step.NewService(machine, logger).ProcessStep(ctx, req)
	if err != nil {
		logger.Fatal("processing the step", zap.Error(err))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Fatal("writing the result", zap.Error(err))
	}
}

func readRequest(path string, stdin io.Reader) (*step.Request, error) {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var req step.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	return &req, nil
}
