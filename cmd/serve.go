package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/interview-agent/internal/server"
	"github.com/spigell/interview-agent/internal/step"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview step over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default 8001 or API_PORT)")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview agent", zap.String("version", buildVersion()), zap.String("environment", config.Environment))

	machine, err := newMachine(ctx, config, logger)
	if err != nil {
		logger.Fatal("wiring the interview machine", zap.Error(err))
	}

	srv := server.New(server.Config{
		Host:        config.Server.Host,
		Port:        config.Server.Port,
		Environment: config.Environment,
		Version:     buildVersion(),
	}, step.NewService(machine, logger), logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
