package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/results"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var errNoQuery = errors.New("no research question given (use -query or pipe it on stdin)")

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	query := flag.String("query", "", "Research question (read from stdin when empty)")
	output := flag.String("output", "./runs", "Directory for saved run artifacts")
	noSave := flag.Bool("no-save", false, "Do not write run artifacts")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	question, err := readQuery(*query, os.Stdin)
	if err != nil {
		log.Error().Err(err).Msg("Invalid input")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()
	cfg.RunStore = "memory"
	logger := log.Logger
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Error().Err(err).Msg("Failed to wire dependencies")
		os.Exit(1)
	}
	defer deps.Close()

	state := deps.Executor.Execute(ctx, uuid.NewString(), question)

	runDir := ""
	if !*noSave {
		runDir, err = results.NewWriter(*output, &logger).Save(state)
		if err != nil {
			log.Error().Err(err).Msg("Failed to save results")
		}
	}

	printSummary(os.Stdout, state, runDir)
	os.Exit(exitCode(state.Status))
}

// readQuery prefers the flag value and falls back to the whole of stdin.
func readQuery(flagValue string, stdin io.Reader) (string, error) {
	query := strings.TrimSpace(flagValue)
	if query == "" && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read stdin: %w", err)
		}
		query = strings.TrimSpace(string(data))
	}

	if query == "" {
		return "", errNoQuery
	}
	return query, nil
}

func exitCode(status models.Status) int {
	if status == models.StatusError {
		return 1
	}
	return 0
}

func printSummary(w io.Writer, state *models.RunState, runDir string) {
	fmt.Fprintf(w, "Run:    %s\n", state.ID)
	fmt.Fprintf(w, "Status: %s\n", state.Status)
	if state.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:  %s\n", state.ErrorMessage)
	}

	for _, stage := range state.Stages {
		fmt.Fprintf(w, "  A%d %-24s %-8s warnings=%d violations=%d\n",
			stage.Output.StageIndex,
			stage.Output.StageName,
			stage.Output.StageStatus,
			len(stage.Validation.Warnings),
			stage.Output.GuardrailReport.ViolationCount(),
		)
	}

	if runDir != "" {
		fmt.Fprintf(w, "Saved:  %s\n", runDir)
	}
}
