package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	red "github.com/povarna/generative-ai-agents/workflow-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/stream/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	query := flag.String("q", "", "Research question to queue")
	runID := flag.String("id", "", "Run id (generated when empty)")
	stream := flag.String("stream", redis.DefaultStream, "Stream name")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "Usage: producer -q '<research question>'")
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if *runID == "" {
		*runID = uuid.NewString()
	}

	if err := run(models.WorkflowMessage{RunID: *runID, Query: *query}, *stream); err != nil {
		log.Error().Err(err).Msg("producer failed")
		os.Exit(1)
	}
}

func run(message models.WorkflowMessage, stream string) error {
	_ = godotenv.Load()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	client, err := red.ConnectRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), 3)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := redis.Publish(ctx, client, stream, message)
	if err != nil {
		return err
	}

	log.Info().Str("stream", stream).Str("id", id).Str("runID", message.RunID).Msg("Published successfully!")
	fmt.Println(message.RunID)
	return nil
}
