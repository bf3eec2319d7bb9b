package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/repository"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/results"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const payloadField = "payload"

type Consumer struct {
	client       *redis.Client
	stream       string
	groupID      string
	consumerName string
	executor     *executor.Executor
	repository   repository.RunRepository
	writer       *results.Writer
	logger       *zerolog.Logger
}

// NewConsumer builds a stream consumer. A nil writer skips saving results.
func NewConsumer(
	client *redis.Client,
	cfg *RedisStreamConfig,
	exec *executor.Executor,
	repo repository.RunRepository,
	writer *results.Writer,
	logger *zerolog.Logger,
) *Consumer {
	return &Consumer{
		client:       client,
		stream:       cfg.Stream,
		groupID:      cfg.Group,
		consumerName: cfg.ConsumerName,
		executor:     exec,
		repository:   repo,
		writer:       writer,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) Stop() error {
	return c.client.Close()
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	request, err := decodeMessage(msg.Values)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID) // bad message, ACK to skip it
		return
	}

	if err := c.repository.Put(ctx, models.NewRunState(request.RunID, request.Query)); err != nil {
		c.logger.Error().Err(err).Str("runID", request.RunID).Msg("Failed to register run")
	}

	state := c.executor.Execute(ctx, request.RunID, request.Query)
	if err := c.repository.Put(ctx, state); err != nil {
		c.logger.Error().Err(err).Str("runID", state.ID).Msg("Failed to store run")
	}

	if c.writer != nil {
		if runDir, err := c.writer.Save(state); err != nil {
			c.logger.Error().Err(err).Str("runID", state.ID).Msg("Failed to save results")
		} else {
			c.logger.Info().Str("runID", state.ID).Str("dir", runDir).Msg("Results saved")
		}
	}

	c.logger.Info().
		Str("id", msg.ID).
		Str("runID", state.ID).
		Str("status", string(state.Status)).
		Msg("Workflow complete")

	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}

// Publish appends one workflow request to the stream and returns the entry id.
func Publish(ctx context.Context, client *redis.Client, stream string, message models.WorkflowMessage) (string, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("unable to encode workflow message: %w", err)
	}

	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{payloadField: string(payload)},
	}).Result()
}

// decodeMessage reads the workflow request from a stream entry, assigning a run id
// when the producer did not.
func decodeMessage(values map[string]any) (models.WorkflowMessage, error) {
	var message models.WorkflowMessage

	payload, ok := values[payloadField].(string)
	if !ok {
		return message, fmt.Errorf("missing %s field", payloadField)
	}

	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		return message, fmt.Errorf("invalid payload: %w", err)
	}
	if strings.TrimSpace(message.Query) == "" {
		return message, errors.New("payload has no query")
	}
	if message.RunID == "" {
		message.RunID = uuid.NewString()
	}

	return message, nil
}
