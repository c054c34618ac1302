package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openflowlabs/fileroute/internal/config"
	"github.com/openflowlabs/fileroute/internal/filelang"
	"github.com/openflowlabs/fileroute/internal/router"
)

// streamClient is the slice of the redis client the worker uses to
// consume and publish stream messages.
type streamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

var _ streamClient = (*redis.Client)(nil)

// Worker represents the file route worker
type Worker struct {
	id            string
	config        *config.Config
	redisClient   streamClient
	router        *router.Router
	defaultRules  *router.RouteConfig
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker. defaultRules may be nil, in which case
// every event must carry its own routing configuration.
func NewWorker(
	cfg *config.Config,
	redisClient streamClient,
	routerInstance *router.Router,
	defaultRules *router.RouteConfig,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		router:        routerInstance,
		defaultRules:  defaultRules,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting file route worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	// Create consumer group if it doesn't exist
	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	// Start processing events
	go w.processEvents()

	w.logger.Info("file route worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker gracefully
func (w *Worker) Stop() error {
	w.logger.Info("stopping file route worker", zap.String("worker_id", w.id))

	// Cancel context to stop event processing
	w.cancel()

	// Wait a bit for in-flight events to complete
	time.Sleep(2 * time.Second)

	w.logger.Info("file route worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	// Try to create the group
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP error means the group already exists, which is fine
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processEvents processes file events from the Redis stream
func (w *Worker) processEvents() {
	w.logger.Info("starting event processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("event processing loop stopped")
			return
		default:
			// Read from stream
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    1,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					// No messages available, continue
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				time.Sleep(time.Second)
				continue
			}

			// Process each message
			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// handleMessage handles a single file event message
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing file event",
		zap.String("message_id", messageID),
	)

	// Parse the file event
	event, err := parseFileEvent(message.Values)
	if err != nil {
		w.logger.Error("failed to parse file event",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.acknowledgeMessage(messageID)
		return
	}

	// Route the event
	if err := w.processFileEvent(event); err != nil {
		w.logger.Error("failed to process file event",
			zap.String("message_id", messageID),
			zap.String("event_id", event.EventID),
			zap.String("path", event.Path),
			zap.Error(err),
		)
		// Publish error event
		w.publishError(event, err)
	}

	// Acknowledge the message
	w.acknowledgeMessage(messageID)
}

// FileEvent represents a file event to be routed
type FileEvent struct {
	EventID string              `json:"event_id"`
	Path    string              `json:"path"`
	ModTime time.Time           `json:"mod_time"`
	Headers map[string]any      `json:"headers,omitempty"`
	Config  *router.RouteConfig `json:"config,omitempty"`
}

// parseFileEvent parses a file event from Redis message values
func parseFileEvent(values map[string]interface{}) (*FileEvent, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var event FileEvent
	if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file event: %w", err)
	}

	if event.Path == "" {
		return nil, fmt.Errorf("file event missing path")
	}

	return &event, nil
}

// processFileEvent routes a single file event
func (w *Worker) processFileEvent(event *FileEvent) error {
	ctx := context.Background()

	// Per-event config wins over the worker's default rules
	routeConfig := event.Config
	if routeConfig == nil {
		routeConfig = w.defaultRules
	}
	if routeConfig == nil {
		return fmt.Errorf("no routing configuration for event %s", event.EventID)
	}

	// Build the evaluation context
	fc := filelang.NewContext(event.Path, event.ModTime)
	for name, value := range event.Headers {
		fc.WithHeader(name, value)
	}

	// Perform routing
	decision, err := w.router.Route(ctx, fc, routeConfig)
	if err != nil {
		return fmt.Errorf("routing failed: %w", err)
	}

	// Publish routing decision
	if err := w.publishDecision(event, decision); err != nil {
		return fmt.Errorf("failed to publish decision: %w", err)
	}

	return nil
}

// publishDecision publishes the routing decision
func (w *Worker) publishDecision(event *FileEvent, decision *router.Decision) error {
	payload := map[string]interface{}{
		"decision_id": uuid.NewString(),
		"event_id":    event.EventID,
		"path":        event.Path,
		"target":      decision.Target,
		"reasoning":   decision.Reasoning,
		"path_taken":  decision.PathTaken,
		"values":      decision.Values,
		"timestamp":   time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	// Publish to result stream
	_, err = w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	w.logger.Info("published routing decision",
		zap.String("event_id", event.EventID),
		zap.String("target", decision.Target),
		zap.String("path_taken", decision.PathTaken),
	)

	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(event *FileEvent, err error) {
	errorEvent := map[string]interface{}{
		"event_id":  event.EventID,
		"path":      event.Path,
		"error":     err.Error(),
		"timestamp": time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	// Publish error to a separate stream
	_, publishErr := w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream + ".errors",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	err := w.redisClient.XAck(w.ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
