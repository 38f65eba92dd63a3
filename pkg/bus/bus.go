// Package bus is the in-process event bus. Emitted events are kept in a
// bounded in-memory log and published through watermill; a subscriber loop
// matches them against the event trigger nodes of enabled workflows and
// dispatches runs fire-and-forget.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/graphflow/graphflow/pkg/engine"
	"github.com/graphflow/graphflow/pkg/expression"
	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/persistence"
)

// Topic is the single watermill topic all events flow through.
const Topic = "graphflow.events"

const (
	// ringCapacity bounds the in-memory event log. Oldest entries are
	// evicted first.
	ringCapacity = 200

	// dispatchCooldown suppresses repeat dispatches of the same workflow.
	// The stamp is taken when the run is dispatched, not when it finishes,
	// so a long run does not extend its own suppression window.
	dispatchCooldown = 10 * time.Second

	eventTypeMetadataKey = "event_type"
)

// Runner starts workflow runs. Satisfied by *engine.Engine.
type Runner interface {
	Execute(ctx context.Context, workflow *models.Workflow, opts engine.Options) (*models.Run, error)
}

// Bus publishes events and triggers matching workflows. Safe for
// concurrent use.
type Bus struct {
	logger     *slog.Logger
	store      persistence.Persistence
	runner     Runner
	evaluator  *expression.Evaluator
	publisher  message.Publisher
	subscriber message.Subscriber

	cooldown time.Duration
	now      func() time.Time

	mu           sync.Mutex
	ring         []*models.Event
	lastDispatch map[string]time.Time
}

func New(
	logger *slog.Logger,
	store persistence.Persistence,
	runner Runner,
	evaluator *expression.Evaluator,
	publisher message.Publisher,
	subscriber message.Subscriber,
) *Bus {
	return &Bus{
		logger:       logger.With("module", "bus"),
		store:        store,
		runner:       runner,
		evaluator:    evaluator,
		publisher:    publisher,
		subscriber:   subscriber,
		cooldown:     dispatchCooldown,
		now:          time.Now,
		ring:         make([]*models.Event, 0, ringCapacity),
		lastDispatch: make(map[string]time.Time),
	}
}

// Emit records the event and publishes it. The event is in the log as soon
// as Emit returns; workflow dispatch happens asynchronously.
func (b *Bus) Emit(_ context.Context, eventType, source string, data map[string]any, project string) (*models.Event, error) {
	event := &models.Event{
		ID:        watermill.NewULID(),
		Type:      eventType,
		Timestamp: b.now().UTC(),
		Source:    source,
		Data:      data,
		Project:   project,
	}

	b.record(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	msg := message.NewMessage("msg-"+event.ID, payload)
	msg.Metadata.Set(eventTypeMetadataKey, eventType)

	if err := b.publisher.Publish(Topic, msg); err != nil {
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}

	return event, nil
}

func (b *Bus) record(event *models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.ring) == ringCapacity {
		copy(b.ring, b.ring[1:])
		b.ring[len(b.ring)-1] = event

		return
	}

	b.ring = append(b.ring, event)
}

// RecentEvents returns logged events, newest first. An empty eventType
// matches everything; limit <= 0 returns the whole log.
func (b *Bus) RecentEvents(eventType string, limit int) []*models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 {
		limit = ringCapacity
	}

	events := make([]*models.Event, 0, limit)

	for i := len(b.ring) - 1; i >= 0 && len(events) < limit; i-- {
		if eventType != "" && b.ring[i].Type != eventType {
			continue
		}

		events = append(events, b.ring[i])
	}

	return events
}

// Start subscribes to the event topic and dispatches matching workflows
// until ctx is cancelled.
func (b *Bus) Start(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", Topic, err)
	}

	go func() {
		for msg := range messages {
			event := &models.Event{}
			if err := json.Unmarshal(msg.Payload, event); err != nil {
				b.logger.Error("Discarding malformed event payload", "message_id", msg.UUID, "error", err)
				msg.Ack()

				continue
			}

			b.dispatch(ctx, event)
			msg.Ack()
		}
	}()

	return nil
}

// dispatch starts a run for every enabled workflow the event matches. Runs
// are fire-and-forget: Emit callers never observe run outcomes.
func (b *Bus) dispatch(ctx context.Context, event *models.Event) {
	workflows, err := b.store.WorkflowRepository().ListEnabled(ctx)
	if err != nil {
		b.logger.Error("Failed to list workflows for event dispatch", "event_type", event.Type, "error", err)

		return
	}

	for _, workflow := range workflows {
		if !b.matches(workflow, event) {
			continue
		}

		if !b.passCooldown(workflow.ID) {
			b.logger.Debug("Dispatch suppressed by cooldown", "workflow_id", workflow.ID, "event_type", event.Type)

			continue
		}

		b.logger.Info("Event triggered workflow", "workflow_id", workflow.ID, "event_type", event.Type, "event_id", event.ID)

		go func(workflow *models.Workflow) {
			_, err := b.runner.Execute(ctx, workflow, engine.Options{
				Trigger:   models.TriggerEvent,
				EventData: event.Data,
				Project:   event.Project,
			})
			if err != nil {
				b.logger.Error("Event-triggered run failed to persist", "workflow_id", workflow.ID, "error", err)
			}
		}(workflow)
	}
}

// matches reports whether any event trigger node in the workflow accepts
// the event. A filter that fails to evaluate is a non-match, never a
// dispatch.
func (b *Bus) matches(workflow *models.Workflow, event *models.Event) bool {
	for _, node := range workflow.Nodes {
		if node.Kind != models.KindEventTrigger {
			continue
		}

		cfg, err := node.EventTriggerConfig()
		if err != nil {
			b.logger.Warn("Skipping event trigger with invalid config", "workflow_id", workflow.ID, "node_id", node.ID, "error", err)

			continue
		}

		if cfg.EventType != event.Type {
			continue
		}

		if cfg.Filter != "" {
			ok, err := b.evaluator.EvalBool(cfg.Filter, map[string]any{"event": event.Data})
			if err != nil {
				b.logger.Warn("Event trigger filter failed", "workflow_id", workflow.ID, "node_id", node.ID, "error", err)

				continue
			}

			if !ok {
				continue
			}
		}

		return true
	}

	return false
}

func (b *Bus) passCooldown(workflowID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if last, ok := b.lastDispatch[workflowID]; ok && now.Sub(last) < b.cooldown {
		return false
	}

	b.lastDispatch[workflowID] = now

	return true
}

func (b *Bus) Close() error {
	if err := b.publisher.Close(); err != nil {
		return err
	}

	return b.subscriber.Close()
}
