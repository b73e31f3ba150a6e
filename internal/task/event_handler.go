package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/events"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
)

// EventDispatcher implements events.EventHandler by queueing one delivery
// task per registered handler. HandleEvent returns as soon as the tasks are
// queued; handler errors surface through the worker pool.
type EventDispatcher struct {
	queue    TaskQueueWriter
	handlers []events.EventHandler
	logger   *slog.Logger
}

// NewEventDispatcher creates a dispatcher that delivers events to handlers
// through queue.
func NewEventDispatcher(queue TaskQueueWriter, log *slog.Logger, handlers ...events.EventHandler) *EventDispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &EventDispatcher{
		queue:    queue,
		handlers: handlers,
		logger:   log.With("component", "event_dispatcher"),
	}
}

// HandleEvent queues the event for every handler. It stops at the first
// enqueue failure, so a full queue drops the remaining deliveries.
func (d *EventDispatcher) HandleEvent(ctx context.Context, event *events.Event) error {
	// Deliveries outlive the request but keep its logger.
	detached := logger.WithLogger(context.WithoutCancel(ctx), logger.FromContextOrDefault(ctx, d.logger))

	for i, handler := range d.handlers {
		t := &eventTask{id: uuid.New(), event: event, handler: handler, ctx: detached}
		if err := d.queue.Enqueue(t); err != nil {
			d.logger.Error("failed to queue event delivery",
				"error", err,
				"event_id", event.ID,
				"event_type", event.Type,
				"handler_index", i)
			return fmt.Errorf("failed to queue event %s: %w", event.ID, err)
		}
	}

	d.logger.Debug("event queued",
		"event_id", event.ID,
		"event_type", event.Type,
		"deliveries", len(d.handlers))
	return nil
}

// eventTask delivers one event to one handler.
type eventTask struct {
	id      uuid.UUID
	event   *events.Event
	handler events.EventHandler
	// ctx carries request values; cancellation comes from the worker.
	ctx context.Context
}

func (t *eventTask) ID() uuid.UUID { return t.id }

func (t *eventTask) Type() string { return TaskTypeEventDelivery }

func (t *eventTask) Execute(ctx context.Context) error {
	run, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return t.handler.HandleEvent(run, t.event)
}

var _ events.EventHandler = (*EventDispatcher)(nil)
