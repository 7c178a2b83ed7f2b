package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event represents a domain event
type Event interface {
	GetEventType() string
	GetTimestamp() time.Time
	GetUserID() *int64
}

// BaseEvent provides common event functionality
type BaseEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    *int64    `json:"user_id,omitempty"`
}

// GetEventType returns the event type
func (e *BaseEvent) GetEventType() string { return e.EventType }

// GetTimestamp returns the event timestamp
func (e *BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// GetUserID returns the user ID associated with the event
func (e *BaseEvent) GetUserID() *int64 { return e.UserID }

// EventHandler handles a published event
type EventHandler func(ctx context.Context, event Event) error

// EventBus defines the event publishing and subscription interface
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event)
	Subscribe(eventType string, handler EventHandler)
	Close()
}

// ===============================
// IN-MEMORY EVENT BUS
// ===============================

type memoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewMemoryBus creates an in-process event bus
func NewMemoryBus(logger *zap.Logger) EventBus {
	return &memoryBus{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

func (b *memoryBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *memoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.GetEventType()]
	b.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Warn("Event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("event handler failed for %s: %w", event.GetEventType(), err)
			}
		}
	}
	return firstErr
}

func (b *memoryBus) PublishAsync(ctx context.Context, event Event) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		// Detach from the request context; async delivery should not be
		// cancelled by the originating request.
		if err := b.Publish(context.WithoutCancel(ctx), event); err != nil {
			b.logger.Warn("Async event delivery failed",
				zap.String("event_type", event.GetEventType()),
				zap.Error(err),
			)
		}
	}()
}

func (b *memoryBus) Close() {
	b.wg.Wait()
}
