package event

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/application/service"
	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/logger"
)

var (
	ErrQueueFull   = errors.New("event queue is full")
	ErrQueueClosed = errors.New("event queue is closed")
)

// LocalQueue is the in-process stand-in for Kafka when no brokers are configured.
// Submissions never block; a single goroutine hands events to the handler.
type LocalQueue struct {
	events  chan video.Event
	handler service.VideoEventHandler
	logger  logger.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewLocalQueue(size int, handler service.VideoEventHandler, log logger.Logger) *LocalQueue {
	if size <= 0 {
		size = 1
	}
	return &LocalQueue{
		events:  make(chan video.Event, size),
		handler: handler,
		logger:  log,
		done:    make(chan struct{}),
	}
}

// Start runs the worker until Close drains the queue.
func (q *LocalQueue) Start(ctx context.Context) {
	go func() {
		defer close(q.done)
		for evt := range q.events {
			if err := q.handler.Execute(ctx, evt); err != nil {
				q.logger.Error("Failed to process video event", err,
					zap.String("event_type", string(evt.EventType)),
					zap.String("video_id", evt.VideoID))
			}
		}
	}()
}

func (q *LocalQueue) PublishVideoEvent(_ context.Context, evt video.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.events <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for queued ones to finish or ctx to end.
func (q *LocalQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
