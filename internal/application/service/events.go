package service

import (
	"context"

	"github.com/khoahotran/screenvault/internal/domain/video"
)

// VideoEventPublisher submits an event for out-of-band processing. It must not
// block on the processing itself.
type VideoEventPublisher interface {
	PublishVideoEvent(ctx context.Context, evt video.Event) error
}

// VideoEventHandler processes one event on the consumer side.
type VideoEventHandler interface {
	Execute(ctx context.Context, evt video.Event) error
}
