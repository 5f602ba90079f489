package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type recordingHandler struct {
	mu     sync.Mutex
	seen   []string
	block  chan struct{}
	failOn string
}

func (h *recordingHandler) Execute(_ context.Context, evt video.Event) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, evt.VideoID)
	if evt.VideoID == h.failOn {
		return errors.New("storage unavailable")
	}
	return nil
}

func (h *recordingHandler) ids() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestLocalQueue_ProcessesInOrderAndSurvivesFailures(t *testing.T) {
	h := &recordingHandler{failOn: "v2"}
	q := NewLocalQueue(8, h, logger.NewNopLogger())
	q.Start(context.Background())

	for _, id := range []string{"v1", "v2", "v3"} {
		require.NoError(t, q.PublishVideoEvent(context.Background(), video.Event{EventType: video.EventTypeDeleted, VideoID: id}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Close(ctx))

	assert.Equal(t, []string{"v1", "v2", "v3"}, h.ids())
	assert.ErrorIs(t, q.PublishVideoEvent(context.Background(), video.Event{VideoID: "late"}), ErrQueueClosed)
}

func TestLocalQueue_FullQueueDoesNotBlock(t *testing.T) {
	h := &recordingHandler{block: make(chan struct{})}
	q := NewLocalQueue(1, h, logger.NewNopLogger())
	q.Start(context.Background())

	// The worker holds the first event, the buffer holds the second.
	require.NoError(t, q.PublishVideoEvent(context.Background(), video.Event{VideoID: "v1"}))
	require.Eventually(t, func() bool { return len(q.events) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.PublishVideoEvent(context.Background(), video.Event{VideoID: "v2"}))

	err := q.PublishVideoEvent(context.Background(), video.Event{VideoID: "v3"})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(h.block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Close(ctx))
	assert.Equal(t, []string{"v1", "v2"}, h.ids())
}

func TestDecodeVideoEvent(t *testing.T) {
	evt := video.Event{
		EventType:    video.EventTypeDeleted,
		VideoID:      "v1",
		OwnerID:      "u1",
		VideoURL:     "https://res.cloudinary.com/demo/video/upload/v1/a.mp4",
		ThumbnailURL: "https://res.cloudinary.com/demo/image/upload/v1/a.png",
	}
	raw, err := json.Marshal(evt)
	require.NoError(t, err)

	got, err := DecodeVideoEvent(kafka.Message{Value: raw})
	require.NoError(t, err)
	assert.Equal(t, evt.VideoURL, got.VideoURL)
	assert.Equal(t, []string{evt.VideoURL, evt.ThumbnailURL}, got.StoredFiles())

	_, err = DecodeVideoEvent(kafka.Message{Value: []byte(`{"video_id":""}`)})
	assert.Error(t, err)
	_, err = DecodeVideoEvent(kafka.Message{Value: []byte(`not json`)})
	assert.Error(t, err)
}

func TestReportDelivery_TellsHookPerMessage(t *testing.T) {
	type outcome struct {
		eventType string
		err       error
	}
	var got []outcome
	hook := func(eventType string, err error) { got = append(got, outcome{eventType, err}) }

	messages := []kafka.Message{
		{Key: []byte("v1"), Headers: []kafka.Header{{Key: "event_type", Value: []byte(video.EventTypeDeleted)}}},
		{Key: []byte("v2")},
	}
	brokerErr := errors.New("leader not available")

	reportDelivery(messages, brokerErr, hook, logger.NewNopLogger())
	reportDelivery(messages[:1], nil, hook, logger.NewNopLogger())

	assert.Equal(t, []outcome{
		{string(video.EventTypeDeleted), brokerErr},
		{"unknown", brokerErr},
		{string(video.EventTypeDeleted), nil},
	}, got)

	assert.NotPanics(t, func() { reportDelivery(messages, nil, nil, logger.NewNopLogger()) })
}
