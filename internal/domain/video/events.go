package video

import (
	"errors"
	"time"
)

var (
	ErrVideoNotFound = errors.New("video not found")
)

type EventType string

const (
	EventTypeDeleted EventType = "video.deleted"
)

// Event is published after a committed mutation that leaves work for the worker.
// For deletions it carries the stored file URLs, since the row is already gone.
type Event struct {
	EventType    EventType `json:"event_type"`
	VideoID      string    `json:"video_id"`
	OwnerID      string    `json:"owner_id"`
	VideoURL     string    `json:"video_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewDeletedEvent(v *Video, at time.Time) Event {
	return Event{
		EventType:    EventTypeDeleted,
		VideoID:      v.ID,
		OwnerID:      v.UserID,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		OccurredAt:   at,
	}
}

// StoredFiles lists the non-empty file URLs an event refers to.
func (e Event) StoredFiles() []string {
	files := make([]string, 0, 2)
	if e.VideoURL != "" {
		files = append(files, e.VideoURL)
	}
	if e.ThumbnailURL != "" {
		files = append(files, e.ThumbnailURL)
	}
	return files
}
