package service

import (
	"context"
)

// FileStorage removes stored media by the public URL it was served from.
type FileStorage interface {
	Delete(ctx context.Context, fileURL string) error
}
