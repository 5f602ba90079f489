package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/logger"
)

const feedSize = 20

type RSSUseCase struct {
	videoRepo   video.Repository
	siteURL     string
	frontendURL string
	logger      logger.Logger
	now         func() time.Time
}

func NewRSSUseCase(vRepo video.Repository, siteURL, frontendURL string, log logger.Logger) *RSSUseCase {
	return &RSSUseCase{
		videoRepo:   vRepo,
		siteURL:     strings.TrimRight(siteURL, "/"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      log,
		now:         time.Now,
	}
}

// Execute builds a feed of the latest public videos.
func (uc *RSSUseCase) Execute(ctx context.Context) (*feeds.Feed, error) {
	now := uc.now()
	feed := &feeds.Feed{
		Title:       "ScreenVault - Latest videos",
		Link:        &feeds.Link{Href: uc.siteURL + "/api/videos"},
		Description: "Recently shared public screen recordings.",
		Created:     now,
	}

	rows, err := uc.videoRepo.ListPublic(ctx, video.ListParams{
		SortBy: video.SortLatest,
		Limit:  feedSize,
		Now:    now,
	})
	if err != nil {
		uc.logger.Error("Failed to list public videos for RSS", err)
		return nil, err
	}

	feed.Items = make([]*feeds.Item, 0, len(rows))
	for _, v := range rows {
		item := &feeds.Item{
			Id:          v.ID,
			Title:       v.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/video/%s", uc.frontendURL, v.ID)},
			Description: v.Description,
			Created:     v.CreatedAt,
			Updated:     v.UpdatedAt,
			Enclosure:   &feeds.Enclosure{Url: v.VideoURL, Type: "video/mp4", Length: "0"},
		}
		if v.User != nil {
			item.Author = &feeds.Author{Name: v.User.Name}
		}
		feed.Items = append(feed.Items, item)
	}

	uc.logger.Info("RSS feed generated successfully", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}
