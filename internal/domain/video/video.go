package video

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

const (
	TitleMinLen       = 3
	TitleMaxLen       = 100
	DescriptionMinLen = 10
	DescriptionMaxLen = 500
)

type Video struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoURL     string     `json:"videoUrl"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	Visibility   Visibility `json:"visibility"`
	Views        int        `json:"views"`
	Duration     *int       `json:"duration"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Author is the read-only slice of the owning user shown next to a video.
type Author struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

type VideoWithUser struct {
	Video
	User *Author `json:"user"`
}

// DetailsPatch is a partial update of the owner-editable fields. Nil fields are left as is.
type DetailsPatch struct {
	Title       *string
	Description *string
	Visibility  *Visibility
}

func (p DetailsPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Visibility == nil
}

var (
	ErrInvalidTitle       = errors.New("title must be between 3 and 100 characters")
	ErrInvalidDescription = errors.New("description must be between 10 and 500 characters")
	ErrInvalidVisibility  = errors.New("visibility must be either 'public' or 'private'")
	ErrInvalidDuration    = errors.New("duration must be a positive number")
	ErrInvalidVideoURL    = errors.New("invalid video URL")
	ErrInvalidThumbURL    = errors.New("invalid thumbnail URL")
	ErrMissingOwner       = errors.New("video owner is required")
)

func (v *Video) Validate() error {
	if v.UserID == "" {
		return ErrMissingOwner
	}
	if err := ValidateTitle(v.Title); err != nil {
		return err
	}
	if err := ValidateDescription(v.Description); err != nil {
		return err
	}
	if !isAbsoluteURL(v.VideoURL) {
		return ErrInvalidVideoURL
	}
	if !isAbsoluteURL(v.ThumbnailURL) {
		return ErrInvalidThumbURL
	}
	if !v.Visibility.Valid() {
		return ErrInvalidVisibility
	}
	if v.Duration != nil && *v.Duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}

func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < TitleMinLen || n > TitleMaxLen {
		return ErrInvalidTitle
	}
	return nil
}

func ValidateDescription(description string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(description))
	if n < DescriptionMinLen || n > DescriptionMaxLen {
		return ErrInvalidDescription
	}
	return nil
}

func (p DetailsPatch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := ValidateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Visibility != nil && !p.Visibility.Valid() {
		return ErrInvalidVisibility
	}
	return nil
}

// VisibleTo reports whether a request made by viewerID may see the video.
// An empty viewerID is an anonymous request.
func (v *Video) VisibleTo(viewerID string) bool {
	if v.Visibility == VisibilityPublic {
		return true
	}
	return viewerID != "" && v.UserID == viewerID
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// ListParams carries the shared listing inputs. Limit is the number of rows the
// repository should return; callers that need a hasMore signal ask for one extra.
type ListParams struct {
	Filters Filters
	SortBy  SortBy
	Limit   int
	Offset  int
	Now     time.Time
}

type Repository interface {
	Save(ctx context.Context, v *Video) error
	FindByID(ctx context.Context, id string) (*VideoWithUser, error)
	FindAuthorized(ctx context.Context, id string, viewerID string) (*VideoWithUser, error)
	FindPublicByID(ctx context.Context, id string) (*VideoWithUser, error)

	ListPublic(ctx context.Context, params ListParams) ([]*VideoWithUser, error)
	SearchPublic(ctx context.Context, text string, params ListParams) ([]*VideoWithUser, error)
	ListByOwner(ctx context.Context, ownerID string, params ListParams) ([]*VideoWithUser, error)
	SearchByOwner(ctx context.Context, ownerID string, text string, params ListParams) ([]*VideoWithUser, error)

	UpdateVisibility(ctx context.Context, id string, ownerID string, visibility Visibility) (*Video, error)
	UpdateDetails(ctx context.Context, id string, ownerID string, patch DetailsPatch) (*Video, error)
	Delete(ctx context.Context, id string, ownerID string) (*Video, error)
	IncrementViews(ctx context.Context, id string) (int, error)
}
