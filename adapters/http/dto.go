package http

import (
	"github.com/gin-gonic/gin"

	videoUC "github.com/khoahotran/screenvault/internal/application/usecase/video"
	"github.com/khoahotran/screenvault/internal/domain/video"
)

// ListVideosQuery is the listing vocabulary shared by public and owner listings.
// Filter dimensions are comma-joined tokens. Out-of-range limit and offset
// values are normalized by the listing, not rejected.
type ListVideosQuery struct {
	Q          string `form:"q"`
	DateRange  string `form:"dateRange"`
	Duration   string `form:"duration"`
	Visibility string `form:"visibility"`
	SortBy     string `form:"sortBy"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

func (q ListVideosQuery) ToListQuery() videoUC.ListQuery {
	return videoUC.ListQuery{
		Search:  q.Q,
		Filters: video.ParseFilters(q.DateRange, q.Duration, q.Visibility),
		SortBy:  video.ParseSortBy(q.SortBy),
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
}

type CreateVideoRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description" binding:"required"`
	VideoURL     string `json:"videoUrl" binding:"required"`
	ThumbnailURL string `json:"thumbnailUrl" binding:"required"`
	Visibility   string `json:"visibility" binding:"omitempty,oneof=public private"`
	Duration     *int   `json:"duration" binding:"omitempty,gte=0"`
}

type UpdateDetailsRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=public private"`
}

func (r UpdateDetailsRequest) ToPatch() video.DetailsPatch {
	patch := video.DetailsPatch{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Visibility != nil {
		vis := video.Visibility(*r.Visibility)
		patch.Visibility = &vis
	}
	return patch
}

type UpdateVisibilityRequest struct {
	Visibility string `json:"visibility" binding:"required,oneof=public private"`
}

type RecordViewRequest struct {
	SessionID      string  `json:"sessionId" binding:"required"`
	WatchedSeconds float64 `json:"watchedSeconds" binding:"gte=0"`
	Duration       float64 `json:"duration" binding:"omitempty,gte=0"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func mutationResponse(message string, v *video.Video) gin.H {
	return gin.H{
		"success": true,
		"message": message,
		"video":   v,
	}
}
