package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	videoUC "github.com/khoahotran/screenvault/internal/application/usecase/video"
	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/apperror"
)

type VideoHandler struct {
	listPublicUseCase       *videoUC.ListPublicVideosUseCase
	listOwnedUseCase        *videoUC.ListOwnedVideosUseCase
	getAuthorizedUseCase    *videoUC.GetAuthorizedVideoUseCase
	getPublicUseCase        *videoUC.GetPublicVideoUseCase
	createUseCase           *videoUC.CreateVideoUseCase
	updateVisibilityUseCase *videoUC.UpdateVisibilityUseCase
	updateDetailsUseCase    *videoUC.UpdateDetailsUseCase
	deleteUseCase           *videoUC.DeleteVideoUseCase
	recordViewUseCase       *videoUC.RecordViewUseCase
}

type VideoUseCases struct {
	ListPublic       *videoUC.ListPublicVideosUseCase
	ListOwned        *videoUC.ListOwnedVideosUseCase
	GetAuthorized    *videoUC.GetAuthorizedVideoUseCase
	GetPublic        *videoUC.GetPublicVideoUseCase
	Create           *videoUC.CreateVideoUseCase
	UpdateVisibility *videoUC.UpdateVisibilityUseCase
	UpdateDetails    *videoUC.UpdateDetailsUseCase
	Delete           *videoUC.DeleteVideoUseCase
	RecordView       *videoUC.RecordViewUseCase
}

func NewVideoHandler(uc VideoUseCases) *VideoHandler {
	useJSONFieldNames()
	return &VideoHandler{
		listPublicUseCase:       uc.ListPublic,
		listOwnedUseCase:        uc.ListOwned,
		getAuthorizedUseCase:    uc.GetAuthorized,
		getPublicUseCase:        uc.GetPublic,
		createUseCase:           uc.Create,
		updateVisibilityUseCase: uc.UpdateVisibility,
		updateDetailsUseCase:    uc.UpdateDetails,
		deleteUseCase:           uc.Delete,
		recordViewUseCase:       uc.RecordView,
	}
}

func (h *VideoHandler) ListPublicVideos(c *gin.Context) {
	var q ListVideosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(bindingError(err))
		return
	}

	output, err := h.listPublicUseCase.Execute(c.Request.Context(), q.ToListQuery())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output.Page)
}

func (h *VideoHandler) ListMyVideos(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("user id not found in context", nil))
		return
	}

	var q ListVideosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(bindingError(err))
		return
	}

	output, err := h.listOwnedUseCase.Execute(c.Request.Context(), videoUC.ListOwnedVideosInput{
		OwnerID: userID,
		Query:   q.ToListQuery(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output.Page)
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	viewerID, _ := GetUserIDFromGinContext(c)

	output, err := h.getAuthorizedUseCase.Execute(c.Request.Context(), videoUC.GetAuthorizedVideoInput{
		VideoID:  c.Param("id"),
		ViewerID: viewerID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output.Video)
}

func (h *VideoHandler) GetVideoMeta(c *gin.Context) {
	output, err := h.getPublicUseCase.Execute(c.Request.Context(), videoUC.GetPublicVideoInput{
		VideoID: c.Param("id"),
	})
	if err != nil {
		c.Error(err)
		return
	}

	v := output.Video
	meta := gin.H{
		"id":           v.ID,
		"title":        v.Title,
		"description":  v.Description,
		"thumbnailUrl": v.ThumbnailURL,
		"videoUrl":     v.VideoURL,
		"duration":     v.Duration,
		"createdAt":    v.CreatedAt,
		"user":         v.User,
	}
	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, meta)
}

func (h *VideoHandler) RecordView(c *gin.Context) {
	viewerID, _ := GetUserIDFromGinContext(c)

	var req RecordViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	output, err := h.recordViewUseCase.Execute(c.Request.Context(), videoUC.RecordViewInput{
		VideoID:         c.Param("id"),
		SessionID:       req.SessionID,
		ViewerID:        viewerID,
		WatchedSeconds:  req.WatchedSeconds,
		DurationSeconds: req.Duration,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *VideoHandler) CreateVideo(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("user id not found in context", nil))
		return
	}

	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	output, err := h.createUseCase.Execute(c.Request.Context(), videoUC.CreateVideoInput{
		OwnerID:      userID,
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Visibility:   video.Visibility(req.Visibility),
		Duration:     req.Duration,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, mutationResponse("Video created successfully", output.Video))
}

func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("user id not found in context", nil))
		return
	}

	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	output, err := h.updateDetailsUseCase.Execute(c.Request.Context(), videoUC.UpdateDetailsInput{
		VideoID:  c.Param("id"),
		CallerID: userID,
		Patch:    req.ToPatch(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, mutationResponse("Video updated successfully", output.Video))
}

func (h *VideoHandler) UpdateVisibility(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("user id not found in context", nil))
		return
	}

	var req UpdateVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	output, err := h.updateVisibilityUseCase.Execute(c.Request.Context(), videoUC.UpdateVisibilityInput{
		VideoID:    c.Param("id"),
		CallerID:   userID,
		Visibility: video.Visibility(req.Visibility),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, mutationResponse("Visibility updated successfully", output.Video))
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("user id not found in context", nil))
		return
	}

	if _, err := h.deleteUseCase.Execute(c.Request.Context(), videoUC.DeleteVideoInput{
		VideoID:  c.Param("id"),
		CallerID: userID,
	}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Video deleted successfully"})
}
