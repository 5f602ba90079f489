package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/screenvault/internal/application/usecase/auth"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type AuthHandler struct {
	loginUseCase       *auth.LoginUseCase
	currentUserUseCase *auth.GetCurrentUserUseCase
	logger             logger.Logger
}

func NewAuthHandler(loginUC *auth.LoginUseCase, currentUserUC *auth.GetCurrentUserUseCase, log logger.Logger) *AuthHandler {
	useJSONFieldNames()
	return &AuthHandler{
		loginUseCase:       loginUC,
		currentUserUseCase: currentUserUC,
		logger:             log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	input := auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": output.AccessToken,
		"user":         output.User,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("user id not found in context", nil))
		return
	}

	u, err := h.currentUserUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
