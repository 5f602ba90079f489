package auth

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/domain/user"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/auth"
	"github.com/khoahotran/screenvault/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
)

type LoginUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	logger   logger.Logger
}

func NewLoginUseCase(repo user.Repository, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		userRepo: repo,
		jwtSvc:   jwtSvc,
		logger:   log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string
	User        *user.User
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {

	ctx, span := tracer.Start(ctx, "LoginUseCase.Execute")
	defer span.End()

	u, err := uc.userRepo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperror.NewUnauthorized("unknown email", ErrInvalidCredentials)
		}
		uc.logger.Error("Failed to look up user", err)
		return nil, apperror.NewInternal("failed to look up user", err)
	}

	// Accounts created through a social provider have no credential hash.
	if u.PasswordHash == "" || !auth.CheckPasswordHash(input.Password, u.PasswordHash) {
		err := apperror.NewUnauthorized("incorrect password", ErrInvalidCredentials)
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(u.ID)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", u.ID))
	return &LoginOutput{AccessToken: token, User: u}, nil
}

type GetCurrentUserUseCase struct {
	userRepo user.Repository
	logger   logger.Logger
}

func NewGetCurrentUserUseCase(repo user.Repository, log logger.Logger) *GetCurrentUserUseCase {
	return &GetCurrentUserUseCase{
		userRepo: repo,
		logger:   log,
	}
}

func (uc *GetCurrentUserUseCase) Execute(ctx context.Context, userID string) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "GetCurrentUserUseCase.Execute")
	defer span.End()

	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperror.NewUnauthorized("user no longer exists", err)
		}
		uc.logger.Error("Failed to load current user", err, zap.String("user_id", userID))
		return nil, apperror.NewInternal("failed to load user", err)
	}
	return u, nil
}
