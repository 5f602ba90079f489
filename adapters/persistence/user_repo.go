package persistence

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/domain/user"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type postgresUserRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresUserRepo(db *pgxpool.Pool, log logger.Logger) user.Repository {
	return &postgresUserRepo{db: db, logger: log}
}

func selectUsers() sq.SelectBuilder {
	return psql.Select(
		"u.id", "u.name", "u.email", "u.email_verified", "u.image",
		"COALESCE(a.password, '')", "u.created_at", "u.updated_at",
	).
		From("users u").
		LeftJoin("accounts a ON a.user_id = u.id AND a.provider_id = ?", user.CredentialProvider)
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.EmailVerified,
		&u.Image,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("error when query user: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query, args, err := selectUsers().Where(sq.Expr("lower(u.email) = lower(?)", email)).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find user query: %w", err)
	}
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		r.logger.Error("Failed to load user by email", err, zap.String("email", email))
	}
	return u, err
}

func (r *postgresUserRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	query, args, err := selectUsers().Where(sq.Eq{"u.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find user query: %w", err)
	}
	return scanUser(r.db.QueryRow(ctx, query, args...))
}
