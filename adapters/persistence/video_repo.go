package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type postgresVideoRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresVideoRepo(db *pgxpool.Pool, log logger.Logger) video.Repository {
	return &postgresVideoRepo{db: db, logger: log}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var videoColumns = []string{
	"id", "user_id", "title", "description", "video_url", "thumbnail_url",
	"visibility", "views", "duration", "created_at", "updated_at",
}

var authorColumns = []string{"u.id", "u.name", "u.image"}

func qualified(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + "." + c
	}
	return out
}

func selectVideosWithUser() sq.SelectBuilder {
	cols := append(qualified("v", videoColumns), authorColumns...)
	return psql.Select(cols...).
		From("videos v").
		LeftJoin("users u ON u.id = v.user_id")
}

func returningVideo() string {
	return "RETURNING " + strings.Join(videoColumns, ", ")
}

func scanVideo(row pgx.Row) (*video.Video, error) {
	v := &video.Video{}
	var visibility string

	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.Title,
		&v.Description,
		&v.VideoURL,
		&v.ThumbnailURL,
		&visibility,
		&v.Views,
		&v.Duration,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, video.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to scan video row: %w", err)
	}
	v.Visibility = video.Visibility(visibility)
	return v, nil
}

func scanVideoWithUser(row pgx.Row) (*video.VideoWithUser, error) {
	vw := &video.VideoWithUser{}
	var visibility string
	var authorID, authorName, authorImage *string

	err := row.Scan(
		&vw.ID,
		&vw.UserID,
		&vw.Title,
		&vw.Description,
		&vw.VideoURL,
		&vw.ThumbnailURL,
		&visibility,
		&vw.Views,
		&vw.Duration,
		&vw.CreatedAt,
		&vw.UpdatedAt,
		&authorID,
		&authorName,
		&authorImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, video.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to scan video row: %w", err)
	}
	vw.Visibility = video.Visibility(visibility)

	if authorID != nil {
		vw.User = &video.Author{ID: *authorID, Image: authorImage}
		if authorName != nil {
			vw.User.Name = *authorName
		}
	}
	return vw, nil
}

func scanVideosWithUser(rows pgx.Rows) ([]*video.VideoWithUser, error) {
	videos := make([]*video.VideoWithUser, 0)
	defer rows.Close()

	for rows.Next() {
		vw, err := scanVideoWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row during iteration: %w", err)
		}
		videos = append(videos, vw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("video rows iteration failed: %w", err)
	}
	return videos, nil
}

func (r *postgresVideoRepo) Save(ctx context.Context, v *video.Video) error {
	query, args, err := psql.Insert("videos").
		Columns(videoColumns...).
		Values(
			v.ID, v.UserID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL,
			string(v.Visibility), v.Views, v.Duration, v.CreatedAt, v.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert video query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperror.NewConflict("video", "id", v.ID)
			case "23503":
				return apperror.NewInvalidInput("video owner does not exist", err)
			}
		}
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *postgresVideoRepo) findOne(ctx context.Context, where ...sq.Sqlizer) (*video.VideoWithUser, error) {
	builder := selectVideosWithUser()
	for _, w := range where {
		builder = builder.Where(w)
	}
	query, args, err := builder.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find video query: %w", err)
	}
	return scanVideoWithUser(r.db.QueryRow(ctx, query, args...))
}

func (r *postgresVideoRepo) FindByID(ctx context.Context, id string) (*video.VideoWithUser, error) {
	return r.findOne(ctx, sq.Eq{"v.id": id})
}

func (r *postgresVideoRepo) FindAuthorized(ctx context.Context, id string, viewerID string) (*video.VideoWithUser, error) {
	return r.findOne(ctx, sq.Eq{"v.id": id}, accessPredicate(viewerID))
}

func (r *postgresVideoRepo) FindPublicByID(ctx context.Context, id string) (*video.VideoWithUser, error) {
	return r.findOne(ctx, sq.Eq{"v.id": id}, publicScope())
}

func (r *postgresVideoRepo) ListPublic(ctx context.Context, params video.ListParams) ([]*video.VideoWithUser, error) {
	return r.list(ctx, listQuery{scope: publicScope()}, params)
}

func (r *postgresVideoRepo) SearchPublic(ctx context.Context, text string, params video.ListParams) ([]*video.VideoWithUser, error) {
	return r.list(ctx, listQuery{scope: publicScope(), text: text, matchAuthor: true}, params)
}

func (r *postgresVideoRepo) ListByOwner(ctx context.Context, ownerID string, params video.ListParams) ([]*video.VideoWithUser, error) {
	return r.list(ctx, listQuery{scope: ownerScope(ownerID), ownerScoped: true}, params)
}

func (r *postgresVideoRepo) SearchByOwner(ctx context.Context, ownerID string, text string, params video.ListParams) ([]*video.VideoWithUser, error) {
	return r.list(ctx, listQuery{scope: ownerScope(ownerID), ownerScoped: true, text: text}, params)
}

func (r *postgresVideoRepo) list(ctx context.Context, lq listQuery, params video.ListParams) ([]*video.VideoWithUser, error) {
	query, args, err := buildListQuery(lq, params).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list videos query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	return scanVideosWithUser(rows)
}

func (r *postgresVideoRepo) UpdateVisibility(ctx context.Context, id string, ownerID string, visibility video.Visibility) (*video.Video, error) {
	query, args, err := psql.Update("videos").
		Set("visibility", string(visibility)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		Suffix(returningVideo()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update visibility query: %w", err)
	}
	return scanVideo(r.db.QueryRow(ctx, query, args...))
}

func (r *postgresVideoRepo) UpdateDetails(ctx context.Context, id string, ownerID string, patch video.DetailsPatch) (*video.Video, error) {
	builder := psql.Update("videos").Set("updated_at", sq.Expr("NOW()"))
	if patch.Title != nil {
		builder = builder.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		builder = builder.Set("description", *patch.Description)
	}
	if patch.Visibility != nil {
		builder = builder.Set("visibility", string(*patch.Visibility))
	}

	query, args, err := builder.
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		Suffix(returningVideo()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update video query: %w", err)
	}
	return scanVideo(r.db.QueryRow(ctx, query, args...))
}

func (r *postgresVideoRepo) Delete(ctx context.Context, id string, ownerID string) (*video.Video, error) {
	query, args, err := psql.Delete("videos").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		Suffix(returningVideo()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete video query: %w", err)
	}
	return scanVideo(r.db.QueryRow(ctx, query, args...))
}

func (r *postgresVideoRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	query, args, err := psql.Update("videos").
		Set("views", sq.Expr("views + 1")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING views").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build increment views query: %w", err)
	}

	var views int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&views); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, video.ErrVideoNotFound
		}
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return views, nil
}
