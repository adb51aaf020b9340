package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

var _ Repo = (*PostgresRepo)(nil)

// Repo persists server-side session records keyed by the opaque session id
// carried in the browser cookie.
type Repo interface {
	// Get fetches a session record by id.
	Get(ctx context.Context, sid string) (*models.SessionRecord, error)
	// Save upserts a session record.
	Save(ctx context.Context, rec *models.SessionRecord) error
	// Delete removes a session record. Deleting a missing record is not an
	// error.
	Delete(ctx context.Context, sid string) error
	// DeleteExpired removes sessions past their expiry.
	DeleteExpired(ctx context.Context) (int64, error)
}

// PgxPool is the subset of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresRepo struct {
	logger *zap.Logger
	pool   PgxPool
}

func NewPostgresRepo(pool PgxPool, logger *zap.Logger) *PostgresRepo {
	return &PostgresRepo{logger: logger, pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *PostgresRepo) Get(ctx context.Context, sid string) (*models.SessionRecord, error) {
	query, args, err := psql.
		Select("id", "user_id", "access_token", "refresh_token", "expires_at", "created_at", "updated_at").
		From("sessions").
		Where(sq.Eq{"id": sid}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building session query: %w", err)
	}

	var rec models.SessionRecord
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&rec.ID, &rec.UserID, &rec.AccessToken, &rec.RefreshToken,
		&rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", sid, models.ErrNotFound)
		}
		r.logger.Error("Error fetching session", zap.String("sid", sid), zap.Error(err))
		return nil, fmt.Errorf("database error fetching session: %w", err)
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, fmt.Errorf("session %s expired: %w", sid, models.ErrNotFound)
	}
	return &rec, nil
}

func (r *PostgresRepo) Save(ctx context.Context, rec *models.SessionRecord) error {
	query, args, err := psql.
		Insert("sessions").
		Columns("id", "user_id", "access_token", "refresh_token", "expires_at", "created_at", "updated_at").
		Values(rec.ID, rec.UserID, rec.AccessToken, rec.RefreshToken, rec.ExpiresAt, rec.CreatedAt, rec.UpdatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building session upsert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		r.logger.Error("Error saving session", zap.String("sid", rec.ID), zap.Error(err))
		return fmt.Errorf("database error saving session: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, sid string) error {
	query, args, err := psql.Delete("sessions").Where(sq.Eq{"id": sid}).ToSql()
	if err != nil {
		return fmt.Errorf("building session delete: %w", err)
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		r.logger.Error("Error deleting session", zap.String("sid", sid), zap.Error(err))
		return fmt.Errorf("database error deleting session: %w", err)
	}
	return nil
}

func (r *PostgresRepo) DeleteExpired(ctx context.Context) (int64, error) {
	query, args, err := psql.Delete("sessions").Where(sq.Lt{"expires_at": time.Now()}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building expired-session delete: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Error deleting expired sessions", zap.Error(err))
		return 0, fmt.Errorf("database error deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
