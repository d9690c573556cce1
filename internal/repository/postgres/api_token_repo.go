package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

// APITokenRepository implements domain.APITokenRepository using PostgreSQL
type APITokenRepository struct {
	db DBTX
}

// NewAPITokenRepository creates a new APITokenRepository
func NewAPITokenRepository(db DBTX) *APITokenRepository {
	return &APITokenRepository{db: db}
}

// Create creates a new API token
func (r *APITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	query, args, err := psql.Insert("api_tokens").
		Columns("id", "user_id", "token_hash", "token_prefix").
		Values(token.ID, token.UserID, token.TokenHash, token.TokenPrefix).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}

	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query, args...).Scan(&createdAt); err != nil {
		return fmt.Errorf("inserting API token: %w", err)
	}
	token.CreatedAt = createdAt.UTC()
	return nil
}

// GetByHash retrieves an active API token by its hash (for authentication)
func (r *APITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	query, args, err := psql.Select("id", "user_id", "token_hash", "token_prefix", "last_used_at", "created_at", "revoked_at").
		From("api_tokens").
		Where(squirrel.Eq{"token_hash": hash, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var token domain.APIToken
	if err := pgxscan.Get(ctx, r.db, &token, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("scanning API token: %w", err)
	}
	return &token, nil
}

// CountActiveByUser counts a user's tokens that have not been revoked
func (r *APITokenRepository) CountActiveByUser(ctx context.Context, userID int32) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("api_tokens").
		Where(squirrel.Eq{"user_id": userID, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting API tokens: %w", err)
	}
	return count, nil
}

// Revoke marks one of the user's API tokens as revoked
func (r *APITokenRepository) Revoke(ctx context.Context, userID int32, id uuid.UUID) error {
	query, args, err := psql.Update("api_tokens").
		Set("revoked_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "user_id": userID, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("revoking API token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// UpdateLastUsed updates the last_used_at timestamp for a token
func (r *APITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update("api_tokens").
		Set("last_used_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}
