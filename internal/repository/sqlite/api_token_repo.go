package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

type apiTokenRow struct {
	ID          uuid.UUID     `db:"id"`
	UserID      int32         `db:"user_id"`
	TokenHash   string        `db:"token_hash"`
	TokenPrefix string        `db:"token_prefix"`
	LastUsedAt  nullTimestamp `db:"last_used_at"`
	CreatedAt   timestamp     `db:"created_at"`
	RevokedAt   nullTimestamp `db:"revoked_at"`
}

// APITokenRepository implements domain.APITokenRepository on SQLite
type APITokenRepository struct {
	store *Store
}

// NewAPITokenRepository creates a new APITokenRepository
func NewAPITokenRepository(store *Store) *APITokenRepository {
	return &APITokenRepository{store: store}
}

// Create creates a new API token
func (r *APITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = nowUTC()

	query, args, err := sq.Insert("api_tokens").
		Columns("id", "user_id", "token_hash", "token_prefix", "created_at").
		Values(token.ID.String(), token.UserID, token.TokenHash, token.TokenPrefix, formatTime(token.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: create api token: %w", err)
	}
	return nil
}

// GetByHash retrieves an active API token by its hash
func (r *APITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := sq.Select("id", "user_id", "token_hash", "token_prefix", "last_used_at", "created_at", "revoked_at").
		From("api_tokens").
		Where(squirrel.Eq{"token_hash": hash, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row apiTokenRow
	if err := sqlscan.Get(ctx, r.store.db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("sqlite: get api token: %w", err)
	}
	return &domain.APIToken{
		ID:          row.ID,
		UserID:      row.UserID,
		TokenHash:   row.TokenHash,
		TokenPrefix: row.TokenPrefix,
		LastUsedAt:  row.LastUsedAt.ptr(),
		CreatedAt:   row.CreatedAt.at,
		RevokedAt:   row.RevokedAt.ptr(),
	}, nil
}

// CountActiveByUser counts a user's tokens that have not been revoked
func (r *APITokenRepository) CountActiveByUser(ctx context.Context, userID int32) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := sq.Select("COUNT(*)").
		From("api_tokens").
		Where(squirrel.Eq{"user_id": userID, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}

	var count int
	if err := r.store.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlite: count api tokens: %w", err)
	}
	return count, nil
}

// Revoke marks one of the user's API tokens as revoked
func (r *APITokenRepository) Revoke(ctx context.Context, userID int32, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	query, args, err := sq.Update("api_tokens").
		Set("revoked_at", formatTime(nowUTC())).
		Where(squirrel.Eq{"id": id.String(), "user_id": userID, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: revoke api token: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("sqlite: rows affected (revoke api token): %w", err)
	} else if n == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// UpdateLastUsed updates the last_used_at timestamp for a token
func (r *APITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	query, args, err := sq.Update("api_tokens").
		Set("last_used_at", formatTime(nowUTC())).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	_, err = r.store.db.ExecContext(ctx, query, args...)
	return err
}
