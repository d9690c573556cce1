package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/sqlscan"
)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "created_at"}

type userRow struct {
	ID           int32     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    timestamp `db:"created_at"`
}

func (u userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         domain.Role(u.Role),
		CreatedAt:    u.CreatedAt.at,
	}
}

// UserRepository implements domain.UserRepository on SQLite
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	createdAt := nowUTC()
	id, err := insert(ctx, r.store.db, sq.Insert("users").
		Columns("name", "email", "password_hash", "role", "created_at").
		Values(user.Name, user.Email, user.PasswordHash, string(user.Role), formatTime(createdAt)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("sqlite: create user: %w", err)
	}

	created := *user
	created.ID = id
	created.CreatedAt = createdAt
	return &created, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Expr("lower(email) = lower(?)", email))
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := sq.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row userRow
	if err := sqlscan.Get(ctx, r.store.db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("sqlite: get user: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves all users ordered by name
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := sq.Select(userColumns...).From("users").OrderBy("name", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var rows []userRow
	if err := sqlscan.Select(ctx, r.store.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list users: %w", err)
	}
	users := make([]*domain.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toDomain()
	}
	return users, nil
}
