package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/sqlscan"
)

type costCenterRow struct {
	ID          int32          `db:"id"`
	Name        string         `db:"name"`
	Code        string         `db:"code"`
	ManagerID   int32          `db:"manager_id"`
	ParentID    sql.NullInt32  `db:"parent_id"`
	CreatedAt   timestamp      `db:"created_at"`
	ManagerName string         `db:"manager_name"`
	ParentName  sql.NullString `db:"parent_name"`
}

func (c costCenterRow) toDomain() *domain.CostCenterDetail {
	detail := &domain.CostCenterDetail{
		CostCenter: domain.CostCenter{
			ID:        c.ID,
			Name:      c.Name,
			Code:      c.Code,
			ManagerID: c.ManagerID,
			CreatedAt: c.CreatedAt.at,
		},
		ManagerName: c.ManagerName,
	}
	if c.ParentID.Valid {
		parentID := c.ParentID.Int32
		detail.ParentID = &parentID
	}
	if c.ParentName.Valid {
		parentName := c.ParentName.String
		detail.ParentName = &parentName
	}
	return detail
}

// CostCenterRepository implements domain.CostCenterRepository on SQLite
type CostCenterRepository struct {
	store *Store
}

// NewCostCenterRepository creates a new CostCenterRepository
func NewCostCenterRepository(store *Store) *CostCenterRepository {
	return &CostCenterRepository{store: store}
}

// Create creates a new cost center
func (r *CostCenterRepository) Create(ctx context.Context, cc *domain.CostCenter) (*domain.CostCenter, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	createdAt := nowUTC()
	id, err := insert(ctx, r.store.db, sq.Insert("cost_centers").
		Columns("name", "code", "manager_id", "parent_id", "created_at").
		Values(cc.Name, cc.Code, cc.ManagerID, cc.ParentID, formatTime(createdAt)))
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, domain.ErrCostCenterAlreadyExists
		case isForeignKeyViolation(err):
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("sqlite: create cost center: %w", err)
	}

	created := *cc
	created.ID = id
	created.CreatedAt = createdAt
	return &created, nil
}

func (r *CostCenterRepository) detailQuery() squirrel.SelectBuilder {
	return sq.Select(
		"cc.id", "cc.name", "cc.code", "cc.manager_id", "cc.parent_id", "cc.created_at",
		"m.name AS manager_name", "p.name AS parent_name",
	).
		From("cost_centers cc").
		Join("users m ON m.id = cc.manager_id").
		LeftJoin("cost_centers p ON p.id = cc.parent_id")
}

// GetByID retrieves a cost center with manager and parent names
func (r *CostCenterRepository) GetByID(ctx context.Context, id int32) (*domain.CostCenterDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := r.detailQuery().Where(squirrel.Eq{"cc.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row costCenterRow
	if err := sqlscan.Get(ctx, r.store.db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, domain.ErrCostCenterNotFound
		}
		return nil, fmt.Errorf("sqlite: get cost center: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves all cost centers ordered by name
func (r *CostCenterRepository) List(ctx context.Context) ([]*domain.CostCenterDetail, error) {
	return r.list(ctx, r.detailQuery())
}

// ListChildren retrieves the direct children of a cost center
func (r *CostCenterRepository) ListChildren(ctx context.Context, parentID int32) ([]*domain.CostCenterDetail, error) {
	return r.list(ctx, r.detailQuery().Where(squirrel.Eq{"cc.parent_id": parentID}))
}

func (r *CostCenterRepository) list(ctx context.Context, qb squirrel.SelectBuilder) ([]*domain.CostCenterDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := qb.OrderBy("cc.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var rows []costCenterRow
	if err := sqlscan.Select(ctx, r.store.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list cost centers: %w", err)
	}
	result := make([]*domain.CostCenterDetail, len(rows))
	for i := range rows {
		result[i] = rows[i].toDomain()
	}
	return result, nil
}

// ExistsByNameOrCode reports whether a cost center already uses name or code
func (r *CostCenterRepository) ExistsByNameOrCode(ctx context.Context, name, code string) (bool, error) {
	return r.store.existsByNameOrCode(ctx, "cost_centers", name, code)
}

type accountPlanRow struct {
	ID        int32     `db:"id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	CreatedAt timestamp `db:"created_at"`
}

func (a accountPlanRow) toDomain() *domain.AccountPlan {
	return &domain.AccountPlan{
		ID:        a.ID,
		Name:      a.Name,
		Code:      a.Code,
		CreatedAt: a.CreatedAt.at,
	}
}

// AccountPlanRepository implements domain.AccountPlanRepository on SQLite
type AccountPlanRepository struct {
	store *Store
}

// NewAccountPlanRepository creates a new AccountPlanRepository
func NewAccountPlanRepository(store *Store) *AccountPlanRepository {
	return &AccountPlanRepository{store: store}
}

// Create creates a new account plan
func (r *AccountPlanRepository) Create(ctx context.Context, plan *domain.AccountPlan) (*domain.AccountPlan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	createdAt := nowUTC()
	id, err := insert(ctx, r.store.db, sq.Insert("account_plans").
		Columns("name", "code", "created_at").
		Values(plan.Name, plan.Code, formatTime(createdAt)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountPlanAlreadyExists
		}
		return nil, fmt.Errorf("sqlite: create account plan: %w", err)
	}

	created := *plan
	created.ID = id
	created.CreatedAt = createdAt
	return &created, nil
}

// GetByID retrieves an account plan by ID
func (r *AccountPlanRepository) GetByID(ctx context.Context, id int32) (*domain.AccountPlan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := sq.Select("id", "name", "code", "created_at").
		From("account_plans").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row accountPlanRow
	if err := sqlscan.Get(ctx, r.store.db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, domain.ErrAccountPlanNotFound
		}
		return nil, fmt.Errorf("sqlite: get account plan: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves all account plans ordered by code
func (r *AccountPlanRepository) List(ctx context.Context) ([]*domain.AccountPlan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := sq.Select("id", "name", "code", "created_at").
		From("account_plans").
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var rows []accountPlanRow
	if err := sqlscan.Select(ctx, r.store.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list account plans: %w", err)
	}
	plans := make([]*domain.AccountPlan, len(rows))
	for i := range rows {
		plans[i] = rows[i].toDomain()
	}
	return plans, nil
}

// ExistsByNameOrCode reports whether an account plan already uses name or code
func (r *AccountPlanRepository) ExistsByNameOrCode(ctx context.Context, name, code string) (bool, error) {
	return r.store.existsByNameOrCode(ctx, "account_plans", name, code)
}

func (s *Store) existsByNameOrCode(ctx context.Context, table, name, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub := sq.Select("1").
		From(table).
		Where(squirrel.Or{squirrel.Eq{"name": name}, squirrel.Eq{"code": code}})
	query, args, err := sq.Select().Column(squirrel.Expr("EXISTS (?)", sub)).ToSql()
	if err != nil {
		return false, fmt.Errorf("building exists query: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("sqlite: check %s uniqueness: %w", table, err)
	}
	return exists, nil
}
