package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// CostCenterRepository implements domain.CostCenterRepository using PostgreSQL
type CostCenterRepository struct {
	db DBTX
}

// NewCostCenterRepository creates a new CostCenterRepository
func NewCostCenterRepository(db DBTX) *CostCenterRepository {
	return &CostCenterRepository{db: db}
}

// Create creates a new cost center
func (r *CostCenterRepository) Create(ctx context.Context, cc *domain.CostCenter) (*domain.CostCenter, error) {
	query, args, err := psql.Insert("cost_centers").
		Columns("name", "code", "manager_id", "parent_id").
		Values(cc.Name, cc.Code, cc.ManagerID, cc.ParentID).
		Suffix("RETURNING id, name, code, manager_id, parent_id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}

	var created domain.CostCenter
	if err := pgxscan.Get(ctx, r.db, &created, query, args...); err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, domain.ErrCostCenterAlreadyExists
		case isForeignKeyViolation(err):
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("inserting cost center: %w", err)
	}
	created.CreatedAt = created.CreatedAt.UTC()
	return &created, nil
}

// detailQuery selects cost centers joined with manager and parent names
func (r *CostCenterRepository) detailQuery() squirrel.SelectBuilder {
	return psql.Select(
		"cc.id", "cc.name", "cc.code", "cc.manager_id", "cc.parent_id", "cc.created_at",
		"m.name AS manager_name", "p.name AS parent_name",
	).
		From("cost_centers cc").
		Join("users m ON m.id = cc.manager_id").
		LeftJoin("cost_centers p ON p.id = cc.parent_id")
}

// GetByID retrieves a cost center with manager and parent names
func (r *CostCenterRepository) GetByID(ctx context.Context, id int32) (*domain.CostCenterDetail, error) {
	query, args, err := r.detailQuery().
		Where(squirrel.Eq{"cc.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var cc domain.CostCenterDetail
	if err := pgxscan.Get(ctx, r.db, &cc, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrCostCenterNotFound
		}
		return nil, fmt.Errorf("scanning cost center: %w", err)
	}
	cc.CreatedAt = cc.CreatedAt.UTC()
	return &cc, nil
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
	query, args, err := qb.OrderBy("cc.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var result []*domain.CostCenterDetail
	if err := pgxscan.Select(ctx, r.db, &result, query, args...); err != nil {
		return nil, fmt.Errorf("scanning cost centers: %w", err)
	}
	for _, cc := range result {
		cc.CreatedAt = cc.CreatedAt.UTC()
	}
	return result, nil
}

// ExistsByNameOrCode reports whether a cost center already uses name or code
func (r *CostCenterRepository) ExistsByNameOrCode(ctx context.Context, name, code string) (bool, error) {
	return existsByNameOrCode(ctx, r.db, "cost_centers", name, code)
}

// existsByNameOrCode is shared by the catalog tables that carry unique name and code columns
func existsByNameOrCode(ctx context.Context, db DBTX, table, name, code string) (bool, error) {
	sub := psql.Select("1").
		From(table).
		Where(squirrel.Or{squirrel.Eq{"name": name}, squirrel.Eq{"code": code}})
	query, args, err := psql.Select().
		Column(squirrel.Expr("EXISTS (?)", sub)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("building exists query: %w", err)
	}

	var exists bool
	if err := db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking %s uniqueness: %w", table, err)
	}
	return exists, nil
}
