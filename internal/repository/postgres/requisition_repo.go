package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/util"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const requisitionReturning = "RETURNING id, requester_id, cost_center_id, account_plan_id, description, requested_amount, requested_at, status, approver_id, decided_at"

// committingStatuses are the statuses whose amounts count against a budget
var committingStatuses = []string{string(domain.RequisitionPending), string(domain.RequisitionApproved)}

type requisitionRow struct {
	ID              int32          `db:"id"`
	RequesterID     int32          `db:"requester_id"`
	CostCenterID    int32          `db:"cost_center_id"`
	AccountPlanID   int32          `db:"account_plan_id"`
	Description     string         `db:"description"`
	RequestedAmount pgtype.Numeric `db:"requested_amount"`
	RequestedAt     time.Time      `db:"requested_at"`
	Status          string         `db:"status"`
	ApproverID      *int32         `db:"approver_id"`
	DecidedAt       *time.Time     `db:"decided_at"`
}

type requisitionDetailRow struct {
	ID              int32          `db:"id"`
	RequesterID     int32          `db:"requester_id"`
	CostCenterID    int32          `db:"cost_center_id"`
	AccountPlanID   int32          `db:"account_plan_id"`
	Description     string         `db:"description"`
	RequestedAmount pgtype.Numeric `db:"requested_amount"`
	RequestedAt     time.Time      `db:"requested_at"`
	Status          string         `db:"status"`
	ApproverID      *int32         `db:"approver_id"`
	DecidedAt       *time.Time     `db:"decided_at"`
	RequesterName   string         `db:"requester_name"`
	CostCenterName  string         `db:"cost_center_name"`
	AccountPlanName string         `db:"account_plan_name"`
	ApproverName    *string        `db:"approver_name"`
}

// RequisitionRepository implements domain.RequisitionRepository using PostgreSQL
type RequisitionRepository struct {
	db DBTX
}

// NewRequisitionRepository creates a new RequisitionRepository
func NewRequisitionRepository(db DBTX) *RequisitionRepository {
	return &RequisitionRepository{db: db}
}

// SumCommitted totals pending and approved requisitions of a budget line
func (r *RequisitionRepository) SumCommitted(ctx context.Context, line domain.BudgetLine) (decimal.Decimal, error) {
	return sumCommitted(ctx, r.db, line)
}

// CreateWithinBudget inserts req if it fits the line's remaining allocation.
// The budget row is locked with SELECT ... FOR UPDATE so concurrent
// submissions against the same line are checked one after another.
func (r *RequisitionRepository) CreateWithinBudget(ctx context.Context, req *domain.Requisition, line domain.BudgetLine, check domain.BudgetCheck) (*domain.Requisition, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Warn().Err(rbErr).Msg("Failed to roll back requisition transaction")
		}
	}()

	budget, err := getBudgetByLine(ctx, tx, line, true)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return nil, domain.ErrBudgetNotAllocated
		}
		return nil, err
	}

	committed, err := sumCommitted(ctx, tx, line)
	if err != nil {
		return nil, err
	}

	if err := check(budget, committed); err != nil {
		return nil, err
	}

	amount, err := toNumeric(req.RequestedAmount)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Insert("requisitions").
		Columns("requester_id", "cost_center_id", "account_plan_id", "description", "requested_amount", "requested_at", "status").
		Values(req.RequesterID, req.CostCenterID, req.AccountPlanID, req.Description, amount, req.RequestedAt, string(req.Status)).
		Suffix(requisitionReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}

	var row requisitionRow
	if err := pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
		switch {
		case isForeignKeyViolation(err):
			return nil, domain.ErrInvalidInput
		case isNumericOutOfRange(err):
			return nil, domain.ErrAmountTooLarge
		}
		return nil, fmt.Errorf("inserting requisition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit requisition: %w", err)
	}
	return row.toDomain(), nil
}

// GetByID retrieves a requisition with joined names
func (r *RequisitionRepository) GetByID(ctx context.Context, id int32) (*domain.RequisitionDetail, error) {
	query, args, err := r.detailQuery().
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row requisitionDetailRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrRequisitionNotFound
		}
		return nil, fmt.Errorf("scanning requisition: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves requisitions matching filter, newest first
func (r *RequisitionRepository) List(ctx context.Context, filter domain.RequisitionFilter) ([]*domain.RequisitionDetail, error) {
	qb := r.detailQuery()
	if start, end, ok := util.FilterBounds(filter.Year, filter.Month); ok {
		qb = qb.Where(squirrel.GtOrEq{"r.requested_at": start}).
			Where(squirrel.Lt{"r.requested_at": end})
	} else if filter.Month != nil {
		qb = qb.Where("EXTRACT(MONTH FROM r.requested_at AT TIME ZONE 'UTC') = ?", *filter.Month)
	}
	if filter.CostCenterID != nil {
		qb = qb.Where(squirrel.Eq{"r.cost_center_id": *filter.CostCenterID})
	}
	if filter.Status != nil {
		qb = qb.Where(squirrel.Eq{"r.status": string(*filter.Status)})
	}

	query, args, err := qb.OrderBy("r.requested_at DESC", "r.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var rows []requisitionDetailRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scanning requisitions: %w", err)
	}

	result := make([]*domain.RequisitionDetail, len(rows))
	for i := range rows {
		result[i] = rows[i].toDomain()
	}
	return result, nil
}

// Decide moves a pending requisition to status. The status predicate in the
// WHERE clause makes the transition a compare-and-set.
func (r *RequisitionRepository) Decide(ctx context.Context, id int32, status domain.RequisitionStatus, approverID int32, decidedAt time.Time) (*domain.Requisition, error) {
	query, args, err := psql.Update("requisitions").
		Set("status", string(status)).
		Set("approver_id", approverID).
		Set("decided_at", decidedAt).
		Where(squirrel.Eq{"id": id, "status": string(domain.RequisitionPending)}).
		Suffix(requisitionReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}

	var row requisitionRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			// Either the row does not exist or it is no longer pending
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrRequisitionDecided
		}
		return nil, fmt.Errorf("updating requisition: %w", err)
	}
	return row.toDomain(), nil
}

func (r *RequisitionRepository) detailQuery() squirrel.SelectBuilder {
	return psql.Select(
		"r.id", "r.requester_id", "r.cost_center_id", "r.account_plan_id", "r.description",
		"r.requested_amount", "r.requested_at", "r.status", "r.approver_id", "r.decided_at",
		"u.name AS requester_name", "cc.name AS cost_center_name", "ap.name AS account_plan_name",
		"a.name AS approver_name",
	).
		From("requisitions r").
		Join("users u ON u.id = r.requester_id").
		Join("cost_centers cc ON cc.id = r.cost_center_id").
		Join("account_plans ap ON ap.id = r.account_plan_id").
		LeftJoin("users a ON a.id = r.approver_id")
}

// rowQuerier is satisfied by both the pool and an open transaction
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func sumCommitted(ctx context.Context, db rowQuerier, line domain.BudgetLine) (decimal.Decimal, error) {
	start, end := util.MonthBounds(line.Year, line.Month)
	query, args, err := psql.Select("COALESCE(SUM(requested_amount), 0)").
		From("requisitions").
		Where(squirrel.Eq{
			"cost_center_id":  line.CostCenterID,
			"account_plan_id": line.AccountPlanID,
			"status":          committingStatuses,
		}).
		Where(squirrel.GtOrEq{"requested_at": start}).
		Where(squirrel.Lt{"requested_at": end}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("building sum query: %w", err)
	}

	var total pgtype.Numeric
	if err := db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing committed amount: %w", err)
	}
	return fromNumeric(total), nil
}

func (r requisitionRow) toDomain() *domain.Requisition {
	req := &domain.Requisition{
		ID:              r.ID,
		RequesterID:     r.RequesterID,
		CostCenterID:    r.CostCenterID,
		AccountPlanID:   r.AccountPlanID,
		Description:     r.Description,
		RequestedAmount: fromNumeric(r.RequestedAmount),
		RequestedAt:     r.RequestedAt.UTC(),
		Status:          domain.RequisitionStatus(r.Status),
		ApproverID:      r.ApproverID,
	}
	if r.DecidedAt != nil {
		decided := r.DecidedAt.UTC()
		req.DecidedAt = &decided
	}
	return req
}

func (r requisitionDetailRow) toDomain() *domain.RequisitionDetail {
	base := requisitionRow{
		ID:              r.ID,
		RequesterID:     r.RequesterID,
		CostCenterID:    r.CostCenterID,
		AccountPlanID:   r.AccountPlanID,
		Description:     r.Description,
		RequestedAmount: r.RequestedAmount,
		RequestedAt:     r.RequestedAt,
		Status:          r.Status,
		ApproverID:      r.ApproverID,
		DecidedAt:       r.DecidedAt,
	}
	return &domain.RequisitionDetail{
		Requisition:     *base.toDomain(),
		RequesterName:   r.RequesterName,
		CostCenterName:  r.CostCenterName,
		AccountPlanName: r.AccountPlanName,
		ApproverName:    r.ApproverName,
	}
}
