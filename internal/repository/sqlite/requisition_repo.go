package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/util"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var committingStatuses = []string{string(domain.RequisitionPending), string(domain.RequisitionApproved)}

type requisitionDetailRow struct {
	ID              int32           `db:"id"`
	RequesterID     int32           `db:"requester_id"`
	CostCenterID    int32           `db:"cost_center_id"`
	AccountPlanID   int32           `db:"account_plan_id"`
	Description     string          `db:"description"`
	RequestedAmount decimal.Decimal `db:"requested_amount"`
	RequestedAt     timestamp       `db:"requested_at"`
	Status          string          `db:"status"`
	ApproverID      sql.NullInt32   `db:"approver_id"`
	DecidedAt       nullTimestamp   `db:"decided_at"`
	RequesterName   string          `db:"requester_name"`
	CostCenterName  string          `db:"cost_center_name"`
	AccountPlanName string          `db:"account_plan_name"`
	ApproverName    sql.NullString  `db:"approver_name"`
}

func (r requisitionDetailRow) toDomain() *domain.RequisitionDetail {
	detail := &domain.RequisitionDetail{
		Requisition: domain.Requisition{
			ID:              r.ID,
			RequesterID:     r.RequesterID,
			CostCenterID:    r.CostCenterID,
			AccountPlanID:   r.AccountPlanID,
			Description:     r.Description,
			RequestedAmount: r.RequestedAmount,
			RequestedAt:     r.RequestedAt.at,
			Status:          domain.RequisitionStatus(r.Status),
			DecidedAt:       r.DecidedAt.ptr(),
		},
		RequesterName:   r.RequesterName,
		CostCenterName:  r.CostCenterName,
		AccountPlanName: r.AccountPlanName,
	}
	if r.ApproverID.Valid {
		approverID := r.ApproverID.Int32
		detail.ApproverID = &approverID
	}
	if r.ApproverName.Valid {
		approverName := r.ApproverName.String
		detail.ApproverName = &approverName
	}
	return detail
}

// RequisitionRepository implements domain.RequisitionRepository on SQLite
type RequisitionRepository struct {
	store *Store
}

// NewRequisitionRepository creates a new RequisitionRepository
func NewRequisitionRepository(store *Store) *RequisitionRepository {
	return &RequisitionRepository{store: store}
}

// SumCommitted totals pending and approved requisitions of a budget line
func (r *RequisitionRepository) SumCommitted(ctx context.Context, line domain.BudgetLine) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return sumCommitted(ctx, r.store.db, line)
}

// CreateWithinBudget inserts req if it fits the line's remaining allocation.
// The store mutex and the immediate transaction serialize concurrent
// submissions, so the check always sees every committed row.
func (r *RequisitionRepository) CreateWithinBudget(ctx context.Context, req *domain.Requisition, line domain.BudgetLine, check domain.BudgetCheck) (*domain.Requisition, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("Failed to roll back requisition transaction")
		}
	}()

	budget, err := getBudgetByLine(ctx, tx, line)
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

	id, err := insert(ctx, tx, sq.Insert("requisitions").
		Columns("requester_id", "cost_center_id", "account_plan_id", "description", "requested_amount", "requested_at", "status").
		Values(req.RequesterID, req.CostCenterID, req.AccountPlanID, req.Description,
			formatAmount(req.RequestedAmount), formatTime(req.RequestedAt), string(req.Status)))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("sqlite: insert requisition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit requisition: %w", err)
	}

	created := *req
	created.ID = id
	created.RequestedAt = req.RequestedAt.UTC()
	return &created, nil
}

// GetByID retrieves a requisition with joined names
func (r *RequisitionRepository) GetByID(ctx context.Context, id int32) (*domain.RequisitionDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.getByID(ctx, id)
}

func (r *RequisitionRepository) getByID(ctx context.Context, id int32) (*domain.RequisitionDetail, error) {
	query, args, err := r.detailQuery().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row requisitionDetailRow
	if err := sqlscan.Get(ctx, r.store.db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, domain.ErrRequisitionNotFound
		}
		return nil, fmt.Errorf("sqlite: get requisition: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves requisitions matching filter, newest first
func (r *RequisitionRepository) List(ctx context.Context, filter domain.RequisitionFilter) ([]*domain.RequisitionDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	qb := r.detailQuery()
	if start, end, ok := util.FilterBounds(filter.Year, filter.Month); ok {
		qb = qb.Where(squirrel.GtOrEq{"r.requested_at": formatTime(start)}).
			Where(squirrel.Lt{"r.requested_at": formatTime(end)})
	} else if filter.Month != nil {
		qb = qb.Where("CAST(strftime('%m', r.requested_at) AS INTEGER) = ?", *filter.Month)
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
	if err := sqlscan.Select(ctx, r.store.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list requisitions: %w", err)
	}
	result := make([]*domain.RequisitionDetail, len(rows))
	for i := range rows {
		result[i] = rows[i].toDomain()
	}
	return result, nil
}

// Decide moves a pending requisition to status. The status predicate makes the
// update a compare-and-set.
func (r *RequisitionRepository) Decide(ctx context.Context, id int32, status domain.RequisitionStatus, approverID int32, decidedAt time.Time) (*domain.Requisition, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	query, args, err := sq.Update("requisitions").
		Set("status", string(status)).
		Set("approver_id", approverID).
		Set("decided_at", formatTime(decidedAt)).
		Where(squirrel.Eq{"id": id, "status": string(domain.RequisitionPending)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: decide requisition: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: rows affected (decide requisition): %w", err)
	}

	current, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrRequisitionDecided
	}
	return &current.Requisition, nil
}

func (r *RequisitionRepository) detailQuery() squirrel.SelectBuilder {
	return sq.Select(
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

// sumCommitted adds amounts in Go since SQLite would sum TEXT as floating point
func sumCommitted(ctx context.Context, db sqlscan.Querier, line domain.BudgetLine) (decimal.Decimal, error) {
	start, end := util.MonthBounds(line.Year, line.Month)
	query, args, err := sq.Select("requested_amount").
		From("requisitions").
		Where(squirrel.Eq{
			"cost_center_id":  line.CostCenterID,
			"account_plan_id": line.AccountPlanID,
			"status":          committingStatuses,
		}).
		Where(squirrel.GtOrEq{"requested_at": formatTime(start)}).
		Where(squirrel.Lt{"requested_at": formatTime(end)}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("building sum query: %w", err)
	}

	// A corrupt amount fails the scan instead of counting as zero
	var amounts []decimal.Decimal
	if err := sqlscan.Select(ctx, db, &amounts, query, args...); err != nil {
		return decimal.Zero, fmt.Errorf("sqlite: sum committed amount: %w", err)
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}
