package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/metrics"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/util"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SubmitRequisitionInput holds the fields of a new requisition
type SubmitRequisitionInput struct {
	RequesterID   int32
	CostCenterID  int32
	AccountPlanID int32
	Description   string
	Amount        decimal.Decimal
}

// RequisitionService implements the requisition lifecycle: submission against
// the current period's budget and approval or rejection by the cost center manager
type RequisitionService struct {
	requisitionRepo domain.RequisitionRepository
	userRepo        domain.UserRepository
	costCenterRepo  domain.CostCenterRepository
	accountPlanRepo domain.AccountPlanRepository
	ledger          *LedgerService
	directory       *DirectoryService
	eventPublisher  websocket.EventPublisher
	metrics         *metrics.Metrics
	now             func() time.Time
}

// NewRequisitionService creates a new RequisitionService
func NewRequisitionService(
	requisitionRepo domain.RequisitionRepository,
	userRepo domain.UserRepository,
	costCenterRepo domain.CostCenterRepository,
	accountPlanRepo domain.AccountPlanRepository,
	ledger *LedgerService,
	directory *DirectoryService,
) *RequisitionService {
	return &RequisitionService{
		requisitionRepo: requisitionRepo,
		userRepo:        userRepo,
		costCenterRepo:  costCenterRepo,
		accountPlanRepo: accountPlanRepo,
		ledger:          ledger,
		directory:       directory,
		now:             time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *RequisitionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the collector for submission and decision outcomes
func (s *RequisitionService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetClock overrides the time source used for requestedAt, decidedAt and the
// current budget period
func (s *RequisitionService) SetClock(now func() time.Time) {
	s.now = now
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *RequisitionService) publishEvent(event websocket.Event, userIDs ...int32) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event, userIDs...)
	}
}

// Submit creates a pending requisition against the budget of the current UTC
// month. Preconditions are checked in order: requester, cost center and account
// plan exist, a budget is allocated for the period, and the amount fits the
// remaining allocation. The budget check and insert are atomic.
func (s *RequisitionService) Submit(ctx context.Context, input SubmitRequisitionInput) (*domain.RequisitionDetail, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, domain.ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, domain.ErrDescriptionTooLong
	}
	if !input.Amount.IsPositive() {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, domain.ErrInvalidAmount
	}
	if !hasCentPrecision(input.Amount) {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, domain.ErrAmountPrecision
	}
	if !withinAmountLimit(input.Amount) {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, domain.ErrAmountTooLarge
	}

	if err := s.resolveReferences(ctx, input); err != nil {
		if isReferenceError(err) {
			s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		} else {
			s.metrics.ObserveSubmission(metrics.OutcomeError)
		}
		return nil, err
	}

	// Timestamps are stored at microsecond precision
	now := s.now().UTC().Truncate(time.Microsecond)
	year, month := util.PeriodOf(now)
	line := domain.BudgetLine{
		CostCenterID:  input.CostCenterID,
		AccountPlanID: input.AccountPlanID,
		Year:          year,
		Month:         month,
	}

	req := &domain.Requisition{
		RequesterID:     input.RequesterID,
		CostCenterID:    input.CostCenterID,
		AccountPlanID:   input.AccountPlanID,
		Description:     description,
		RequestedAmount: input.Amount,
		RequestedAt:     now,
		Status:          domain.RequisitionPending,
	}

	created, err := s.requisitionRepo.CreateWithinBudget(ctx, req, line, s.ledger.Check(input.Amount))
	if err != nil {
		var exceeded *domain.BudgetExceededError
		switch {
		case errors.As(err, &exceeded):
			s.metrics.ObserveSubmission(metrics.OutcomeBudgetExceeded)
			log.Info().
				Int32("requester_id", input.RequesterID).
				Int32("cost_center_id", input.CostCenterID).
				Int32("account_plan_id", input.AccountPlanID).
				Str("limit", exceeded.Limit.StringFixed(2)).
				Str("committed", exceeded.Committed.StringFixed(2)).
				Str("requested", exceeded.Requested.StringFixed(2)).
				Msg("Requisition denied: budget exceeded")
		case errors.Is(err, domain.ErrBudgetNotAllocated):
			s.metrics.ObserveSubmission(metrics.OutcomeNotAllocated)
		default:
			s.metrics.ObserveSubmission(metrics.OutcomeError)
		}
		return nil, err
	}
	s.metrics.ObserveSubmission(metrics.OutcomeCreated)

	detail, err := s.requisitionRepo.GetByID(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("requisition_id", detail.ID).
		Int32("requester_id", detail.RequesterID).
		Int32("cost_center_id", detail.CostCenterID).
		Str("amount", detail.RequestedAmount.StringFixed(2)).
		Msg("Requisition submitted")

	s.publishEvent(websocket.RequisitionCreated(detail), s.recipients(ctx, detail)...)

	return detail, nil
}

// resolveReferences checks that requester, cost center and account plan exist,
// in that order
func (s *RequisitionService) resolveReferences(ctx context.Context, input SubmitRequisitionInput) error {
	if _, err := s.userRepo.GetByID(ctx, input.RequesterID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidRequester
		}
		return err
	}
	if _, err := s.costCenterRepo.GetByID(ctx, input.CostCenterID); err != nil {
		if errors.Is(err, domain.ErrCostCenterNotFound) {
			return domain.ErrInvalidCostCenter
		}
		return err
	}
	if _, err := s.accountPlanRepo.GetByID(ctx, input.AccountPlanID); err != nil {
		if errors.Is(err, domain.ErrAccountPlanNotFound) {
			return domain.ErrInvalidAccountPlan
		}
		return err
	}
	return nil
}

func isReferenceError(err error) bool {
	return errors.Is(err, domain.ErrInvalidRequester) ||
		errors.Is(err, domain.ErrInvalidCostCenter) ||
		errors.Is(err, domain.ErrInvalidAccountPlan)
}

// Approve moves a pending requisition to approved
func (s *RequisitionService) Approve(ctx context.Context, requisitionID, actingManagerID int32) (*domain.RequisitionDetail, error) {
	return s.Decide(ctx, requisitionID, actingManagerID, domain.DecisionApprove)
}

// Reject moves a pending requisition to rejected
func (s *RequisitionService) Reject(ctx context.Context, requisitionID, actingManagerID int32) (*domain.RequisitionDetail, error) {
	return s.Decide(ctx, requisitionID, actingManagerID, domain.DecisionReject)
}

// Decide applies a decision to a pending requisition. Checks, in order: the
// requisition exists, it is still pending, the acting user is a manager, and
// they manage the requisition's cost center. The transition itself is a
// compare-and-set on status, so of two concurrent decisions only one wins.
func (s *RequisitionService) Decide(ctx context.Context, requisitionID, actingManagerID int32, decision domain.Decision) (*domain.RequisitionDetail, error) {
	status, err := decision.Status()
	if err != nil {
		return nil, err
	}

	req, err := s.requisitionRepo.GetByID(ctx, requisitionID)
	if err != nil {
		return nil, err
	}

	if req.Status != domain.RequisitionPending {
		s.metrics.ObserveDecision(metrics.OutcomeAlreadyDecided)
		return nil, &domain.AlreadyDecidedError{Status: req.Status}
	}

	isManager, err := s.directory.IsManager(ctx, actingManagerID)
	if err != nil {
		s.metrics.ObserveDecision(metrics.OutcomeError)
		return nil, err
	}
	if !isManager {
		s.metrics.ObserveDecision(metrics.OutcomeInvalid)
		return nil, domain.ErrInvalidApprover
	}

	costCenter, err := s.costCenterRepo.GetByID(ctx, req.CostCenterID)
	if err != nil {
		s.metrics.ObserveDecision(metrics.OutcomeError)
		return nil, err
	}
	if costCenter.ManagerID != actingManagerID {
		s.metrics.ObserveDecision(metrics.OutcomeForbidden)
		log.Warn().
			Int32("requisition_id", requisitionID).
			Int32("acting_manager_id", actingManagerID).
			Int32("cost_center_manager_id", costCenter.ManagerID).
			Msg("Decision rejected: not the manager of this cost center")
		return nil, domain.ErrNotCostCenterManager
	}

	decidedAt := s.now().UTC().Truncate(time.Microsecond)
	if _, err := s.requisitionRepo.Decide(ctx, requisitionID, status, actingManagerID, decidedAt); err != nil {
		if errors.Is(err, domain.ErrRequisitionDecided) {
			// Lost the race to another decision; report what won
			s.metrics.ObserveDecision(metrics.OutcomeAlreadyDecided)
			current, getErr := s.requisitionRepo.GetByID(ctx, requisitionID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &domain.AlreadyDecidedError{Status: current.Status}
		}
		s.metrics.ObserveDecision(metrics.OutcomeError)
		return nil, err
	}

	if status == domain.RequisitionApproved {
		s.metrics.ObserveDecision(metrics.OutcomeApproved)
	} else {
		s.metrics.ObserveDecision(metrics.OutcomeRejected)
	}

	detail, err := s.requisitionRepo.GetByID(ctx, requisitionID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("requisition_id", requisitionID).
		Int32("approver_id", actingManagerID).
		Str("status", string(status)).
		Msg("Requisition decided")

	event := websocket.RequisitionApproved(detail)
	if status == domain.RequisitionRejected {
		event = websocket.RequisitionRejected(detail)
	}
	s.publishEvent(event, detail.RequesterID, costCenter.ManagerID)

	return detail, nil
}

// GetRequisition retrieves a requisition with joined display names
func (s *RequisitionService) GetRequisition(ctx context.Context, id int32) (*domain.RequisitionDetail, error) {
	return s.requisitionRepo.GetByID(ctx, id)
}

// ListRequisitions retrieves requisitions matching filter, newest first
func (s *RequisitionService) ListRequisitions(ctx context.Context, filter domain.RequisitionFilter) ([]*domain.RequisitionDetail, error) {
	if filter.Month != nil && (*filter.Month < 1 || *filter.Month > 12) {
		return nil, domain.ErrInvalidPeriod
	}
	return s.requisitionRepo.List(ctx, filter)
}

// recipients returns who should hear about a requisition: its requester and
// the manager of its cost center
func (s *RequisitionService) recipients(ctx context.Context, req *domain.RequisitionDetail) []int32 {
	ids := []int32{req.RequesterID}
	costCenter, err := s.costCenterRepo.GetByID(ctx, req.CostCenterID)
	if err != nil {
		log.Warn().Err(err).Int32("cost_center_id", req.CostCenterID).Msg("Failed to resolve cost center manager for event")
		return ids
	}
	return append(ids, costCenter.ManagerID)
}
