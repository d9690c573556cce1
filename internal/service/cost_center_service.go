package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// CreateCostCenterInput holds the fields accepted when creating a cost center
type CreateCostCenterInput struct {
	Name      string
	Code      string
	ManagerID int32
	ParentID  *int32
}

// CostCenterService handles cost center business logic
type CostCenterService struct {
	costCenterRepo domain.CostCenterRepository
	directory      *DirectoryService
}

// NewCostCenterService creates a new CostCenterService
func NewCostCenterService(costCenterRepo domain.CostCenterRepository, directory *DirectoryService) *CostCenterService {
	return &CostCenterService{
		costCenterRepo: costCenterRepo,
		directory:      directory,
	}
}

// CreateCostCenter creates a cost center after checking that the manager holds
// the manager role, the parent exists and name and code are unused
func (s *CostCenterService) CreateCostCenter(ctx context.Context, input CreateCostCenterInput) (*domain.CostCenterDetail, error) {
	name, code, err := validateNameAndCode(input.Name, input.Code)
	if err != nil {
		return nil, err
	}

	isManager, err := s.directory.IsManager(ctx, input.ManagerID)
	if err != nil {
		return nil, err
	}
	if !isManager {
		return nil, domain.ErrInvalidManager
	}

	if input.ParentID != nil {
		if _, err := s.costCenterRepo.GetByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, domain.ErrCostCenterNotFound) {
				return nil, domain.ErrInvalidParent
			}
			return nil, err
		}
	}

	exists, err := s.costCenterRepo.ExistsByNameOrCode(ctx, name, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrCostCenterAlreadyExists
	}

	created, err := s.costCenterRepo.Create(ctx, &domain.CostCenter{
		Name:      name,
		Code:      code,
		ManagerID: input.ManagerID,
		ParentID:  input.ParentID,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("cost_center_id", created.ID).
		Int32("manager_id", created.ManagerID).
		Msg("Cost center created")

	return s.costCenterRepo.GetByID(ctx, created.ID)
}

// GetCostCenter retrieves a cost center with manager and parent names
func (s *CostCenterService) GetCostCenter(ctx context.Context, id int32) (*domain.CostCenterDetail, error) {
	return s.costCenterRepo.GetByID(ctx, id)
}

// ListCostCenters retrieves all cost centers
func (s *CostCenterService) ListCostCenters(ctx context.Context) ([]*domain.CostCenterDetail, error) {
	return s.costCenterRepo.List(ctx)
}

// ListChildren retrieves the direct children of a cost center
func (s *CostCenterService) ListChildren(ctx context.Context, parentID int32) ([]*domain.CostCenterDetail, error) {
	if _, err := s.costCenterRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.costCenterRepo.ListChildren(ctx, parentID)
}

// validateNameAndCode trims and bounds the name/code pair shared by cost
// centers and account plans
func validateNameAndCode(name, code string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		return "", "", domain.ErrNameTooLong
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", "", domain.ErrCodeRequired
	}
	if utf8.RuneCountInString(code) > domain.MaxCodeLength {
		return "", "", domain.ErrCodeTooLong
	}
	return name, code, nil
}
