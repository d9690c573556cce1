package testutil

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mu       sync.Mutex
	ByID     map[int32]*domain.User
	NextID   int32
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByID:   make(map[int32]*domain.User),
		NextID: 1,
	}
}

// Create stores a new user, enforcing email uniqueness
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.ByID {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrEmailAlreadyExists
		}
	}
	user.ID = m.NextID
	m.NextID++
	user.CreatedAt = time.Now().UTC()
	m.ByID[user.ID] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email, case-insensitively
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.ByID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// List returns all users ordered by name
func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.User, 0, len(m.ByID))
	for _, u := range m.ByID {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ByID[user.ID] = user
	if user.ID >= m.NextID {
		m.NextID = user.ID + 1
	}
}

func (m *MockUserRepository) name(id int32) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.ByID[id]; ok {
		return u.Name
	}
	return ""
}

// MockCostCenterRepository is a mock implementation of domain.CostCenterRepository
type MockCostCenterRepository struct {
	mu          sync.Mutex
	CostCenters map[int32]*domain.CostCenter
	NextID      int32
	Users       *MockUserRepository
}

// NewMockCostCenterRepository creates a new MockCostCenterRepository. users is
// used to resolve manager names and may be nil.
func NewMockCostCenterRepository(users *MockUserRepository) *MockCostCenterRepository {
	return &MockCostCenterRepository{
		CostCenters: make(map[int32]*domain.CostCenter),
		NextID:      1,
		Users:       users,
	}
}

// Create stores a new cost center
func (m *MockCostCenterRepository) Create(ctx context.Context, cc *domain.CostCenter) (*domain.CostCenter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.CostCenters {
		if existing.Name == cc.Name || existing.Code == cc.Code {
			return nil, domain.ErrCostCenterAlreadyExists
		}
	}
	cc.ID = m.NextID
	m.NextID++
	cc.CreatedAt = time.Now().UTC()
	m.CostCenters[cc.ID] = cc
	return cc, nil
}

// GetByID retrieves a cost center with joined names
func (m *MockCostCenterRepository) GetByID(ctx context.Context, id int32) (*domain.CostCenterDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc, ok := m.CostCenters[id]
	if !ok {
		return nil, domain.ErrCostCenterNotFound
	}
	return m.detail(cc), nil
}

// List returns all cost centers ordered by name
func (m *MockCostCenterRepository) List(ctx context.Context) ([]*domain.CostCenterDetail, error) {
	return m.filter(func(*domain.CostCenter) bool { return true }), nil
}

// ListChildren returns cost centers whose parent is parentID
func (m *MockCostCenterRepository) ListChildren(ctx context.Context, parentID int32) ([]*domain.CostCenterDetail, error) {
	return m.filter(func(cc *domain.CostCenter) bool {
		return cc.ParentID != nil && *cc.ParentID == parentID
	}), nil
}

// ExistsByNameOrCode reports whether any cost center uses name or code
func (m *MockCostCenterRepository) ExistsByNameOrCode(ctx context.Context, name, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cc := range m.CostCenters {
		if cc.Name == name || cc.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// AddCostCenter adds a cost center to the mock repository (helper for tests)
func (m *MockCostCenterRepository) AddCostCenter(cc *domain.CostCenter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CostCenters[cc.ID] = cc
	if cc.ID >= m.NextID {
		m.NextID = cc.ID + 1
	}
}

func (m *MockCostCenterRepository) filter(keep func(*domain.CostCenter) bool) []*domain.CostCenterDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.CostCenterDetail, 0)
	for _, cc := range m.CostCenters {
		if keep(cc) {
			result = append(result, m.detail(cc))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// detail must be called with m.mu held
func (m *MockCostCenterRepository) detail(cc *domain.CostCenter) *domain.CostCenterDetail {
	d := &domain.CostCenterDetail{CostCenter: *cc}
	if m.Users != nil {
		d.ManagerName = m.Users.name(cc.ManagerID)
	}
	if cc.ParentID != nil {
		if parent, ok := m.CostCenters[*cc.ParentID]; ok {
			name := parent.Name
			d.ParentName = &name
		}
	}
	return d
}

func (m *MockCostCenterRepository) name(id int32) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cc, ok := m.CostCenters[id]; ok {
		return cc.Name
	}
	return ""
}

// MockAccountPlanRepository is a mock implementation of domain.AccountPlanRepository
type MockAccountPlanRepository struct {
	mu     sync.Mutex
	Plans  map[int32]*domain.AccountPlan
	NextID int32
}

// NewMockAccountPlanRepository creates a new MockAccountPlanRepository
func NewMockAccountPlanRepository() *MockAccountPlanRepository {
	return &MockAccountPlanRepository{
		Plans:  make(map[int32]*domain.AccountPlan),
		NextID: 1,
	}
}

// Create stores a new account plan
func (m *MockAccountPlanRepository) Create(ctx context.Context, plan *domain.AccountPlan) (*domain.AccountPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Plans {
		if existing.Name == plan.Name || existing.Code == plan.Code {
			return nil, domain.ErrAccountPlanAlreadyExists
		}
	}
	plan.ID = m.NextID
	m.NextID++
	plan.CreatedAt = time.Now().UTC()
	m.Plans[plan.ID] = plan
	return plan, nil
}

// GetByID retrieves an account plan by ID
func (m *MockAccountPlanRepository) GetByID(ctx context.Context, id int32) (*domain.AccountPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan, ok := m.Plans[id]; ok {
		return plan, nil
	}
	return nil, domain.ErrAccountPlanNotFound
}

// List returns all account plans ordered by code
func (m *MockAccountPlanRepository) List(ctx context.Context) ([]*domain.AccountPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.AccountPlan, 0, len(m.Plans))
	for _, p := range m.Plans {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// ExistsByNameOrCode reports whether any account plan uses name or code
func (m *MockAccountPlanRepository) ExistsByNameOrCode(ctx context.Context, name, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Plans {
		if p.Name == name || p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// AddAccountPlan adds an account plan to the mock repository (helper for tests)
func (m *MockAccountPlanRepository) AddAccountPlan(plan *domain.AccountPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Plans[plan.ID] = plan
	if plan.ID >= m.NextID {
		m.NextID = plan.ID + 1
	}
}

func (m *MockAccountPlanRepository) name(id int32) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Plans[id]; ok {
		return p.Name
	}
	return ""
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	mu          sync.Mutex
	Budgets     map[int32]*domain.Budget
	NextID      int32
	CostCenters *MockCostCenterRepository
	Plans       *MockAccountPlanRepository
}

// NewMockBudgetRepository creates a new MockBudgetRepository. The cost center
// and account plan mocks resolve display names and may be nil.
func NewMockBudgetRepository(costCenters *MockCostCenterRepository, plans *MockAccountPlanRepository) *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets:     make(map[int32]*domain.Budget),
		NextID:      1,
		CostCenters: costCenters,
		Plans:       plans,
	}
}

// Create stores a new budget, enforcing one row per budget line
func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.Budgets {
		if b.Line() == budget.Line() {
			return nil, domain.ErrBudgetAlreadyExists
		}
	}
	budget.ID = m.NextID
	m.NextID++
	budget.CreatedAt = time.Now().UTC()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget with joined names
func (m *MockBudgetRepository) GetByID(ctx context.Context, id int32) (*domain.BudgetDetail, error) {
	m.mu.Lock()
	b, ok := m.Budgets[id]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	return m.detail(b), nil
}

// GetByLine retrieves the budget allocated to a line
func (m *MockBudgetRepository) GetByLine(ctx context.Context, line domain.BudgetLine) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.Budgets {
		if b.Line() == line {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// List returns budgets matching filter, newest period first
func (m *MockBudgetRepository) List(ctx context.Context, filter domain.BudgetFilter) ([]*domain.BudgetDetail, error) {
	m.mu.Lock()
	matched := make([]*domain.Budget, 0)
	for _, b := range m.Budgets {
		if filter.Year != nil && b.Year != *filter.Year {
			continue
		}
		if filter.Month != nil && b.Month != *filter.Month {
			continue
		}
		if filter.CostCenterID != nil && b.CostCenterID != *filter.CostCenterID {
			continue
		}
		matched = append(matched, b)
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Year != matched[j].Year {
			return matched[i].Year > matched[j].Year
		}
		if matched[i].Month != matched[j].Month {
			return matched[i].Month > matched[j].Month
		}
		return matched[i].ID < matched[j].ID
	})

	result := make([]*domain.BudgetDetail, 0, len(matched))
	for _, b := range matched {
		result = append(result, m.detail(b))
	}
	return result, nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Budgets[budget.ID] = budget
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
}

func (m *MockBudgetRepository) detail(b *domain.Budget) *domain.BudgetDetail {
	d := &domain.BudgetDetail{Budget: *b}
	if m.CostCenters != nil {
		d.CostCenterName = m.CostCenters.name(b.CostCenterID)
	}
	if m.Plans != nil {
		d.AccountPlanName = m.Plans.name(b.AccountPlanID)
	}
	return d
}

// MockRequisitionRepository is a mock implementation of domain.RequisitionRepository.
// CreateWithinBudget and Decide hold a single lock, so concurrent callers are
// serialized the way row locks serialize them in a real database.
type MockRequisitionRepository struct {
	mu           sync.Mutex
	Requisitions map[int32]*domain.Requisition
	NextID       int32
	Budgets      *MockBudgetRepository
	Users        *MockUserRepository
	CostCenters  *MockCostCenterRepository
	Plans        *MockAccountPlanRepository
	// BeforeInsert, when set, runs after the budget check passes and before
	// the row is stored. Tests use it to widen race windows.
	BeforeInsert func()
}

// NewMockRequisitionRepository creates a new MockRequisitionRepository
func NewMockRequisitionRepository(budgets *MockBudgetRepository, users *MockUserRepository, costCenters *MockCostCenterRepository, plans *MockAccountPlanRepository) *MockRequisitionRepository {
	return &MockRequisitionRepository{
		Requisitions: make(map[int32]*domain.Requisition),
		NextID:       1,
		Budgets:      budgets,
		Users:        users,
		CostCenters:  costCenters,
		Plans:        plans,
	}
}

// SumCommitted totals pending and approved requisitions within the line's month
func (m *MockRequisitionRepository) SumCommitted(ctx context.Context, line domain.BudgetLine) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumCommitted(line), nil
}

// sumCommitted must be called with m.mu held
func (m *MockRequisitionRepository) sumCommitted(line domain.BudgetLine) decimal.Decimal {
	start, end := util.MonthBounds(line.Year, line.Month)
	total := decimal.Zero
	for _, r := range m.Requisitions {
		if r.CostCenterID != line.CostCenterID || r.AccountPlanID != line.AccountPlanID {
			continue
		}
		if !r.Status.Commits() {
			continue
		}
		if r.RequestedAt.Before(start) || !r.RequestedAt.Before(end) {
			continue
		}
		total = total.Add(r.RequestedAmount)
	}
	return total
}

// CreateWithinBudget runs check and inserts req atomically
func (m *MockRequisitionRepository) CreateWithinBudget(ctx context.Context, req *domain.Requisition, line domain.BudgetLine, check domain.BudgetCheck) (*domain.Requisition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	budget, err := m.Budgets.GetByLine(ctx, line)
	if err != nil {
		return nil, domain.ErrBudgetNotAllocated
	}
	if err := check(budget, m.sumCommitted(line)); err != nil {
		return nil, err
	}
	if m.BeforeInsert != nil {
		m.BeforeInsert()
	}

	req.ID = m.NextID
	m.NextID++
	stored := *req
	m.Requisitions[req.ID] = &stored
	return req, nil
}

// GetByID retrieves a requisition with joined names
func (m *MockRequisitionRepository) GetByID(ctx context.Context, id int32) (*domain.RequisitionDetail, error) {
	m.mu.Lock()
	r, ok := m.Requisitions[id]
	var copied domain.Requisition
	if ok {
		copied = *r
	}
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrRequisitionNotFound
	}
	return m.detail(&copied), nil
}

// List returns requisitions matching filter, newest first
func (m *MockRequisitionRepository) List(ctx context.Context, filter domain.RequisitionFilter) ([]*domain.RequisitionDetail, error) {
	m.mu.Lock()
	matched := make([]domain.Requisition, 0)
	for _, r := range m.Requisitions {
		year, month := util.PeriodOf(r.RequestedAt)
		if filter.Year != nil && year != *filter.Year {
			continue
		}
		if filter.Month != nil && month != *filter.Month {
			continue
		}
		if filter.CostCenterID != nil && r.CostCenterID != *filter.CostCenterID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		matched = append(matched, *r)
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].RequestedAt.Equal(matched[j].RequestedAt) {
			return matched[i].RequestedAt.After(matched[j].RequestedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	result := make([]*domain.RequisitionDetail, 0, len(matched))
	for i := range matched {
		result = append(result, m.detail(&matched[i]))
	}
	return result, nil
}

// Decide applies a status transition if the requisition is still pending
func (m *MockRequisitionRepository) Decide(ctx context.Context, id int32, status domain.RequisitionStatus, approverID int32, decidedAt time.Time) (*domain.Requisition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Requisitions[id]
	if !ok {
		return nil, domain.ErrRequisitionNotFound
	}
	if r.Status != domain.RequisitionPending {
		return nil, domain.ErrRequisitionDecided
	}
	r.Status = status
	r.ApproverID = &approverID
	r.DecidedAt = &decidedAt
	copied := *r
	return &copied, nil
}

// AddRequisition adds a requisition to the mock repository (helper for tests)
func (m *MockRequisitionRepository) AddRequisition(req *domain.Requisition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *req
	m.Requisitions[req.ID] = &stored
	if req.ID >= m.NextID {
		m.NextID = req.ID + 1
	}
}

// Count returns the number of stored requisitions
func (m *MockRequisitionRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requisitions)
}

func (m *MockRequisitionRepository) detail(r *domain.Requisition) *domain.RequisitionDetail {
	d := &domain.RequisitionDetail{Requisition: *r}
	if m.Users != nil {
		d.RequesterName = m.Users.name(r.RequesterID)
		if r.ApproverID != nil {
			name := m.Users.name(*r.ApproverID)
			d.ApproverName = &name
		}
	}
	if m.CostCenters != nil {
		d.CostCenterName = m.CostCenters.name(r.CostCenterID)
	}
	if m.Plans != nil {
		d.AccountPlanName = m.Plans.name(r.AccountPlanID)
	}
	return d
}

// MockAPITokenRepository is a mock implementation of domain.APITokenRepository
type MockAPITokenRepository struct {
	mu     sync.Mutex
	Tokens map[uuid.UUID]*domain.APIToken
}

// NewMockAPITokenRepository creates a new MockAPITokenRepository
func NewMockAPITokenRepository() *MockAPITokenRepository {
	return &MockAPITokenRepository{
		Tokens: make(map[uuid.UUID]*domain.APIToken),
	}
}

// Create stores a token
func (m *MockAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now().UTC()
	m.Tokens[token.ID] = token
	return nil
}

// GetByHash returns the active token with the given hash
func (m *MockAPITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tokens {
		if t.TokenHash == hash && t.RevokedAt == nil {
			return t, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

// CountActiveByUser counts tokens that are not revoked
func (m *MockAPITokenRepository) CountActiveByUser(ctx context.Context, userID int32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.Tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			count++
		}
	}
	return count, nil
}

// Revoke marks a token as revoked
func (m *MockAPITokenRepository) Revoke(ctx context.Context, userID int32, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tokens[id]
	if !ok || t.UserID != userID || t.RevokedAt != nil {
		return domain.ErrTokenNotFound
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	return nil
}

// UpdateLastUsed records token usage
func (m *MockAPITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.Tokens[id]; ok {
		now := time.Now().UTC()
		t.LastUsedAt = &now
	}
	return nil
}

// MockAttachmentRepository is a mock implementation of domain.AttachmentRepository
type MockAttachmentRepository struct {
	mu          sync.Mutex
	Attachments []*domain.Attachment
}

// NewMockAttachmentRepository creates a new MockAttachmentRepository
func NewMockAttachmentRepository() *MockAttachmentRepository {
	return &MockAttachmentRepository{}
}

// Create stores an attachment
func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) (*domain.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attachment.CreatedAt = time.Now().UTC()
	m.Attachments = append(m.Attachments, attachment)
	return attachment, nil
}

// ListByRequisition returns attachments of a requisition in upload order
func (m *MockAttachmentRepository) ListByRequisition(ctx context.Context, requisitionID int32) ([]*domain.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Attachment, 0)
	for _, a := range m.Attachments {
		if a.RequisitionID == requisitionID {
			result = append(result, a)
		}
	}
	return result, nil
}

// MockObjectStorage is an in-memory implementation of domain.ObjectStorage
type MockObjectStorage struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	UploadFn func(objectPath string) error
}

// NewMockObjectStorage creates a new MockObjectStorage
func NewMockObjectStorage() *MockObjectStorage {
	return &MockObjectStorage{Objects: make(map[string][]byte)}
}

// Upload stores data under objectPath
func (m *MockObjectStorage) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadFn != nil {
		if err := m.UploadFn(objectPath); err != nil {
			return "", err
		}
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf
	return objectPath, nil
}

// Delete removes an object
func (m *MockObjectStorage) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake signed URL for objectPath
func (m *MockObjectStorage) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + objectPath + "?expires=" + expiry.String(), nil
}
