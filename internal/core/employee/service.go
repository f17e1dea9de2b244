package employee

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// FirmFinder は区分参照のために事業所を取得します。
type FirmFinder interface {
	FindByID(ctx context.Context, id string) (*firm.Firm, error)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は従業員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	firms FirmFinder
	clock Clock
	tx    TransactionManager
	rule  RehireRule
	newID func() string
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	TerminateEmployee(ctx context.Context, in TerminateEmployeeInput) (*Employee, error)
	ApproveEmployee(ctx context.Context, in ApproveEmployeeInput) (*Employee, error)
	BulkUpdateTraining(ctx context.Context, in BulkUpdateTrainingInput) ([]*Employee, error)
	EvaluateRehire(ctx context.Context, in EvaluateRehireInput) (*RehireDecision, error)
	RehireEmployee(ctx context.Context, in RehireEmployeeInput) (*Employee, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithRehireRule は再雇用判定の方式を指定します。
func WithRehireRule(rule RehireRule) Option {
	return func(s *Service) {
		s.rule = rule
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, firms FirmFinder, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, firms: firms, clock: clock, tx: tx, rule: RehireRuleCalendar, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は従業員登録時の入力です。
type CreateEmployeeInput struct {
	FirmID           string
	NationalID       string
	FullName         string
	LastTrainingDate string
	// ConfirmTransfer は他事業所で在籍中の同一人物を退職扱いにして移籍させることを許可します。
	ConfirmTransfer bool
	Actor           *user.User
}

// UpdateEmployeeInput は従業員更新時の入力です。
type UpdateEmployeeInput struct {
	ID               string
	NationalID       *string
	FullName         *string
	LastTrainingDate *string
}

// TerminateEmployeeInput は退職処理の入力です。
type TerminateEmployeeInput struct {
	ID string
}

// ApproveEmployeeInput は承認時の入力です。
type ApproveEmployeeInput struct {
	ID    string
	Actor *user.User
}

// BulkUpdateTrainingInput は一括教育日更新の入力です。
type BulkUpdateTrainingInput struct {
	FirmID           string
	IDs              []string
	LastTrainingDate string
}

// EvaluateRehireInput は再雇用判定の入力です。
type EvaluateRehireInput struct {
	ID string
}

// RehireEmployeeInput は再雇用時の入力です。
type RehireEmployeeInput struct {
	ID string
	// LastTrainingDate は新たに実施した教育日です。再教育が必須の場合は省略できません。
	LastTrainingDate string
	// ReusePreviousTraining は空白期間が短い場合に以前の教育日を引き継ぎます。
	ReusePreviousTraining bool
	// ConfirmTransfer は同じ人物が他事業所で在籍中の場合に、そちらを退職扱いにすることを許可します。
	ConfirmTransfer bool
	Actor           *user.User
}

// GetEmployeeInput は従業員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	FirmID    string
	PageSize  int
	PageToken string
	Status    *Status
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は従業員を登録し、次回教育期限を算出して保存します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	firmID, err := normalizeFirmID(in.FirmID)
	if err != nil {
		return nil, err
	}

	nationalID, err := normalizeNationalID(in.NationalID)
	if err != nil {
		return nil, err
	}

	name, err := normalizeName(in.FullName)
	if err != nil {
		return nil, err
	}

	lastTraining, err := parseTrainingDate(in.LastTrainingDate)
	if err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		tier, err := s.hazardTier(txCtx, firmID)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindByNationalID(txCtx, nationalID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for _, other := range existing {
			if other.FirmID == firmID {
				if other.IsActive() {
					return ErrAlreadyActive
				}
				return ErrRehireRequired
			}
			if !other.IsActive() {
				continue
			}
			if !in.ConfirmTransfer {
				return ErrTransferConfirmationRequired
			}
			terminate(other, now)
			if _, err := s.repo.Update(txCtx, other); err != nil {
				return err
			}
		}

		result, err := s.repo.Create(txCtx, &Employee{
			ID:               s.newID(),
			FirmID:           firmID,
			NationalID:       nationalID,
			FullName:         name,
			LastTrainingDate: lastTraining,
			NextTrainingDate: schedule.NextTrainingDate(lastTraining, tier),
			Status:           StatusActive,
			Approval:         approvalFor(in.Actor),
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は従業員情報を更新します。教育日が変わる場合は現在の区分で再計算します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.NationalID != nil {
			nationalID, err := normalizeNationalID(*in.NationalID)
			if err != nil {
				return err
			}
			if nationalID != existing.NationalID {
				if err := s.ensureNationalIDFree(txCtx, existing.FirmID, existing.ID, nationalID); err != nil {
					return err
				}
				existing.NationalID = nationalID
			}
		}

		if in.FullName != nil {
			name, err := normalizeName(*in.FullName)
			if err != nil {
				return err
			}
			existing.FullName = name
		}

		if in.LastTrainingDate != nil {
			lastTraining, err := parseTrainingDate(*in.LastTrainingDate)
			if err != nil {
				return err
			}
			tier, err := s.hazardTier(txCtx, existing.FirmID)
			if err != nil {
				return err
			}
			existing.LastTrainingDate = lastTraining
			existing.NextTrainingDate = schedule.NextTrainingDate(lastTraining, tier)
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// TerminateEmployee は退職処理を行います。再雇用の履歴を残すため記録は削除しません。
func (s *Service) TerminateEmployee(ctx context.Context, in TerminateEmployeeInput) (*Employee, error) {
	return s.mutate(ctx, in.ID, func(_ context.Context, e *Employee) error {
		if !e.IsActive() {
			return nil
		}
		terminate(e, s.clock.Now())
		return nil
	})
}

// ApproveEmployee は承認待ちの従業員を承認します。
func (s *Service) ApproveEmployee(ctx context.Context, in ApproveEmployeeInput) (*Employee, error) {
	return s.mutate(ctx, in.ID, func(_ context.Context, e *Employee) error {
		if !in.Actor.CanApprove(e.FirmID) {
			return ErrNotPermitted
		}
		e.Approval = ApprovalApproved
		return nil
	})
}

// BulkUpdateTraining は同一事業所の複数従業員の教育日をまとめて更新します。
func (s *Service) BulkUpdateTraining(ctx context.Context, in BulkUpdateTrainingInput) ([]*Employee, error) {
	firmID, err := normalizeFirmID(in.FirmID)
	if err != nil {
		return nil, err
	}

	lastTraining, err := parseTrainingDate(in.LastTrainingDate)
	if err != nil {
		return nil, err
	}

	var updated []*Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		tier, err := s.hazardTier(txCtx, firmID)
		if err != nil {
			return err
		}
		next := schedule.NextTrainingDate(lastTraining, tier)
		now := s.clock.Now()

		for _, id := range in.IDs {
			e, err := s.repo.FindByID(txCtx, id)
			if err != nil {
				return err
			}
			if e.FirmID != firmID {
				return fmt.Errorf("%s: %w", id, ErrFirmMismatch)
			}
			e.LastTrainingDate = lastTraining
			e.NextTrainingDate = next
			e.UpdatedAt = now

			result, err := s.repo.Update(txCtx, e)
			if err != nil {
				return err
			}
			updated = append(updated, result)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// EvaluateRehire は退職者の再雇用に再教育が必要かを判定します。
func (s *Service) EvaluateRehire(ctx context.Context, in EvaluateRehireInput) (*RehireDecision, error) {
	e, err := s.GetEmployee(ctx, GetEmployeeInput{ID: in.ID})
	if err != nil {
		return nil, err
	}
	if e.IsActive() {
		return nil, ErrNotTerminated
	}

	decision := EvaluateRehire(e, s.clock.Now(), s.rule)
	return &decision, nil
}

// RehireEmployee は退職者を在籍に戻します。
// 空白期間が閾値を超える場合は新しい教育日の指定が必須です。
func (s *Service) RehireEmployee(ctx context.Context, in RehireEmployeeInput) (*Employee, error) {
	var fresh time.Time
	if strings.TrimSpace(in.LastTrainingDate) != "" {
		d, err := parseTrainingDate(in.LastTrainingDate)
		if err != nil {
			return nil, err
		}
		fresh = d
	}

	return s.mutate(ctx, in.ID, func(txCtx context.Context, e *Employee) error {
		if e.IsActive() {
			return ErrNotTerminated
		}

		decision := EvaluateRehire(e, s.clock.Now(), s.rule)
		lastTraining := fresh
		switch {
		case !fresh.IsZero():
		case decision.RefresherRequired:
			return ErrRefresherTrainingRequired
		case in.ReusePreviousTraining && !e.LastTrainingDate.IsZero():
			lastTraining = e.LastTrainingDate
		default:
			return ErrInvalidTrainingDate
		}

		if err := s.releaseOtherActive(txCtx, e, in.ConfirmTransfer); err != nil {
			return err
		}

		tier, err := s.hazardTier(txCtx, e.FirmID)
		if err != nil {
			return err
		}

		e.LastTrainingDate = lastTraining
		e.NextTrainingDate = schedule.NextTrainingDate(lastTraining, tier)
		e.Status = StatusActive
		e.TerminatedAt = nil
		e.Approval = approvalFor(in.Actor)
		return nil
	})
}

// GetEmployee は従業員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は事業所の従業員一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	firmID, err := normalizeFirmID(in.FirmID)
	if err != nil {
		return nil, err
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && !isValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			FirmID: firmID,
			Status: in.Status,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		employees = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(context.Context, *Employee) error) (*Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := fn(txCtx, existing); err != nil {
			return err
		}
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) hazardTier(ctx context.Context, firmID string) (schedule.HazardTier, error) {
	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		if errors.Is(err, firm.ErrFirmNotFound) {
			return "", ErrFirmNotFound
		}
		return "", err
	}
	return f.HazardTier, nil
}

func (s *Service) ensureNationalIDFree(ctx context.Context, firmID, selfID, nationalID string) error {
	existing, err := s.repo.FindByNationalID(ctx, nationalID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != selfID && other.FirmID == firmID {
			return ErrNationalIDAlreadyExists
		}
	}
	return nil
}

// releaseOtherActive は同じ国民識別番号で在籍中の別レコードを探し、確認済みなら退職扱いにします。
func (s *Service) releaseOtherActive(ctx context.Context, e *Employee, confirmed bool) error {
	if e.NationalID == "" {
		return nil
	}

	existing, err := s.repo.FindByNationalID(ctx, e.NationalID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	for _, other := range existing {
		if other.ID == e.ID || !other.IsActive() {
			continue
		}
		if !confirmed {
			return ErrTransferConfirmationRequired
		}
		terminate(other, now)
		if _, err := s.repo.Update(ctx, other); err != nil {
			return err
		}
	}
	return nil
}

func terminate(e *Employee, now time.Time) {
	day := schedule.Day(now)
	e.Status = StatusTerminated
	e.TerminatedAt = &day
	e.UpdatedAt = now
}

func approvalFor(actor *user.User) Approval {
	if actor.RequiresApproval() {
		return ApprovalPending
	}
	return ApprovalApproved
}

func normalizeFirmID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidFirmID
	}
	return trimmed, nil
}

func normalizeNationalID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidNationalID
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", ErrInvalidNationalID
		}
	}
	return trimmed, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.Join(strings.Fields(raw), " ")
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func parseTrainingDate(raw string) (time.Time, error) {
	d, err := schedule.ParseDate(raw)
	if err != nil || d.IsZero() {
		return time.Time{}, ErrInvalidTrainingDate
	}
	return d, nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusTerminated:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
