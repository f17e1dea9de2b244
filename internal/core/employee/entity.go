package employee

import "time"

// Status は在籍状態を表します。
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusTerminated Status = "TERMINATED"
)

// Approval は登録内容の承認状態を表します。
type Approval string

const (
	ApprovalApproved Approval = "APPROVED"
	ApprovalPending  Approval = "PENDING"
)

// Employee は従業員エンティティです。
// NextTrainingDate は書き込み時に LastTrainingDate と事業所の区分から算出して保存します。
type Employee struct {
	ID               string
	FirmID           string
	NationalID       string
	FullName         string
	LastTrainingDate time.Time
	NextTrainingDate time.Time
	Status           Status
	TerminatedAt     *time.Time
	Approval         Approval
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsActive は在籍中かどうかを返します。
func (e *Employee) IsActive() bool {
	return e.Status != StatusTerminated
}

// IsPending は承認待ちかどうかを返します。
func (e *Employee) IsPending() bool {
	return e.Approval == ApprovalPending
}

// Counts は期限集計の対象かどうかを返します。在籍中かつ承認済みのみが対象です。
func (e *Employee) Counts() bool {
	return e.IsActive() && !e.IsPending()
}
