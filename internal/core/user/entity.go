package user

import "time"

// Role はユーザーの権限区分を表します。
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSecretary Role = "SECRETARY"
	RoleUser      Role = "USER"
)

// User はユーザーエンティティです。AllowedFirmIDs は RoleUser のときだけ意味を持ちます。
type User struct {
	ID             string
	Username       string
	FullName       string
	Role           Role
	AllowedFirmIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Visibility はユーザーが閲覧できる事業所の集合を返します。
func (u *User) Visibility() FirmSet {
	if u == nil {
		return OnlyFirms()
	}
	switch u.Role {
	case RoleAdmin, RoleSecretary:
		return AllFirms()
	default:
		return OnlyFirms(u.AllowedFirmIDs...)
	}
}

// CanApprove は firmID の従業員登録を承認できるかを返します。
func (u *User) CanApprove(firmID string) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleSecretary:
		return false
	default:
		return u.Visibility().Visible(firmID)
	}
}

// RequiresApproval はこのユーザーが登録した従業員に承認が必要かを返します。
func (u *User) RequiresApproval() bool {
	return u != nil && u.Role == RoleSecretary
}

// CanManageFirms は事業所の登録・削除ができるかを返します。
func (u *User) CanManageFirms() bool {
	return u != nil && u.Role == RoleAdmin
}

// FirmSet は閲覧可能な事業所の集合です。ゼロ値は何も見えません。
type FirmSet struct {
	all bool
	ids map[string]struct{}
}

// AllFirms は全事業所を含む集合を返します。
func AllFirms() FirmSet {
	return FirmSet{all: true}
}

// OnlyFirms は指定した事業所だけを含む集合を返します。
func OnlyFirms(ids ...string) FirmSet {
	set := FirmSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

// Visible は firmID が集合に含まれるかを返します。
func (s FirmSet) Visible(firmID string) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[firmID]
	return ok
}

// IDs は許可リストを返します。全件の場合は nil です。
func (s FirmSet) IDs() []string {
	if s.all {
		return nil
	}
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}
