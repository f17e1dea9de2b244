// Package alert は記録の集合から期限の集計、警告一覧、日次サマリ、月次計画を組み立てます。
// ここの関数は I/O を行わず、渡されたスナップショットと基準日だけから結果を決めます。
package alert

import (
	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
)

// UnknownFirmName は事業所が見つからない記録に表示する名前です。
const UnknownFirmName = "Bilinmeyen Firma"

// Snapshot は集計対象の記録一式です。
type Snapshot struct {
	Firms     []*firm.Firm
	Employees []*employee.Employee
	Equipment []*equipment.Equipment
	Risks     []*riskassessment.Assessment
	Meetings  []*boardmeeting.Meeting
	Notes     []*note.Note
}

// Visibility は閲覧者が事業所を見られるかを判定します。
type Visibility interface {
	Visible(firmID string) bool
}

// VisibilityFunc は関数を Visibility として扱います。
type VisibilityFunc func(firmID string) bool

func (f VisibilityFunc) Visible(firmID string) bool {
	return f(firmID)
}

// Everything は全事業所を可視とする Visibility です。
var Everything Visibility = VisibilityFunc(func(string) bool { return true })

type firmIndex map[string]*firm.Firm

func indexFirms(firms []*firm.Firm) firmIndex {
	idx := make(firmIndex, len(firms))
	for _, f := range firms {
		idx[f.ID] = f
	}
	return idx
}

func (idx firmIndex) name(id string) string {
	if f, ok := idx[id]; ok {
		return f.Name
	}
	return UnknownFirmName
}
