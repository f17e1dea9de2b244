package handler

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/isg-tracker/internal/core/alert"
	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/overview"
	"github.com/ogurasousui/isg-tracker/internal/core/report"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
)

var errInvalidRequest = errors.New("handler: invalid request")

// request は Struct のフィールドを型付きで読み出します。
type request struct {
	fields map[string]*structpb.Value
}

func newRequest(s *structpb.Struct) (request, error) {
	if s == nil {
		return request{}, fmt.Errorf("request is required: %w", errInvalidRequest)
	}
	return request{fields: s.GetFields()}, nil
}

func (r request) String(key string) string {
	return r.fields[key].GetStringValue()
}

func (r request) OptionalString(key string) *string {
	v, ok := r.fields[key]
	if !ok {
		return nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil
	}
	s := v.GetStringValue()
	return &s
}

// Strings は文字列のリストを読み出します。文字列以外の要素は無視します。
func (r request) Strings(key string) []string {
	values := r.fields[key].GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			out = append(out, s.StringValue)
		}
	}
	return out
}

func (r request) Bool(key string) bool {
	return r.fields[key].GetBoolValue()
}

func (r request) Int(key string) (int, error) {
	v, ok := r.fields[key]
	if !ok {
		return 0, nil
	}
	n := v.GetNumberValue()
	if n != float64(int(n)) {
		return 0, fmt.Errorf("%s must be an integer: %w", key, errInvalidRequest)
	}
	return int(n), nil
}

func dateValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return schedule.FormatDate(t)
}

func firmPayload(f *firm.Firm) map[string]any {
	m := map[string]any{
		"id":           f.ID,
		"name":         f.Name,
		"hazard_tier":  string(f.HazardTier),
		"hazard_label": f.HazardTier.Label(),
		"notes":        nil,
	}
	if f.Notes != nil {
		m["notes"] = *f.Notes
	}
	return m
}

func employeePayload(e *employee.Employee) map[string]any {
	m := map[string]any{
		"id":                 e.ID,
		"firm_id":            e.FirmID,
		"national_id":        e.NationalID,
		"full_name":          e.FullName,
		"last_training_date": dateValue(e.LastTrainingDate),
		"next_training_date": dateValue(e.NextTrainingDate),
		"status":             string(e.Status),
		"approval":           string(e.Approval),
		"terminated_at":      nil,
	}
	if e.TerminatedAt != nil {
		m["terminated_at"] = dateValue(*e.TerminatedAt)
	}
	return m
}

func rehirePayload(d *employee.RehireDecision) map[string]any {
	return map[string]any{
		"since":              dateValue(d.Since),
		"gap_days":           d.GapDays,
		"gap_months":         d.GapMonths,
		"refresher_required": d.RefresherRequired,
	}
}

func equipmentPayload(e *equipment.Equipment) map[string]any {
	return map[string]any{
		"id":                   e.ID,
		"firm_id":              e.FirmID,
		"name":                 e.Name,
		"last_inspection_date": dateValue(e.LastInspectionDate),
		"period_months":        e.PeriodMonths,
		"next_inspection_date": dateValue(e.NextInspectionDate),
	}
}

func assessmentPayload(a *riskassessment.Assessment) map[string]any {
	return map[string]any{
		"id":              a.ID,
		"firm_id":         a.FirmID,
		"assessment_date": dateValue(a.AssessmentDate),
		"valid_until":     dateValue(a.ValidUntil),
	}
}

func meetingPayload(m *boardmeeting.Meeting) map[string]any {
	return map[string]any{
		"id":                m.ID,
		"firm_id":           m.FirmID,
		"last_meeting_date": dateValue(m.LastMeetingDate),
		"period_months":     m.PeriodMonths,
		"next_meeting_date": dateValue(m.NextMeetingDate),
	}
}

func userPayload(u *user.User) map[string]any {
	firms := make([]any, 0, len(u.AllowedFirmIDs))
	for _, id := range u.AllowedFirmIDs {
		firms = append(firms, id)
	}
	return map[string]any{
		"id":               u.ID,
		"username":         u.Username,
		"full_name":        u.FullName,
		"role":             string(u.Role),
		"allowed_firm_ids": firms,
	}
}

func notePayload(n *note.Note) map[string]any {
	m := map[string]any{"id": n.ID, "title": n.Title, "date": dateValue(n.Date), "description": nil}
	if n.Description != nil {
		m["description"] = *n.Description
	}
	return m
}

func settingsPayload(s report.Settings) map[string]any {
	return map[string]any{"weekday": int(s.Weekday), "time_of_day": s.TimeOfDay}
}

func countsPayload(c alert.Counts) map[string]any {
	byCategory := make(map[string]any, len(alert.Categories))
	for _, cat := range alert.Categories {
		cc := c.ByCategory[cat]
		byCategory[string(cat)] = map[string]any{"expired": cc.Expired, "approaching": cc.Approaching}
	}
	return map[string]any{
		"expired":     c.Expired,
		"approaching": c.Approaching,
		"by_category": byCategory,
	}
}

func dashboardPayload(d *overview.Dashboard) map[string]any {
	alerts := make([]any, 0, len(d.Alerts))
	for _, a := range d.Alerts {
		alerts = append(alerts, map[string]any{
			"type":      string(a.Type),
			"message":   a.Message,
			"date":      dateValue(a.Date),
			"firm_id":   a.FirmID,
			"firm_name": a.FirmName,
			"category":  string(a.Category),
			"entity_id": a.EntityID,
		})
	}
	return map[string]any{
		"today":            dateValue(d.Today),
		"firm_count":       d.FirmCount,
		"active_employees": d.ActiveEmployees,
		"counts":           countsPayload(d.Counts),
		"alerts":           alerts,
	}
}

func planItemPayload(it alert.PlanItem) map[string]any {
	return map[string]any{
		"id":     it.ID,
		"text":   it.Text,
		"detail": it.Detail,
		"date":   dateValue(it.Date),
		"status": string(it.Status),
	}
}

func planItemsPayload(items []alert.PlanItem) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, planItemPayload(it))
	}
	return out
}

func planPayload(p *alert.Plan) map[string]any {
	firms := make([]any, 0, len(p.Firms))
	for _, f := range p.Firms {
		fp := map[string]any{
			"firm_id":     f.FirmID,
			"firm_name":   f.FirmName,
			"hazard_tier": string(f.HazardTier),
			"trainings":   planItemsPayload(f.Trainings),
			"equipment":   planItemsPayload(f.Equipment),
			"risk":        nil,
			"meeting":     nil,
			"total_count": f.TotalCount,
			"has_expired": f.HasExpired,
		}
		if f.Risk != nil {
			fp["risk"] = planItemPayload(*f.Risk)
		}
		if f.Meeting != nil {
			fp["meeting"] = planItemPayload(*f.Meeting)
		}
		firms = append(firms, fp)
	}

	notes := make([]any, 0, len(p.Notes))
	for _, n := range p.Notes {
		notes = append(notes, notePayload(n))
	}

	return map[string]any{
		"year":  p.Year,
		"month": int(p.Month),
		"firms": firms,
		"notes": notes,
	}
}

func reportPayload(r *report.Report, text string) map[string]any {
	firms := make([]any, 0, len(r.Firms))
	for _, f := range r.Firms {
		items := make([]any, 0, len(f.Items))
		for _, it := range f.Items {
			items = append(items, map[string]any{
				"category": string(it.Category),
				"name":     it.Name,
				"detail":   it.Detail,
				"date":     dateValue(it.Date),
				"status":   string(it.Status),
				"label":    it.Status.Label(),
			})
		}
		firms = append(firms, map[string]any{
			"firm_id":     f.FirmID,
			"firm_name":   f.FirmName,
			"hazard_tier": string(f.HazardTier),
			"items":       items,
		})
	}
	return map[string]any{
		"title":        r.Title,
		"range":        r.Range.Label(),
		"start":        dateValue(r.Range.Start),
		"end":          dateValue(r.Range.End),
		"generated_on": dateValue(r.GeneratedOn),
		"total_items":  r.TotalItems,
		"firms":        firms,
		"text":         text,
	}
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("handler: encode response: %w", err)
	}
	return s, nil
}
