package handler

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/isg-tracker/internal/core/alert"
	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/marker"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/overview"
	"github.com/ogurasousui/isg-tracker/internal/core/report"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
)

// OverviewUseCase は集計系ユースケースです。
type OverviewUseCase interface {
	Dashboard(ctx context.Context, viewerID string) (*overview.Dashboard, error)
	DailySummary(ctx context.Context, viewerID string) (*overview.DailyResult, error)
	MonthlyPlan(ctx context.Context, viewerID string, year int, month time.Month) (*alert.Plan, error)
	PlanningReport(ctx context.Context, in overview.PlanningReportInput) (*report.Report, error)
}

// RiskAssessmentUseCase はリスク評価の登録です。
type RiskAssessmentUseCase interface {
	RecordAssessment(ctx context.Context, in riskassessment.RecordAssessmentInput) (*riskassessment.Assessment, error)
}

// BoardMeetingUseCase は委員会記録の登録です。
type BoardMeetingUseCase interface {
	RecordMeeting(ctx context.Context, in boardmeeting.RecordMeetingInput) (*boardmeeting.Meeting, error)
}

// NoteUseCase はカレンダーメモの操作です。
type NoteUseCase interface {
	CreateNote(ctx context.Context, in note.CreateNoteInput) (*note.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// UserFinder はリクエストの user_id から操作者を解決します。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Dependencies は ComplianceHandler が呼び出すユースケース群です。
type Dependencies struct {
	Overview  OverviewUseCase
	Firms     firm.UseCase
	Employees employee.UseCase
	Equipment equipment.UseCase
	Risks     RiskAssessmentUseCase
	Meetings  BoardMeetingUseCase
	Notes     NoteUseCase
	Accounts  user.UseCase
	Markers   marker.Store
	Users     UserFinder
}

// ComplianceHandler は ComplianceService の gRPC 実装です。
type ComplianceHandler struct {
	deps Dependencies
}

var _ ComplianceServiceServer = (*ComplianceHandler)(nil)

// NewComplianceHandler は ComplianceHandler を生成します。
func NewComplianceHandler(deps Dependencies) *ComplianceHandler {
	return &ComplianceHandler{deps: deps}
}

// GetDashboard は閲覧者の可視範囲の件数と警告一覧を返します。
func (h *ComplianceHandler) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	d, err := h.deps.Overview.Dashboard(ctx, r.String("user_id"))
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(dashboardPayload(d))
}

// GetDailySummary は日次サマリと、今日初めての表示かどうかを返します。
func (h *ComplianceHandler) GetDailySummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	res, err := h.deps.Overview.DailySummary(ctx, r.String("user_id"))
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{
		"show":      res.Show,
		"employees": res.Summary.Employees,
		"equipment": res.Summary.Equipment,
		"meetings":  res.Summary.Meetings,
	})
}

// GetMonthlyPlan は指定月の事業所別計画を返します。
func (h *ComplianceHandler) GetMonthlyPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	year, err := r.Int("year")
	if err != nil {
		return nil, toStatusError(err)
	}
	month, err := r.Int("month")
	if err != nil {
		return nil, toStatusError(err)
	}

	plan, err := h.deps.Overview.MonthlyPlan(ctx, r.String("user_id"), year, time.Month(month))
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(planPayload(plan))
}

// GetPlanningReport は計画表と、そのテキスト表現を返します。
func (h *ComplianceHandler) GetPlanningReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	year, err := r.Int("year")
	if err != nil {
		return nil, toStatusError(err)
	}
	month, err := r.Int("month")
	if err != nil {
		return nil, toStatusError(err)
	}

	rep, err := h.deps.Overview.PlanningReport(ctx, overview.PlanningReportInput{
		ViewerID: r.String("user_id"),
		Period:   r.String("period"),
		Year:     year,
		Month:    time.Month(month),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	var buf bytes.Buffer
	if err := report.WriteText(&buf, *rep); err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(reportPayload(rep, buf.String()))
}

// CreateFirm は事業所を登録します。管理者のみが実行できます。
func (h *ComplianceHandler) CreateFirm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	actor, err := h.actor(ctx, r)
	if err != nil {
		return nil, toStatusError(err)
	}
	if !actor.CanManageFirms() {
		return nil, toStatusError(fmt.Errorf("create firm: %w", errPermissionDenied))
	}

	created, err := h.deps.Firms.CreateFirm(ctx, firm.CreateFirmInput{
		Name:       r.String("name"),
		HazardTier: r.String("hazard_tier"),
		Notes:      r.OptionalString("notes"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"firm": firmPayload(created)})
}

// ListFirms は閲覧者に見える事業所を名前順で返します。
func (h *ComplianceHandler) ListFirms(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	actor, err := h.actor(ctx, r)
	if err != nil {
		return nil, toStatusError(err)
	}
	pageSize, err := r.Int("page_size")
	if err != nil {
		return nil, toStatusError(err)
	}

	result, err := h.deps.Firms.ListFirms(ctx, firm.ListFirmsInput{
		PageSize:   pageSize,
		PageToken:  r.String("page_token"),
		HazardTier: r.OptionalString("hazard_tier"),
		VisibleIDs: actor.Visibility().IDs(),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	firms := make([]any, 0, len(result.Firms))
	for _, f := range result.Firms {
		firms = append(firms, firmPayload(f))
	}
	return toStruct(map[string]any{"firms": firms, "next_page_token": result.NextPageToken})
}

// CreateEmployee は従業員を登録します。秘書の登録は承認待ちになります。
func (h *ComplianceHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	firmID := r.String("firm_id")
	actor, err := h.authorize(ctx, r, firmID)
	if err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.deps.Employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		FirmID:           firmID,
		NationalID:       r.String("national_id"),
		FullName:         r.String("full_name"),
		LastTrainingDate: r.String("last_training_date"),
		ConfirmTransfer:  r.Bool("confirm_transfer"),
		Actor:            actor,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"employee": employeePayload(created)})
}

// TerminateEmployee は従業員を退職扱いにします。
func (h *ComplianceHandler) TerminateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	_, id, _, err := h.employeeRequest(ctx, req)
	if err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.deps.Employees.TerminateEmployee(ctx, employee.TerminateEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"employee": employeePayload(updated)})
}

// ApproveEmployee は承認待ちの従業員を承認します。
func (h *ComplianceHandler) ApproveEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	_, id, actor, err := h.employeeRequest(ctx, req)
	if err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.deps.Employees.ApproveEmployee(ctx, employee.ApproveEmployeeInput{ID: id, Actor: actor})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"employee": employeePayload(updated)})
}

// EvaluateRehire は退職者の空白期間と再教育の要否を返します。
func (h *ComplianceHandler) EvaluateRehire(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	_, id, _, err := h.employeeRequest(ctx, req)
	if err != nil {
		return nil, toStatusError(err)
	}

	decision, err := h.deps.Employees.EvaluateRehire(ctx, employee.EvaluateRehireInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(rehirePayload(decision))
}

// RehireEmployee は退職者を再雇用します。
func (h *ComplianceHandler) RehireEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, id, actor, err := h.employeeRequest(ctx, req)
	if err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.deps.Employees.RehireEmployee(ctx, employee.RehireEmployeeInput{
		ID:                    id,
		LastTrainingDate:      r.String("last_training_date"),
		ReusePreviousTraining: r.Bool("reuse_previous_training"),
		ConfirmTransfer:       r.Bool("confirm_transfer"),
		Actor:                 actor,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"employee": employeePayload(updated)})
}

// RecordEquipment は設備を登録します。
func (h *ComplianceHandler) RecordEquipment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	firmID := r.String("firm_id")
	if _, err := h.authorize(ctx, r, firmID); err != nil {
		return nil, toStatusError(err)
	}
	period, err := r.Int("period_months")
	if err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.deps.Equipment.RecordEquipment(ctx, equipment.RecordEquipmentInput{
		FirmID:             firmID,
		Name:               r.String("name"),
		LastInspectionDate: r.String("last_inspection_date"),
		PeriodMonths:       period,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"equipment": equipmentPayload(created)})
}

// RecordRiskAssessment は事業所のリスク評価を登録または上書きします。
func (h *ComplianceHandler) RecordRiskAssessment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	firmID := r.String("firm_id")
	if _, err := h.authorize(ctx, r, firmID); err != nil {
		return nil, toStatusError(err)
	}

	recorded, err := h.deps.Risks.RecordAssessment(ctx, riskassessment.RecordAssessmentInput{
		FirmID:         firmID,
		AssessmentDate: r.String("assessment_date"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"risk_assessment": assessmentPayload(recorded)})
}

// RecordBoardMeeting は委員会の開催を記録します。period_months を省略すると区分の既定値です。
func (h *ComplianceHandler) RecordBoardMeeting(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	firmID := r.String("firm_id")
	if _, err := h.authorize(ctx, r, firmID); err != nil {
		return nil, toStatusError(err)
	}
	period, err := r.Int("period_months")
	if err != nil {
		return nil, toStatusError(err)
	}

	recorded, err := h.deps.Meetings.RecordMeeting(ctx, boardmeeting.RecordMeetingInput{
		FirmID:       firmID,
		MeetingDate:  r.String("meeting_date"),
		PeriodMonths: period,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"board_meeting": meetingPayload(recorded)})
}

func (h *ComplianceHandler) actor(ctx context.Context, r request) (*user.User, error) {
	id := r.String("user_id")
	if id == "" {
		return nil, fmt.Errorf("user_id is required: %w", errInvalidRequest)
	}
	return h.deps.Users.FindByID(ctx, id)
}

// authorize は操作者を解決し、firmID が可視範囲にあることを確かめます。
func (h *ComplianceHandler) authorize(ctx context.Context, r request, firmID string) (*user.User, error) {
	actor, err := h.actor(ctx, r)
	if err != nil {
		return nil, err
	}
	if firmID != "" && !actor.Visibility().Visible(firmID) {
		return nil, fmt.Errorf("firm %s: %w", firmID, errPermissionDenied)
	}
	return actor, nil
}

// employeeRequest は id で従業員を引き、その事業所に対する操作者の権限を確かめます。
func (h *ComplianceHandler) employeeRequest(ctx context.Context, req *structpb.Struct) (request, string, *user.User, error) {
	r, err := newRequest(req)
	if err != nil {
		return request{}, "", nil, err
	}

	id := r.String("id")
	found, err := h.deps.Employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return request{}, "", nil, err
	}

	actor, err := h.authorize(ctx, r, found.FirmID)
	if err != nil {
		return request{}, "", nil, err
	}
	return r, id, actor, nil
}
