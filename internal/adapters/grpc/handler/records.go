package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/report"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
)

// ListEmployees は事業所の従業員を氏名順で返します。
func (h *ComplianceHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	firmID := r.String("firm_id")
	if _, err := h.authorize(ctx, r, firmID); err != nil {
		return nil, toStatusError(err)
	}
	pageSize, err := r.Int("page_size")
	if err != nil {
		return nil, toStatusError(err)
	}

	var filter *employee.Status
	if raw := r.OptionalString("status"); raw != nil {
		st := employee.Status(strings.ToUpper(strings.TrimSpace(*raw)))
		filter = &st
	}

	result, err := h.deps.Employees.ListEmployees(ctx, employee.ListEmployeesInput{
		FirmID:    firmID,
		PageSize:  pageSize,
		PageToken: r.String("page_token"),
		Status:    filter,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	employees := make([]any, 0, len(result.Employees))
	for _, e := range result.Employees {
		employees = append(employees, employeePayload(e))
	}
	return toStruct(map[string]any{"employees": employees, "next_page_token": result.NextPageToken})
}

// BulkUpdateTraining は事業所の複数従業員の教育日をまとめて更新します。
func (h *ComplianceHandler) BulkUpdateTraining(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	firmID := r.String("firm_id")
	if _, err := h.authorize(ctx, r, firmID); err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.deps.Employees.BulkUpdateTraining(ctx, employee.BulkUpdateTrainingInput{
		FirmID:           firmID,
		IDs:              r.Strings("ids"),
		LastTrainingDate: r.String("last_training_date"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	employees := make([]any, 0, len(updated))
	for _, e := range updated {
		employees = append(employees, employeePayload(e))
	}
	return toStruct(map[string]any{"employees": employees})
}

// CreateNote はカレンダーにメモを追加します。
func (h *ComplianceHandler) CreateNote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	if _, err := h.actor(ctx, r); err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.deps.Notes.CreateNote(ctx, note.CreateNoteInput{
		Title:       r.String("title"),
		Date:        r.String("date"),
		Description: r.OptionalString("description"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"note": notePayload(created)})
}

func (h *ComplianceHandler) DeleteNote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	if _, err := h.actor(ctx, r); err != nil {
		return nil, toStatusError(err)
	}

	if err := h.deps.Notes.DeleteNote(ctx, r.String("id")); err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{})
}

// CreateUser はユーザーを作成します。管理者のみが実行できます。
func (h *ComplianceHandler) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := h.adminRequest(ctx, req, "create user")
	if err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.deps.Accounts.CreateUser(ctx, user.CreateUserInput{
		Username:       r.String("username"),
		FullName:       r.String("full_name"),
		Role:           user.Role(strings.ToUpper(r.String("role"))),
		AllowedFirmIDs: r.Strings("allowed_firm_ids"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"user": userPayload(created)})
}

// ListUsers はユーザー一覧を返します。管理者のみが実行できます。
func (h *ComplianceHandler) ListUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := h.adminRequest(ctx, req, "list users")
	if err != nil {
		return nil, toStatusError(err)
	}
	pageSize, err := r.Int("page_size")
	if err != nil {
		return nil, toStatusError(err)
	}

	var role *user.Role
	if raw := r.OptionalString("role"); raw != nil {
		v := user.Role(strings.ToUpper(*raw))
		role = &v
	}

	result, err := h.deps.Accounts.ListUsers(ctx, user.ListUsersInput{
		PageSize:  pageSize,
		PageToken: r.String("page_token"),
		Role:      role,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	users := make([]any, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, userPayload(u))
	}
	return toStruct(map[string]any{"users": users, "next_page_token": result.NextPageToken})
}

// GetReportSettings は自動帳票の曜日と時刻を返します。
func (h *ComplianceHandler) GetReportSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := newRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	if _, err := h.actor(ctx, r); err != nil {
		return nil, toStatusError(err)
	}

	settings, err := report.LoadSettings(ctx, h.deps.Markers)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(settingsPayload(settings))
}

// UpdateReportSettings は自動帳票の曜日と時刻を保存します。管理者のみが実行できます。
func (h *ComplianceHandler) UpdateReportSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := h.adminRequest(ctx, req, "update report settings")
	if err != nil {
		return nil, toStatusError(err)
	}
	weekday, err := r.Int("weekday")
	if err != nil {
		return nil, toStatusError(err)
	}

	settings := report.Settings{Weekday: time.Weekday(weekday), TimeOfDay: r.String("time_of_day")}
	if err := report.SaveSettings(ctx, h.deps.Markers, settings); err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(settingsPayload(settings))
}

func (h *ComplianceHandler) adminRequest(ctx context.Context, req *structpb.Struct, op string) (request, error) {
	r, err := newRequest(req)
	if err != nil {
		return request{}, err
	}
	actor, err := h.actor(ctx, r)
	if err != nil {
		return request{}, err
	}
	if !actor.CanManageFirms() {
		return request{}, fmt.Errorf("%s: %w", op, errPermissionDenied)
	}
	return r, nil
}
