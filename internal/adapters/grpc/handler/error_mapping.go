package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/overview"
	"github.com/ogurasousui/isg-tracker/internal/core/report"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
)

var errPermissionDenied = errors.New("handler: permission denied")

func toStatusError(err error) error {
	if _, ok := status.FromError(err); ok && err != nil {
		return err
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, overview.ErrInvalidViewer),
		errors.Is(err, overview.ErrInvalidPeriod),
		errors.Is(err, firm.ErrInvalidName),
		errors.Is(err, firm.ErrInvalidHazardTier),
		errors.Is(err, firm.ErrInvalidID),
		errors.Is(err, firm.ErrInvalidPageSize),
		errors.Is(err, firm.ErrInvalidPageToken),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidFirmID),
		errors.Is(err, employee.ErrInvalidNationalID),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidTrainingDate),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, equipment.ErrInvalidID),
		errors.Is(err, equipment.ErrInvalidFirmID),
		errors.Is(err, equipment.ErrInvalidName),
		errors.Is(err, equipment.ErrInvalidInspectionDate),
		errors.Is(err, equipment.ErrInvalidPeriod),
		errors.Is(err, riskassessment.ErrInvalidFirmID),
		errors.Is(err, riskassessment.ErrInvalidAssessmentDate),
		errors.Is(err, boardmeeting.ErrInvalidFirmID),
		errors.Is(err, boardmeeting.ErrInvalidMeetingDate),
		errors.Is(err, boardmeeting.ErrPeriodNotAllowed),
		errors.Is(err, note.ErrInvalidID),
		errors.Is(err, note.ErrInvalidTitle),
		errors.Is(err, note.ErrInvalidDate),
		errors.Is(err, note.ErrInvalidMonth),
		errors.Is(err, report.ErrInvalidSettings),
		errors.Is(err, user.ErrInvalidUsername),
		errors.Is(err, user.ErrInvalidName),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidPageSize),
		errors.Is(err, user.ErrInvalidPageToken),
		errors.Is(err, user.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, firm.ErrNameAlreadyExists),
		errors.Is(err, employee.ErrAlreadyActive),
		errors.Is(err, employee.ErrNationalIDAlreadyExists),
		errors.Is(err, user.ErrUsernameAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrRehireRequired),
		errors.Is(err, employee.ErrTransferConfirmationRequired),
		errors.Is(err, employee.ErrNotTerminated),
		errors.Is(err, employee.ErrRefresherTrainingRequired),
		errors.Is(err, employee.ErrFirmMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, errPermissionDenied),
		errors.Is(err, employee.ErrNotPermitted):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, firm.ErrFirmNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrFirmNotFound),
		errors.Is(err, equipment.ErrEquipmentNotFound),
		errors.Is(err, equipment.ErrFirmNotFound),
		errors.Is(err, riskassessment.ErrFirmNotFound),
		errors.Is(err, riskassessment.ErrAssessmentNotFound),
		errors.Is(err, boardmeeting.ErrFirmNotFound),
		errors.Is(err, boardmeeting.ErrMeetingNotFound),
		errors.Is(err, note.ErrNoteNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
