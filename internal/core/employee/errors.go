package employee

import "errors"

var (
	ErrInvalidID                    = errors.New("employee: invalid id")
	ErrInvalidFirmID                = errors.New("employee: invalid firm id")
	ErrInvalidNationalID            = errors.New("employee: invalid national id")
	ErrInvalidName                  = errors.New("employee: invalid name")
	ErrInvalidTrainingDate          = errors.New("employee: invalid training date")
	ErrInvalidStatus                = errors.New("employee: invalid status")
	ErrInvalidPageSize              = errors.New("employee: invalid page size")
	ErrInvalidPageToken             = errors.New("employee: invalid page token")
	ErrEmployeeNotFound             = errors.New("employee: not found")
	ErrFirmNotFound                 = errors.New("employee: firm not found")
	ErrFirmMismatch                 = errors.New("employee: employee belongs to another firm")
	ErrAlreadyActive                = errors.New("employee: already active in this firm")
	ErrRehireRequired               = errors.New("employee: terminated record exists, rehire instead")
	ErrTransferConfirmationRequired = errors.New("employee: active in another firm, transfer must be confirmed")
	ErrNotTerminated                = errors.New("employee: not terminated")
	ErrRefresherTrainingRequired    = errors.New("employee: refresher training required before rehire")
	ErrNotPermitted                 = errors.New("employee: actor is not permitted")
	ErrNationalIDAlreadyExists      = errors.New("employee: national id already registered in firm")
)
