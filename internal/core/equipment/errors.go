package equipment

import "errors"

var (
	ErrEquipmentNotFound     = errors.New("equipment: not found")
	ErrInvalidID             = errors.New("equipment: invalid id")
	ErrInvalidFirmID         = errors.New("equipment: invalid firm id")
	ErrInvalidName           = errors.New("equipment: invalid name")
	ErrInvalidInspectionDate = errors.New("equipment: invalid inspection date")
	ErrInvalidPeriod         = errors.New("equipment: period must be at least one month")
	ErrFirmNotFound          = errors.New("equipment: firm not found")
	ErrInvalidPageSize       = errors.New("equipment: invalid page size")
	ErrInvalidPageToken      = errors.New("equipment: invalid page token")
)
