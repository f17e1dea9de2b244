package boardmeeting

import "errors"

var (
	ErrMeetingNotFound    = errors.New("boardmeeting: not found")
	ErrInvalidFirmID      = errors.New("boardmeeting: invalid firm id")
	ErrInvalidMeetingDate = errors.New("boardmeeting: invalid meeting date")
	ErrPeriodNotAllowed   = errors.New("boardmeeting: period not allowed for hazard tier")
	ErrFirmNotFound       = errors.New("boardmeeting: firm not found")
)
