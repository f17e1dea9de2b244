package riskassessment

import "errors"

var (
	ErrAssessmentNotFound    = errors.New("riskassessment: not found")
	ErrInvalidFirmID         = errors.New("riskassessment: invalid firm id")
	ErrInvalidAssessmentDate = errors.New("riskassessment: invalid assessment date")
	ErrFirmNotFound          = errors.New("riskassessment: firm not found")
)
