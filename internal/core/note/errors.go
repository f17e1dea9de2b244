package note

import "errors"

var (
	ErrNoteNotFound = errors.New("note: not found")
	ErrInvalidID    = errors.New("note: invalid id")
	ErrInvalidTitle = errors.New("note: invalid title")
	ErrInvalidDate  = errors.New("note: invalid date")
	ErrInvalidMonth = errors.New("note: invalid month")
)
