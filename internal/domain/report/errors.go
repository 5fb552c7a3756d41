package report

import "errors"

var (
	ErrNotFound          = errors.New("report not found")
	ErrDuplicateReport   = errors.New("report already exists for this employee and month")
	ErrSynthesisFailed   = errors.New("synthesis failed")
	ErrMalformedResponse = errors.New("malformed AI response")
)
