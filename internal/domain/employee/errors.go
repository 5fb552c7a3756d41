package employee

import "errors"

var (
	ErrNotFound           = errors.New("employee not found")
	ErrEmailTaken         = errors.New("employee email already in use")
	ErrDepartmentNotFound = errors.New("department not found in this organization")
	ErrAssignmentExists   = errors.New("review assignment already exists")
	ErrAssignmentNotFound = errors.New("review assignment not found")
	ErrSelfAssignment     = errors.New("employee cannot review themselves")
)
