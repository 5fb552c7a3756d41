package org

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDepartmentExists     = errors.New("department already exists")
	ErrDepartmentInUse      = errors.New("department still has employees assigned")
)
