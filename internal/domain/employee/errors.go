package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrComponentNotFound = errors.New("salary component not found")
	ErrNoBasicSalary     = errors.New("employee has no basic salary configured")
)
