package course

import (
	"errors"
)

var (
	// ErrCourseNotFound is returned when no course exists for the given ID.
	ErrCourseNotFound = errors.New("course not found")

	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
