package courses

import "errors"

var (
	// ErrInvalidJoinForm is returned when the submitted self enrolment form
	// cannot be parsed or fails validation.
	ErrInvalidJoinForm = errors.New("invalid enrolment form data")

	// ErrJoinRejected is returned when the course does not exist, is not
	// open for self enrolment, or the enrolment key does not match.
	ErrJoinRejected = errors.New("course not found or enrolment key not accepted")

	// ErrInternalServerError is returned for unexpected failures during
	// self enrolment.
	ErrInternalServerError = errors.New("internal server error")
)
