package sectionlinks

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted settings form cannot
	// be parsed or fails validation.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrSaveFailed is returned when the override set cannot be stored.
	ErrSaveFailed = errors.New("failed to save settings")
)
