package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or empty.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidStatus is returned when a review status is not one of the known values.
	ErrInvalidStatus = errors.New("invalid review status")

	// ErrInvalidReviewState is returned when the counters, status and last-shown
	// timestamp of a review state contradict each other.
	ErrInvalidReviewState = errors.New("invalid review state")

	// ErrInvalidItemKind is returned when an item kind is not valid for the entity.
	ErrInvalidItemKind = errors.New("invalid item kind")

	// ErrInvalidLevel is returned when a CEFR level is not one of A1..C2.
	ErrInvalidLevel = errors.New("invalid CEFR level")

	// ErrInvalidDate is returned when a calendar date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
)
