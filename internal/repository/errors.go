package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row. Callers map it to
	// a 404; it is not a storage failure.
	ErrNotFound = errors.New("not found")

	// ErrConfigMissing is returned when an organization has no settings row.
	// Operations that depend on tenant policy must fail on it, not default.
	ErrConfigMissing = errors.New("organization config missing")

	// ErrProfileMissing is returned when an authenticated user has no profile
	// in the requested organization. The question pipeline does not create
	// profiles; that is the registration flow's job.
	ErrProfileMissing = errors.New("profile missing for organization")
)
