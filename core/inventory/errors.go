package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrQuery wraps every failure reported by the database.
	ErrQuery = errors.New("inventory query failed")

	// ErrNotFound is returned when a named entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownOSVersion is returned for a release symbol missing from OSReleases.
	ErrUnknownOSVersion = errors.New("unknown OS version")

	// ErrInvalidPattern is returned for a machine name pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid machine name pattern")

	// ErrNoFreeAddress is returned when a network has no unallocated host address left.
	ErrNoFreeAddress = errors.New("no free address")
)

func queryErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrQuery, op, err)
}
