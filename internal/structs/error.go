package structs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("no rows in result set")

	ErrInvalidInput        = errors.New("invalid input")
	ErrUnresolvable        = errors.New("pincode could not be resolved")
	ErrUpstreamUnavailable = errors.New("geocoding upstream unavailable")
	ErrConfiguration       = errors.New("delivery area misconfigured")
	ErrConflict            = errors.New("settings were modified concurrently")

	ErrInvalidPincode   = fmt.Errorf("%w: pincode must be exactly 6 digits", ErrInvalidInput)
	ErrInvalidRadius    = fmt.Errorf("%w: delivery radius must be between 1 and 100 km", ErrInvalidInput)
	ErrTooManyLocations = fmt.Errorf("%w: at most 20 restaurant locations are allowed", ErrInvalidInput)

	ErrNoLocationsConfigured = fmt.Errorf("%w: no restaurant locations configured", ErrConfiguration)
	ErrLocationsUnresolvable = fmt.Errorf("%w: restaurant locations could not be resolved", ErrConfiguration)
)
