// Package repository implements data access for the reservations table.
// Sentinel errors defined here let handlers distinguish failure
// scenarios without inspecting driver-specific error strings.
package repository

import "errors"

// ErrReservationNotFound is returned when no reservation exists for the
// requested ID.  Handlers translate this into an HTTP 404 response.
var ErrReservationNotFound = errors.New("reservation not found")
