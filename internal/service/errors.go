package service

import (
	"errors"
	"fmt"

	"occupancy/internal/repository"
)

// Kind is the stable, machine-readable class of a service error.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindTimeout      Kind = "timeout"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrInvalidInput        = newError(KindInvalidInput, "invalid input")
	ErrDateRangeRequired   = newError(KindInvalidInput, "start_date and end_date are required")
	ErrInvalidDateRange    = newError(KindInvalidInput, "Invalid date format")
	ErrDateRangeOrder      = newError(KindInvalidInput, "start_date must not be after end_date")
	ErrInvalidDeviceStatus = newError(KindInvalidInput, `Invalid status. Must be "online" or "offline"`)
	ErrInvalidStatus       = newError(KindInvalidInput, "Invalid status")
	ErrInvalidCapacity     = newError(KindInvalidInput, "Capacity must be greater than zero")

	ErrInvalidCredentials = newError(KindUnauthorized, "Invalid credentials")
	ErrAccountInactive    = newError(KindUnauthorized, "Account is inactive")
	ErrInvalidToken       = newError(KindUnauthorized, "Invalid token")
	ErrTokenRevoked       = newError(KindUnauthorized, "Token has been revoked")

	ErrAdminNotFound     = newError(KindNotFound, "Admin not found")
	ErrDriverNotFound    = newError(KindNotFound, "Driver not found")
	ErrVehicleNotFound   = newError(KindNotFound, "Mobil not found")
	ErrDeviceNotFound    = newError(KindNotFound, "Device not found")
	ErrSessionNotFound   = newError(KindNotFound, "Session not found")
	ErrPassengerNotFound = newError(KindNotFound, "Passenger record not found")

	ErrDriverInactive          = newError(KindConflict, "Driver is not active")
	ErrVehicleInactive         = newError(KindConflict, "Mobil is not active")
	ErrDriverHasActiveSession  = newError(KindConflict, "Driver already has an active session")
	ErrVehicleHasActiveSession = newError(KindConflict, "Mobil already has an active session")
	ErrSessionNotActive        = newError(KindConflict, "Session is not active")
	ErrNoActiveSession         = newError(KindConflict, "No active session found for this device")
	ErrVehicleAtCapacity       = newError(KindConflict, "Mobil is at maximum capacity")
	ErrSessionConflict         = newError(KindConflict, "Driver or mobil already has an active session")
	ErrCapacityBelowOccupancy  = newError(KindConflict, "Capacity cannot be lower than the current passenger count")

	ErrUsernameTaken     = newError(KindConflict, "Username already exists")
	ErrEmailTaken        = newError(KindConflict, "Email already exists")
	ErrRFIDTaken         = newError(KindConflict, "RFID code already exists")
	ErrPlateTaken        = newError(KindConflict, "Nomor mobil already exists")
	ErrDeviceIDTaken     = newError(KindConflict, "Device ID already exists")
	ErrDuplicate         = newError(KindConflict, "Record already exists")
	ErrVehicleInUse      = newError(KindConflict, "Cannot delete mobil with active sessions")
	ErrVehicleHasDevices = newError(KindConflict, "Cannot delete mobil with associated devices. Please remove devices first.")
	ErrVehicleHasHistory = newError(KindConflict, "Cannot delete mobil with session history")
	ErrDriverInUse       = newError(KindConflict, "Cannot delete driver with session history")

	ErrDeviceOffline = newError(KindUnavailable, "Device is offline")

	ErrTimeout  = newError(KindTimeout, "Operation timed out, please retry")
	ErrInternal = newError(KindInternal, "Internal server error")
)

// KindOf returns the kind of err, or KindInternal for errors that did not
// originate in this package.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// PublicMessage is the message safe to show to callers.
func PublicMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return ErrInternal.Message
}

// storeError maps store-level failures onto the service taxonomy. Errors that
// already belong to the taxonomy pass through unchanged.
func storeError(err error, duplicate *Error) error {
	var svcErr *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &svcErr):
		return err
	case errors.Is(err, repository.ErrTxTimeout):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, repository.ErrDuplicateKey) && duplicate != nil:
		return fmt.Errorf("%w: %w", duplicate, err)
	}
	return err
}
