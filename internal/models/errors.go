package models

import "errors"

var (
	// ErrNotFound is returned by repositories when a row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrTourNotFound indicates an unknown tour id
	ErrTourNotFound = errors.New("tour not found")

	// ErrTourDateNotFound indicates an unknown tour date id
	ErrTourDateNotFound = errors.New("tour date not found")

	// ErrPriceGroupNotFound indicates an unknown price group id
	ErrPriceGroupNotFound = errors.New("price group not found")

	// ErrClientNotFound indicates an unknown client id
	ErrClientNotFound = errors.New("client not found")

	// ErrBookingNotFound indicates an unknown booking id
	ErrBookingNotFound = errors.New("booking not found")

	// ErrReferenced is returned when a delete hits a foreign key
	ErrReferenced = errors.New("cannot delete, related records exist")

	// ErrDuplicate is returned when an insert hits a unique constraint
	ErrDuplicate = errors.New("record already exists")

	// ErrInsufficientCapacity is returned when a tour date cannot seat the booking
	ErrInsufficientCapacity = errors.New("not enough capacity on tour date")

	// ErrBookingAlreadyCancelled guards the cancelled terminal state
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrTourDateClosed is returned when booking a cancelled or completed date
	ErrTourDateClosed = errors.New("tour date is not open for booking")
)

// ValidationError is a business-rule violation reported back to the caller
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
