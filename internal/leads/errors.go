package leads

import "errors"

var (
	// ErrInvalidName is returned when the name is invalid
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidEmail is returned when the email is missing or malformed
	ErrInvalidEmail = errors.New("a valid email is required")

	// ErrInvalidPreferredContact is returned for an unknown contact preference
	ErrInvalidPreferredContact = errors.New("preferred contact must be email, phone or text")

	// ErrInvalidStatus is returned when a status update names an unknown status
	ErrInvalidStatus = errors.New("status must be new, contacted, scheduled or closed")

	// ErrEmptyUpdate is returned when an update carries neither status nor notes
	ErrEmptyUpdate = errors.New("nothing to update")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)

// IsValidationError reports whether err is caused by bad client input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidPreferredContact) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyUpdate)
}
