package patient

import "errors"

// NIKLength is the number of digits in a valid NIK.
const NIKLength = 16

var (
	// ErrInvalidNIK is returned when a NIK is not exactly 16 ASCII digits.
	ErrInvalidNIK = errors.New("nik must be exactly 16 digits")
	// ErrMissingField is returned when a required form field is empty.
	ErrMissingField = errors.New("required field is empty")
)

// ValidNIK reports whether s is exactly 16 ASCII digits.
func ValidNIK(s string) bool {
	if len(s) != NIKLength {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
