package patient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegistrationForm holds the identity fields entered on the kiosk.
type RegistrationForm struct {
	NIK     string `json:"nik" validate:"required,len=16,numeric"`
	Name    string `json:"name" validate:"required"`
	DOB     string `json:"dob" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// Clean returns a copy with all free-text fields trimmed and normalised.
func (f RegistrationForm) Clean() RegistrationForm {
	return RegistrationForm{
		NIK:     strings.TrimSpace(f.NIK),
		Name:    Clean(f.Name),
		DOB:     strings.TrimSpace(f.DOB),
		Address: Clean(f.Address),
	}
}

// Validate checks the form. The NIK is checked first so a bad NIK is
// reported even when other fields are also missing.
func (f RegistrationForm) Validate() error {
	if !ValidNIK(f.NIK) {
		return ErrInvalidNIK
	}
	return structError(validate.Struct(f))
}

// Record converts the form to the record it registers.
func (f RegistrationForm) Record() Record {
	return Record{NIK: NIK(f.NIK), Name: f.Name, DOB: f.DOB, Address: f.Address}
}

// EditForm is the admin edit form. Name is displayed but never submitted.
type EditForm struct {
	OldNIK  string `json:"old_nik" validate:"required"`
	NIK     string `json:"nik" validate:"required,len=16,numeric"`
	Name    string `json:"name"`
	DOB     string `json:"dob" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// NewEditForm pre-fills an edit form from a record.
func NewEditForm(r Record) EditForm {
	return EditForm{
		OldNIK:  string(r.NIK),
		NIK:     string(r.NIK),
		Name:    r.Name,
		DOB:     r.DOB,
		Address: r.Address,
	}
}

// Clean returns a copy with all fields trimmed.
func (f EditForm) Clean() EditForm {
	return EditForm{
		OldNIK:  strings.TrimSpace(f.OldNIK),
		NIK:     strings.TrimSpace(f.NIK),
		Name:    f.Name,
		DOB:     strings.TrimSpace(f.DOB),
		Address: Clean(f.Address),
	}
}

// Validate checks the editable fields.
func (f EditForm) Validate() error {
	if err := structError(validate.Struct(f)); err != nil {
		return err
	}
	if !ValidNIK(f.NIK) {
		return ErrInvalidNIK
	}
	return nil
}

// structError maps validator failures onto the package sentinel errors.
func structError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}
	for _, fe := range verrs {
		if fe.Field() == "NIK" && fe.Tag() != "required" {
			return ErrInvalidNIK
		}
	}
	return fmt.Errorf("%w: %s", ErrMissingField, strings.ToLower(verrs[0].Field()))
}

// Clean trims whitespace and applies NFC normalisation to free text.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
