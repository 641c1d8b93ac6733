package patient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidNIK(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"3201234567890001", true},
		{"0000000000000000", true},
		{"320123456789000", false},
		{"32012345678900011", false},
		{"320123456789000a", false},
		{" 320123456789000", false},
		{"３２０１２３４５６７８９０００１", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidNIK(tt.in), "ValidNIK(%q)", tt.in)
	}
}

func TestNIKUnmarshalNumberAndString(t *testing.T) {
	var recs []Record
	body := `[{"nik":3201234567890001,"name":"Budi"},{"nik":"3201234567890002","name":"Sari"}]`
	require.NoError(t, json.Unmarshal([]byte(body), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, NIK("3201234567890001"), recs[0].NIK)
	assert.Equal(t, NIK("3201234567890002"), recs[1].NIK)
}

func TestNIKUnmarshalRestoresLeadingZeros(t *testing.T) {
	var recs []Record
	body := `[{"nik":123456789012345},{"nik":"0123456789012345"}]`
	require.NoError(t, json.Unmarshal([]byte(body), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, NIK("0123456789012345"), recs[0].NIK)
	assert.True(t, ValidNIK(string(recs[0].NIK)))
	assert.Equal(t, recs[1].NIK, recs[0].NIK)
}

func TestNIKUnmarshalRejectsFloat(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"nik":1.5e3}`), &r)
	assert.Error(t, err)
}

func TestAge(t *testing.T) {
	now := time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)

	age, ok := Age("1990-10-17", now)
	require.True(t, ok)
	assert.Equal(t, 36, age, "birthday today counts the full year")

	age, ok = Age("1990-10-18", now)
	require.True(t, ok)
	assert.Equal(t, 35, age, "one day before the birthday")

	age, ok = Age("1990-11-01", now)
	require.True(t, ok)
	assert.Equal(t, 35, age)

	age, ok = Age("17/10/1990", now)
	require.True(t, ok)
	assert.Equal(t, 36, age)

	_, ok = Age("kemarin", now)
	assert.False(t, ok)
}

func TestAgeLabel(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "26 Tahun", AgeLabel("2000.02.29", now))
	assert.Equal(t, UnknownAge, AgeLabel("", now))
	assert.Equal(t, UnknownAge, AgeLabel("2000-13-40", now))
}

func TestRegistrationFormValidate(t *testing.T) {
	form := RegistrationForm{NIK: "3201234567890001", Name: "Budi", DOB: "1990-01-01", Address: "Jl. Merdeka"}
	assert.NoError(t, form.Validate())

	bad := form
	bad.NIK = "123"
	bad.Name = ""
	assert.ErrorIs(t, bad.Validate(), ErrInvalidNIK)

	missing := form
	missing.Address = ""
	assert.ErrorIs(t, missing.Validate(), ErrMissingField)
}

func TestRegistrationFormClean(t *testing.T) {
	form := RegistrationForm{NIK: " 3201234567890001 ", Name: "  José ", Address: " Jl. A "}.Clean()
	assert.Equal(t, "3201234567890001", form.NIK)
	assert.Equal(t, "José", form.Name)
	assert.Equal(t, "Jl. A", form.Address)
}

func TestEditForm(t *testing.T) {
	rec := Record{NIK: "3201234567890001", Name: "Budi", DOB: "1990-01-01", Address: "Jl. Merdeka"}
	form := NewEditForm(rec)
	assert.Equal(t, "3201234567890001", form.OldNIK)
	assert.Equal(t, "Budi", form.Name)
	assert.NoError(t, form.Validate())

	form.NIK = "32012345678900x1"
	assert.ErrorIs(t, form.Validate(), ErrInvalidNIK)

	form.NIK = "3201234567890001"
	form.DOB = ""
	assert.ErrorIs(t, form.Validate(), ErrMissingField)
}

func TestRecordField(t *testing.T) {
	rec := Record{NIK: "1", Name: "n", DOB: "d", Address: "a"}
	assert.Equal(t, "1", rec.Field("nik"))
	assert.Equal(t, "n", rec.Field("name"))
	assert.Equal(t, "d", rec.Field("dob"))
	assert.Equal(t, "a", rec.Field("address"))
	assert.Equal(t, "", rec.Field("other"))
}
