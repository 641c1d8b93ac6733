package patient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NIK is the 16-digit national identity number used as the patient key.
type NIK string

// UnmarshalJSON accepts both a JSON string and a JSON number. The clinic
// service stores NIK as an integer, so list responses carry it unquoted.
func (n *NIK) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal nik: %w", err)
		}
		*n = NIK(s)
		return nil
	}
	// Raw number literal: keep the digits as-is, a float64 round trip would
	// lose precision on 16-digit values. Leading zeros dropped by the integer
	// column are restored.
	for _, c := range data {
		if c < '0' || c > '9' {
			return fmt.Errorf("unmarshal nik: invalid number %q", data)
		}
	}
	digits := string(data)
	if len(digits) < NIKLength {
		digits = strings.Repeat("0", NIKLength-len(digits)) + digits
	}
	*n = NIK(digits)
	return nil
}

func (n NIK) String() string {
	return string(n)
}

// Record is a patient as returned by the clinic service.
type Record struct {
	NIK     NIK    `json:"nik"`
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Address string `json:"address"`
}

// Field returns the value of a sortable column by its key.
func (r Record) Field(key string) string {
	switch key {
	case "nik":
		return string(r.NIK)
	case "name":
		return r.Name
	case "dob":
		return r.DOB
	case "address":
		return r.Address
	}
	return ""
}
