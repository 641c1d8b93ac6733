package patient

import (
	"strconv"
	"strings"
	"time"
)

// UnknownAge is shown when a birth date cannot be parsed.
const UnknownAge = "–"

// dateLayouts are the birth date formats accepted by the clinic service.
var dateLayouts = []string{
	"2006-01-02", "02-01-2006",
	"2006/01/02", "02/01/2006",
	"2006.01.02", "02.01.2006",
}

// ParseDate parses a birth date in any of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Age returns the number of whole years between dob and now.
func Age(dob string, now time.Time) (int, bool) {
	born, ok := ParseDate(dob)
	if !ok {
		return 0, false
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, true
}

// AgeLabel formats the age as shown on the kiosk, e.g. "34 Tahun".
func AgeLabel(dob string, now time.Time) string {
	age, ok := Age(dob, now)
	if !ok {
		return UnknownAge
	}
	return strconv.Itoa(age) + " Tahun"
}
