// Package admin implements the patient table of the admin console: client
// side sorting and pagination over the full collection, the edit form and
// delete with confirmation.
package admin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kozaktomas/clinic-kiosk/internal/patient"
)

// SortKey is a sortable column.
type SortKey string

const (
	SortNIK     SortKey = "nik"
	SortName    SortKey = "name"
	SortDOB     SortKey = "dob"
	SortAddress SortKey = "address"
)

// SortKeys lists the sortable columns in display order.
var SortKeys = []SortKey{SortNIK, SortName, SortDOB, SortAddress}

// ParseSortKey validates a column name.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(SortKeys, k) {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Default table settings.
const (
	DefaultPageSize = 10
	DefaultSortKey  = SortNIK
)

// State is the table state. It is rebuilt from every fetch and never persisted.
type State struct {
	Records  []patient.Record
	SortKey  SortKey
	SortDir  Direction
	PageSize int
	Page     int
}

// NewState returns the initial table state.
func NewState() State {
	return State{SortKey: DefaultSortKey, SortDir: Asc, PageSize: DefaultPageSize, Page: 1}
}

// Sort orders the records by the current key and direction. The sort is
// stable, so rows with equal keys keep their relative order.
func (s *State) Sort() {
	key := string(s.SortKey)
	desc := s.SortDir == Desc
	slices.SortStableFunc(s.Records, func(a, b patient.Record) int {
		c := strings.Compare(a.Field(key), b.Field(key))
		if desc {
			return -c
		}
		return c
	})
}

// Toggle flips the direction when key is already active, otherwise switches
// to key ascending. It re-sorts and returns to the first page.
func (s *State) Toggle(key SortKey) {
	if s.SortKey == key {
		if s.SortDir == Asc {
			s.SortDir = Desc
		} else {
			s.SortDir = Asc
		}
	} else {
		s.SortKey = key
		s.SortDir = Asc
	}
	s.Sort()
	s.Page = 1
}

// TotalPages is ceil(len/pageSize), at least 1.
func (s *State) TotalPages() int {
	if s.PageSize <= 0 {
		return 1
	}
	n := (len(s.Records) + s.PageSize - 1) / s.PageSize
	return max(n, 1)
}

// Clamp keeps the current page within [1, TotalPages].
func (s *State) Clamp() {
	s.Page = min(max(s.Page, 1), s.TotalPages())
}

// Visible returns records[(page-1)*size : page*size] bounded by the record count.
func (s *State) Visible() []patient.Record {
	s.Clamp()
	start := (s.Page - 1) * s.PageSize
	if start >= len(s.Records) {
		return nil
	}
	end := min(start+s.PageSize, len(s.Records))
	return s.Records[start:end]
}

// Find returns the record with the given NIK.
func (s *State) Find(nik string) (patient.Record, bool) {
	for _, r := range s.Records {
		if string(r.NIK) == nik {
			return r, true
		}
	}
	return patient.Record{}, false
}
