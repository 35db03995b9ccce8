package record

import (
	"fmt"
	"sort"
)

// Record maps a vehicle registration code to a place and federal state,
// or to a special-category annotation for non-geographic codes
type Record struct {
	Code    string  `json:"Kuerzel"`
	Place   *string `json:"Ort"`
	State   *string `json:"Bundesland"`
	Special *string `json:"Speziell"`
}

// New creates a Record from one table row; Special starts out nil
func New(code, place, state string) *Record {
	return &Record{
		Code:  code,
		Place: StringPtr(place),
		State: StringPtr(state),
	}
}

// StringPtr returns a pointer to a copy of s
func StringPtr(s string) *string {
	return &s
}

// IsSpecial reports whether the record carries a special-category annotation
func (r *Record) IsSpecial() bool {
	return r.Special != nil
}

// IsGeographic reports whether the record maps to a place and state only
func (r *Record) IsGeographic() bool {
	return r.Place != nil && r.State != nil && r.Special == nil
}

// String renders the record for log output
func (r *Record) String() string {
	return fmt.Sprintf("%s place=%s state=%s special=%s",
		r.Code, deref(r.Place), deref(r.State), deref(r.Special))
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

// StateCount is the number of geographic codes registered in one state
type StateCount struct {
	State string `json:"state"`
	Codes int    `json:"codes"`
}

// Summary aggregates a record list for reporting
type Summary struct {
	Total      int          `json:"total"`
	Geographic int          `json:"geographic"`
	Special    int          `json:"special"`
	ByState    []StateCount `json:"by_state"`
}

// Summarize counts records per kind and geographic records per state.
// ByState is sorted by state name.
func Summarize(records []*Record) *Summary {
	s := &Summary{
		Total:   len(records),
		ByState: make([]StateCount, 0),
	}

	perState := make(map[string]int)
	for _, r := range records {
		if r.IsSpecial() {
			s.Special++
			continue
		}
		if r.IsGeographic() {
			s.Geographic++
			perState[*r.State]++
		}
	}

	for state, n := range perState {
		s.ByState = append(s.ByState, StateCount{State: state, Codes: n})
	}
	sort.Slice(s.ByState, func(i, j int) bool {
		return s.ByState[i].State < s.ByState[j].State
	})

	return s
}
