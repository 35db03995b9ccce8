package record

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	StateNationwide     = "bundesweit"
	StateFilmProduction = "Filmproduktion"

	SpecialNATO       = "International Headquarters of NATO based in Germany"
	SpecialBundeswehr = "Bundeswehr"
)

// Rule is one fix-up applied to a record when Match holds
type Rule struct {
	Name  string
	Match func(r *Record) bool
	Apply func(r *Record)
}

// Rules corrects known irregularities of the source table. Order matters:
// every Match sees the record as left by the rules before it.
var Rules = []Rule{
	{
		Name:  "leipzig-state",
		Match: func(r *Record) bool { return equals(r.Place, "Leipzig") },
		Apply: func(r *Record) { r.State = StringPtr("Sachsen") },
	},
	{
		Name:  "nationwide",
		Match: func(r *Record) bool { return equals(r.State, StateNationwide) },
		Apply: func(r *Record) {
			r.Special = r.Place
			r.Place = nil
			r.State = nil
		},
	},
	{
		// Unreachable for "bundesweit" rows since the rule above clears State first.
		Name:  "film-production",
		Match: func(r *Record) bool { return equals(r.State, StateFilmProduction) },
		Apply: func(r *Record) {
			r.Special = StringPtr(fmt.Sprintf("%s: %s", orNull(r.State), orNull(r.Place)))
			r.Place = nil
			r.State = nil
		},
	},
	{
		Name:  "nato",
		Match: func(r *Record) bool { return r.Code == "X" },
		Apply: func(r *Record) { r.Special = StringPtr(SpecialNATO) },
	},
	{
		Name:  "bundeswehr",
		Match: func(r *Record) bool { return r.Code == "Y" },
		Apply: func(r *Record) { r.Special = StringPtr(SpecialBundeswehr) },
	},
}

// Fix runs every rule once against r and returns the names of the rules that fired
func Fix(r *Record) []string {
	var fired []string
	for _, rule := range Rules {
		if rule.Match(r) {
			rule.Apply(r)
			fired = append(fired, rule.Name)
		}
	}
	return fired
}

// Normalize fixes r and title-cases its place if one survived the fix-up
func Normalize(r *Record) []string {
	fired := Fix(r)
	if r.Place != nil {
		r.Place = StringPtr(TitleCasePlace(*r.Place))
	}
	return fired
}

// Apply normalizes every record in place, preserving order
func Apply(records []*Record) []*Record {
	for _, r := range records {
		Normalize(r)
	}
	return records
}

// TitleCasePlace lower-cases s and capitalizes each word. Spaces, hyphens
// and brackets separate words; separators are kept.
func TitleCasePlace(s string) string {
	lower := cases.Lower(language.German).String(s)
	return cases.Title(language.German).String(lower)
}

func equals(s *string, want string) bool {
	return s != nil && *s == want
}

func orNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
