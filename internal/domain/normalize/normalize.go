// Package normalize canonicalizes the free-form strings and dates that feed
// the matching engine.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ISODate is the canonical date layout produced by Date.
const ISODate = "2006-01-02"

// Two-digit years below TwoDigitYearPivot expand to 20YY, the rest to 19YY.
const TwoDigitYearPivot = 69

var twoDigitYear = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{2})$`)

// layouts are tried in order. Zoned layouts keep the calendar date as written.
var layouts = []string{
	ISODate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// String trims surrounding whitespace and lowercases s.
func String(s string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Date renders a date-like value as YYYY-MM-DD.
//
// nil, nil pointers, zero times and blank strings give "". Zoned values keep
// the calendar date as written; there is no conversion to UTC. Strings that
// do not parse as a date come back trimmed but otherwise unchanged, so
// callers can still compare them for exact equality. That includes two-digit
// years naming an impossible day: "99-02-30" stays "99-02-30".
func Date(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case time.Time:
		return formatTime(d)
	case *time.Time:
		if d == nil {
			return ""
		}
		return formatTime(*d)
	case string:
		return dateString(d)
	case *string:
		if d == nil {
			return ""
		}
		return dateString(*d)
	case fmt.Stringer:
		return dateString(d.String())
	default:
		return dateString(fmt.Sprint(d))
	}
}

// ExpandTwoDigitYear rewrites YY-MM-DD into YYYY-MM-DD using TwoDigitYearPivot.
// Any other input is returned as is.
func ExpandTwoDigitYear(s string) string {
	m := twoDigitYear.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	yy, _ := strconv.Atoi(m[1])
	century := 1900
	if yy < TwoDigitYearPivot {
		century = 2000
	}
	return fmt.Sprintf("%04d-%s-%s", century+yy, m[2], m[3])
}

// formatTime keeps the calendar date in t's own location.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ISODate)
}

func dateString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	candidate := ExpandTwoDigitYear(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t.Format(ISODate)
		}
	}
	return s
}
