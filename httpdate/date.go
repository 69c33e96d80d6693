// Package httpdate parses and formats the legacy date encodings found in
// HTTP headers such as Expires and Set-Cookie.
//
// Parsing is lenient: a value is tried against an ordered list of grammars
// and the first one that consumes the whole string wins. Failure is reported
// through a boolean, never through an error, so callers decide whether an
// unparseable date is fatal.
package httpdate

import (
	"strings"
	"time"
)

// TimeFormat is the canonical RFC 1123 rendering used by FormatDate.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Grammar is one date encoding. Layouts are tried in order with
// time.ParseInLocation.
type Grammar struct {
	Name    string
	Layouts []string
	// TwoDigitYear marks layouts whose year is written as two digits.
	// Such years always land in 20xx.
	TwoDigitYear bool
}

var (
	// RFC1123 is "Sun, 06 Nov 1994 08:49:37 GMT". The full weekday name is
	// tolerated and the zone may be named or numeric.
	RFC1123 = Grammar{
		Name: "rfc1123",
		Layouts: []string{
			"Mon, 2 Jan 2006 15:04:05 MST",
			"Monday, 2 Jan 2006 15:04:05 MST",
			"Mon, 2 Jan 2006 15:04:05 -0700",
			"Monday, 2 Jan 2006 15:04:05 -0700",
		},
	}

	// RFC1036 is "Sunday, 06-Nov-94 08:49:37 GMT".
	RFC1036 = Grammar{
		Name: "rfc1036",
		Layouts: []string{
			"Monday, 2-Jan-06 15:04:05 MST",
			"Mon, 2-Jan-06 15:04:05 MST",
			"Monday, 2-Jan-06 15:04:05 -0700",
			"Mon, 2-Jan-06 15:04:05 -0700",
		},
		TwoDigitYear: true,
	}

	// RFC1036Long covers the Netscape variant with a four-digit year,
	// "Sun, 06-Nov-1994 08:49:37 GMT".
	RFC1036Long = Grammar{
		Name: "rfc1036-long",
		Layouts: []string{
			"Mon, 2-Jan-2006 15:04:05 MST",
			"Monday, 2-Jan-2006 15:04:05 MST",
		},
	}

	// ANSIC is the asctime() format "Sun Nov  6 08:49:37 1994", read as GMT.
	ANSIC = Grammar{
		Name:    "asctime",
		Layouts: []string{"Mon Jan _2 15:04:05 2006"},
	}
)

// Grammars is the fallback chain used by ParseDate, most common first.
var Grammars = []Grammar{RFC1123, RFC1036, RFC1036Long, ANSIC}

// zoneOffsets lists the zone names accepted in place of a numeric offset,
// in seconds east of UTC. These are the RFC 822 names that time.Parse can
// read; military single-letter zones are not.
var zoneOffsets = map[string]int{
	"GMT": 0,
	"UTC": 0,
	"EST": -5 * 3600,
	"EDT": -4 * 3600,
	"CST": -6 * 3600,
	"CDT": -5 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
}

// Match parses s with the grammar's layouts. The result is in UTC.
func (g Grammar) Match(s string) (time.Time, bool) {
	for _, layout := range g.Layouts {
		// Parsing in UTC keeps the host's local zone out of abbreviation
		// lookup; every name comes back with a zero offset.
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "MST") {
			name, _ := t.Zone()
			off, ok := zoneOffsets[name]
			if !ok {
				continue
			}
			t = time.Date(t.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.FixedZone(name, off))
		}
		if g.TwoDigitYear && t.Year() < 2000 {
			// time.Parse pivots 69-99 into the 1900s
			t = time.Date(t.Year()+100, t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, t.Location())
		}
		return t.UTC().Truncate(time.Second), true
	}
	return time.Time{}, false
}

// ParseDate parses text with each grammar in Grammars. One pair of matching
// single or double quotes around the value is removed first. An empty value
// never matches.
func ParseDate(text string) (time.Time, bool) {
	s := unquote(strings.TrimSpace(text))
	if s == "" {
		return time.Time{}, false
	}
	for _, g := range Grammars {
		if t, ok := g.Match(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDatePtr is ParseDate for an optional value; nil never matches.
func ParseDatePtr(text *string) (time.Time, bool) {
	if text == nil {
		return time.Time{}, false
	}
	return ParseDate(*text)
}

// FormatDate renders t in TimeFormat. Sub-second precision is dropped.
func FormatDate(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
