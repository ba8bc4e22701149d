// Package datefmt parses the loosely formatted timestamps sent by the
// backend and renders them in a locale medium-date, short-time style.
package datefmt

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Invalid is shown for timestamps that cannot be parsed.
const Invalid = "—"

// layouts are tried in order by Parse.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Parse interprets s as a timestamp. Date-only and zone-less forms are
// read as UTC. Mail-style dates (RFC 5322) are accepted too.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if t, err := mail.ParseDate(s); err == nil {
		return t, true
	}

	return time.Time{}, false
}

var supported = []language.Tag{
	language.Spanish,
	language.English,
}

var matcher = language.NewMatcher(supported)

// monthAbbrev holds the medium-style month names per base language.
var monthAbbrev = map[string][12]string{
	"es": {"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// Formatter renders timestamps for one locale and time zone.
type Formatter struct {
	lang     string
	location *time.Location
}

// New returns a Formatter for the closest supported match of locale
// (e.g. "es-ES", "en_US", "pt" → "es"). A nil location means time.Local.
func New(locale string, location *time.Location) Formatter {
	if location == nil {
		location = time.Local
	}
	return Formatter{
		lang:     matchLanguage(locale),
		location: location,
	}
}

// matchLanguage maps a locale string onto a supported base language.
func matchLanguage(locale string) string {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "es"
	}
	_, idx, _ := matcher.Match(tag)
	base, _ := supported[idx].Base()
	return base.String()
}

// Language returns the base language the formatter renders in.
func (f Formatter) Language() string {
	return f.lang
}

// Format renders iso as a medium date with a short time, or Invalid when
// it cannot be parsed.
func (f Formatter) Format(iso string) string {
	t, ok := Parse(iso)
	if !ok {
		return Invalid
	}
	return f.FormatTime(t)
}

// FormatTime renders t in the formatter's locale and zone.
func (f Formatter) FormatTime(t time.Time) string {
	t = t.In(f.location)
	months, ok := monthAbbrev[f.lang]
	if !ok {
		months = monthAbbrev["es"]
	}
	month := months[t.Month()-1]

	switch f.lang {
	case "en":
		return fmt.Sprintf("%s %d, %d, %s", month, t.Day(), t.Year(), t.Format("3:04 PM"))
	default:
		return fmt.Sprintf("%d %s %d, %d:%02d", t.Day(), month, t.Year(), t.Hour(), t.Minute())
	}
}
