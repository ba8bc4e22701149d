// Package mailmap turns backend records into the display model: emails
// with decoded subjects and a stable recency order, and categories with
// unique identifiers ordered by size.
package mailmap

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/mailai/internal/datefmt"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/textnorm"
)

// EmailIDPrefix namespaces email identifiers.
const EmailIDPrefix = "g-"

// isoLayout matches the millisecond UTC form used for generated dates.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Placeholders are substituted for missing fields.
type Placeholders struct {
	NoSubject string
	NoContent string
	Unknown   string
}

// DefaultPlaceholders returns the Spanish placeholders.
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		NoSubject: "(Sin asunto)",
		NoContent: "(Sin contenido)",
		Unknown:   textnorm.UnknownSender,
	}
}

// Mapper converts backend records using a set of placeholders.
type Mapper struct {
	Placeholders Placeholders
}

// New returns a Mapper with the given placeholders; empty fields take the
// default values.
func New(p Placeholders) Mapper {
	d := DefaultPlaceholders()
	if p.NoSubject == "" {
		p.NoSubject = d.NoSubject
	}
	if p.NoContent == "" {
		p.NoContent = d.NoContent
	}
	if p.Unknown == "" {
		p.Unknown = d.Unknown
	}
	return Mapper{Placeholders: p}
}

var defaultMapper = New(Placeholders{})

// MapEmails maps items with the default placeholders.
func MapEmails(items []model.RawEmail, now time.Time) []model.Email {
	return defaultMapper.MapEmails(items, now)
}

// MapEmails converts raw records into display emails sorted newest first.
// now stands in for missing dates.
func (m Mapper) MapEmails(items []model.RawEmail, now time.Time) []model.Email {
	nowISO := now.UTC().Format(isoLayout)

	emails := make([]model.Email, 0, len(items))
	for _, e := range items {
		emails = append(emails, m.mapEmail(e, nowISO))
	}

	SortEmails(emails)
	return emails
}

func (m Mapper) mapEmail(e model.RawEmail, nowISO string) model.Email {
	subject := m.Placeholders.NoSubject
	if trimmed := textnorm.Trim(e.Subject); trimmed != "" {
		if decoded := textnorm.Trim(textnorm.DecodeEncodedWordString(trimmed)); decoded != "" {
			subject = decoded
		}
	}

	text := textnorm.Trim(e.Snippet)
	if text == "" {
		text = textnorm.Trim(e.Body)
	}
	if text == "" {
		text = m.Placeholders.NoContent
	}

	sender := m.Placeholders.Unknown
	if textnorm.Trim(e.Sender) != "" {
		sender = textnorm.NormalizeSender(e.Sender)
	}

	date := textnorm.TrimPtr(e.Date)
	if date == "" {
		date = nowISO
	}

	return model.Email{
		ID:      EmailIDPrefix + strconv.FormatInt(e.ID, 10),
		Subject: subject,
		Sender:  sender,
		Snippet: text,
		Date:    date,
	}
}

// SortEmails orders emails newest first. When either date of a pair does
// not parse, the pair is ordered by the numeric identifier suffix,
// highest first. The sort is stable.
func SortEmails(emails []model.Email) {
	sort.SliceStable(emails, func(i, j int) bool {
		ti, okI := datefmt.Parse(emails[i].Date)
		tj, okJ := datefmt.Parse(emails[j].Date)
		if okI && okJ {
			return ti.After(tj)
		}
		return idSuffix(emails[i].ID) > idSuffix(emails[j].ID)
	})
}

// idSuffix returns the number after the prefix of id, or 0.
func idSuffix(id string) int64 {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, EmailIDPrefix), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
