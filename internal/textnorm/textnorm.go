// Package textnorm cleans up header strings coming from the backend:
// MIME encoded-word decoding, sender cleanup and slug generation.
package textnorm

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/emersion/go-message/charset"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownSender is returned by NormalizeSender for empty input.
const UnknownSender = "Desconocido"

// DecodeStatus tells callers what DecodeEncodedWord did with its input.
type DecodeStatus int

const (
	// Unchanged means the input held no encoded word.
	Unchanged DecodeStatus = iota
	// Decoded means every encoded word was replaced by its text.
	Decoded
	// FellBack means decoding failed and the input is returned as is.
	FellBack
)

func (s DecodeStatus) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Decoded:
		return "decoded"
	case FellBack:
		return "fell back"
	default:
		return "unknown"
	}
}

// DecodeResult is the outcome of DecodeEncodedWord.
type DecodeResult struct {
	Text   string
	Status DecodeStatus

	// Err is set when Status is FellBack.
	Err error
}

var encodedWordPattern = regexp.MustCompile(`=\?([^?]+)\?([QBqb])\?([^?]+)\?=`)

var (
	qHexPattern     = regexp.MustCompile(`=([0-9A-Fa-f]{2})`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	nonSlugRun      = regexp.MustCompile(`[^a-z0-9]+`)
	diacriticsStrip = runes.Remove(runes.In(unicode.Mn))
)

// Trim returns s without surrounding whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// TrimPtr is Trim for optional values; nil yields "".
func TrimPtr(s *string) string {
	if s == nil {
		return ""
	}
	return Trim(*s)
}

// DecodeEncodedWord replaces every =?charset?Q|B?data?= sequence in s with
// its decoded text. Unknown charsets are decoded as UTF-8. If any word
// fails to decode, the whole input is returned unchanged.
func DecodeEncodedWord(s string) DecodeResult {
	matches := encodedWordPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return DecodeResult{Text: s, Status: Unchanged}
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		cs := s[m[2]:m[3]]
		enc := s[m[4]:m[5]]
		data := s[m[6]:m[7]]

		text, err := decodeWord(cs, enc, data)
		if err != nil {
			return DecodeResult{Text: s, Status: FellBack, Err: err}
		}

		out.WriteString(s[last:m[0]])
		out.WriteString(text)
		last = m[1]
	}
	out.WriteString(s[last:])

	return DecodeResult{Text: out.String(), Status: Decoded}
}

// DecodeEncodedWordString is DecodeEncodedWord for callers that only want
// the text.
func DecodeEncodedWordString(s string) string {
	return DecodeEncodedWord(s).Text
}

// decodeWord decodes a single encoded word payload.
func decodeWord(cs, enc, data string) (string, error) {
	var raw []byte
	var err error

	if strings.EqualFold(enc, "B") {
		raw, err = decodeB(data)
	} else {
		raw, err = decodeQ(data)
	}
	if err != nil {
		return "", err
	}

	return decodeCharset(strings.ToLower(cs), raw), nil
}

// decodeB decodes base64 data, tolerating embedded whitespace and
// missing padding.
func decodeB(data string) ([]byte, error) {
	clean := whitespaceRun.ReplaceAllString(data, "")
	raw, err := base64.StdEncoding.DecodeString(clean)
	if err == nil {
		return raw, nil
	}
	raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
	if rawErr != nil {
		return nil, fmt.Errorf("decoding base64 word: %w", err)
	}
	return raw, nil
}

// decodeQ decodes the Q encoding: "_" is a space and =HH is a byte.
func decodeQ(data string) ([]byte, error) {
	spaced := strings.ReplaceAll(data, "_", " ")

	var buf bytes.Buffer
	last := 0
	for _, m := range qHexPattern.FindAllStringSubmatchIndex(spaced, -1) {
		buf.WriteString(spaced[last:m[0]])
		b, err := strconv.ParseUint(spaced[m[2]:m[3]], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("decoding quoted byte %q: %w", spaced[m[0]:m[1]], err)
		}
		buf.WriteByte(byte(b))
		last = m[1]
	}
	buf.WriteString(spaced[last:])

	return buf.Bytes(), nil
}

// decodeCharset converts raw from the named charset to UTF-8, falling
// back to UTF-8 when the charset is unknown or the conversion fails.
func decodeCharset(cs string, raw []byte) string {
	r, err := charset.Reader(cs, bytes.NewReader(raw))
	if err == nil {
		if decoded, readErr := io.ReadAll(r); readErr == nil {
			return strings.ToValidUTF8(string(decoded), "�")
		}
	}
	return strings.ToValidUTF8(string(raw), "�")
}

// NormalizeSender trims s and strips one surrounding pair of double
// quotes. Empty input yields UnknownSender.
func NormalizeSender(s string) string {
	s = Trim(s)
	if s == "" {
		return UnknownSender
	}
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

// Slugify turns a display name into a lowercase, hyphen-separated ASCII
// identifier. The result may be empty.
func Slugify(name string) string {
	lowered := strings.ToLower(name)

	t := transform.Chain(norm.NFD, diacriticsStrip, norm.NFC)
	stripped, _, err := transform.String(t, lowered)
	if err != nil {
		stripped = lowered
	}

	slug := nonSlugRun.ReplaceAllString(stripped, "-")
	return strings.Trim(slug, "-")
}
