package email

import "time"

// Envelope holds the parsed envelope data from an IMAP message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	UID       uint32
}

// ParsedMessage holds the envelope and the readable bodies of a message.
type ParsedMessage struct {
	Envelope Envelope
	TextBody string
	HTMLBody string
}
