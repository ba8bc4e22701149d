package model

// GeneralID is the identifier of the always-present category fed by the
// primary inbox fetch.
const GeneralID = "general"

// Email is a display-ready message. It is recreated on every fetch and never
// modified after mapping.
type Email struct {
	// ID is unique within its category (e.g. "g-12").
	ID string `json:"id" yaml:"id"`

	Subject string `json:"subject" yaml:"subject"`
	Sender  string `json:"sender" yaml:"sender"`

	// Snippet is the text shown in the detail view: the backend snippet,
	// or the body when the snippet is empty.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Date is an ISO-8601 timestamp string as received (or the mapping
	// time when the backend sent none).
	Date string `json:"date" yaml:"date"`
}

// Category groups emails under a display name, optionally with a
// markdown summary produced by the analysis backend.
type Category struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Summary string  `json:"summary" yaml:"summary"`
	Emails  []Email `json:"emails" yaml:"emails"`
}

// IsGeneral reports whether c is the general category.
func (c Category) IsGeneral() bool {
	return c.ID == GeneralID
}

// MailData is the full category collection shown by the UI. Category IDs
// are unique at every instant and general, when present, comes first.
type MailData struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// NewGeneralCategory returns the seeded, empty general category.
func NewGeneralCategory() Category {
	return Category{
		ID:     GeneralID,
		Name:   "General",
		Emails: []Email{},
	}
}

// NewMailData returns a collection holding only the empty general category.
func NewMailData() MailData {
	return MailData{Categories: []Category{NewGeneralCategory()}}
}

// Find returns the category with the given ID.
func (d MailData) Find(id string) (Category, bool) {
	for _, c := range d.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// General returns the general category, or a fresh empty one when absent.
func (d MailData) General() Category {
	if c, ok := d.Find(GeneralID); ok {
		return c
	}
	return NewGeneralCategory()
}

// SetGeneralEmails replaces the email list of the general category and
// leaves every other category untouched. The receiver's slice is not
// mutated so earlier copies of MailData stay valid.
func (d MailData) SetGeneralEmails(emails []Email) MailData {
	cats := make([]Category, len(d.Categories))
	copy(cats, d.Categories)
	for i := range cats {
		if cats[i].ID == GeneralID {
			cats[i].Emails = emails
		}
	}
	return MailData{Categories: cats}
}

// ReplaceDynamic swaps every non-general category for dynamic and places
// general first. Categories in dynamic that use the general ID are dropped.
func (d MailData) ReplaceDynamic(dynamic []Category) MailData {
	cats := make([]Category, 0, len(dynamic)+1)
	cats = append(cats, d.General())
	for _, c := range dynamic {
		if c.ID == GeneralID {
			continue
		}
		cats = append(cats, c)
	}
	return MailData{Categories: cats}
}

// RawEmail is an email record as returned by the backend (or an inbox
// source producing the same shape).
type RawEmail struct {
	ID       int64   `json:"id" yaml:"id"`
	ThreadID string  `json:"threadId" yaml:"thread_id"`
	Snippet  string  `json:"snippet" yaml:"snippet"`
	Body     string  `json:"body" yaml:"body"`
	Subject  string  `json:"subject" yaml:"subject"`
	Sender   string  `json:"sender" yaml:"sender"`
	Date     *string `json:"date,omitempty" yaml:"date,omitempty"`
}

// AnalysisBlock is one category of the analysis payload.
type AnalysisBlock struct {
	GlobalSummary string     `json:"global_summary" yaml:"global_summary"`
	Emails        []RawEmail `json:"emails" yaml:"emails"`
	EmailCount    int        `json:"email_count" yaml:"email_count"`
}

// AnalysisEntry pairs a category name with its block, keeping the order
// in which the backend listed the categories.
type AnalysisEntry struct {
	Name  string
	Block AnalysisBlock
}
