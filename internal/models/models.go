package models

import (
	"strings"
	"time"
)

// Category is the closed set of fit buckets a vacancy can land in.
type Category string

const (
	CategoryDefinitelyFits Category = "definitely fits"
	CategoryMaybeFits      Category = "maybe fits"
	CategoryDoesNotFit     Category = "does not fit"
)

// Markers the classifier is asked to answer with. They are matched as
// substrings of the upper-cased answer; "does not fit" is checked first so
// that "definitely does not fit" never lands in the wrong bucket.
const (
	MarkerDoesNotFit     = "DOES NOT FIT"
	MarkerMaybeFits      = "MAYBE FITS"
	MarkerDefinitelyFits = "DEFINITELY FITS"
)

// ParseCategory maps free-form model output onto a Category. Anything it
// cannot recognise is CategoryDoesNotFit.
func ParseCategory(raw string) Category {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, MarkerDoesNotFit):
		return CategoryDoesNotFit
	case strings.Contains(upper, MarkerMaybeFits):
		return CategoryMaybeFits
	case strings.Contains(upper, MarkerDefinitelyFits):
		return CategoryDefinitelyFits
	default:
		return CategoryDoesNotFit
	}
}

// StatusNew is the moderation status of a freshly ingested vacancy.
const StatusNew = "new"

// NotSpecified fills descriptive fields the classifier left out.
const NotSpecified = "not specified"

// MaxMessageLinkLength matches the size of the message_link column.
const MaxMessageLinkLength = 512

type Vacancy struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// MessageLink is the natural key. NULL for submissions without a link,
	// which the unique index lets repeat.
	MessageLink *string `gorm:"uniqueIndex;size:512" json:"message_link"`

	Text     string    `gorm:"type:text;not null" json:"text"`
	HTML     string    `gorm:"type:text" json:"html"`
	Channel  string    `json:"channel"`
	Keyword  string    `json:"keyword"`
	HasImage bool      `json:"has_image"`
	PostedAt time.Time `json:"posted_at"`
	Status   string    `gorm:"default:'new';index" json:"status"`

	Category       Category `gorm:"index" json:"category"`
	Reason         string   `gorm:"type:text" json:"reason"`
	ApplyURL       string   `json:"apply_url"`
	CompanyURL     string   `json:"company_url"`
	CompanyName    string   `json:"company_name"`
	Skills         []string `gorm:"serializer:json" json:"skills"`
	EmploymentType string   `json:"employment_type"`
	WorkFormat     string   `json:"work_format"`
	Salary         string   `json:"salary_display_text"`
	Industry       string   `json:"industry"`
}

// LinkKey returns the message link or "" when the vacancy has none.
func (v *Vacancy) LinkKey() string {
	if v.MessageLink == nil {
		return ""
	}
	return *v.MessageLink
}
