// Package render turns raw vacancy text into display HTML that is safe to
// inject into a page: every literal character is escaped and the only
// markup in the output is the markup this package writes itself.
package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// Placeholder delimiters come from the Unicode private use area and are
// stripped from input, so a token can never collide with user text.
const (
	placeholderOpen  = "\uE000"
	placeholderClose = "\uE001"
)

// HighlightClass is the CSS class of keyword highlight spans.
const HighlightClass = "highlight"

// Anchor is a link lifted out of the text before escaping.
type Anchor struct {
	Index int
	// Href is empty when the original scheme was not allowed.
	Href string
	// Label is already HTML-escaped.
	Label string
}

// Token returns the placeholder that stands in for the anchor.
func (a Anchor) Token() string {
	return placeholderOpen + strconv.Itoa(a.Index) + placeholderClose
}

// HTML returns the anchor as markup, or just its label when there is no href.
func (a Anchor) HTML() string {
	if a.Href == "" {
		return a.Label
	}
	return linkHTML(a.Href, a.Label)
}

// Document is the intermediate representation passed between stages.
type Document struct {
	Text    string
	Anchors []Anchor
	Keyword string
}

func (d *Document) addAnchor(href, label string) string {
	a := Anchor{Index: len(d.Anchors), Href: href, Label: label}
	d.Anchors = append(d.Anchors, a)
	return a.Token()
}

// Stage transforms a document in place.
type Stage func(doc *Document)

// DefaultStages is the rendering pipeline in the order it must run.
// Highlighting is last so it only ever sees finished HTML.
func DefaultStages() []Stage {
	return []Stage{
		StripPlaceholderRunes,
		ExtractAnchors,
		Escape,
		RestoreLineBreaks,
		Linkify,
		RestoreAnchors,
		HighlightKeyword,
	}
}

// Renderer runs a fixed list of stages.
type Renderer struct {
	stages []Stage
}

// New returns a renderer running stages, or DefaultStages when none are given.
func New(stages ...Stage) *Renderer {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	return &Renderer{stages: stages}
}

// Render converts raw text into safe HTML, highlighting keyword if non-empty.
func (r *Renderer) Render(raw, keyword string) string {
	doc := &Document{Text: raw, Keyword: keyword}
	for _, stage := range r.stages {
		stage(doc)
	}
	return doc.Text
}

func linkHTML(href, label string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, href, label)
}

// escapeAttr escapes href for use inside a double-quoted attribute.
// Text that was already escaped by Escape must not go through it again.
func escapeAttr(href string) string {
	return html.EscapeString(href)
}

// StripPlaceholderRunes removes placeholder delimiters from the input.
func StripPlaceholderRunes(doc *Document) {
	doc.Text = strings.NewReplacer(placeholderOpen, "", placeholderClose, "").Replace(doc.Text)
}
