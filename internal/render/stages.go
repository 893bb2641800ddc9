package render

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/justsurfingit/vacancy-parser/internal/links"
)

var (
	// Group 1/2: markdown label/url. Group 3/4: anchor href/label.
	anchorSourcePattern = regexp.MustCompile(`(?is)\[([^\]]+)\]\(\s*([^)\s]+)\s*\)|<a\s[^>]*?href\s*=\s*["']([^"']*)["'][^>]*>(.*?)</a>`)
	escapedBreakPattern = regexp.MustCompile(`(?i)&lt;br\s*/?\s*&gt;`)
	// Group 1: bare URL. Group 2/3: mention prefix/username.
	linkifyPattern     = regexp.MustCompile(`(?i)((?:https?|tg)://[^\s<>\x{E000}-\x{E003}]+)|(^|[^\w@/.])@(\w{3,32})\b`)
	boldPattern        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	placeholderPattern = regexp.MustCompile(`\x{E000}(\d+)\x{E001}`)
	linkTokenPattern   = regexp.MustCompile(`\x{E002}(\d+)\x{E003}`)
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
	entityPattern      = regexp.MustCompile(`&#?\w+;`)
)

// ExtractAnchors lifts markdown links and <a> tags out of the text, leaving
// placeholder tokens in encounter order.
func ExtractAnchors(doc *Document) {
	doc.Text = anchorSourcePattern.ReplaceAllStringFunc(doc.Text, func(match string) string {
		m := anchorSourcePattern.FindStringSubmatch(match)

		var rawHref, label string
		if m[2] != "" {
			rawHref, label = m[2], m[1]
		} else {
			rawHref, label = m[3], stripTags(m[4])
		}

		href := ""
		if links.IsAllowedURL(rawHref) {
			href = escapeAttr(strings.TrimSpace(rawHref))
		}
		return doc.addAnchor(href, html.EscapeString(label))
	})
}

// stripTags returns the text content of an HTML fragment.
func stripTags(fragment string) string {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return html.UnescapeString(tagPattern.ReplaceAllString(fragment, ""))
	}
	return strings.TrimSpace(d.Text())
}

// Escape HTML-escapes the whole text. Placeholder tokens pass through untouched.
func Escape(doc *Document) {
	doc.Text = html.EscapeString(doc.Text)
}

// RestoreLineBreaks turns escaped <br> variants from pre-formatted input back
// into newlines.
func RestoreLineBreaks(doc *Document) {
	doc.Text = escapedBreakPattern.ReplaceAllString(doc.Text, "\n")
}

// Linkify makes bare URLs and @mentions clickable, renders **bold** and
// converts newlines to <br>. It runs on escaped text. Generated links are
// held out as tokens while bold is applied so markup never lands in an href.
func Linkify(doc *Document) {
	var generated []string
	text := linkifyPattern.ReplaceAllStringFunc(doc.Text, func(match string) string {
		m := linkifyPattern.FindStringSubmatch(match)
		token := "\uE002" + strconv.Itoa(len(generated)) + "\uE003"
		if m[1] != "" {
			url, rest := splitTrailing(m[1])
			generated = append(generated, linkHTML(url, url))
			return token + rest
		}
		generated = append(generated, linkHTML(links.ProfileURL(m[3]), "@"+m[3]))
		return m[2] + token
	})
	text = boldPattern.ReplaceAllString(text, "<b>$1</b>")
	text = linkTokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		idx, err := strconv.Atoi(linkTokenPattern.FindStringSubmatch(token)[1])
		if err != nil || idx >= len(generated) {
			return ""
		}
		return generated[idx]
	})
	text = strings.ReplaceAll(text, "\r\n", "\n")
	doc.Text = strings.ReplaceAll(text, "\n", "<br>")
}

// splitTrailing separates what the URL pattern swallowed but does not belong
// to the URL: escaped quotes or brackets and trailing sentence punctuation.
func splitTrailing(url string) (string, string) {
	end := len(url)
	for _, stop := range []string{"&#34;", "&#39;", "&quot;", "&lt;", "&gt;"} {
		// The search is bounded by end, so end only ever shrinks to the earliest stop.
		if i := strings.Index(url[:end], stop); i >= 0 {
			end = i
		}
	}
	for end > 0 && strings.ContainsRune(".,:!?)*", rune(url[end-1])) {
		end--
	}
	return url[:end], url[end:]
}

// RestoreAnchors swaps placeholder tokens for the anchors they stand for.
func RestoreAnchors(doc *Document) {
	doc.Text = placeholderPattern.ReplaceAllStringFunc(doc.Text, func(token string) string {
		idx, err := strconv.Atoi(placeholderPattern.FindStringSubmatch(token)[1])
		if err != nil || idx >= len(doc.Anchors) {
			return ""
		}
		return doc.Anchors[idx].HTML()
	})
}

// HighlightKeyword wraps case-insensitive matches of the keyword in text
// outside of tags. Entities are never split.
func HighlightKeyword(doc *Document) {
	keyword := strings.TrimSpace(doc.Keyword)
	if keyword == "" {
		return
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(html.EscapeString(keyword)))
	if err != nil {
		return
	}

	var b strings.Builder
	last := 0
	for _, tag := range tagPattern.FindAllStringIndex(doc.Text, -1) {
		b.WriteString(highlightSegment(doc.Text[last:tag[0]], re))
		b.WriteString(doc.Text[tag[0]:tag[1]])
		last = tag[1]
	}
	b.WriteString(highlightSegment(doc.Text[last:], re))
	doc.Text = b.String()
}

func highlightSegment(seg string, re *regexp.Regexp) string {
	if seg == "" {
		return seg
	}
	entities := entityPattern.FindAllStringIndex(seg, -1)

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(seg, -1) {
		if splitsEntity(m, entities) {
			continue
		}
		b.WriteString(seg[last:m[0]])
		b.WriteString(`<span class="` + HighlightClass + `">`)
		b.WriteString(seg[m[0]:m[1]])
		b.WriteString(`</span>`)
		last = m[1]
	}
	b.WriteString(seg[last:])
	return b.String()
}

func splitsEntity(match []int, entities [][]int) bool {
	for _, e := range entities {
		overlaps := match[0] < e[1] && e[0] < match[1]
		contains := match[0] <= e[0] && match[1] >= e[1]
		if overlaps && !contains {
			return true
		}
	}
	return false
}
