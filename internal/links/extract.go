package links

import (
	"regexp"
	"strings"
)

var (
	markdownTargetPattern = regexp.MustCompile(`\[[^\]]*\]\(\s*([^)\s]+)\s*\)`)
	anchorHrefPattern     = regexp.MustCompile(`(?i)<a\s[^>]*?href\s*=\s*["']([^"']*)["']`)
	bareURLPattern        = regexp.MustCompile(`(?i)(?:https?|tg)://[^\s<>"'()\[\]]+`)
	// The leading group stands in for a lookbehind: a mention must not be
	// glued to a word, a path or an e-mail local part.
	mentionPattern = regexp.MustCompile(`(^|[^\w@/.])@(\w{3,32})\b`)

	zeroWidthReplacer = strings.NewReplacer(
		"\u200b", "", "\u200c", "", "\u200d", "", "\u2060", "", "\ufeff", "",
		"\uff08", "(", "\uff09", ")", "\uff3b", "[", "\uff3d", "]",
	)
)

// trailingPunct is stripped from bare URLs that end a sentence.
const trailingPunct = ".,;:!?*"

// applyPatterns are tried in order; the first candidate matching the
// earliest pattern wins.
var applyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^https?://(?:www\.)?forms\.gle/`),
	regexp.MustCompile(`(?i)^https?://docs\.google\.com/forms/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?typeform\.com/`),
	regexp.MustCompile(`(?i)^https?://(?:www\.)?tally\.so/`),
	regexp.MustCompile(`(?i)^https?://forms\.yandex\.(?:ru|com)/`),
	regexp.MustCompile(`(?i)^https?://(?:www\.)?airtable\.com/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?jotform\.com/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?greenhouse\.io/`),
	regexp.MustCompile(`(?i)^https?://(?:jobs\.)?lever\.co/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?ashbyhq\.com/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?workable\.com/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?smartrecruiters\.com/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?huntflow\.(?:ru|io)/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?hh\.ru/`),
	regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?notion\.(?:site|so)/`),
}

// companyDenylist holds domains that never identify the hiring company.
var companyDenylist = []string{
	"t.me", "telegram.me", "telegram.org", "wa.me", "whatsapp.com",
	"apps.apple.com", "play.google.com",
	"forms.gle", "docs.google.com", "typeform.com", "tally.so", "forms.yandex.ru",
	"airtable.com", "jotform.com",
	"greenhouse.io", "lever.co", "ashbyhq.com", "workable.com", "smartrecruiters.com",
	"huntflow.ru", "huntflow.io", "hh.ru", "notion.site", "notion.so",
}

// Normalize drops zero-width characters and maps fullwidth brackets to ASCII
// so link boundaries survive copy-paste artifacts.
func Normalize(text string) string {
	return zeroWidthReplacer.Replace(text)
}

// Candidates returns every link in text: markdown targets, then anchor
// hrefs, then bare URLs.
func Candidates(text string) []string {
	text = Normalize(text)

	var out []string
	for _, m := range markdownTargetPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	for _, m := range anchorHrefPattern.FindAllStringSubmatch(text, -1) {
		if href := strings.TrimSpace(m[1]); href != "" {
			out = append(out, href)
		}
	}
	for _, m := range bareURLPattern.FindAllString(text, -1) {
		if u := strings.TrimRight(m, trailingPunct); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Mentions returns the @usernames in text in order of appearance, without "@".
func Mentions(text string) []string {
	var out []string
	for _, m := range mentionPattern.FindAllStringSubmatch(Normalize(text), -1) {
		out = append(out, m[2])
	}
	return out
}

// ExtractApplyLink picks the single best link for applying to the vacancy.
func ExtractApplyLink(text string) string {
	candidates := Candidates(text)

	// --- RULE 1: known application surfaces, in priority order ---
	for _, p := range applyPatterns {
		for _, c := range candidates {
			if p.MatchString(c) {
				return c
			}
		}
	}

	// --- RULE 2: a Telegram contact, never a channel post ---
	for _, c := range candidates {
		if IsTelegramScheme(c) && IsAllowedURL(c) {
			return c
		}
		if isTelegramLink(c) && !IsChannelPost(c) {
			return c
		}
	}

	// --- RULE 3: the first @mention ---
	if mentions := Mentions(text); len(mentions) > 0 {
		return ProfileURL(mentions[0])
	}

	// --- RULE 4: anything usable ---
	for _, c := range candidates {
		if IsAllowedURL(c) && !IsChannelPost(c) {
			return c
		}
	}
	return ""
}

// ExtractCompanyURL picks the company website. companyName, when given,
// steers the choice towards a host that contains its first word.
func ExtractCompanyURL(text, companyName string) string {
	var sites []string
	for _, c := range Candidates(text) {
		if !IsWebURL(c) || isDenied(hostname(c)) {
			continue
		}
		sites = append(sites, c)
	}
	if len(sites) == 0 {
		return ""
	}

	if fields := strings.Fields(strings.ToLower(companyName)); len(fields) > 0 {
		token := fields[0]
		for _, s := range sites {
			if strings.Contains(hostname(s), token) {
				return s
			}
		}
	}
	return sites[0]
}

func isDenied(host string) bool {
	if host == "" {
		return true
	}
	for _, d := range companyDenylist {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
