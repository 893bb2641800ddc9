package links_test

import (
	"testing"

	"github.com/justsurfingit/vacancy-parser/internal/links"
	"github.com/stretchr/testify/assert"
)

func TestExtractApplyLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "channel post alone is never an apply link",
			text: "Details: https://t.me/channel/123",
			want: "",
		},
		{
			name: "channel post plus mention falls back to the profile",
			text: "Details: https://t.me/channel/123\nWrite to @hr_manager",
			want: "https://t.me/hr_manager",
		},
		{
			name: "form builder beats everything listed before it",
			text: "Site https://acme.io, DM https://t.me/recruiter or [apply](https://forms.gle/abc)",
			want: "https://forms.gle/abc",
		},
		{
			name: "earlier pattern wins over earlier candidate",
			text: "https://jobs.lever.co/acme/1 or https://docs.google.com/forms/d/xyz/viewform",
			want: "https://docs.google.com/forms/d/xyz/viewform",
		},
		{
			name: "anchor tag href is a candidate",
			text: `Apply <a href="https://boards.greenhouse.io/acme/jobs/42">here</a>`,
			want: "https://boards.greenhouse.io/acme/jobs/42",
		},
		{
			name: "telegram contact link",
			text: "Резюме: https://t.me/anna_hr.",
			want: "https://t.me/anna_hr",
		},
		{
			name: "tg scheme link",
			text: "[написать](tg://resolve?domain=anna_hr)",
			want: "tg://resolve?domain=anna_hr",
		},
		{
			name: "mention scenario",
			text: "Looking for React dev, contact @hr_co",
			want: "https://t.me/hr_co",
		},
		{
			name: "e-mail is not a mention",
			text: "Send CV to jobs@acme.io",
			want: "",
		},
		{
			name: "last resort is the first usable link",
			text: "More at https://acme.io/careers/backend.",
			want: "https://acme.io/careers/backend",
		},
		{
			name: "zero width characters do not break the link",
			text: "Apply: https://forms.gle/\u200babc",
			want: "https://forms.gle/abc",
		},
		{
			name: "fullwidth parentheses in markdown",
			text: "[Apply]\uff08https://tally.so/r/xyz\uff09",
			want: "https://tally.so/r/xyz",
		},
		{
			name: "nothing at all",
			text: "No links here",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, links.ExtractApplyLink(tt.text))
		})
	}
}

func TestExtractCompanyURL(t *testing.T) {
	t.Parallel()

	text := "Apply https://forms.gle/x, chat https://t.me/hr, blog https://medium.com/acme, site https://www.acme-labs.io/about"

	assert.Equal(t, "https://www.acme-labs.io/about", links.ExtractCompanyURL(text, "Acme Labs"))
	assert.Equal(t, "https://medium.com/acme", links.ExtractCompanyURL(text, ""))
	assert.Equal(t, "https://medium.com/acme", links.ExtractCompanyURL(text, "Globex"))
	assert.Equal(t, "https://hp.com/careers",
		links.ExtractCompanyURL("Blog https://medium.com/x, site https://hp.com/careers", "HP Inc"))
	assert.Equal(t, "", links.ExtractCompanyURL("only https://t.me/hr and tg://resolve?domain=x", "Acme"))
}

func TestCandidatesOrder(t *testing.T) {
	t.Parallel()

	text := `bare https://c.io first, <a href="https://b.io">b</a>, then [a](https://a.io)`
	got := links.Candidates(text)

	// markdown targets, anchor hrefs, then bare URLs
	assert.Equal(t, []string{"https://a.io", "https://b.io", "https://c.io", "https://b.io", "https://a.io"}, got)
}

func TestIsChannelPost(t *testing.T) {
	t.Parallel()

	assert.True(t, links.IsChannelPost("https://t.me/channel/123"))
	assert.True(t, links.IsChannelPost("http://telegram.me/jobs_it/9?single"))
	assert.True(t, links.IsChannelPost("https://t.me/c/1234567/89"))
	assert.False(t, links.IsChannelPost("https://t.me/hr_manager"))
	assert.False(t, links.IsChannelPost("https://acme.io/channel/123"))
}

func TestURLPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, links.IsAllowedURL("tg://resolve?domain=x"))
	assert.True(t, links.IsAllowedURL("https://acme.io"))
	assert.False(t, links.IsAllowedURL("javascript:alert(1)"))
	assert.False(t, links.IsAllowedURL("ftp://acme.io"))
	assert.False(t, links.IsAllowedURL("not a url"))

	assert.True(t, links.IsWebURL("http://acme.io"))
	assert.False(t, links.IsWebURL("tg://resolve?domain=x"))
}

func TestMentions(t *testing.T) {
	t.Parallel()

	got := links.Mentions("@first, see medium.com/@author and mail a@b.io or @second_one! @ab")
	assert.Equal(t, []string{"first", "second_one"}, got)
}
