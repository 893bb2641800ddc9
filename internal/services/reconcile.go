package services

import (
	"github.com/justsurfingit/vacancy-parser/internal/links"
	"github.com/justsurfingit/vacancy-parser/internal/models"
)

// Reconciled holds the final links and category of a vacancy.
type Reconciled struct {
	ApplyURL   string
	CompanyURL string
	Category   models.Category
}

// Reconcile merges model output with the link heuristics run over raw.
// A channel post is never an apply target, whichever side proposed it.
func Reconcile(c Classification, raw string) Reconciled {
	apply := c.ApplyURL
	if !links.IsAllowedURL(apply) || isPostLink(apply) {
		apply = links.ExtractApplyLink(raw)
	}
	if isPostLink(apply) {
		apply = ""
	}

	company := c.CompanyURL
	if !links.IsWebURL(company) {
		company = links.ExtractCompanyURL(raw, c.CompanyName)
	}

	return Reconciled{
		ApplyURL:   apply,
		CompanyURL: company,
		Category:   models.ParseCategory(c.Category),
	}
}

func isPostLink(u string) bool {
	return u != "" && !links.IsTelegramScheme(u) && links.IsChannelPost(u)
}
