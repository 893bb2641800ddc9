package models_test

import (
	"testing"

	"github.com/justsurfingit/vacancy-parser/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := map[string]models.Category{
		"DEFINITELY FITS":                     models.CategoryDefinitelyFits,
		"definitely fits: strong React match": models.CategoryDefinitelyFits,
		"Maybe fits":                          models.CategoryMaybeFits,
		"does not fit":                        models.CategoryDoesNotFit,
		"definitely does not fit":             models.CategoryDoesNotFit,
		"":                                    models.CategoryDoesNotFit,
		"great vacancy!":                      models.CategoryDoesNotFit,
	}

	for in, want := range tests {
		assert.Equal(t, want, models.ParseCategory(in), "input %q", in)
	}
}

func TestVacancyLinkKey(t *testing.T) {
	t.Parallel()

	link := "https://t.me/jobs/1"
	assert.Equal(t, link, (&models.Vacancy{MessageLink: &link}).LinkKey())
	assert.Equal(t, "", (&models.Vacancy{}).LinkKey())
}
