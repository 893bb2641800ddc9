package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/justsurfingit/vacancy-parser/internal/apperr"
	"github.com/justsurfingit/vacancy-parser/internal/dtos"
	"github.com/justsurfingit/vacancy-parser/internal/links"
	"github.com/justsurfingit/vacancy-parser/internal/logger"
	"github.com/justsurfingit/vacancy-parser/internal/models"
	"github.com/justsurfingit/vacancy-parser/internal/render"
)

// DefaultMaxTextLength is the longest accepted vacancy text, in runes.
const DefaultMaxTextLength = 4000

var (
	ErrTextRequired = errors.New("text is required")
	ErrTextTooLong  = errors.New("text is too long")
	ErrLinkTooLong  = errors.New("message_link is too long")
)

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"}

// Classifier turns raw vacancy text into a Classification.
type Classifier interface {
	Classify(ctx context.Context, raw string) (Classification, error)
}

// VacancyStore persists vacancies.
type VacancyStore interface {
	Insert(ctx context.Context, v *models.Vacancy) (*models.Vacancy, error)
	Upsert(ctx context.Context, v *models.Vacancy) (*models.Vacancy, error)
}

// Submission is a validated, sanitized VacancySubmission.
type Submission struct {
	Text        string
	Channel     string
	Keyword     string
	HasImage    bool
	PostedAt    time.Time
	MessageLink string
}

type VacancyService struct {
	store         VacancyStore
	classifier    Classifier
	renderer      *render.Renderer
	maxTextLength int
	now           func() time.Time
}

type VacancyOption func(*VacancyService)

func WithMaxTextLength(n int) VacancyOption {
	return func(s *VacancyService) {
		if n > 0 {
			s.maxTextLength = n
		}
	}
}

func WithClock(now func() time.Time) VacancyOption {
	return func(s *VacancyService) { s.now = now }
}

func NewVacancyService(store VacancyStore, classifier Classifier, opts ...VacancyOption) *VacancyService {
	s := &VacancyService{
		store:         store,
		classifier:    classifier,
		renderer:      render.New(),
		maxTextLength: DefaultMaxTextLength,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process runs one submission through validation, rendering, link
// extraction, classification and persistence. Nothing is stored unless
// classification succeeds.
func (s *VacancyService) Process(ctx context.Context, req *dtos.VacancySubmission) (*models.Vacancy, error) {
	log := logger.FromContext(ctx)

	sub, err := s.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	html := s.renderer.Render(sub.Text, sub.Keyword)

	cls, err := s.classifier.Classify(ctx, sub.Text)
	if err != nil {
		return nil, err
	}
	rec := Reconcile(cls, sub.Text)

	v := &models.Vacancy{
		Text:           sub.Text,
		HTML:           html,
		Channel:        sub.Channel,
		Keyword:        sub.Keyword,
		HasImage:       sub.HasImage,
		PostedAt:       sub.PostedAt,
		Status:         models.StatusNew,
		Category:       rec.Category,
		Reason:         cls.Reason,
		ApplyURL:       rec.ApplyURL,
		CompanyURL:     rec.CompanyURL,
		CompanyName:    cls.CompanyName,
		Skills:         cls.Skills,
		EmploymentType: cls.EmploymentType,
		WorkFormat:     cls.WorkFormat,
		Salary:         cls.Salary,
		Industry:       cls.Industry,
	}

	var saved *models.Vacancy
	if sub.MessageLink == "" {
		saved, err = s.store.Insert(ctx, v)
	} else {
		link := sub.MessageLink
		v.MessageLink = &link
		saved, err = s.store.Upsert(ctx, v)
	}
	if err != nil {
		return nil, apperr.Persistence("save vacancy", err)
	}

	log.Info("Vacancy stored",
		logger.Uint("id", saved.ID),
		logger.String("channel", saved.Channel),
		logger.String("category", string(saved.Category)),
		logger.String("apply_url", saved.ApplyURL),
	)
	return saved, nil
}

// Validate sanitizes req and checks it against the submission rules.
func (s *VacancyService) Validate(ctx context.Context, req *dtos.VacancySubmission) (Submission, error) {
	if req == nil {
		return Submission{}, apperr.Validation("validate submission", ErrTextRequired)
	}

	text := Sanitize(req.Text)
	if text == "" {
		return Submission{}, apperr.Validation("validate submission", ErrTextRequired)
	}
	if n := utf8.RuneCountInString(text); n > s.maxTextLength {
		return Submission{}, apperr.Validation("validate submission",
			fmt.Errorf("%w: %d characters, limit %d", ErrTextTooLong, n, s.maxTextLength))
	}

	link := strings.TrimSpace(req.MessageLink)
	if n := len(link); n > models.MaxMessageLinkLength {
		return Submission{}, apperr.Validation("validate submission",
			fmt.Errorf("%w: %d bytes, limit %d", ErrLinkTooLong, n, models.MaxMessageLinkLength))
	}
	if link != "" && !links.IsWebURL(link) {
		logger.FromContext(ctx).Warn("Dropping invalid message link", logger.String("message_link", link))
		link = ""
	}

	return Submission{
		Text:        text,
		Channel:     strings.TrimSpace(Sanitize(req.Channel)),
		Keyword:     strings.TrimSpace(Sanitize(req.Keyword)),
		HasImage:    req.HasImage,
		PostedAt:    s.parseTimestamp(req.Timestamp),
		MessageLink: link,
	}, nil
}

func (s *VacancyService) parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return s.now().UTC()
}

// Sanitize removes NUL and other control characters except tab, newline,
// vertical tab, form feed and carriage return, then trims surrounding space.
func Sanitize(text string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !strings.ContainsRune("\t\n\v\f\r", r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(clean)
}
