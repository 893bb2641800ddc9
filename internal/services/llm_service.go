package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/justsurfingit/vacancy-parser/internal/apperr"
	"github.com/justsurfingit/vacancy-parser/internal/llm"
	"github.com/justsurfingit/vacancy-parser/internal/logger"
	"github.com/justsurfingit/vacancy-parser/internal/metrics"
	"github.com/justsurfingit/vacancy-parser/internal/models"
	"github.com/justsurfingit/vacancy-parser/internal/retry"
)

// MaxSkills bounds the skills list kept from the model.
const MaxSkills = 10

const classificationPrompt = `You are an expert Job Data Extraction Agent. You receive one vacancy post from a Telegram channel and decide whether it fits a frontend / JavaScript / React developer.

### INSTRUCTIONS:
1. **Analyze** the post and identify the core job details.
2. **Ignore** channel signatures, hashtags and advertisements that are not part of the vacancy.
3. **Extract** the fields below strictly. Do not hallucinate or guess.
4. **Format** the output as one valid JSON object only. Do not wrap it in markdown code blocks.

### OUTPUT SCHEMA:
{
    "category": "exactly one of: DEFINITELY FITS, MAYBE FITS, DOES NOT FIT",
    "reason": "one or two sentences explaining the category",
    "apply_url": "the URL or t.me contact a candidate should use to apply, or empty string",
    "company_url": "the company's website, or empty string",
    "company_name": "the hiring company's name, or empty string",
    "skills": ["up to 10 technologies mentioned, most important first"],
    "employment_type": "full-time, part-time, contract, internship, or not specified",
    "work_format": "remote, office, hybrid, or not specified",
    "salary_display_text": "the salary as written in the post, or not specified",
    "industry": "the company's industry, or not specified"
}

### CONSTRAINT:
Never use a link to the channel post itself (t.me/<channel>/<number>) as apply_url.`

// Classification is the model's view of one vacancy, with defaults applied.
type Classification struct {
	Category       string   `json:"category"`
	Reason         string   `json:"reason"`
	ApplyURL       string   `json:"apply_url"`
	CompanyURL     string   `json:"company_url"`
	CompanyName    string   `json:"company_name"`
	Skills         []string `json:"skills"`
	EmploymentType string   `json:"employment_type"`
	WorkFormat     string   `json:"work_format"`
	Salary         string   `json:"salary_display_text"`
	Industry       string   `json:"industry"`
}

// LLMConfig configures retries and the overall deadline of one classification.
type LLMConfig struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

type LLMService struct {
	client  llm.Completer
	policy  retry.Policy
	timeout time.Duration
	log     logger.Logger
	metrics *metrics.Metrics
}

// LLMOption configures an LLMService.
type LLMOption func(*LLMService)

func WithLLMLogger(log logger.Logger) LLMOption {
	return func(s *LLMService) { s.log = log }
}

func WithLLMMetrics(m *metrics.Metrics) LLMOption {
	return func(s *LLMService) { s.metrics = m }
}

// NewLLMService wraps a provider client with the classification retry policy.
func NewLLMService(client llm.Completer, cfg LLMConfig, opts ...LLMOption) *LLMService {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	s := &LLMService{
		client:  client,
		timeout: cfg.Timeout,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.policy = retry.Policy{
		MaxAttempts: cfg.MaxRetries + 1,
		Backoff:     retry.Linear(cfg.RetryDelay),
		IsRetryable: retry.NotCanceled,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			s.log.Warn("Classification attempt failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Error(err),
			)
		},
	}
	return s
}

// Classify sends raw text to the model. Provider failures are retried under
// the service policy and surface as an upstream error once exhausted; an
// answer that is not a JSON object yields a default Classification.
func (s *LLMService) Classify(ctx context.Context, raw string) (Classification, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	var content string
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		if s.metrics != nil {
			s.metrics.ClassificationAttempts.Inc()
		}
		out, err := s.client.Complete(ctx, classificationPrompt, raw)
		if err != nil {
			return err
		}
		content = out
		return nil
	})
	if s.metrics != nil {
		s.metrics.ClassificationDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.ClassificationFailures.Inc()
		}
		return Classification{}, apperr.Upstream("classify", err)
	}

	c, perr := parseClassification(content)
	if perr != nil {
		s.log.Warn("Classification response did not fully decode",
			logger.Error(perr),
			logger.Int("content_length", len(content)),
		)
	}
	return c, nil
}

// parseClassification decodes content and applies defaults. Fields with an
// unexpected JSON type are skipped and the rest are kept. Content that is not
// valid JSON yields the default Classification.
func parseClassification(content string) (Classification, error) {
	var c Classification
	err := json.Unmarshal([]byte(stripCodeFence(content)), &c)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		c = Classification{}
	}
	c.applyDefaults()
	return c, err
}

func (c *Classification) applyDefaults() {
	if len(c.Skills) > MaxSkills {
		c.Skills = c.Skills[:MaxSkills]
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	for _, f := range []*string{&c.EmploymentType, &c.WorkFormat, &c.Salary, &c.Industry} {
		if strings.TrimSpace(*f) == "" {
			*f = models.NotSpecified
		}
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
