package logger_test

import (
	"errors"
	"testing"

	"github.com/justsurfingit/vacancy-parser/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bearer header", "Authorization: Bearer abc.def-123", "Authorization: Bearer " + logger.Redacted},
		{"lowercase bearer", "bearer s3cr3t", "bearer " + logger.Redacted},
		{"api key pair", "api_key=sk-12345 rest", "api_key=" + logger.Redacted + " rest"},
		{"json password", `{"password": "hunter2"}`, `{"password": "` + logger.Redacted + `"}`},
		{"query token", "https://x.io/?token=abc&page=2", "https://x.io/?token=" + logger.Redacted + "&page=2"},
		{"plain text untouched", "Looking for React dev", "Looking for React dev"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logger.Mask(tt.in))
		})
	}
}

func TestErrorFieldIsMasked(t *testing.T) {
	t.Parallel()

	f := logger.Error(errors.New("upstream rejected Bearer topsecret"))
	assert.Equal(t, "error", f.Key)
	assert.NotContains(t, f.String, "topsecret")
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	t.Parallel()

	l := logger.FromContext(t.Context())
	assert.NotNil(t, l)
	l.Info("must not panic", logger.String("k", "v"))
}
