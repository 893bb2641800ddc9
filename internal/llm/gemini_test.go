package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/justsurfingit/vacancy-parser/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	msgs []llms.MessageContent
	opts llms.CallOptions
	resp *llms.ContentResponse
	err  error
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.msgs = msgs
	for _, o := range options {
		o(&f.opts)
	}
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGeminiClient_Complete(t *testing.T) {
	t.Parallel()

	fm := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: `{"reason":"ok"}`}}}}
	got, err := llm.NewGeminiWithModel(fm).Complete(context.Background(), "sys", "text")
	require.NoError(t, err)
	assert.Equal(t, `{"reason":"ok"}`, got)

	require.Len(t, fm.msgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, fm.msgs[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, fm.msgs[1].Role)
	assert.True(t, fm.opts.JSONMode)
}

func TestGeminiClient_Errors(t *testing.T) {
	t.Parallel()

	_, err := llm.NewGeminiWithModel(&fakeModel{err: errors.New("quota")}).Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "quota")

	_, err = llm.NewGeminiWithModel(&fakeModel{resp: &llms.ContentResponse{}}).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}
