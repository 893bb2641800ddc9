package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/justsurfingit/vacancy-parser/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"category":"MAYBE FITS"}`))
	}))
	defer srv.Close()

	c := llm.NewOpenAI(llm.Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "test-model"})
	got, err := c.Complete(context.Background(), "system prompt", "vacancy text")
	require.NoError(t, err)
	assert.Equal(t, `{"category":"MAYBE FITS"}`, got)

	assert.Equal(t, "test-model", body["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAIClient_DoesNotRetryOnItsOwn(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := llm.NewOpenAI(llm.Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := chatCompletion("")
		resp["choices"] = []any{}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := llm.NewOpenAI(llm.Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := llm.New(context.Background(), llm.Config{Provider: llm.ProviderOpenAI})
	assert.Error(t, err, "missing key")

	_, err = llm.New(context.Background(), llm.Config{Provider: "claude", APIKey: "k"})
	assert.Error(t, err)

	c, err := llm.New(context.Background(), llm.Config{Provider: llm.ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &llm.OpenAIClient{}, c)
}
