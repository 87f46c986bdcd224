package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"personagen/internal/prompt"

	"github.com/stretchr/testify/require"
)

func candidateBody(texts ...string) string {
	parts := ""
	for i, text := range texts {
		if i > 0 {
			parts += ","
		}
		parts += fmt.Sprintf(`{"text":%q}`, text)
	}
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[%s]}}]}`, parts)
}

func newTestClient(t *testing.T, handler http.Handler, models ...string) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		ApiKey:  "test-key",
		BaseUrl: server.URL,
		Models:  models,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresApiKey(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.Error(t, err)
}

func TestGenerate(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		fmt.Fprint(w, candidateBody("part one ", "part two"))
	}), "model-a")

	text, err := client.Generate(context.Background(), prompt.Payload{Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, "part one part two", text)
	require.Equal(t, "/models/model-a:generateContent", gotPath)
	require.Equal(t, "test-key", gotKey)
}

func TestGenerateFallsBackToNextModel(t *testing.T) {
	var models []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		models = append(models, r.URL.Path)
		if len(models) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, candidateBody("from the backup model"))
	}), "model-a", "model-b")

	text, err := client.Generate(context.Background(), prompt.Payload{Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, "from the backup model", text)
	require.Equal(t, []string{
		"/models/model-a:generateContent",
		"/models/model-b:generateContent",
	}, models)
}

func TestGenerateQuotaStopsFallback(t *testing.T) {
	requests := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
	}), "model-a", "model-b")

	_, err := client.Generate(context.Background(), prompt.Payload{Text: "hello"})
	require.Error(t, err)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	require.Equal(t, QuotaExceeded, genErr.Kind)
	require.False(t, genErr.Retryable())
	// the quota belongs to the key, so the second model is never tried
	require.Equal(t, 1, requests)
}

func TestGenerateServiceError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), "model-a")

	_, err := client.Generate(context.Background(), prompt.Payload{Text: "hello"})
	require.Error(t, err)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	require.Equal(t, ServiceError, genErr.Kind)
	require.True(t, genErr.Retryable())
}

func TestGenerateEmptyCandidates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}), "model-a")

	_, err := client.Generate(context.Background(), prompt.Payload{Text: "hello"})
	require.Error(t, err)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	require.Equal(t, ServiceError, genErr.Kind)
}

func TestGenerateTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		ApiKey:  "test-key",
		BaseUrl: server.URL,
		Models:  []string{"model-a"},
		Timeout: time.Millisecond * 50,
	})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), prompt.Payload{Text: "hello"})
	require.Error(t, err)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	require.Equal(t, Timeout, genErr.Kind)
	require.True(t, genErr.Retryable())
}
