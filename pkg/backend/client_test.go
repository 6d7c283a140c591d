package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parleyhq/parley/pkg/backend"
	"github.com/parleyhq/parley/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateChat(t *testing.T) {
	var gotAuth string
	var gotReq chat.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := chat.Response{
			ID:      "chatcmpl-1",
			Object:  "chat.completion",
			Created: 1700000000,
			Model:   "test-model",
			Choices: []chat.Choice{
				{Message: chat.AssistantMessage("Hello there"), FinishReason: "stop"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := backend.New(srv.URL+"/v1/", "test-model", "secret")
	resp, err := client.CreateChat(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.UserMessage("hi")},
		N:        1,
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hello there", resp.Choices[0].Message.Content)
	assert.Equal(t, "Bearer secret", gotAuth)
	// model filled in from the client default
	assert.Equal(t, "test-model", gotReq.Model)
}

func Test_CreateChat_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	client := backend.New(srv.URL, "test-model", "secret")
	_, err := client.CreateChat(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.UserMessage("hi")},
	})
	require.Error(t, err)
	require.True(t, backend.IsUpstreamError(err))

	var ue *backend.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, "rate limited", ue.Message)
}

func Test_CreateChat_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := backend.New(srv.URL, "test-model", "secret")
	_, err := client.CreateChat(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.UserMessage("hi")},
	})
	require.Error(t, err)
	assert.True(t, backend.IsUpstreamError(err))
}

func Test_CreateChat_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	client := backend.New(srv.URL, "test-model", "secret")
	_, err := client.CreateChat(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.UserMessage("hi")},
	})
	require.ErrorIs(t, err, backend.ErrEmptyResponse)
}
