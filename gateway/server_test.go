package gateway_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/parleyhq/parley/gateway"
	"github.com/parleyhq/parley/pkg/backend"
	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/store"
	"github.com/parleyhq/parley/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	gatewaySrv *httptest.Server

	mu       sync.Mutex
	requests []chat.Request
	script   []chat.Response
	next     int
}

func newFixture(t *testing.T, cfg *gateway.Config, sessions store.MessageStore, script ...chat.Response) *fixture {
	f := &fixture{script: script}

	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chat.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		f.requests = append(f.requests, req)
		idx := f.next
		f.next++
		f.mu.Unlock()

		if idx >= len(f.script) {
			http.Error(w, `{"error":{"message":"backend exhausted"}}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(f.script[idx])
	}))
	t.Cleanup(backendSrv.Close)

	client := backend.New(backendSrv.URL, cfg.Model, cfg.APIKey,
		backend.WithHTTPClient(backendSrv.Client()))
	tb, err := toolbox.New(client, nil,
		toolbox.WithSystemPrompt(cfg.SystemPrompt),
		toolbox.WithFanoutFailFast(cfg.FanoutFailFast))
	require.NoError(t, err)

	f.gatewaySrv = httptest.NewServer(gateway.NewServer(cfg, tb, sessions).Handler())
	t.Cleanup(f.gatewaySrv.Close)
	return f
}

func (f *fixture) recorded() []chat.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func testConfig() *gateway.Config {
	return &gateway.Config{
		Model:        "test-model",
		APIKey:       gateway.DefaultAPIKey,
		ModelOwner:   "acme",
		SystemPrompt: "You are a helpful assistant.",
	}
}

func answer(content string) chat.Response {
	return chat.Response{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Created: 1715678000,
		Model:   "test-model",
		Choices: []chat.Choice{{
			Message:      chat.AssistantMessage(content),
			FinishReason: "stop",
		}},
	}
}

func postCompletion(t *testing.T, url string, body string, headers map[string]string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, url+"/v1/chat/completions", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func Test_ChatCompletions(t *testing.T) {
	f := newFixture(t, testConfig(), nil, answer("hello there"))

	resp := postCompletion(t, f.gatewaySrv.URL,
		`{"model":"test-model","messages":[{"role":"user","content":"hi"}]}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chat.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Choices, 1)
	assert.Equal(t, "hello there", body.Choices[0].Message.Content)

	reqs := f.recorded()
	require.Len(t, reqs, 1)
	require.NotEmpty(t, reqs[0].Messages)
	assert.Equal(t, chat.RoleSystem, reqs[0].Messages[0].Role)
}

func Test_ChatCompletions_Validation(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	resp := postCompletion(t, f.gatewaySrv.URL, `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postCompletion(t, f.gatewaySrv.URL, `{"model":"test-model","messages":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid_request_error", body.Error.Type)

	resp = postCompletion(t, f.gatewaySrv.URL,
		`{"model":"test-model","messages":[{"role":"user","content":"hi"}],"n":99}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, f.recorded())
}

func Test_ChatCompletions_Fanout(t *testing.T) {
	f := newFixture(t, testConfig(), nil,
		answer("first"), answer("second"), answer("third"))

	resp := postCompletion(t, f.gatewaySrv.URL,
		`{"model":"test-model","messages":[{"role":"user","content":"hi"}],"n":3}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chat.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Choices, 3)
	for i, choice := range body.Choices {
		assert.Equal(t, i, choice.Index)
		assert.NotEmpty(t, choice.Message.Content)
	}
	assert.Len(t, f.recorded(), 3)
}

func Test_ChatCompletions_UpstreamError(t *testing.T) {
	// empty script: every backend call fails
	f := newFixture(t, testConfig(), nil)

	resp := postCompletion(t, f.gatewaySrv.URL,
		`{"model":"test-model","messages":[{"role":"user","content":"hi"}]}`, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "upstream_error", body.Error.Type)
	assert.Contains(t, body.Error.Message, "backend exhausted")
}

func Test_ChatCompletions_Session(t *testing.T) {
	sessions := store.NewMemoryStore()
	f := newFixture(t, testConfig(), sessions,
		answer("the answer is 42"), answer("as I said, 42"))

	headers := map[string]string{gateway.ChatIDHeader: "chat-123"}
	resp := postCompletion(t, f.gatewaySrv.URL,
		`{"model":"test-model","messages":[{"role":"user","content":"what is the answer?"}]}`, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "chat-123", resp.Header.Get(gateway.ChatIDHeader))

	resp = postCompletion(t, f.gatewaySrv.URL,
		`{"model":"test-model","messages":[{"role":"user","content":"repeat that"}]}`, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the second backend request carries the first exchange
	reqs := f.recorded()
	require.Len(t, reqs, 2)
	var contents []string
	for _, m := range reqs[1].Messages {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, contents, "what is the answer?")
	assert.Contains(t, contents, "the answer is 42")
	assert.Contains(t, contents, "repeat that")

	// one system prompt only, at position 0
	assert.Equal(t, chat.RoleSystem, reqs[1].Messages[0].Role)
	for _, m := range reqs[1].Messages[1:] {
		assert.False(t, m.Role.IsSystem())
	}
}

func Test_Models(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	resp, err := http.Get(f.gatewaySrv.URL + "/v1/models")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Object string `json:"object"`
		Data   []struct {
			ID      string `json:"id"`
			Object  string `json:"object"`
			Created int64  `json:"created"`
			OwnedBy string `json:"owned_by"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "list", body.Object)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "test-model", body.Data[0].ID)
	assert.Equal(t, "model", body.Data[0].Object)
	assert.Equal(t, "acme", body.Data[0].OwnedBy)
	assert.NotZero(t, body.Data[0].Created)
}
