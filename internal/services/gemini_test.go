package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestGemini(baseURL string) *GeminiService {
	return NewGeminiService(GeminiConfig{
		APIKey:  "secret-key",
		Model:   "gemini-test",
		BaseURL: baseURL + "/",
		Timeout: 2 * time.Second,
	})
}

func TestGeminiService_GenerateContent_RequestShape(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"pong"}]}}]}`))
	}))
	defer srv.Close()

	body, err := newTestGemini(srv.URL).GenerateContent(context.Background(), "ping")
	require.NoError(t, err)

	assert.Equal(t, "/gemini-test:generateContent", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]interface{}{
		"contents": []interface{}{
			map[string]interface{}{
				"parts": []interface{}{map[string]interface{}{"text": "ping"}},
			},
		},
	}, gotBody)
	assert.Equal(t, "pong", replyText(body))
}

func TestGeminiService_GenerateContent_Any2xxIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	body, err := newTestGemini(srv.URL).GenerateContent(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, NoResponseReply, replyText(body))
}

func TestGeminiService_GenerateContent_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantDetails interface{}
	}{
		{
			name:   "json error body",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"API key not valid"}}`,
			wantDetails: map[string]interface{}{
				"error": map[string]interface{}{"code": float64(400), "message": "API key not valid"},
			},
		},
		{
			name:        "text error body",
			status:      http.StatusServiceUnavailable,
			body:        "upstream overloaded",
			wantDetails: "upstream overloaded",
		},
		{
			name:        "redirect is not success",
			status:      http.StatusNotModified,
			body:        "",
			wantDetails: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTestGemini(srv.URL).GenerateContent(context.Background(), "x")
			var remoteErr *RemoteError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tc.status, remoteErr.Status)
			assert.Equal(t, tc.wantDetails, remoteErr.Details)
		})
	}
}

func TestGeminiService_GenerateContent_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := newTestGemini(srv.URL).GenerateContent(context.Background(), "x")
	var jsonErr *InvalidUpstreamJSONError
	assert.ErrorAs(t, err, &jsonErr)
}

func TestGeminiService_GenerateContent_UnreachableRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	_, err := newTestGemini(baseURL).GenerateContent(context.Background(), "x")
	var unreachable *RemoteUnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.NotContains(t, err.Error(), "secret-key")
	assert.True(t, strings.Contains(err.Error(), "REDACTED"))
}

func TestGeminiService_GenerateContent_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	g := NewGeminiService(GeminiConfig{APIKey: "k", Model: "m", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := g.GenerateContent(context.Background(), "x")
	var unreachable *RemoteUnreachableError
	assert.ErrorAs(t, err, &unreachable)
}

func TestGeminiService_VerifyModel_Unreachable(t *testing.T) {
	svc := NewGeminiService(GeminiConfig{
		APIKey:        "secret-key",
		Model:         "gemini-test",
		Timeout:       2 * time.Second,
		ClientOptions: []option.ClientOption{option.WithEndpoint("127.0.0.1:1")},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := svc.VerifyModel(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini-test")
	assert.NotContains(t, err.Error(), "secret-key")
}
