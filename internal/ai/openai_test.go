package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/verte-zerg/studyquest/internal/model"
)

func TestOpenAICompleterSendsJSONModeRequest(t *testing.T) {
	var got struct {
		Model          string `json:"model"`
		MaxTokens      int    `json:"max_tokens"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"question\":\"q\",\"type\":\"open\"}"}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAICompleter(model.AIConfig{APIKey: "test-key", BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("new completer: %v", err)
	}
	out, err := c.Complete(context.Background(), []model.Turn{
		{Role: model.RoleUser, Content: `{"instruction":"start quiz"}`},
		{Role: model.RoleAssistant, Content: `{"question":"first"}`},
		{Role: model.RoleUser, Content: `{"instruction":"new question"}`},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"question":"q","type":"open"}` {
		t.Fatalf("unexpected content %q", out)
	}
	if got.Model != "gpt-4o" || got.MaxTokens != 2000 || got.ResponseFormat.Type != "json_object" {
		t.Fatalf("unexpected request params: %+v", got)
	}
	if len(got.Messages) != 4 || got.Messages[0].Role != "system" || got.Messages[2].Role != "assistant" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestOpenAICompleterHTTPErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, err := NewOpenAICompleter(model.AIConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("new completer: %v", err)
	}
	_, err = c.Complete(context.Background(), []model.Turn{{Role: model.RoleUser, Content: "{}"}})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestNewOpenAICompleterValidation(t *testing.T) {
	if _, err := NewOpenAICompleter(model.AIConfig{}, nil); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewOpenAICompleter(model.AIConfig{APIKey: "k", Provider: "azure"}, nil); err == nil {
		t.Fatalf("expected missing endpoint error")
	}
	if _, err := NewOpenAICompleter(model.AIConfig{APIKey: "k", Provider: "bard"}, nil); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}
