package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/verte-zerg/studyquest/internal/model"
)

const (
	defaultModel      = "gpt-4o"
	defaultMaxTokens  = 2000
	defaultAPIVersion = "2025-01-01-preview"
	defaultTimeout    = 60 * time.Second
)

// OpenAICompleter calls an OpenAI or Azure OpenAI chat completions endpoint in JSON mode.
type OpenAICompleter struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenAICompleter builds a completer from collaborator settings.
// Provider "azure" requires an endpoint and uses Model as the deployment name.
func NewOpenAICompleter(cfg model.AIConfig, httpClient *http.Client) (*OpenAICompleter, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	opts := []option.RequestOption{option.WithHTTPClient(httpClient)}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "azure":
		endpoint := strings.TrimSpace(cfg.Endpoint)
		if endpoint == "" {
			return nil, fmt.Errorf("azure endpoint is required")
		}
		version := strings.TrimSpace(cfg.APIVersion)
		if version == "" {
			version = defaultAPIVersion
		}
		opts = append(opts, azure.WithEndpoint(endpoint, version), azure.WithAPIKey(key))
	case "", "openai":
		opts = append(opts, option.WithAPIKey(key))
		if base := strings.TrimSpace(cfg.BaseURL); base != "" {
			opts = append(opts, option.WithBaseURL(base))
		}
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenAICompleter{
		client:    openai.NewClient(opts...),
		model:     modelName,
		maxTokens: maxTokens,
	}, nil
}

// Complete implements Completer. The system prompt is prepended on every call.
func (c *OpenAICompleter) Complete(ctx context.Context, turns []model.Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	messages = append(messages, openai.SystemMessage(SystemPrompt))
	for _, t := range turns {
		switch t.Role {
		case model.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		default:
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  messages,
		MaxTokens: openai.Int(int64(c.maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", &TransportError{Op: "chat completion", Err: err}
	}
	if len(completion.Choices) == 0 {
		return "", &TransportError{Op: "chat completion", Err: fmt.Errorf("response has no choices")}
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
