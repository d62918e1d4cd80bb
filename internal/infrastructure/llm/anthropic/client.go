// Package anthropic implements the completion-service port against the
// Anthropic Messages API. Prompts may carry a base64 PDF attachment; every
// successful call reports token usage for cost accounting.
package anthropic

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/infrastructure/resilience"
)

const apiVersion = "2023-06-01"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		executor:   executor,
	}
}

type contentBlock struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Source *documentSource `json:"source,omitempty"`
}

type documentSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete executes one completion call under the retry policy. Rate-limit
// failures are retried with long backoff; everything else propagates
// immediately.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	var content []contentBlock
	if len(req.Attachment) > 0 {
		content = append(content, contentBlock{
			Type: "document",
			Source: &documentSource{
				Type:      "base64",
				MediaType: "application/pdf",
				Data:      base64.StdEncoding.EncodeToString(req.Attachment),
			},
		})
	}
	content = append(content, contentBlock{Type: "text", Text: req.Prompt})

	body := messagesRequest{
		Model:     req.Model,
		MaxTokens: req.MaxOutputTokens,
		Messages:  []message{{Role: "user", Content: content}},
	}

	var out messagesResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/messages", body, &out)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "anthropic.messages", call, classifyCompletionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.CompletionResult{}, wrapCompletionError(err)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return domain.CompletionResult{
		Text:         text.String(),
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
	}, nil
}
