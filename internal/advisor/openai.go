package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const promptTemplate = `The following is a summary of the bitcoin market:
%s
Based on these indicators, do you recommend buying, selling, or holding
right now, and why?`

// OpenAIAdvisor requests a trading opinion from the chat completions API.
type OpenAIAdvisor struct {
	client *resty.Client
	model  string
}

// NewOpenAIAdvisor creates an advisor against baseURL (the public API when
// empty) using the given model.
func NewOpenAIAdvisor(apiKey, baseURL, llmModel string) *OpenAIAdvisor {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(60 * time.Second)
	client.SetAuthToken(apiKey)
	return &OpenAIAdvisor{client: client, model: llmModel}
}

func (o *OpenAIAdvisor) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Advise sends the summary as a single user turn and returns the textual
// response. Any transport, status, or decode failure is returned as an
// error; the response text is never partially used.
func (o *OpenAIAdvisor) Advise(ctx context.Context, summary string) (string, error) {
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, summary)},
		},
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("chat completion: status %d: %s", resp.StatusCode(), resp.String())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completion: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}
