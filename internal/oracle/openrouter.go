package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultOpenRouterURL is the public OpenRouter endpoint.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// ErrMissingAPIKey is returned by back ends constructed without a key.
var ErrMissingAPIKey = errors.New("api key not set")

// OpenRouterClient handles communication with the OpenRouter API.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouterClient creates a client for baseURL. An empty baseURL uses
// DefaultOpenRouterURL.
func NewOpenRouterClient(apiKey, baseURL string) *OpenRouterClient {
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	return &OpenRouterClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// ChatMessage is an OpenAI-style chat message.
type ChatMessage struct {
	Role    string      `json:"role"`
	Content string      `json:"content"`
	Images  []ChatImage `json:"images,omitempty"`
}

// ChatImage is a generated image attached to an assistant message.
type ChatImage struct {
	Type     string `json:"type"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

// ResponseFormat asks the model for a JSON object.
type ResponseFormat struct {
	Type string `json:"type"`
}

// CompletionRequest is the request to the OpenRouter API.
type CompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Modalities     []string        `json:"modalities,omitempty"`
}

// CompletionResponse is the response from the OpenRouter API.
type CompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int         `json:"index"`
		Message ChatMessage `json:"message"`
		Reason  string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateCompletion calls the chat completions endpoint.
func (c *OpenRouterClient) CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openrouter: %w", ErrMissingAPIKey)
	}

	if req.Temperature == 0 {
		req.Temperature = 0.8
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 2048
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Title", "Aethelgard")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var completionResp CompletionResponse
	if err := json.Unmarshal(respBody, &completionResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if completionResp.Error != nil {
		return nil, fmt.Errorf("API error: %s (%s)", completionResp.Error.Message, completionResp.Error.Type)
	}
	if len(completionResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &completionResp, nil
}

// OpenRouterModel is a Model backed by OpenRouter.
type OpenRouterModel struct {
	client    *OpenRouterClient
	narrator  string
	validator string
	image     string
}

// NewOpenRouterModel binds a client to the narrator, validator and image
// model names.
func NewOpenRouterModel(client *OpenRouterClient, narrator, validator, image string) *OpenRouterModel {
	return &OpenRouterModel{client: client, narrator: narrator, validator: validator, image: image}
}

func chatRole(r Role) string {
	if r == RoleModel {
		return "assistant"
	}
	return "user"
}

func (m *OpenRouterModel) Complete(ctx context.Context, call Call) (string, error) {
	model := m.narrator
	if call.Kind == KindValidation {
		model = m.validator
	}

	msgs := make([]ChatMessage, 0, len(call.History)+2)
	msgs = append(msgs, ChatMessage{Role: "system", Content: call.System})
	for _, h := range call.History {
		msgs = append(msgs, ChatMessage{Role: chatRole(h.Role), Content: h.Text})
	}
	msgs = append(msgs, ChatMessage{Role: "user", Content: call.User})

	resp, err := m.client.CreateCompletion(ctx, &CompletionRequest{
		Model:          model,
		Messages:       msgs,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

func (m *OpenRouterModel) Image(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.CreateCompletion(ctx, &CompletionRequest{
		Model:      m.image,
		Messages:   []ChatMessage{{Role: "user", Content: prompt}},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		return "", err
	}
	for _, img := range resp.Choices[0].Message.Images {
		if img.ImageURL.URL != "" {
			return img.ImageURL.URL, nil
		}
	}
	return "", fmt.Errorf("no image in response")
}
