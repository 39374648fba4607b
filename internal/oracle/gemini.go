package oracle

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var choiceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"text":   {Type: genai.TypeString},
		"action": {Type: genai.TypeString},
	},
	Required: []string{"text", "action"},
}

var itemSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":        {Type: genai.TypeString},
		"type":        {Type: genai.TypeString, Enum: []string{"weapon", "armor", "accessory", "consumable"}},
		"description": {Type: genai.TypeString},
		"value":       {Type: genai.TypeNumber},
		"effect": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"hp":  {Type: genai.TypeNumber},
				"str": {Type: genai.TypeNumber},
				"def": {Type: genai.TypeNumber},
			},
		},
	},
	Required: []string{"name"},
}

var narrationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"story":       {Type: genai.TypeString},
		"choices":     {Type: genai.TypeArray, Items: choiceSchema},
		"imagePrompt": {Type: genai.TypeString},
		"musicMood":   {Type: genai.TypeString},
		"statusUpdate": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"hpChange":   {Type: genai.TypeNumber},
				"mpChange":   {Type: genai.TypeNumber},
				"goldChange": {Type: genai.TypeNumber},
				"xpChange":   {Type: genai.TypeNumber},
				"gameOver":   {Type: genai.TypeBoolean},
				"currentAct": {Type: genai.TypeNumber},
				"learnSkill": {Type: genai.TypeBoolean},
			},
			Required: []string{"currentAct"},
		},
		"itemsFound": {Type: genai.TypeArray, Items: itemSchema},
	},
	Required: []string{"story", "choices", "imagePrompt", "statusUpdate"},
}

var validationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isPlausible": {Type: genai.TypeBoolean},
		"reason":      {Type: genai.TypeString},
		"motive":      {Type: genai.TypeString},
	},
	Required: []string{"isPlausible"},
}

// GeminiModel is a Model backed by the Gemini API.
type GeminiModel struct {
	client    *genai.Client
	narrator  string
	validator string
	image     string
}

// NewGeminiModel connects to Gemini with apiKey.
func NewGeminiModel(ctx context.Context, apiKey, narrator, validator, image string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiModel{client: client, narrator: narrator, validator: validator, image: image}, nil
}

// Close releases the underlying client.
func (g *GeminiModel) Close() error {
	return g.client.Close()
}

func (g *GeminiModel) Complete(ctx context.Context, call Call) (string, error) {
	name, schema := g.narrator, narrationSchema
	if call.Kind == KindValidation {
		name, schema = g.validator, validationSchema
	}

	model := g.client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(call.System)}}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	chat := model.StartChat()
	for _, m := range call.History {
		chat.History = append(chat.History, &genai.Content{
			Role:  string(m.Role),
			Parts: []genai.Part{genai.Text(m.Text)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(call.User))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return b.String(), nil
}

// Image returns the first inline picture of the response as a data URL.
func (g *GeminiModel) Image(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.image)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini image: %w", err)
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return "data:" + blob.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(blob.Data), nil
			}
		}
	}
	return "", fmt.Errorf("no image in Gemini response")
}
