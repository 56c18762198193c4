// Package gateway wraps the OpenAI-compatible AI gateway used for two
// collaborator calls: vision OCR over prescription images and alternative-
// suggestion explanations. The verification core never calls this package; it
// only prepares the inputs the handlers forward here.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/medverify/medverify-api/catalog"
	"github.com/medverify/medverify-api/logging"
	openai "github.com/sashabaranov/go-openai"
)

// ocrPrompt instructs the vision model to return medicine names only, one per
// line, with strength but without dosage instructions.
const ocrPrompt = `Extract the medicine names WITH their strength/quantity from this prescription or medicine package image. ` +
	`List each medicine name on a separate line. Include the full medicine name with strength (e.g., "Folic Acid BP 5mg", "Panadol (Paracetamol) 500mg"). ` +
	`Do NOT include dosage instructions like "three times daily", "14 days", or tablet counts like "x20". ` +
	`Only return medicine names with their strength, one per line.`

// Client talks to the configured chat-completions gateway
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a gateway client. baseURL points at the OpenAI-compatible
// endpoint; model is the gateway model identifier.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// ExtractText runs OCR over a base64 image data URL and returns the extracted
// text, one medicine name per line.
func (c *Client) ExtractText(ctx context.Context, imageDataURL string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: ocrPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageDataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ocr response contained no choices")
	}

	extracted := resp.Choices[0].Message.Content
	logging.Debug("OCR extraction completed", "lines", len(strings.Split(extracted, "\n")))
	return extracted, nil
}

// SuggestAlternatives asks the gateway to explain why the catalog-backed
// alternatives are reasonable substitutes for an unregistered medicine. The
// alternatives list and category come from the resolver; the model only adds
// the explanation text.
func (c *Client) SuggestAlternatives(ctx context.Context, medicineName, category string, alternatives []catalog.MedicineRecord) (string, error) {
	names := make([]string, 0, len(alternatives))
	for _, med := range alternatives {
		if med.GenericName != "" {
			names = append(names, fmt.Sprintf("%s (%s)", med.Name, med.GenericName))
		} else {
			names = append(names, med.Name)
		}
	}

	systemPrompt := fmt.Sprintf(
		"You are a pharmaceutical expert. Given a medicine name that is not in the registered-medicines database, "+
			"suggest alternatives from this list of registered %s products: %s. "+
			"Provide reasoning for each suggestion based on similar therapeutic effects. Keep it short and factual.",
		category, strings.Join(names, ", "))

	userPrompt := fmt.Sprintf("Medicine not found in the registry: %q. Suggest alternatives and explain why.", medicineName)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("suggestion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("suggestion response contained no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
