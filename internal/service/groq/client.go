// Package groq wraps the Groq chat-completions API into a bulk sentiment
// provider: one request covers the whole symbol batch, and every failure mode
// degrades to an empty mapping so scoring can proceed with neutral defaults.
package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CoinScope/internal/domain/models"
	xhttp "CoinScope/pkg/http"
	xlogger "CoinScope/pkg/logger"
)

const systemPrompt = "You are a quantitative crypto analyst. You only respond in strictly formatted JSON."

// Client is a bulk sentiment provider backed by Groq. A nil or key-less
// client is valid and always returns an empty mapping.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *xhttp.Client
	logger  *xlogger.Logger
}

// New creates a sentiment client. An empty apiKey disables the provider.
func New(apiKey, baseURL, model string, timeout time.Duration, logger *xlogger.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:  logger,
	}
}

// Enabled reports whether the provider is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type chatRequest struct {
	Messages       []chatMessage  `json:"messages"`
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// BulkSentiment issues exactly one upstream request for all symbols and
// parses the strict JSON mapping it asks for. Any transport or parse failure
// returns an empty map; the caller treats missing symbols as neutral.
func (c *Client) BulkSentiment(ctx context.Context, symbols []string) models.SentimentMap {
	if !c.Enabled() || len(symbols) == 0 {
		return models.SentimentMap{}
	}

	var resp chatResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		Body: chatRequest{
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: buildPrompt(symbols)},
			},
			Model:          c.model,
			Temperature:    0.2,
			ResponseFormat: responseFormat{Type: "json_object"},
		},
	}, &resp)
	if err != nil {
		c.logger.Error("bulk sentiment request failed", xlogger.Error(err))
		return models.SentimentMap{}
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("bulk sentiment response had no choices")
		return models.SentimentMap{}
	}

	m, err := ParseSentimentPayload(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Error("bulk sentiment parse failed", xlogger.Error(err))
		return models.SentimentMap{}
	}
	return m
}

func buildPrompt(symbols []string) string {
	return fmt.Sprintf(`Analyze the current overall market sentiment for the following cryptocurrencies: %s.
Return EXACTLY a valid JSON object.
The JSON must follow this exact structure:
{
    "SYMBOL-USD": {
        "sentiment": "good" | "ok" | "bad",
        "analysis": "A brief 1 to 2 sentence justification explaining why this sentiment was chosen based on current market conditions."
    }
}
Ensure every symbol in the list is included as a key.`, strings.Join(symbols, ", "))
}

// ParseSentimentPayload decodes the symbol mapping, tolerating a fenced code
// block wrapper around the JSON object.
func ParseSentimentPayload(text string) (models.SentimentMap, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var m models.SentimentMap
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedSentiment, err)
	}
	normalized := make(models.SentimentMap, len(m))
	for sym, e := range m {
		e.Sentiment = strings.ToLower(strings.TrimSpace(e.Sentiment))
		normalized[strings.ToUpper(sym)] = e
	}
	return normalized, nil
}
