package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// Common errors
var (
	ErrNotConfigured = errors.New("receipt structuring is not configured")
	ErrNetwork       = errors.New("failed to reach the receipt model")
	ErrParse         = errors.New("could not read receipt items")
)

// Structurer turns raw recognized receipt text into draft items. The
// production implementation calls a generative text model; tests substitute
// a fake.
type Structurer interface {
	StructureReceipt(ctx context.Context, rawText string) (*StructuredReceipt, error)
}

// Client calls a Gemini-style generateContent endpoint to structure receipt
// text. It is stateless and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

// NewClient creates a receipt model client. An empty API key leaves the
// client unconfigured; calls will fail with ErrNotConfigured.
func NewClient(url, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		apiKey:     apiKey,
	}
}

const prompt = `Parse this receipt text and extract the items. Return ONLY valid JSON:

{
  "items": [{"name": "Item Name", "price": 12.99}],
  "tax": 2.50,
  "tip": null,
  "total": 45.99
}

Rules:
- Include ONLY food/product items in the items array
- Do NOT include tax, tip, subtotal, or total as items
- Extract tax, tip, and total as separate fields (null if not found)
- Clean up item names (remove quantities like "1x" or "2 @")
- Prices should be numbers, not strings

Receipt text:
%s`

// generateRequest is the model API request body
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateResponse is the subset of the model API response we read
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// parsedReceipt matches the JSON the prompt asks the model to emit, with
// prices in major units
type parsedReceipt struct {
	Items []struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"items"`
	Tax   *float64 `json:"tax"`
	Tip   *float64 `json:"tip"`
	Total *float64 `json:"total"`
}

// StructureReceipt sends the OCR text to the model and decodes the reply
// into draft items. The result is never applied anywhere automatically; any
// failure surfaces as a single opaque error.
func (c *Client) StructureReceipt(ctx context.Context, rawText string) (*StructuredReceipt, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: fmt.Sprintf(prompt, rawText)}}}},
		GenerationConfig: generationConfig{Temperature: 0.1, MaxOutputTokens: 2048},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var modelResp generateResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(data, &modelResp) == nil && modelResp.Error != nil {
			return nil, fmt.Errorf("%w: %s", ErrNetwork, modelResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: model returned status %d", ErrNetwork, resp.StatusCode)
	}

	if err := json.Unmarshal(data, &modelResp); err != nil {
		return nil, ErrParse
	}
	if len(modelResp.Candidates) == 0 || len(modelResp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrParse
	}

	// Models often wrap JSON in markdown fences despite the prompt.
	text := modelResp.Candidates[0].Content.Parts[0].Text
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var parsed parsedReceipt
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, ErrParse
	}

	result := &StructuredReceipt{Items: make([]DraftItem, 0, len(parsed.Items))}
	for _, item := range parsed.Items {
		result.Items = append(result.Items, DraftItem{
			Name:       item.Name,
			PriceCents: toCents(item.Price),
		})
	}
	if parsed.Tax != nil {
		cents := toCents(*parsed.Tax)
		result.TaxCents = &cents
	}
	if parsed.Tip != nil {
		cents := toCents(*parsed.Tip)
		result.TipCents = &cents
	}
	if parsed.Total != nil {
		cents := toCents(*parsed.Total)
		result.TotalCents = &cents
	}

	return result, nil
}

func toCents(major float64) int64 {
	return int64(math.Round(major * 100))
}
