// Package gemini provides client functionality for the Gemini generateContent API
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/manmohanbh/tubestream-pwa-v2/pkg/models"
)

const (
	// DefaultBaseURL is the base URL for the Gemini API
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel favors latency over quality; metadata lookups are
	// short and search-grounded.
	DefaultModel = "gemini-flash-lite-latest"

	// maxOutputTokens caps generation time for the four-field reply
	maxOutputTokens = 150
)

// Client represents a Gemini API client
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// GenerationResult is the text reply plus any grounding references the
// model attached to it.
type GenerationResult struct {
	Text    string
	Sources []models.SourceRef
}

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// TextGenerator defines the interface for metadata text generation
type TextGenerator interface {
	GenerateVideoInfo(ctx context.Context, videoURL string) (*GenerationResult, error)
	CheckAPIKey(ctx context.Context) error
}

// generateRequest mirrors the generateContent request body
type generateRequest struct {
	Contents         []content        `json:"contents"`
	Tools            []tool           `json:"tools,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens int             `json:"maxOutputTokens,omitempty"`
	ThinkingConfig  *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// generateResponse mirrors the subset of the response we consume
type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content           content            `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []models.SourceRef `json:"groundingChunks,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Error implements the error interface for apiError
func (e *apiError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s (status: %s)", e.Message, e.Status)
	}
	return e.Message
}

// New creates a new Gemini client
func New(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GenerateVideoInfo asks the model for the four labeled metadata fields
// for the given URL, with search grounding enabled and reasoning
// disabled for latency.
func (c *Client) GenerateVideoInfo(ctx context.Context, videoURL string) (*GenerationResult, error) {
	prompt := fmt.Sprintf("Video info for: %s. Return ONLY:\nT:[Title]\nC:[Channel]\nD:[Duration]\nV:[video/shorts]", videoURL)

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		Tools:    []tool{{GoogleSearch: &struct{}{}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxOutputTokens,
			ThinkingConfig:  &thinkingConfig{ThinkingBudget: 0},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error != nil {
		return nil, apiResp.Error
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}
	if len(apiResp.Candidates) == 0 {
		return nil, fmt.Errorf("API returned no candidates")
	}

	result := &GenerationResult{
		Text: joinParts(apiResp.Candidates[0].Content.Parts),
	}
	if gm := apiResp.Candidates[0].GroundingMetadata; gm != nil {
		result.Sources = gm.GroundingChunks
	}

	return result, nil
}

// CheckAPIKey validates the API key by listing available models
func (c *Client) CheckAPIKey(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/models", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiResp generateResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err == nil && apiResp.Error != nil {
			return apiResp.Error
		}
		return fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	return nil
}

func joinParts(parts []part) string {
	var text string
	for _, p := range parts {
		text += p.Text
	}
	return text
}
