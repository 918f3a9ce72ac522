package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"foodsync/internal/config"
	"foodsync/internal/metrics"

	"go.uber.org/zap"
)

// GeminiClient talks to the generateContent endpoint of the Gemini API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewGeminiClient(cfg config.LLMConfig, log *zap.Logger) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate sends one request and returns the concatenated text of the first
// candidate.
func (g *GeminiClient) generate(ctx context.Context, op string, req generateRequest) (out string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveLLM(op, start, err) }()

	if g.apiKey == "" || g.model == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		g.log.Warn("gemini api error",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)),
		)
		return "", fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var result generateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrProvider, err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty gemini response", ErrInvalidOutput)
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	g.log.Debug("gemini call done", zap.String("operation", op), zap.Duration("took", time.Since(start)))
	return sb.String(), nil
}

func (g *GeminiClient) GenerateMeals(ctx context.Context, req MealRequest) (MealPlan, error) {
	text, err := g.generate(ctx, "generate_meals", generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: mealSystemInstruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: BuildMealPrompt(req)}}}},
		GenerationConfig: generationConfig{
			Temperature:      0.7,
			MaxOutputTokens:  3000,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return MealPlan{}, err
	}
	return DecodeMealPlan(text)
}

func (g *GeminiClient) ParseReceipt(ctx context.Context, image []byte, mimeType string, today time.Time) ([]ReceiptItem, error) {
	if len(image) == 0 {
		return nil, errors.New("empty receipt image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	text, err := g.generate(ctx, "parse_receipt_image", generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: BuildReceiptImagePrompt(today)},
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:      0.2,
			MaxOutputTokens:  2048,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return nil, err
	}
	return DecodeReceiptItems(text)
}

func (g *GeminiClient) ParseReceiptText(ctx context.Context, ocrText string, today time.Time) ([]ReceiptItem, error) {
	if strings.TrimSpace(ocrText) == "" {
		return nil, errors.New("empty OCR text")
	}

	text, err := g.generate(ctx, "parse_receipt_text", generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: BuildReceiptTextPrompt(ocrText, today)}}}},
		GenerationConfig: generationConfig{
			Temperature:      0.2,
			MaxOutputTokens:  2048,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return nil, err
	}
	return DecodeReceiptItems(text)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
