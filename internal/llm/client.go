package llm

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrProvider covers transport failures and non-2xx answers.
	ErrProvider = errors.New("llm provider error")
	// ErrInvalidOutput is returned when the model answer is not the JSON
	// document that was asked for.
	ErrInvalidOutput = errors.New("llm returned invalid output")
)

// Client is the surface the rest of the application needs from a language
// model. Calls are not retried.
type Client interface {
	GenerateMeals(ctx context.Context, req MealRequest) (MealPlan, error)
	// ParseReceipt reads a receipt photo. today anchors the estimated
	// expiration dates.
	ParseReceipt(ctx context.Context, image []byte, mimeType string, today time.Time) ([]ReceiptItem, error)
	// ParseReceiptText does the same from OCR text.
	ParseReceiptText(ctx context.Context, text string, today time.Time) ([]ReceiptItem, error)
}
