package receipt

import (
	"time"

	"foodsync/internal/llm"

	"github.com/google/uuid"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Scan is one uploaded receipt going through the asynchronous pipeline.
type Scan struct {
	ID           uuid.UUID         `json:"id"`
	UserID       int64             `json:"userId"`
	FamilyID     int64             `json:"familyId"`
	ObjectKey    string            `json:"-"`
	ContentType  string            `json:"contentType"`
	Status       string            `json:"status"`
	Items        []llm.ReceiptItem `json:"items"`
	ErrorMessage *string           `json:"errorMessage"`
	ImportedAt   *time.Time        `json:"importedAt"`
	ProcessedAt  *time.Time        `json:"processedAt"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type ScanInput struct {
	Image string `json:"image" binding:"required"`
}
