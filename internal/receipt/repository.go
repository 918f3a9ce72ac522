package receipt

import (
	"context"
	"time"

	"foodsync/internal/llm"

	"github.com/google/uuid"
)

// DefaultProcessingLease is how long a scan may stay in processing before
// another worker may claim it again.
const DefaultProcessingLease = 10 * time.Minute

type Repository interface {
	Create(ctx context.Context, s *Scan) error
	Get(ctx context.Context, id uuid.UUID) (*Scan, error)
	// ClaimPending marks the oldest pending scan, or a processing scan whose
	// lease ran out, as processing and returns it. It returns nil, nil when
	// nothing is waiting. Concurrent workers never claim the same scan.
	ClaimPending(ctx context.Context) (*Scan, error)
	Complete(ctx context.Context, id uuid.UUID, items []llm.ReceiptItem) error
	Fail(ctx context.Context, id uuid.UUID, reason string) error
	// ClaimImport sets importedAt on a completed scan that was never
	// imported. Any other state returns core.ErrConflict.
	ClaimImport(ctx context.Context, id uuid.UUID) error
	// ReleaseImport clears importedAt after a failed import.
	ReleaseImport(ctx context.Context, id uuid.UUID) error
}
