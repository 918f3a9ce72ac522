package receipt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"foodsync/internal/core"
	"foodsync/internal/fridge"
	"foodsync/internal/llm"
	"foodsync/internal/metrics"
	"foodsync/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrScanFailed is returned when a receipt could not be turned into items.
	ErrScanFailed = errors.New("receipt scan failed")
	// ErrUnsupportedMedia is returned for uploads that are not images.
	ErrUnsupportedMedia = errors.New("receipt must be an image")
)

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// FridgeImporter adds parsed items to a family inventory.
type FridgeImporter interface {
	Import(ctx context.Context, userID, familyID int64, inputs []fridge.CreateInput) ([]fridge.Item, error)
}

type Service struct {
	repo    Repository
	store   storage.ObjectStore
	parser  llm.Client
	fridge  FridgeImporter
	members core.MembershipChecker
	ocr     TextExtractor
	now     func() time.Time
	log     *zap.Logger
}

func NewService(
	repo Repository,
	store storage.ObjectStore,
	parser llm.Client,
	importer FridgeImporter,
	members core.MembershipChecker,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:    repo,
		store:   store,
		parser:  parser,
		fridge:  importer,
		members: members,
		now:     time.Now,
		log:     log,
	}
}

// WithOCR makes the worker read receipts with a local OCR engine and send
// only the extracted text to the model.
func (s *Service) WithOCR(ocr TextExtractor) *Service {
	s.ocr = ocr
	return s
}

// ScanBase64 parses a base64 receipt image synchronously. A data URI prefix
// is accepted.
func (s *Service) ScanBase64(ctx context.Context, userID int64, encoded string) ([]llm.ReceiptItem, error) {
	encoded = dataURIPrefix.ReplaceAllString(strings.TrimSpace(encoded), "")
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(image) == 0 {
		return nil, core.NewValidationError("image", "must be a base64 encoded image")
	}

	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}

	items, err := s.parser.ParseReceipt(ctx, image, mimeType, s.now())
	if err != nil {
		s.log.Warn("receipt scan failed", zap.Int64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}
	s.log.Info("receipt scanned", zap.Int64("userID", userID), zap.Int("items", len(items)))
	return items, nil
}

// Upload stores the receipt image and queues it for the worker.
func (s *Service) Upload(ctx context.Context, userID, familyID int64, file *multipart.FileHeader) (*Scan, error) {
	if err := core.RequireMember(ctx, s.members, familyID, userID); err != nil {
		return nil, fmt.Errorf("not a member of this family: %w", err)
	}

	if err := ValidateFileExtension(file.Filename); err != nil {
		return nil, err
	}
	kind, err := sniff(file)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(kind, "image/") {
		return nil, ErrUnsupportedMedia
	}

	id := uuid.New()
	key := storage.ReceiptKey(familyID, id.String(), file.Filename)
	if _, _, err := storage.UploadMultipartFile(ctx, s.store, key, file); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	scan := &Scan{
		ID:          id,
		UserID:      userID,
		FamilyID:    familyID,
		ObjectKey:   key,
		ContentType: kind,
		Status:      StatusPending,
		Items:       []llm.ReceiptItem{},
	}
	if err := s.repo.Create(ctx, scan); err != nil {
		return nil, err
	}

	s.log.Info("receipt queued",
		zap.String("scanID", id.String()),
		zap.Int64("familyID", familyID),
		zap.String("key", key),
	)
	return scan, nil
}

func sniff(file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

// Status returns a scan owned by userID.
func (s *Service) Status(ctx context.Context, userID int64, id uuid.UUID) (*Scan, error) {
	scan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if scan.UserID != userID {
		return nil, fmt.Errorf("receipt scan %s: %w", id, core.ErrForbidden)
	}
	return scan, nil
}

// Import adds the items of a completed scan to the family fridge. A scan can
// be imported once.
func (s *Service) Import(ctx context.Context, userID int64, id uuid.UUID) ([]fridge.Item, error) {
	scan, err := s.Status(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if scan.Status != StatusCompleted {
		return nil, fmt.Errorf("receipt scan is %s: %w", scan.Status, core.ErrConflict)
	}
	if scan.ImportedAt != nil {
		return nil, fmt.Errorf("receipt scan already imported: %w", core.ErrConflict)
	}

	inputs := toFridgeInputs(scan.FamilyID, scan.Items)
	if len(inputs) == 0 {
		return nil, core.NewValidationError("items", "receipt has no items to import")
	}

	if err := s.repo.ClaimImport(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.fridge.Import(ctx, userID, scan.FamilyID, inputs)
	if err != nil {
		if rerr := s.repo.ReleaseImport(context.WithoutCancel(ctx), id); rerr != nil {
			s.log.Error("release receipt import", zap.String("scanID", id.String()), zap.Error(rerr))
		}
		return nil, err
	}
	return items, nil
}

// toFridgeInputs drops unnamed lines and expiration dates the model did not
// format as YYYY-MM-DD.
func toFridgeInputs(familyID int64, items []llm.ReceiptItem) []fridge.CreateInput {
	inputs := make([]fridge.CreateInput, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		if r := []rune(name); len(r) > 200 {
			name = string(r[:200])
		}
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		in := fridge.CreateInput{FamilyID: familyID, Name: name, Quantity: &qty}
		if it.ExpirationDate != nil {
			if _, err := time.Parse("2006-01-02", *it.ExpirationDate); err == nil {
				d := *it.ExpirationDate
				in.ExpirationDate = &d
			}
		}
		inputs = append(inputs, in)
	}
	return inputs
}

// finishTimeout bounds the status write after a job, which runs even when the
// worker context is already cancelled.
const finishTimeout = 10 * time.Second

// ProcessOne claims one pending scan and processes it. It reports whether a
// scan was found. A scan that cannot be parsed is marked failed and is not an
// error for the caller; only repository failures are returned.
func (s *Service) ProcessOne(ctx context.Context) (bool, error) {
	scan, err := s.repo.ClaimPending(ctx)
	if err != nil {
		return false, fmt.Errorf("claim pending scan: %w", err)
	}
	if scan == nil {
		return false, nil
	}

	start := time.Now()
	defer func() { metrics.ReceiptJobDuration.Observe(time.Since(start).Seconds()) }()

	log := s.log.With(zap.String("scanID", scan.ID.String()))
	log.Info("receipt processing")

	items, stage, err := s.extract(ctx, scan)

	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if err != nil {
		metrics.ReceiptJobsFailed.WithLabelValues(stage).Inc()
		log.Warn("receipt failed", zap.String("stage", stage), zap.Error(err))
		if ferr := s.repo.Fail(finishCtx, scan.ID, err.Error()); ferr != nil {
			return true, ferr
		}
		return true, nil
	}

	if err := s.repo.Complete(finishCtx, scan.ID, items); err != nil {
		return true, err
	}
	metrics.ReceiptJobsCompleted.Inc()
	log.Info("receipt done", zap.Int("items", len(items)))
	return true, nil
}

func (s *Service) extract(ctx context.Context, scan *Scan) ([]llm.ReceiptItem, string, error) {
	body, contentType, err := s.store.Get(ctx, scan.ObjectKey)
	if err != nil {
		return nil, "download", err
	}
	defer body.Close()

	image, err := io.ReadAll(body)
	if err != nil {
		return nil, "download", err
	}
	if contentType == "" {
		contentType = scan.ContentType
	}

	if s.ocr != nil {
		text, err := s.ocr.ExtractText(ctx, image)
		if err != nil {
			return nil, "ocr", err
		}
		if strings.TrimSpace(text) == "" {
			return nil, "ocr", errors.New("no text found on receipt")
		}
		items, err := s.parser.ParseReceiptText(ctx, text, s.now())
		if err != nil {
			return nil, "parse", err
		}
		return items, "", nil
	}

	items, err := s.parser.ParseReceipt(ctx, image, contentType, s.now())
	if err != nil {
		return nil, "parse", err
	}
	return items, "", nil
}
