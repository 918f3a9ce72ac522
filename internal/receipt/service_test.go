package receipt

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"foodsync/internal/core"
	"foodsync/internal/fridge"
	"foodsync/internal/llm"
	"foodsync/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type staticMembers map[[2]int64]bool

func (m staticMembers) IsMember(_ context.Context, familyID, userID int64) (bool, error) {
	return m[[2]int64{familyID, userID}], nil
}

// fakeParser answers receipt parses with fixed items.
type fakeParser struct {
	items     []llm.ReceiptItem
	err       error
	imageMime string
	text      string
}

func (f *fakeParser) GenerateMeals(context.Context, llm.MealRequest) (llm.MealPlan, error) {
	return llm.MealPlan{}, errors.New("not used")
}

func (f *fakeParser) ParseReceipt(_ context.Context, _ []byte, mimeType string, _ time.Time) ([]llm.ReceiptItem, error) {
	f.imageMime = mimeType
	return f.items, f.err
}

func (f *fakeParser) ParseReceiptText(_ context.Context, text string, _ time.Time) ([]llm.ReceiptItem, error) {
	f.text = text
	return f.items, f.err
}

type fakeOCR struct {
	text string
	err  error
}

func (f fakeOCR) ExtractText(context.Context, []byte) (string, error) { return f.text, f.err }

type fixture struct {
	svc    *Service
	repo   *InMemoryRepository
	store  *storage.MemoryStore
	parser *fakeParser
	fridge *fridge.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	members := staticMembers{{1, 10}: true}
	fr := fridge.NewService(fridge.NewInMemoryRepository(), members, zap.NewNop())
	repo := NewInMemoryRepository()
	store := storage.NewMemoryStore()
	parser := &fakeParser{items: []llm.ReceiptItem{
		{Name: "Lait", Quantity: 2, ExpirationDate: strPtr("2025-03-17")},
		{Name: "Pommes", Quantity: 6},
	}}
	svc := NewService(repo, store, parser, fr, members, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, repo: repo, store: store, parser: parser, fridge: fr}
}

func strPtr(s string) *string { return &s }

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("receipt", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["receipt"][0]
}

func TestScanBase64(t *testing.T) {
	f := newFixture(t)
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

	items, err := f.svc.ScanBase64(context.Background(), 10, encoded)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "image/png", f.parser.imageMime)
}

func TestScanBase64_InvalidImage(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ScanBase64(context.Background(), 10, "%%%not base64")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestScanBase64_ParserFailure(t *testing.T) {
	f := newFixture(t)
	f.parser.err = llm.ErrInvalidOutput

	_, err := f.svc.ScanBase64(context.Background(), 10, base64.StdEncoding.EncodeToString(pngHeader))
	assert.ErrorIs(t, err, ErrScanFailed)
}

func TestUpload_QueuesScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scan, err := f.svc.Upload(ctx, 10, 1, fileHeader(t, "Ticket.PNG", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, scan.Status)
	assert.Equal(t, "image/png", scan.ContentType)
	assert.Equal(t, "receipts/1/"+scan.ID.String()+".png", scan.ObjectKey)

	body, _, err := f.store.Get(ctx, scan.ObjectKey)
	require.NoError(t, err)
	body.Close()
}

func TestUpload_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, 99, 1, fileHeader(t, "t.png", pngHeader))
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.Upload(ctx, 10, 1, fileHeader(t, "t.txt", []byte("just some text")))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = f.svc.Upload(ctx, 10, 1, fileHeader(t, "t.png", []byte("just some text")))
	assert.ErrorIs(t, err, ErrUnsupportedMedia, "content is sniffed, not trusted from the name")
}

func TestProcessOne_ImagePath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	found, err := f.svc.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	scan, err := f.svc.Upload(ctx, 10, 1, fileHeader(t, "t.png", pngHeader))
	require.NoError(t, err)

	found, err = f.svc.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := f.svc.Status(ctx, 10, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Len(t, got.Items, 2)
	assert.NotNil(t, got.ProcessedAt)
	assert.Equal(t, "image/png", f.parser.imageMime)
}

func TestProcessOne_OCRPath(t *testing.T) {
	f := newFixture(t)
	f.svc.WithOCR(fakeOCR{text: "LAIT 1L  1.20\nPOMMES  2.40"})
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, 10, 1, fileHeader(t, "t.png", pngHeader))
	require.NoError(t, err)

	_, err = f.svc.ProcessOne(ctx)
	require.NoError(t, err)
	assert.Contains(t, f.parser.text, "POMMES")
	assert.Empty(t, f.parser.imageMime)
}

func TestProcessOne_FailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.svc.WithOCR(fakeOCR{text: "   "})
	ctx := context.Background()

	scan, err := f.svc.Upload(ctx, 10, 1, fileHeader(t, "t.png", pngHeader))
	require.NoError(t, err)

	found, err := f.svc.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := f.repo.Get(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "no text")
}

func TestStatus_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scan, err := f.svc.Upload(ctx, 10, 1, fileHeader(t, "t.png", pngHeader))
	require.NoError(t, err)

	_, err = f.svc.Status(ctx, 11, scan.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scan, err := f.svc.Upload(ctx, 10, 1, fileHeader(t, "t.png", pngHeader))
	require.NoError(t, err)

	_, err = f.svc.Import(ctx, 10, scan.ID)
	assert.ErrorIs(t, err, core.ErrConflict, "pending scans cannot be imported")

	_, err = f.svc.ProcessOne(ctx)
	require.NoError(t, err)

	items, err := f.svc.Import(ctx, 10, scan.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Lait", items[0].Name)
	require.NotNil(t, items[0].ExpirationDate)
	assert.Equal(t, "2025-03-17", items[0].ExpirationDate.Format("2006-01-02"))

	inventory, err := f.fridge.List(ctx, 10, 1)
	require.NoError(t, err)
	assert.Len(t, inventory, 2)

	_, err = f.svc.Import(ctx, 10, scan.ID)
	assert.ErrorIs(t, err, core.ErrConflict)
}

// gatedImporter holds every import until release is closed.
type gatedImporter struct {
	inner   FridgeImporter
	entered chan struct{}
	release chan struct{}
}

func (g *gatedImporter) Import(ctx context.Context, userID, familyID int64, inputs []fridge.CreateInput) ([]fridge.Item, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.inner.Import(ctx, userID, familyID, inputs)
}

type failingImporter struct{ err error }

func (f failingImporter) Import(context.Context, int64, int64, []fridge.CreateInput) ([]fridge.Item, error) {
	return nil, f.err
}

func completedScan(t *testing.T, f fixture) *Scan {
	t.Helper()
	ctx := context.Background()
	scan, err := f.svc.Upload(ctx, 10, 1, fileHeader(t, "t.png", pngHeader))
	require.NoError(t, err)
	_, err = f.svc.ProcessOne(ctx)
	require.NoError(t, err)
	return scan
}

func TestImport_ConcurrentCallsInsertOnce(t *testing.T) {
	f := newFixture(t)
	scan := completedScan(t, f)
	gate := &gatedImporter{inner: f.fridge, entered: make(chan struct{}, 2), release: make(chan struct{})}
	f.svc.fridge = gate
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := f.svc.Import(ctx, 10, scan.ID)
		first <- err
	}()

	select {
	case <-gate.entered:
	case <-time.After(time.Second):
		t.Fatal("first import never reached the fridge")
	}

	_, err := f.svc.Import(ctx, 10, scan.ID)
	assert.ErrorIs(t, err, core.ErrConflict, "second import must lose while the first is in flight")

	close(gate.release)
	require.NoError(t, <-first)
	assert.Len(t, gate.entered, 0, "only one import may reach the fridge")

	inventory, err := f.fridge.List(ctx, 10, 1)
	require.NoError(t, err)
	assert.Len(t, inventory, 2)
}

func TestImport_FailureReleasesClaim(t *testing.T) {
	f := newFixture(t)
	scan := completedScan(t, f)
	ctx := context.Background()

	f.svc.fridge = failingImporter{err: errors.New("db down")}
	_, err := f.svc.Import(ctx, 10, scan.ID)
	require.Error(t, err)

	got, err := f.repo.Get(ctx, scan.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ImportedAt)

	f.svc.fridge = f.fridge
	items, err := f.svc.Import(ctx, 10, scan.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

// cancellingParser cancels the job context mid-parse, like a shutdown would.
type cancellingParser struct {
	fakeParser
	cancel context.CancelFunc
}

func (c *cancellingParser) ParseReceipt(ctx context.Context, _ []byte, _ string, _ time.Time) ([]llm.ReceiptItem, error) {
	c.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

// ctxRepository refuses writes on a done context, as a database driver does.
type ctxRepository struct {
	*InMemoryRepository
}

func (r ctxRepository) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.InMemoryRepository.Fail(ctx, id, reason)
}

func (r ctxRepository) Complete(ctx context.Context, id uuid.UUID, items []llm.ReceiptItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.InMemoryRepository.Complete(ctx, id, items)
}

func TestProcessOne_CancelledContextStillRecordsFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	members := staticMembers{{1, 10}: true}
	repo := NewInMemoryRepository()
	store := storage.NewMemoryStore()
	parser := &cancellingParser{cancel: cancel}
	svc := NewService(ctxRepository{repo}, store, parser, nil, members, zaptest.NewLogger(t))

	scan, err := svc.Upload(context.Background(), 10, 1, fileHeader(t, "t.png", pngHeader))
	require.NoError(t, err)

	found, err := svc.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := repo.Get(context.Background(), scan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "context canceled")
}

func TestClaimPending_ReclaimsExpiredLease(t *testing.T) {
	repo := NewInMemoryRepository()
	clock := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, repo.Create(ctx, &Scan{ID: id, UserID: 10, FamilyID: 1, Status: StatusPending}))

	claimed, err := repo.ClaimPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)

	again, err := repo.ClaimPending(ctx)
	require.NoError(t, err)
	assert.Nil(t, again, "a live lease is not reclaimed")

	clock = clock.Add(DefaultProcessingLease + time.Second)
	again, err = repo.ClaimPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, id, again.ID)
	assert.Equal(t, StatusProcessing, again.Status)

	require.NoError(t, repo.Complete(ctx, id, nil))
	clock = clock.Add(2 * DefaultProcessingLease)
	again, err = repo.ClaimPending(ctx)
	require.NoError(t, err)
	assert.Nil(t, again, "finished scans are never reclaimed")
}

func TestClaimImport_RequiresCompletedScan(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, repo.Create(ctx, &Scan{ID: id, UserID: 10, FamilyID: 1, Status: StatusPending}))

	assert.ErrorIs(t, repo.ClaimImport(ctx, id), core.ErrConflict)

	require.NoError(t, repo.Complete(ctx, id, nil))
	require.NoError(t, repo.ClaimImport(ctx, id))
	assert.ErrorIs(t, repo.ClaimImport(ctx, id), core.ErrConflict)

	require.NoError(t, repo.ReleaseImport(ctx, id))
	assert.NoError(t, repo.ClaimImport(ctx, id))
}

func TestToFridgeInputs(t *testing.T) {
	inputs := toFridgeInputs(3, []llm.ReceiptItem{
		{Name: "  ", Quantity: 1},
		{Name: "Beurre", Quantity: 0, ExpirationDate: strPtr("17/03/2025")},
	})
	require.Len(t, inputs, 1)
	assert.Equal(t, int64(3), inputs[0].FamilyID)
	assert.Equal(t, 1.0, *inputs[0].Quantity)
	assert.Nil(t, inputs[0].ExpirationDate)
}

func TestRunWorker_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	scan, err := f.svc.Upload(context.Background(), 10, 1, fileHeader(t, "t.png", pngHeader))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunWorker(ctx, f.svc, time.Hour, zap.NewNop()) }()

	require.Eventually(t, func() bool {
		got, err := f.repo.Get(context.Background(), scan.ID)
		return err == nil && got.Status == StatusCompleted
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestValidateFileExtension(t *testing.T) {
	for _, name := range []string{"ticket.jpg", "TICKET.JPEG", "scan.png", "a.webp", "photo.heic"} {
		assert.NoError(t, ValidateFileExtension(name), name)
	}
	for _, name := range []string{"ticket", "menu.pdf", "notes.txt"} {
		assert.ErrorIs(t, ValidateFileExtension(name), ErrUnsupportedMedia, name)
	}
}
