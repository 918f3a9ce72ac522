package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptKey(t *testing.T) {
	assert.Equal(t, "receipts/7/abc.jpg", ReceiptKey(7, "abc", "Ticket.JPG"))
	assert.Equal(t, "receipts/7/abc", ReceiptKey(7, "abc", "ticket"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, _, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	url, err := store.Put(ctx, "receipts/1/a.png", bytes.NewReader([]byte("png")), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "memory://receipts/1/a.png", url)

	rc, ct, err := store.Get(ctx, "receipts/1/a.png")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", ct)
}

// formFile builds a multipart.FileHeader the way gin hands it to handlers.
func formFile(t *testing.T, name string, header textproto.MIMEHeader, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header.Set("Content-Disposition", `form-data; name="receipt"; filename="`+name+`"`)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["receipt"][0]
}

func TestUploadMultipartFile_SniffsContentType(t *testing.T) {
	store := NewMemoryStore()
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	fh := formFile(t, "ticket.png", textproto.MIMEHeader{}, png)

	_, ct, err := UploadMultipartFile(context.Background(), store, "k", fh)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	rc, _, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, png, data)
}

func TestUploadMultipartFile_KeepsDeclaredType(t *testing.T) {
	store := NewMemoryStore()
	fh := formFile(t, "ticket.jpg", textproto.MIMEHeader{"Content-Type": {"image/jpeg"}}, []byte("jpeg-bytes"))

	_, ct, err := UploadMultipartFile(context.Background(), store, "k", fh)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
}
