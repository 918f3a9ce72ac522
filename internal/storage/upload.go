package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
)

// ReceiptKey is the object key of a receipt image:
// receipts/<family>/<scan id><ext>.
func ReceiptKey(familyID int64, scanID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("receipts/%d/%s%s", familyID, scanID, ext)
}

// UploadMultipartFile stores an uploaded form file and returns its URL and
// content type. The type falls back to sniffing when the client sent none.
func UploadMultipartFile(ctx context.Context, store ObjectStore, key string, file *multipart.FileHeader) (string, string, error) {
	f, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := f.Read(head)
		contentType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", "", err
		}
	}

	url, err := store.Put(ctx, key, f, contentType)
	if err != nil {
		return "", "", err
	}
	return url, contentType, nil
}
