package receipt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// TextExtractor turns a receipt image into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Tesseract shells out to the tesseract binary.
type Tesseract struct {
	Binary string
}

func NewTesseract() *Tesseract {
	return &Tesseract{Binary: "tesseract"}
}

func (t *Tesseract) ExtractText(ctx context.Context, image []byte) (string, error) {
	tmp, err := os.CreateTemp("", "receipt-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Binary, tmp.Name(), "stdout")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}
