package receipt

import (
	"fmt"
	"path/filepath"
	"strings"
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
}

// ValidateFileExtension rejects uploads whose name does not look like a photo.
func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == "" {
		return fmt.Errorf("%w: file extension missing", ErrUnsupportedMedia)
	}
	if !allowedExt[ext] {
		return fmt.Errorf("%w: %s files are not accepted", ErrUnsupportedMedia, ext)
	}
	return nil
}
