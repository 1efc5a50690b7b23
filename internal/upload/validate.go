package upload

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// Validate applies the upload filters to fh: presence, size limit and image
// content type. Both the declared Content-Type and the sniffed content must be images.
func Validate(fh *multipart.FileHeader, limit int64) error {
	if fh == nil {
		return ErrUploadMissing
	}

	if limit > 0 && fh.Size > limit {
		return fmt.Errorf("%w: file exceeds %s limit", ErrUploadTooLarge, humanize.IBytes(uint64(limit)))
	}

	if declared := fh.Header.Get("Content-Type"); declared != "" && !isImageMIME(declared) {
		return fmt.Errorf("%w: declared type %s", ErrUploadRejectedType, declared)
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(io.LimitReader(f, 3072))
	if err != nil {
		return fmt.Errorf("inspect upload: %w", err)
	}
	if !isImageMIME(detected.String()) {
		return fmt.Errorf("%w: detected type %s", ErrUploadRejectedType, detected.String())
	}
	return nil
}

func isImageMIME(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		mediaType = value
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}
