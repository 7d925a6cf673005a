package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxRecordNameLen bounds record names accepted from files and requests.
const maxRecordNameLen = 256

// ValidateRecordName checks a label or marker name.
//
// The rules mirror what a point capture tool accepts:
//   - not empty after trimming whitespace
//   - no control characters (a newline would break single-line captions)
//   - at most 256 characters
func ValidateRecordName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "record name cannot be empty")
	}
	if len([]rune(name)) > maxRecordNameLen {
		return New(ErrCodeInvalidInput, "record name too long (max %d characters)", maxRecordNameLen)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "record name contains control characters")
		}
	}
	return nil
}

// ValidateRange checks that v lies in [lo, hi]. field names the option in
// the returned INVALID_CONFIG error. A NaN v is out of every range.
func ValidateRange[T int | float64](field string, v, lo, hi T) error {
	if !(v >= lo && v <= hi) {
		return New(ErrCodeInvalidConfig, "%s must be between %v and %v, got %v", field, lo, hi, v)
	}
	return nil
}

// supportedOutputExts lists extensions the encoder can produce.
var supportedOutputExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// ValidateOutputPath checks that path names a file whose extension selects a
// supported raster format.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "output path contains a null byte")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedOutputExts[ext] {
		return New(ErrCodeInvalidFormat, "unsupported output format %q (use .png, .jpg, .gif, .bmp or .tif)", ext)
	}
	return nil
}
