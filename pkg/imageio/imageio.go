// Package imageio loads base maps and writes composed overlays.
//
// Decoding goes through disintegration/imaging, which understands PNG, JPEG,
// GIF, BMP and TIFF; WebP decoding is registered from golang.org/x/image.
// The output format always follows the file extension.
package imageio

import (
	"bytes"
	stderrors "errors"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/mapcustomizer/mapcustomizer/internal/atomicfile"
	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
)

// ReadFile returns the raw bytes of the image at path. Every failure,
// including a missing file, is an IO_FAILURE: nothing can be rendered
// without a base image.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "base image %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "read %s", path)
	}
	return data, nil
}

// Decode decodes an encoded raster image.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "decode image")
	}
	return img, nil
}

// Load reads and decodes the image at path.
func Load(path string) (image.Image, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "load %s", path)
	}
	return img, nil
}

// FormatFor returns the encoding selected by the extension of path.
func FormatFor(path string) (imaging.Format, error) {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		ext := strings.ToLower(filepath.Ext(path))
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unsupported output extension %q", ext)
	}
	return f, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format imaging.Format) error {
	if err := imaging.Encode(w, img, format); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "encode %s", format)
	}
	return nil
}

// EncodeBytes encodes img into memory in the format selected by path.
func EncodeBytes(img image.Image, path string) ([]byte, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes img by the extension of path and writes it atomically,
// creating missing parent directories.
func Save(path string, img image.Image) error {
	data, err := EncodeBytes(img, path)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile atomically writes already encoded image bytes to path.
func WriteFile(path string, data []byte) error {
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "save %s", path)
	}
	return nil
}
