package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mapcustomizer/mapcustomizer/internal/atomicfile"
	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
)

// WriteLabels encodes records as an indented JSON array and writes it to w.
// A nil slice is written as an empty array.
func WriteLabels(w io.Writer, recs []LabelRecord) error {
	if recs == nil {
		recs = []LabelRecord{}
	}
	return writeJSON(w, recs)
}

// WriteMarkers encodes records as an indented JSON array and writes it to w.
func WriteMarkers(w io.Writer, recs []MarkerRecord) error {
	if recs == nil {
		recs = []MarkerRecord{}
	}
	return writeJSON(w, recs)
}

// ExportLabels atomically replaces the file at path with recs.
func ExportLabels(path string, recs []LabelRecord) error {
	var buf bytes.Buffer
	if err := WriteLabels(&buf, recs); err != nil {
		return err
	}
	return export(path, buf.Bytes())
}

// ExportMarkers atomically replaces the file at path with recs.
func ExportMarkers(path string, recs []MarkerRecord) error {
	var buf bytes.Buffer
	if err := WriteMarkers(&buf, recs); err != nil {
		return err
	}
	return export(path, buf.Bytes())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func export(path string, data []byte) error {
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "write %s", path)
	}
	return nil
}
