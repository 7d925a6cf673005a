package io

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
)

type rawLabel struct {
	Name *string `json:"name"`
	X    *int    `json:"x"`
	Y    *int    `json:"y"`
}

type rawMarker struct {
	Name  *string `json:"name"`
	X     *int    `json:"x"`
	Y     *int    `json:"y"`
	Speed *string `json:"speed"`
}

// ReadLabels decodes a JSON array of label records from r.
//
// Every record must carry "name", "x" and "y". The first record that does
// not, or that holds a value of the wrong type, fails the whole read with a
// MALFORMED_INPUT error naming its index. ReadLabels does not close r.
func ReadLabels(r io.Reader) ([]LabelRecord, error) {
	items, err := readArray(r)
	if err != nil {
		return nil, err
	}
	out := make([]LabelRecord, 0, len(items))
	for i, item := range items {
		var raw rawLabel
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "label record %d", i)
		}
		if err := require(i, "label", raw.Name != nil, raw.X != nil, raw.Y != nil); err != nil {
			return nil, err
		}
		out = append(out, LabelRecord{Name: *raw.Name, X: *raw.X, Y: *raw.Y})
	}
	return out, nil
}

// ReadMarkers decodes a JSON array of marker records from r. The rules of
// [ReadLabels] apply; "speed" is optional and defaults to "".
func ReadMarkers(r io.Reader) ([]MarkerRecord, error) {
	items, err := readArray(r)
	if err != nil {
		return nil, err
	}
	out := make([]MarkerRecord, 0, len(items))
	for i, item := range items {
		var raw rawMarker
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "marker record %d", i)
		}
		if err := require(i, "marker", raw.Name != nil, raw.X != nil, raw.Y != nil); err != nil {
			return nil, err
		}
		rec := MarkerRecord{Name: *raw.Name, X: *raw.X, Y: *raw.Y}
		if raw.Speed != nil {
			rec.Speed = *raw.Speed
		}
		out = append(out, rec)
	}
	return out, nil
}

// ImportLabels reads the label file at path. A missing file is reported as
// RESOURCE_MISSING; decode failures as MALFORMED_INPUT.
func ImportLabels(path string) ([]LabelRecord, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := ReadLabels(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "read %s", path)
	}
	return recs, nil
}

// ImportMarkers reads the marker file at path, with the same error
// classification as [ImportLabels].
func ImportMarkers(path string) ([]MarkerRecord, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := ReadMarkers(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "read %s", path)
	}
	return recs, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeResourceMissing, err, "records file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "open %s", path)
	}
	return f, nil
}

// readArray decodes a single top-level JSON array. An empty array is valid;
// null or anything after the array is not.
func readArray(r io.Reader) ([]json.RawMessage, error) {
	var items []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode records")
	}
	if items == nil {
		return nil, errors.New(errors.ErrCodeMalformedInput, "decode records: expected JSON array, got null")
	}
	if dec.More() {
		return nil, errors.New(errors.ErrCodeMalformedInput, "decode records: unexpected data after array")
	}
	return items, nil
}

func require(i int, kind string, hasName, hasX, hasY bool) error {
	switch {
	case !hasName:
		return errors.New(errors.ErrCodeMalformedInput, "%s record %d: missing %q", kind, i, "name")
	case !hasX:
		return errors.New(errors.ErrCodeMalformedInput, "%s record %d: missing %q", kind, i, "x")
	case !hasY:
		return errors.New(errors.ErrCodeMalformedInput, "%s record %d: missing %q", kind, i, "y")
	}
	return nil
}
