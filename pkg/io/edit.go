package io

import "github.com/mapcustomizer/mapcustomizer/pkg/errors"

// AppendMarker returns recs with rec added at the end.
func AppendMarker(recs []MarkerRecord, rec MarkerRecord) []MarkerRecord {
	out := make([]MarkerRecord, len(recs), len(recs)+1)
	copy(out, recs)
	return append(out, rec)
}

// AppendLabel returns recs with rec added at the end.
func AppendLabel(recs []LabelRecord, rec LabelRecord) []LabelRecord {
	out := make([]LabelRecord, len(recs), len(recs)+1)
	copy(out, recs)
	return append(out, rec)
}

// UndoLast returns recs without its final record, and that record. An empty
// slice yields ok == false.
func UndoLast[T any](recs []T) (rest []T, removed T, ok bool) {
	if len(recs) == 0 {
		return recs, removed, false
	}
	n := len(recs) - 1
	rest = make([]T, n)
	copy(rest, recs[:n])
	return rest, recs[n], true
}

// RemoveAt returns recs without the record at index i.
func RemoveAt[T any](recs []T, i int) ([]T, error) {
	if i < 0 || i >= len(recs) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "index %d out of range [0, %d)", i, len(recs))
	}
	out := make([]T, 0, len(recs)-1)
	out = append(out, recs[:i]...)
	return append(out, recs[i+1:]...), nil
}
