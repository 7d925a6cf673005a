package io

import (
	"context"
	"fmt"
)

// LabelRecord is one district label. (X, Y) is the visual center of the
// wrapped text block, in base image pixels.
type LabelRecord struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// MarkerRecord is one speed camera marker. Speed is free text shown as the
// caption; an empty Speed means no caption.
type MarkerRecord struct {
	Name  string `json:"name"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Speed string `json:"speed"`
}

// String implements fmt.Stringer.
func (r LabelRecord) String() string {
	return fmt.Sprintf("%s (%d, %d)", r.Name, r.X, r.Y)
}

// String implements fmt.Stringer.
func (r MarkerRecord) String() string {
	if r.Speed == "" {
		return fmt.Sprintf("%s (%d, %d)", r.Name, r.X, r.Y)
	}
	return fmt.Sprintf("%s (%d, %d) %s", r.Name, r.X, r.Y, r.Speed)
}

// LabelSource supplies the records of a label pass.
type LabelSource interface {
	Labels(ctx context.Context) ([]LabelRecord, error)
}

// MarkerSource supplies the records of a marker pass.
type MarkerSource interface {
	Markers(ctx context.Context) ([]MarkerRecord, error)
}

// LabelFile reads label records from a JSON file each time they are asked for.
type LabelFile string

// Labels implements [LabelSource].
func (f LabelFile) Labels(ctx context.Context) ([]LabelRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ImportLabels(string(f))
}

// LabelList is an in-memory [LabelSource].
type LabelList []LabelRecord

// Labels implements [LabelSource].
func (l LabelList) Labels(context.Context) ([]LabelRecord, error) {
	return l, nil
}

// MarkerFile reads marker records from a JSON file each time they are asked for.
type MarkerFile string

// Markers implements [MarkerSource].
func (f MarkerFile) Markers(ctx context.Context) ([]MarkerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ImportMarkers(string(f))
}

// MarkerList is an in-memory [MarkerSource].
type MarkerList []MarkerRecord

// Markers implements [MarkerSource].
func (l MarkerList) Markers(context.Context) ([]MarkerRecord, error) {
	return l, nil
}
