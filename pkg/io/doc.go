// Package io reads and writes the point files the overlay passes consume.
//
// Two record kinds exist, both stored as flat JSON arrays:
//
//	labels.json:   [{"name": "North District", "x": 123, "y": 456}]
//	markers.json:  [{"name": "Camera 1", "x": 200, "y": 300, "speed": "50 km/h"}]
//
// # Importing
//
// [ImportLabels] and [ImportMarkers] open a file and decode it with
// [ReadLabels] or [ReadMarkers]. Decoding is strict about the fields the
// renderer needs: a record without "name", "x" or "y", or with a value of the
// wrong JSON type, fails the whole load and the error names the record
// index. Unknown fields are ignored. "speed" is optional; a missing speed is
// the empty string.
//
// A missing file is reported with code RESOURCE_MISSING and a decode failure
// with MALFORMED_INPUT (see [github.com/mapcustomizer/mapcustomizer/pkg/errors]).
//
// # Exporting
//
// [ExportLabels] and [ExportMarkers] write pretty-printed JSON (4-space
// indent, non-ASCII kept as UTF-8) through a temporary file so a crash never
// leaves a half-written point file.
//
// # Sources
//
// Render passes take their records from a [LabelSource] or [MarkerSource].
// [LabelFile] and [MarkerFile] read lazily from disk on every render;
// [LabelList] and [MarkerList] wrap records already in memory, for example a
// request body.
//
// # Editing
//
// [AppendMarker], [UndoLast] and [RemoveAt] back the point editing commands.
// They return new slices and never modify their input.
package io
