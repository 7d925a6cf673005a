// Package pkg provides the libraries behind mapcustomizer.
//
// # Overview
//
// mapcustomizer takes a base map image and draws two overlays onto it:
// translucent speed camera markers with a recolored icon and speed caption,
// then district names as outlined, word-wrapped text. The pkg directory is
// organized into three areas:
//
//  1. Rendering: [render], [render/label], [render/marker], [render/text],
//     [render/sprite], [fonts] and [style]
//  2. Data: [io] for label and marker records, [imageio] for raster files
//     and [config] for the project file
//  3. Orchestration: [pipeline] with its [cache], [errors] and
//     [observability] support
//
// # Data flow
//
//	base map + records + style
//	         ↓
//	    [pipeline] load base image, check cache
//	         ↓
//	    [render] compose: markers pass, then labels pass
//	         ↓
//	    [imageio] encode by extension, write atomically
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    BaseImage: "resources/map.png",
//	    Labels:    pipeline.LabelOptions{Enabled: true, File: "resources/districts.json", Style: style.DefaultLabels()},
//	    Markers:   pipeline.MarkerOptions{Enabled: true, File: "resources/speed_cameras.json", Style: style.DefaultMarkers()},
//	})
//	if err != nil {
//	    return err
//	}
//	for _, p := range result.Report.Failed() {
//	    log.Printf("%s not drawn: %v", p.Name, p.Err)
//	}
//
// # Failure model
//
// A missing font falls back to the built-in face and a missing icon drops
// the icon; both only warn. A missing or malformed records file costs its
// own pass and nothing else. Only an unreadable base image or an unwritable
// output fails the render.
package pkg
