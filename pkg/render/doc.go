// Package render composes overlay passes onto a base map image.
//
// # Overview
//
// A render is a sequence of [Pass] values applied to one working copy of the
// base image. Each pass owns one kind of overlay:
//
//   - Speed camera markers (in the [marker] subpackage)
//   - District name labels (in the [label] subpackage)
//
// Both build on two shared primitives:
//
//   - [text]: greedy word wrapping and outlined text drawing
//   - [sprite]: icon loading, Lanczos resizing and recoloring
//
// # Composition
//
// [Compose] copies the base into a fresh NRGBA image and runs every enabled
// pass in slice order. Later passes paint over earlier ones, so callers pass
// markers before labels to keep names readable on top of discs and icons.
//
//	passes := []render.Pass{markers, labels}
//	img, report, err := render.Compose(ctx, base, passes, logger)
//
// A failing pass never stops the composition: its error is logged and kept
// in the [Report], and the remaining passes still run. Only a cancelled
// context aborts Compose. The base image is never modified.
//
// [marker]: github.com/mapcustomizer/mapcustomizer/pkg/render/marker
// [label]: github.com/mapcustomizer/mapcustomizer/pkg/render/label
// [text]: github.com/mapcustomizer/mapcustomizer/pkg/render/text
// [sprite]: github.com/mapcustomizer/mapcustomizer/pkg/render/sprite
package render
