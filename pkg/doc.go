// Package pkg provides the core libraries for Heightchart height comparison.
//
// # Overview
//
// Heightchart lines people and objects up on a common baseline against a
// ruled scale, and fits the row to the available width by compressing the
// scale. The pkg directory is organized into four areas:
//
//  1. Domain: [avatar], [units], [scale], [store]
//  2. Layout: [compress], [board], [board/sink]
//  3. Assets and sharing: [colorize], [share], [cache]
//  4. Plumbing: [config], [io], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow through Heightchart:
//
//	chart file / HTTP / terminal input
//	         ↓
//	    [store] (collection with undo history and zoom)
//	         ↓
//	    [board] (desktop or mobile strategy, driven by [compress])
//	         ↓
//	    [board.Layout] value
//	         ↓
//	    [board/sink] SVG/PDF/PNG/JSON output
//
// # Quick Start
//
// Lay out two avatars and render an SVG:
//
//	st := store.New(store.WithInitial([]avatar.Avatar{
//	    {Kind: avatar.KindPerson, Name: "Ana", Height: 165, Color: "#e11d48"},
//	    {Kind: avatar.KindObject, Name: "Door", Height: 203},
//	}))
//	l := board.Converge(st, board.DefaultConfig(), 500)
//	svg := sink.RenderSVG(l)
//
// # Main Packages
//
// [store] - The single source of truth: an ordered avatar collection with
// bounded undo/redo history, permutation-checked reordering and a clamped
// zoom level. Subscribers are notified synchronously after each change.
//
// [compress] - The two compression engines. The continuous engine solves
// for the multiplier that makes the row fit; the convergent engine steps
// toward it one frame at a time through a [compress.Scheduler].
//
// [board] - Binds a store to a container size and picks the strategy for
// the viewport class. [board.Converge] runs a one-shot layout to completion.
//
// [colorize] - Fetches person assets over HTTP or from disk, sets their
// fill color and caches the recolored markup.
//
// [share] - The share boundary: the client and share state used by the
// CLI, and the reference server with memory, file, Redis and MongoDB stores.
//
// [cache] - Caches for recolored assets and share links with null, memory,
// file and Redis backends.
//
// [avatar]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/avatar
// [units]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/units
// [scale]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/scale
// [store]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/store
// [compress]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/compress
// [board]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/board
// [board/sink]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/board/sink
// [colorize]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/colorize
// [share]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/share
// [cache]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/io
// [errors]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/heightchart/pkg/buildinfo
package pkg
