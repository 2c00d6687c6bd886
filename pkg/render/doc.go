// Package render turns a view projection into output artifacts.
//
// # Overview
//
// A [view.Projection] is the visible, annotated subset of a positioned
// outline graph. This package and its subpackages encode it in several
// formats:
//
//   - SVG cards and connectors drawn with svgo (in [svg] subpackage)
//   - Graphviz DOT source and Graphviz-drawn SVG (in [dot] subpackage)
//   - JSON and YAML documents ([EncodeJSON], [EncodeYAML])
//   - PDF and PNG converted from SVG ([ToPDF], [ToPNG])
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	data := svg.Render(projection, svg.Options{})
//	pdf, err := render.ToPDF(data)
//	png, err := render.ToPNG(data, 2.0)  // 2x scale
//
// [view.Projection]: github.com/matzehuels/pageviz/pkg/view.Projection
// [svg]: github.com/matzehuels/pageviz/pkg/render/svg
// [dot]: github.com/matzehuels/pageviz/pkg/render/dot
package render
