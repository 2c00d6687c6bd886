package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/observability"
	"github.com/matzehuels/pageviz/pkg/render"
	"github.com/matzehuels/pageviz/pkg/render/dot"
	"github.com/matzehuels/pageviz/pkg/render/svg"
	"github.com/matzehuels/pageviz/pkg/view"
)

// Render generates output artifacts in the requested formats.
//
// g is only needed for [FormatGraph] and may be nil otherwise.
func Render(ctx context.Context, p view.Projection, g *graph.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var painted []byte // FormatSVG, shared by PNG and PDF
	paint := func() []byte {
		if painted == nil {
			painted = svg.Render(p, svg.Options{
				Background:    opts.Background,
				ShowSummaries: opts.ShowSummaries,
			})
		}
		return painted
	}

	for _, format := range opts.Formats {
		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, format)

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = paint()
		case FormatPNG:
			data, err = render.ToPNGContext(ctx, paint(), DefaultPNGScale)
		case FormatPDF:
			data, err = render.ToPDFContext(ctx, paint())
		case FormatDOT:
			data = []byte(dot.ToDOT(p, dot.Options{Detailed: opts.DetailedDOT}))
		case FormatDOTSVG:
			data, err = dot.RenderSVG(ctx, dot.ToDOT(p, dot.Options{Detailed: opts.DetailedDOT}))
		case FormatJSON:
			data, err = render.EncodeJSON(p)
		case FormatYAML:
			data, err = render.EncodeYAML(p)
		case FormatGraph:
			if g == nil {
				err = fmt.Errorf("no graph to export")
				break
			}
			data, err = graph.MarshalGraph(g)
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}

		observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
