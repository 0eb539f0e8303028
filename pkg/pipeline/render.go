package pipeline

import (
	"context"
	"time"

	"github.com/planvia/clusterplan/pkg/errors"
	"github.com/planvia/clusterplan/pkg/graphio"
	"github.com/planvia/clusterplan/pkg/observability"
	"github.com/planvia/clusterplan/pkg/render/nodelink"
)

// =============================================================================
// Render Stage - Artifact Generation Per Format
// =============================================================================

// Render generates output artifacts for an embedded instance in the
// requested formats. The returned map is keyed by format.
func Render(ctx context.Context, in *graphio.Instance, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(in, format, opts)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, err
		}
		artifacts[format] = data
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, nil
}

// renderFormat produces a single artifact. SVG goes through DOT first.
func renderFormat(in *graphio.Instance, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		doc := graphio.FromInstance(in)
		data, err := graphio.MarshalDocument(doc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to marshal document")
		}
		return data, nil
	case FormatDOT:
		dot := nodelink.ToDOT(in, nodelink.Options{Detailed: opts.Detailed})
		return []byte(dot), nil
	case FormatSVG:
		dot := nodelink.ToDOT(in, nodelink.Options{Detailed: opts.Detailed})
		return nodelink.RenderSVG(dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}
