package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvia/clusterplan/pkg/errors"
	"github.com/planvia/clusterplan/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (multiple)
	formats  []string // output formats: "json", "dot", "svg"
	detailed bool     // include graph handles in node labels
	prune    bool     // remove constraint-free pipes before solving
	refresh  bool     // bypass the artifact cache
	noCache  bool     // disable caching entirely
	config   string   // optional TOML config file
}

// newRenderCmd creates the render command, which embeds a clustered graph
// and renders the result in one or more formats.
//
// Default settings:
//   - format: svg
//   - output: derived from the input file name
func newRenderCmd() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a cluster-planar embedding",
		Long: `Render a cluster-planar embedding of a clustered graph.

The input is embedded first; rendering fails if it is not cluster-planar.
Each requested format is written to its own file named after the input
(or --output).

Examples:
  clusterplan render graph.json                 # graph.svg
  clusterplan render -f dot,svg graph.json      # graph.dot, graph.svg
  clusterplan render -f json -o out.json graph.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include graph handles in node labels")
	cmd.Flags().BoolVar(&opts.prune, "prune", false, "remove constraint-free pipes before solving")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the artifact cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.config, "config", "", "TOML config file")

	return cmd
}

func runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	pipeOpts, err := loadOptions(opts.config)
	if err != nil {
		return err
	}
	pipeOpts.Formats = opts.formats
	if cmd.Flags().Changed("detailed") {
		pipeOpts.Detailed = opts.detailed
	}
	if cmd.Flags().Changed("prune") {
		pipeOpts.Prune = opts.prune
	}
	pipeOpts.Refresh = opts.refresh

	doc, err := loadDocument(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	logger.Infof("Rendering %s: %d nodes, %d edges, %d clusters",
		doc.Name, len(doc.Nodes), len(doc.Edges), len(doc.Clusters))

	runner := newRunner(ctx, opts.noCache)
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, doc, pipeOpts)
	if err != nil {
		return err
	}
	if !result.ClusterPlanar {
		return errors.New(errors.ErrCodeNotClusterPlanar, "%s is not cluster-planar", doc.Name)
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(result.Artifacts)))

	paths, err := writeArtifacts(input, opts, result)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", doc.Name)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount,
		result.CacheInfo.EmbedHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each rendered format to its own file. With a
// single format, --output names the file directly; with several it is a
// base path and each file gets the format as its extension.
func writeArtifacts(input string, opts *renderOpts, result *pipeline.Result) ([]string, error) {
	single := len(opts.formats) == 1 && opts.output != ""

	var paths []string
	for _, format := range opts.formats {
		path := opts.output
		if !single {
			path = fmt.Sprintf("%s.%s", basePath(opts.output, input), format)
		}
		out, err := openOutput(path)
		if err != nil {
			return nil, err
		}
		if _, err := out.Write(result.Artifacts[format]); err != nil {
			out.Close()
			return nil, err
		}
		if err := out.Close(); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
