package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvia/clusterplan/pkg/errors"
	"github.com/planvia/clusterplan/pkg/graphio"
)

// embedOpts holds the command-line flags for the embed command.
type embedOpts struct {
	output  string // output file path (stdout if empty)
	solver  string // named solver for the reduced instance
	prune   bool   // remove constraint-free pipes before solving
	augment bool   // report the boundary augmentation trace
	refresh bool   // bypass the embedding cache
	noCache bool   // disable caching entirely
	config  string // optional TOML config file
}

// newEmbedCmd creates the embed command, which computes a cluster-planar
// embedding and writes the embedded document back out as JSON.
func newEmbedCmd() *cobra.Command {
	var opts embedOpts

	cmd := &cobra.Command{
		Use:   "embed <file>",
		Short: "Compute a cluster-planar embedding",
		Long: `Compute a cluster-planar embedding of a clustered graph.

On success the document is written back out with rotation fields on any
node whose cyclic edge order the embedder changed. A non-cluster-planar
input is reported as a failure.

Examples:
  clusterplan embed graph.json -o embedded.json
  clusterplan embed --augment graph.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbed(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.solver, "solver", "", "solver for the reduced instance (default: trivial)")
	cmd.Flags().BoolVar(&opts.prune, "prune", false, "remove constraint-free pipes before solving")
	cmd.Flags().BoolVar(&opts.augment, "augment", false, "log the boundary augmentation trace")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the embedding cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.config, "config", "", "TOML config file")

	return cmd
}

func runEmbed(cmd *cobra.Command, input string, opts *embedOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	pipeOpts, err := loadOptions(opts.config)
	if err != nil {
		return err
	}
	if opts.solver != "" {
		pipeOpts.Solver = opts.solver
	}
	if cmd.Flags().Changed("prune") {
		pipeOpts.Prune = opts.prune
	}
	pipeOpts.Augment = opts.augment
	pipeOpts.Refresh = opts.refresh

	doc, err := loadDocument(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner := newRunner(ctx, opts.noCache)
	defer runner.Close()

	prog := newProgress(logger)
	emb, err := runner.Embed(ctx, doc, pipeOpts)
	if err != nil {
		return err
	}
	if !emb.ClusterPlanar {
		return errors.New(errors.ErrCodeNotClusterPlanar, "%s is not cluster-planar", doc.Name)
	}
	prog.done("Embedding complete")

	if opts.augment {
		logger.Infof("Augmentation trace: %d adjacency pairs", len(emb.Augmentation))
	}

	out := graphio.FromInstance(emb.Instance)
	data, err := graphio.MarshalDocument(out)
	if err != nil {
		return err
	}
	w, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer w.Close()
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Embedded %s", doc.Name)
		printFile(opts.output)
		printNextStep("Render the embedding", fmt.Sprintf("%s render %s", appName, opts.output))
	}
	return nil
}
