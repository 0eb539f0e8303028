package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	solver  string // named solver for the reduced instance
	prune   bool   // remove constraint-free pipes before solving
	refresh bool   // bypass the verdict cache
	noCache bool   // disable caching entirely
	config  string // optional TOML config file
}

// newCheckCmd creates the check command, which decides cluster-planarity
// without producing an embedding.
func newCheckCmd() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Decide whether a clustered graph is cluster-planar",
		Long: `Decide whether a clustered graph is cluster-planar.

The input is a JSON document describing nodes, edges, and the cluster
hierarchy. Use "-" to read from stdin.

Examples:
  clusterplan check graph.json
  clusterplan check --prune --refresh graph.json
  cat graph.json | clusterplan check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.solver, "solver", "", "solver for the reduced instance (default: trivial)")
	cmd.Flags().BoolVar(&opts.prune, "prune", false, "remove constraint-free pipes before solving")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the verdict cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.config, "config", "", "TOML config file")

	return cmd
}

func runCheck(cmd *cobra.Command, input string, opts *checkOpts) error {
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
	pipeOpts.Refresh = opts.refresh

	doc, err := loadDocument(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	logger.Infof("Checking %s: %d nodes, %d edges, %d clusters",
		doc.Name, len(doc.Nodes), len(doc.Edges), len(doc.Clusters))

	runner := newRunner(ctx, opts.noCache)
	defer runner.Close()

	prog := newProgress(logger)
	planar, cached, err := runner.CheckWithCacheInfo(ctx, doc, pipeOpts)
	if err != nil {
		return err
	}
	prog.done("Check complete")

	if planar {
		printSuccess("%s is cluster-planar", doc.Name)
	} else {
		printError("%s is not cluster-planar", doc.Name)
	}
	printStats(len(doc.Nodes), len(doc.Edges), cached)
	if planar {
		printNextStep("Compute the embedding", fmt.Sprintf("%s embed %s", appName, input))
	}
	return nil
}
