package pipeline

import (
	"context"
	"time"

	"github.com/planvia/clusterplan/pkg/errors"
	"github.com/planvia/clusterplan/pkg/graphio"
	"github.com/planvia/clusterplan/pkg/observability"
	"github.com/planvia/clusterplan/pkg/planar"
)

// =============================================================================
// Solve Stage - Verdict and Embedding Over a Parsed Instance
// =============================================================================

// solveOutcome carries the outputs of a plan run over an instance.
type solveOutcome struct {
	planar bool
	aug    []planar.AdjPair
	stats  Stats
}

// CheckDestructive decides cluster-planarity for an instance. The flatten
// pass mutates the instance's graph and tree in place and the undo log is
// never replayed, so the instance must not be reused afterwards. Callers
// that need the instance back should use EmbedClusterPlanar instead.
func CheckDestructive(ctx context.Context, in *graphio.Instance, opts Options) (bool, error) {
	if err := opts.ValidateForSolve(); err != nil {
		return false, err
	}
	out, err := runPlan(ctx, in, &opts, false)
	if err != nil {
		return false, err
	}
	return out.planar, nil
}

// EmbedClusterPlanar runs the full reduce, solve, and replay cycle on an
// instance in place. On a true verdict the instance's graph and tree are
// restored to the original hierarchy, now carrying the solved embedding;
// on a false verdict the instance is left flattened and must be discarded.
// The augmentation trace is returned only when opts.Augment is set.
func EmbedClusterPlanar(ctx context.Context, in *graphio.Instance, opts Options) (bool, []planar.AdjPair, error) {
	if err := opts.ValidateForSolve(); err != nil {
		return false, nil, err
	}
	out, err := runPlan(ctx, in, &opts, true)
	if err != nil {
		return false, nil, err
	}
	return out.planar, out.aug, nil
}

// runPlan drives the plan state machine over an instance, firing
// observability hooks around each stage.
func runPlan(ctx context.Context, in *graphio.Instance, opts *Options, embed bool) (solveOutcome, error) {
	var out solveOutcome
	hooks := observability.Pipeline()

	out.stats.NodeCount = in.Graph.NumNodes()
	out.stats.EdgeCount = in.Graph.NumEdges()
	out.stats.ClusterCount = in.Tree.NumClusters() - 1

	hooks.OnFlattenStart(ctx, in.Name, out.stats.ClusterCount)
	flattenStart := time.Now()

	planOpts := []planar.Option{
		planar.WithLogger(opts.Logger),
		planar.WithSolver(opts.solver()),
	}
	var aug []planar.AdjPair
	if opts.Augment {
		planOpts = append(planOpts, planar.WithAugmentation(&aug))
	}
	p := planar.New(in.Tree, planOpts...)
	if opts.Prune {
		pruned := p.PrunePipes()
		opts.Logger.Debug("pruned empty pipes", "count", pruned)
	}
	out.stats.FlattenTime = time.Since(flattenStart)
	hooks.OnFlattenComplete(ctx, in.Name, p.Matchings.Count(), out.stats.FlattenTime, nil)

	hooks.OnSolveStart(ctx, in.Name, p.Matchings.Count())
	solveStart := time.Now()
	ok := p.MakeReduced() && p.SolveReduced()
	out.stats.SolveTime = time.Since(solveStart)
	hooks.OnSolveComplete(ctx, in.Name, ok, time.Since(solveStart), nil)
	if !ok {
		opts.Logger.Info("instance is not cluster-planar", "graph", in.Name)
		return out, nil
	}
	out.planar = true
	if !embed {
		return out, nil
	}

	hooks.OnEmbedStart(ctx, in.Name)
	embedStart := time.Now()
	err := p.Embed()
	out.stats.EmbedTime = time.Since(embedStart)
	hooks.OnEmbedComplete(ctx, in.Name, out.stats.EmbedTime, err)
	if err != nil {
		return out, errors.Wrap(errors.ErrCodeInternal, err, "embedding replay failed")
	}
	out.aug = aug
	opts.Logger.Debug("embedding complete",
		"graph", in.Name,
		"solve", out.stats.SolveTime,
		"embed", out.stats.EmbedTime)
	return out, nil
}
