// Package pipeline provides the core planarity pipeline for Clusterplan.
//
// This package implements the complete parse → flatten → solve → embed →
// render pipeline that can be used by the CLI and by library consumers. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Solve: Flatten the cluster hierarchy into pipes and decide
//     cluster-planarity
//  2. Embed: Replay the undo log so the original hierarchy carries the
//     solved embedding
//  3. Render: Generate output in various formats (JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run a verdict-only check:
//
//	planar, hit, err := runner.CheckWithCacheInfo(ctx, doc, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planvia/clusterplan/pkg/cache"
	"github.com/planvia/clusterplan/pkg/errors"
	"github.com/planvia/clusterplan/pkg/graphio"
	"github.com/planvia/clusterplan/pkg/planar"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Library Consumers
// =============================================================================

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Solver names.
const (
	// SolverTrivial accepts every instance and only verifies the pipe
	// degree invariant. Useful for exercising the flatten/replay round
	// trip and as a placeholder until an external solver is injected.
	SolverTrivial = "trivial"
)

// DefaultSolver is the solver used when none is configured.
const DefaultSolver = SolverTrivial

// SupportedFormats lists the output formats render can produce.
var SupportedFormats = []string{FormatJSON, FormatDOT, FormatSVG}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidSolvers is the set of named solvers.
var ValidSolvers = map[string]bool{
	SolverTrivial: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the planarity pipeline.
// This struct supports JSON and TOML serialization for config files.
type Options struct {
	// Solve options
	Solver  string `json:"solver,omitempty" toml:"solver"`
	Prune   bool   `json:"prune,omitempty" toml:"prune"`     // Remove degree-zero pipes before solving
	Augment bool   `json:"augment,omitempty" toml:"augment"` // Collect the augmentation trace during embed
	Refresh bool   `json:"refresh,omitempty" toml:"refresh"` // Bypass the cache

	// Render options
	Formats  []string `json:"formats,omitempty" toml:"formats"`
	Detailed bool     `json:"detailed,omitempty" toml:"detailed"` // Include graph handles in node labels

	// Runtime options (not serialized)
	Logger     *log.Logger   `json:"-" toml:"-"`
	SolverImpl planar.Solver `json:"-" toml:"-"` // Overrides Solver when set

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// ClusterPlanar is the verdict.
	ClusterPlanar bool

	// DocHash is the content hash of the input document.
	DocHash string

	// Document is the embedded output document. Nil when the instance is
	// not cluster-planar.
	Document *graphio.Document

	// Augmentation is the boundary augmentation trace, collected only when
	// Options.Augment is set and the instance is cluster-planar.
	Augmentation []planar.AdjPair

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	ClusterCount int // Non-root clusters, which equals the pipe count
	FlattenTime  time.Duration
	SolveTime    time.Duration
	EmbedTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	EmbedHit  bool // Whether the verdict and embedding came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, SupportedFormats); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSolver checks that a solver name is valid.
func ValidateSolver(name string) error {
	if !ValidSolvers[name] {
		return errors.New(errors.ErrCodeUnsupported, "unknown solver: %q", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSolve(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForSolve validates and sets defaults for the solve stage.
func (o *Options) ValidateForSolve() error {
	if o.Solver == "" {
		o.Solver = DefaultSolver
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.SolverImpl != nil {
		return nil
	}
	return ValidateSolver(o.Solver)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// solver returns the configured solver implementation.
func (o *Options) solver() planar.Solver {
	if o.SolverImpl != nil {
		return o.SolverImpl
	}
	return planar.TrivialSolver{}
}

// solverName returns the name used in cache keys. An injected
// implementation keys by its dynamic type.
func (o *Options) solverName() string {
	if o.SolverImpl != nil {
		return "custom"
	}
	return o.Solver
}

// VerdictKeyOpts returns cache key options for verdict caching.
func (o *Options) VerdictKeyOpts() cache.VerdictKeyOpts {
	return cache.VerdictKeyOpts{
		Solver: o.solverName(),
	}
}

// EmbeddingKeyOpts returns cache key options for embedding caching.
func (o *Options) EmbeddingKeyOpts() cache.EmbeddingKeyOpts {
	return cache.EmbeddingKeyOpts{
		Solver:  o.solverName(),
		Augment: o.Augment,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
