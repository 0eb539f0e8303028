package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/planvia/clusterplan/pkg/cache"
	"github.com/planvia/clusterplan/pkg/errors"
	"github.com/planvia/clusterplan/pkg/graphio"
	"github.com/planvia/clusterplan/pkg/observability"
	"github.com/planvia/clusterplan/pkg/planar"
)

// =============================================================================
// Runner - Cached Pipeline Execution
// =============================================================================

// Runner executes pipeline stages with caching. Verdicts, embedded
// documents, and rendered artifacts are cached independently, keyed by the
// input document hash plus the options that shaped the result.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a Runner. A nil cache disables caching, a nil keyer
// selects the default key scheme, and a nil logger selects the package
// default.
func NewRunner(c cache.Cache, k cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: k, Logger: logger}
}

// Close releases the underlying cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Embedding bundles the outputs of the embed stage.
type Embedding struct {
	ClusterPlanar bool
	Instance      *graphio.Instance // nil when not cluster-planar
	Augmentation  []planar.AdjPair
	Stats         Stats
}

// verdictRecord is the cached form of a verdict.
type verdictRecord struct {
	ClusterPlanar bool `json:"cluster_planar"`
}

// embeddingRecord is the cached form of an embed run. The document is
// present only for cluster-planar instances.
type embeddingRecord struct {
	ClusterPlanar bool              `json:"cluster_planar"`
	Document      *graphio.Document `json:"document,omitempty"`
}

// =============================================================================
// Full Pipeline
// =============================================================================

// Execute runs the complete pipeline over a document: decide
// cluster-planarity, replay the embedding, and render the requested
// formats. A false verdict is a successful run with a nil document and no
// artifacts, not an error.
func (r *Runner) Execute(ctx context.Context, doc graphio.Document, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	docHash, err := documentHash(doc)
	if err != nil {
		return nil, err
	}
	result := &Result{
		RunID:   uuid.NewString(),
		DocHash: docHash,
	}
	opts.Logger.Debug("pipeline run starting",
		"run_id", result.RunID, "graph", doc.Name, "hash", docHash[:12])

	emb, embHit, err := r.embedWithCacheInfo(ctx, doc, docHash, opts)
	if err != nil {
		return nil, err
	}
	result.ClusterPlanar = emb.ClusterPlanar
	result.Augmentation = emb.Augmentation
	result.Stats = emb.Stats
	result.CacheInfo.EmbedHit = embHit
	if !emb.ClusterPlanar {
		return result, nil
	}

	outDoc := graphio.FromInstance(emb.Instance)
	result.Document = &outDoc

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, emb.Instance, docHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Debug("pipeline run complete",
		"run_id", result.RunID,
		"cluster_planar", result.ClusterPlanar,
		"embed_cached", embHit,
		"render_cached", renderHit)
	return result, nil
}

// =============================================================================
// Verdict Stage
// =============================================================================

// Check decides cluster-planarity for a document, consulting the verdict
// cache first.
func (r *Runner) Check(ctx context.Context, doc graphio.Document, opts Options) (bool, error) {
	planarOK, _, err := r.CheckWithCacheInfo(ctx, doc, opts)
	return planarOK, err
}

// CheckWithCacheInfo is like Check but also reports whether the verdict
// came from cache.
func (r *Runner) CheckWithCacheInfo(ctx context.Context, doc graphio.Document, opts Options) (bool, bool, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateForSolve(); err != nil {
		return false, false, err
	}
	docHash, err := documentHash(doc)
	if err != nil {
		return false, false, err
	}
	key := r.Keyer.VerdictKey(docHash, opts.VerdictKeyOpts())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("verdict cache read failed", "error", err)
		} else if hit {
			var rec verdictRecord
			if err := json.Unmarshal(data, &rec); err == nil {
				observability.Cache().OnCacheHit(ctx, key)
				return rec.ClusterPlanar, true, nil
			}
			opts.Logger.Warn("discarding corrupt verdict cache entry", "key", key)
		}
	}
	observability.Cache().OnCacheMiss(ctx, key)

	in, err := graphio.ToInstance(doc)
	if err != nil {
		return false, false, err
	}
	planarOK, err := CheckDestructive(ctx, in, opts)
	if err != nil {
		return false, false, err
	}

	if data, err := json.Marshal(verdictRecord{ClusterPlanar: planarOK}); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLVerdict); err != nil {
			opts.Logger.Warn("verdict cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}
	return planarOK, false, nil
}

// =============================================================================
// Embed Stage
// =============================================================================

// Embed runs the solve and replay cycle for a document, consulting the
// embedding cache first.
func (r *Runner) Embed(ctx context.Context, doc graphio.Document, opts Options) (*Embedding, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateForSolve(); err != nil {
		return nil, err
	}
	docHash, err := documentHash(doc)
	if err != nil {
		return nil, err
	}
	emb, _, err := r.embedWithCacheInfo(ctx, doc, docHash, opts)
	return emb, err
}

// embedWithCacheInfo runs the embed stage against the cache. The
// augmentation trace refers to live adjacency handles, so runs that
// request it always recompute.
func (r *Runner) embedWithCacheInfo(ctx context.Context, doc graphio.Document, docHash string, opts Options) (*Embedding, bool, error) {
	key := r.Keyer.EmbeddingKey(docHash, opts.EmbeddingKeyOpts())

	if !opts.Refresh && !opts.Augment {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("embedding cache read failed", "error", err)
		} else if hit {
			emb, err := decodeEmbedding(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, key)
				return emb, true, nil
			}
			opts.Logger.Warn("discarding corrupt embedding cache entry", "key", key)
		}
	}
	observability.Cache().OnCacheMiss(ctx, key)

	in, err := graphio.ToInstance(doc)
	if err != nil {
		return nil, false, err
	}
	out, err := runPlan(ctx, in, &opts, true)
	if err != nil {
		return nil, false, err
	}
	emb := &Embedding{
		ClusterPlanar: out.planar,
		Augmentation:  out.aug,
		Stats:         out.stats,
	}
	rec := embeddingRecord{ClusterPlanar: out.planar}
	if out.planar {
		emb.Instance = in
		outDoc := graphio.FromInstance(in)
		rec.Document = &outDoc
	}
	if !opts.Augment {
		if data, err := json.Marshal(rec); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLEmbedding); err != nil {
				opts.Logger.Warn("embedding cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, key, len(data))
			}
		}
	}
	return emb, false, nil
}

// decodeEmbedding rebuilds an Embedding from a cached record. The output
// document's edge order encodes the solved rotations, so parsing it back
// yields an instance equivalent to the one the replay produced.
func decodeEmbedding(data []byte) (*Embedding, error) {
	var rec embeddingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	emb := &Embedding{ClusterPlanar: rec.ClusterPlanar}
	if rec.Document != nil {
		in, err := graphio.ToInstance(*rec.Document)
		if err != nil {
			return nil, err
		}
		emb.Instance = in
	}
	return emb, nil
}

// =============================================================================
// Render Stage
// =============================================================================

// RenderWithCacheInfo renders artifacts for an embedded instance with
// per-format caching. The returned flag reports whether every requested
// format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, in *graphio.Instance, docHash string, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	var misses []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				opts.Logger.Warn("artifact cache read failed", "format", format, "error", err)
			} else if hit {
				observability.Cache().OnCacheHit(ctx, key)
				artifacts[format] = data
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, key)
		misses = append(misses, format)
		allHit = false
	}

	if len(misses) > 0 {
		renderOpts := opts
		renderOpts.Formats = misses
		rendered, err := Render(ctx, in, renderOpts)
		if err != nil {
			return nil, false, err
		}
		for format, data := range rendered {
			artifacts[format] = data
			key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
				opts.Logger.Warn("artifact cache write failed", "format", format, "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, key, len(data))
			}
		}
	}
	return artifacts, allHit, nil
}

// documentHash computes the content hash a run is keyed by.
func documentHash(doc graphio.Document) (string, error) {
	data, err := graphio.MarshalDocument(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to hash document")
	}
	return cache.Hash(data), nil
}
