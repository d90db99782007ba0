package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/DELAxGithub/wordmiro/pkg/cache"
	"github.com/DELAxGithub/wordmiro/pkg/errors"
	"github.com/DELAxGithub/wordmiro/pkg/expand"
	"github.com/DELAxGithub/wordmiro/pkg/graph"
	"github.com/DELAxGithub/wordmiro/pkg/layout"
	"github.com/DELAxGithub/wordmiro/pkg/observability"
	"github.com/DELAxGithub/wordmiro/pkg/render"
)

// Expander is the slice of [expand.Client] the pipeline needs.
// Extracted as an interface so tests can run without a live service.
type Expander interface {
	Expand(ctx context.Context, term string, refresh bool) (*expand.Result, error)
	Model() string
	MaxRelated() int
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Expander Expander
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and expander.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// The expander may be nil for layout-only and render-only use.
func NewRunner(c cache.Cache, keyer cache.Keyer, expander Expander, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Expander: expander,
		Logger:   logger,
	}
}

// Execute runs the complete expand → merge → layout → render pipeline
// with caching. The graph is mutated in place: expansion adds nodes and
// edges, layout moves them.
//
// An empty opts.Term skips the expansion stage, turning Execute into a
// relayout-and-render pass over the existing graph.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte),
	}

	// Stage 1+2: Expand and merge
	if opts.Term != "" {
		expandStart := time.Now()
		expansion, expandHit, err := r.ExpandWithCacheInfo(ctx, opts)
		if err != nil {
			return nil, err
		}
		added, err := r.Merge(g, expansion)
		if err != nil {
			return nil, err
		}
		result.Added = added
		result.Rejected = expansion.Rejected
		result.Stats.ExpandTime = time.Since(expandStart)
		result.CacheInfo.ExpandHit = expandHit

		r.Logger.Info("expanded term",
			"term", expansion.Term,
			"added", len(added),
			"rejected", len(expansion.Rejected),
			"cached", expandHit,
			"duration", result.Stats.ExpandTime)
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Stage 3: Layout
	if !opts.SkipLayout {
		layoutStart := time.Now()
		strategy, layoutHit, err := r.ApplyLayoutWithCacheInfo(ctx, g, opts)
		if err != nil {
			return nil, err
		}
		result.Stats.Strategy = strategy
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.CacheInfo.LayoutHit = layoutHit

		r.Logger.Info("computed layout",
			"nodes", g.NodeCount(),
			"strategy", strategy,
			"cached", layoutHit,
			"duration", result.Stats.LayoutTime)
	}
	result.GraphHash = r.graphHash(g)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ExpandWithCacheInfo fetches related terms with caching and returns
// cache hit info. The expansion service is only contacted on a miss.
func (r *Runner) ExpandWithCacheInfo(ctx context.Context, opts Options) (*expand.Result, bool, error) {
	if err := opts.ValidateForExpand(); err != nil {
		return nil, false, err
	}
	if r.Expander == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidConfig, "no expansion service configured")
	}

	lemma := graph.NormalizeLemma(opts.Term)
	cacheKey := r.Keyer.ExpandKey(lemma, cache.ExpandKeyOpts{
		Model:      r.Expander.Model(),
		MaxRelated: r.Expander.MaxRelated(),
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached expand.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "expand")
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "expand")
	}

	observability.Pipeline().OnExpandStart(ctx, lemma)
	start := time.Now()
	expansion, err := r.Expander.Expand(ctx, lemma, opts.Refresh)
	observability.Pipeline().OnExpandComplete(ctx, lemma, relatedCount(expansion), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(expansion); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLExpand)
		observability.Cache().OnCacheSet(ctx, "expand", len(data))
	}
	return expansion, false, nil
}

// Merge folds an expansion result into the graph. The parent term is
// resolved (created if missing), new children are created for related
// terms the graph doesn't know yet, and those children are placed on a
// circle around the parent so the force layout starts from a sane
// configuration. Existing nodes keep their positions.
func (r *Runner) Merge(g *graph.Graph, expansion *expand.Result) ([]*graph.Node, error) {
	parent, _, err := g.Resolve(expansion.Term)
	if err != nil {
		return nil, err
	}

	added, err := g.Expand(parent.ID, expansion.Relations())
	if err != nil {
		return nil, err
	}

	if len(added) > 0 {
		radius := layout.OptimalRadius(len(added), layout.DefaultNodeSize)
		layout.ArrangeChildrenInCircle(parent, added, radius)
	}

	// Carry service explanations onto freshly created nodes.
	byTerm := make(map[string]expand.Related, len(expansion.Related))
	for _, rel := range expansion.Related {
		byTerm[rel.Term] = rel
	}
	for _, n := range added {
		if rel, ok := byTerm[n.Lemma]; ok && n.Explanation == "" {
			n.Explanation = rel.Explanation
		}
	}
	return added, nil
}

// ApplyLayoutWithCacheInfo relaxes the graph with the force simulation,
// with position caching keyed by graph content and layout options.
// On a cache hit the stored positions are applied without simulating.
// Returns the strategy the simulation selects for this graph size.
func (r *Runner) ApplyLayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (layout.Strategy, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	strategy := layout.StrategyExact
	if g.NodeCount() > layout.DefaultExactThreshold {
		strategy = layout.StrategyQuadtree
	}

	cacheKey := r.Keyer.LayoutKey(r.graphHash(g), opts.LayoutKeyOpts())
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if applyPositions(g, data) == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return strategy, true, nil
		}
		// Corrupt entry; fall through to recompute.
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Pipeline().OnLayoutStart(ctx, string(strategy), g.NodeCount())
	start := time.Now()
	engine := layout.NewEngine(opts.LayoutOptions())
	err := engine.Apply(ctx, g.Nodes(), g.Edges(), opts.Bounds())
	observability.Pipeline().OnLayoutComplete(ctx, string(strategy), time.Since(start), err)
	if err != nil {
		return strategy, false, err
	}

	if data, err := graph.MarshalDocument(graph.Export(g)); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return strategy, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns
// cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	r.applyLogger(&opts)
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	graphHash := r.graphHash(g)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := r.renderAll(ctx, g, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

func (r *Runner) renderAll(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	needDOT := func() string {
		if dot == "" {
			dot = render.ToDOT(g, render.Options{Detailed: opts.Detailed})
		}
		return dot
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			artifacts[format] = []byte(needDOT())
		case FormatSVG:
			data, err := render.RenderSVG(ctx, needDOT())
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatPNG:
			data, err := render.RenderPNG(ctx, needDOT())
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatJSON:
			data, err := graph.MarshalDocument(graph.Export(g))
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		}
	}
	return artifacts, nil
}

// graphHash returns the content hash of the graph's canonical export.
func (r *Runner) graphHash(g *graph.Graph) string {
	data, err := graph.MarshalDocument(graph.Export(g))
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// applyPositions restores cached positions onto matching nodes.
// Nodes the cached document doesn't know keep their positions.
func applyPositions(g *graph.Graph, data []byte) error {
	doc, err := graph.UnmarshalDocument(data)
	if err != nil {
		return err
	}
	for _, record := range doc.Nodes {
		if n, ok := g.Node(record.ID); ok {
			n.X, n.Y = record.X, record.Y
		}
	}
	return nil
}

func relatedCount(result *expand.Result) int {
	if result == nil {
		return 0
	}
	return len(result.Related)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
