package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/DELAxGithub/wordmiro/pkg/cache"
	"github.com/DELAxGithub/wordmiro/pkg/expand"
	"github.com/DELAxGithub/wordmiro/pkg/graph"
	"github.com/DELAxGithub/wordmiro/pkg/layout"
)

// fakeExpander serves a canned expansion without a live service.
type fakeExpander struct {
	calls  int
	result *expand.Result
	err    error
}

func (f *fakeExpander) Expand(ctx context.Context, term string, refresh bool) (*expand.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExpander) Model() string   { return "test-model" }
func (f *fakeExpander) MaxRelated() int { return 12 }

func ephemeralExpansion() *expand.Result {
	return &expand.Result{
		Term: "ephemeral",
		Related: []expand.Related{
			{Term: "transient", Kind: graph.RelSynonym, Explanation: "lasting a short time"},
			{Term: "fleeting", Kind: graph.RelSynonym},
			{Term: "permanent", Kind: graph.RelAntonym},
		},
		Rejected: []string{"evanescentish (similar)"},
	}
}

func fileCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestExecute(t *testing.T) {
	fake := &fakeExpander{result: ephemeralExpansion()}
	runner := NewRunner(nil, nil, fake, nil)

	g := graph.New()
	result, err := runner.Execute(context.Background(), g, Options{
		Term:    "ephemeral",
		Formats: []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Parent plus three related terms.
	if result.Stats.NodeCount != 4 || result.Stats.EdgeCount != 3 {
		t.Errorf("stats = %d nodes, %d edges", result.Stats.NodeCount, result.Stats.EdgeCount)
	}
	if len(result.Added) != 3 {
		t.Errorf("added = %d nodes", len(result.Added))
	}
	if len(result.Rejected) != 1 {
		t.Errorf("rejected = %v", result.Rejected)
	}
	if result.Stats.Strategy != layout.StrategyExact {
		t.Errorf("strategy = %v", result.Stats.Strategy)
	}
	if result.GraphHash == "" {
		t.Error("graph hash missing")
	}

	// Explanations carried onto new nodes.
	if n, ok := g.NodeByLemma("transient"); !ok || n.Explanation != "lasting a short time" {
		t.Errorf("transient explanation lost: %+v", n)
	}

	// Both artifacts produced; JSON is a valid document.
	if _, ok := result.Artifacts[FormatDOT]; !ok {
		t.Error("dot artifact missing")
	}
	var doc graph.Document
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact invalid: %v", err)
	}
	if len(doc.Nodes) != 4 {
		t.Errorf("json artifact has %d nodes", len(doc.Nodes))
	}

	// Layout kept everything inside the canvas minus the margin.
	for _, n := range g.Nodes() {
		if math.Abs(n.X) > DefaultWidth/2-layout.Margin || math.Abs(n.Y) > DefaultHeight/2-layout.Margin {
			t.Errorf("node %s at (%v, %v) outside bounds", n.Lemma, n.X, n.Y)
		}
	}
}

func TestExecuteWithoutTermRelayouts(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)

	g := graph.New()
	a, _, _ := g.Resolve("alpha")
	b, _, _ := g.Resolve("beta")
	a.X, b.X = -10, 10
	if _, _, err := g.Connect(a.ID, b.ID, graph.RelAssociate); err != nil {
		t.Fatal(err)
	}

	result, err := runner.Execute(context.Background(), g, Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Added) != 0 || result.CacheInfo.ExpandHit {
		t.Error("expansion stage should be skipped without a term")
	}
	if result.Stats.NodeCount != 2 {
		t.Errorf("node count = %d", result.Stats.NodeCount)
	}
}

func TestExpandCaching(t *testing.T) {
	fake := &fakeExpander{result: ephemeralExpansion()}
	runner := NewRunner(fileCache(t), nil, fake, nil)
	defer runner.Close()

	opts := Options{Term: "ephemeral"}

	first, hit, err := runner.ExpandWithCacheInfo(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first expansion should miss the cache")
	}

	second, hit, err := runner.ExpandWithCacheInfo(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second expansion should hit the cache")
	}
	if fake.calls != 1 {
		t.Errorf("service called %d times, want 1", fake.calls)
	}
	if len(second.Related) != len(first.Related) {
		t.Errorf("cached result differs: %+v", second)
	}
}

func TestExpandRefreshBypassesCache(t *testing.T) {
	fake := &fakeExpander{result: ephemeralExpansion()}
	runner := NewRunner(fileCache(t), nil, fake, nil)
	defer runner.Close()

	ctx := context.Background()
	if _, _, err := runner.ExpandWithCacheInfo(ctx, Options{Term: "ephemeral"}); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := runner.ExpandWithCacheInfo(ctx, Options{Term: "ephemeral", Refresh: true}); err != nil || hit {
		t.Errorf("refresh should bypass the cache: hit=%v err=%v", hit, err)
	}
	if fake.calls != 2 {
		t.Errorf("service called %d times, want 2", fake.calls)
	}
}

func TestExpandWithoutExpander(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	if _, _, err := runner.ExpandWithCacheInfo(context.Background(), Options{Term: "word"}); err == nil {
		t.Error("want error without an expander")
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	g := graph.New()
	expansion := ephemeralExpansion()

	first, err := runner.Merge(g, expansion)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("first merge added %d nodes", len(first))
	}

	// New children sit on a circle around the parent.
	parent, _ := g.NodeByLemma("ephemeral")
	radius := layout.OptimalRadius(3, layout.DefaultNodeSize)
	for _, child := range first {
		d := math.Hypot(child.X-parent.X, child.Y-parent.Y)
		if math.Abs(d-radius) > 1e-9 {
			t.Errorf("child %s at distance %v, want %v", child.Lemma, d, radius)
		}
	}

	second, err := runner.Merge(g, expansion)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Errorf("second merge added %d nodes, want 0", len(second))
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Errorf("graph grew on re-merge: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

// buildDeterministicGraph builds the same graph every time, explicit IDs
// included, so content hashes are reproducible across instances.
func buildDeterministicGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	lemmas := []string{"alpha", "beta", "gamma", "delta"}
	for i, lemma := range lemmas {
		if _, err := g.AddNode(graph.Node{ID: lemma, Lemma: lemma, X: float64(i * 30), Y: float64(i % 2 * 40)}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 1; i < len(lemmas); i++ {
		if _, _, err := g.Connect(lemmas[i-1], lemmas[i], graph.RelAssociate); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestLayoutCaching(t *testing.T) {
	runner := NewRunner(fileCache(t), nil, nil, nil)
	defer runner.Close()
	ctx := context.Background()
	opts := Options{Iterations: 20}

	first := buildDeterministicGraph(t)
	if _, hit, err := runner.ApplyLayoutWithCacheInfo(ctx, first, opts); err != nil || hit {
		t.Fatalf("first layout: hit=%v err=%v", hit, err)
	}

	second := buildDeterministicGraph(t)
	_, hit, err := runner.ApplyLayoutWithCacheInfo(ctx, second, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Fatal("second layout should hit the cache")
	}

	// Cached positions match the computed ones exactly.
	for _, n := range first.Nodes() {
		m, ok := second.Node(n.ID)
		if !ok || m.X != n.X || m.Y != n.Y {
			t.Errorf("node %s: cached (%v, %v) vs computed (%v, %v)", n.ID, m.X, m.Y, n.X, n.Y)
		}
	}

	// Different layout options must not reuse the entry.
	third := buildDeterministicGraph(t)
	if _, hit, err := runner.ApplyLayoutWithCacheInfo(ctx, third, Options{Iterations: 40}); err != nil || hit {
		t.Errorf("different options: hit=%v err=%v", hit, err)
	}
}

func TestRenderCaching(t *testing.T) {
	runner := NewRunner(fileCache(t), nil, nil, nil)
	defer runner.Close()
	ctx := context.Background()
	opts := Options{Formats: []string{FormatDOT, FormatJSON}}

	g := buildDeterministicGraph(t)
	first, hit, err := runner.RenderWithCacheInfo(ctx, g, opts)
	if err != nil || hit {
		t.Fatalf("first render: hit=%v err=%v", hit, err)
	}

	second, hit, err := runner.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second render should hit the cache")
	}
	for format := range first {
		if string(first[format]) != string(second[format]) {
			t.Errorf("%s artifact differs between runs", format)
		}
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	g := graph.New()
	if _, err := runner.Execute(context.Background(), g, Options{Formats: []string{"pdf"}}); err == nil {
		t.Error("want error for unsupported format")
	}
}

func TestExecuteCancelledLayoutKeepsPositions(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	g := buildDeterministicGraph(t)

	before := make(map[string][2]float64)
	for _, n := range g.Nodes() {
		before[n.ID] = [2]float64{n.X, n.Y}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := runner.ApplyLayoutWithCacheInfo(ctx, g, Options{})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	for _, n := range g.Nodes() {
		if p := before[n.ID]; n.X != p[0] || n.Y != p[1] {
			t.Errorf("node %s moved on a cancelled run", n.ID)
		}
	}
}
