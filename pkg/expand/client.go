// Package expand is the client for the external text-generation service
// that proposes related terms for a vocabulary word.
//
// The service is treated as untrusted input: every response entry is
// validated and repaired before it can reach the graph. Responses are
// cached on disk (see [httputil.Cache]) so re-expanding a term is free.
package expand

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
	"github.com/DELAxGithub/wordmiro/pkg/httputil"
)

const (
	// DefaultMaxRelated caps how many related terms one expansion may add.
	DefaultMaxRelated = 12

	defaultModel = "gpt-4o-mini"
	httpTimeout  = 30 * time.Second
)

var (
	// ErrNotFound is returned when the service has no entry for a term.
	ErrNotFound = errors.New("term not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Related is one validated related term proposed by the service.
type Related struct {
	Term        string             `json:"term"`
	Kind        graph.RelationKind `json:"rel"`
	Explanation string             `json:"explanation,omitempty"`
}

// Result is a repaired expansion response, ready to merge into a graph.
// Rejected lists raw entries the service proposed but validation dropped,
// so callers can log them.
type Result struct {
	Term     string    `json:"term"`
	Related  []Related `json:"related"`
	Rejected []string  `json:"rejected,omitempty"`
}

// Relations converts the validated related terms into graph relations.
func (r *Result) Relations() []graph.Relation {
	rels := make([]graph.Relation, len(r.Related))
	for i, rel := range r.Related {
		rels[i] = graph.Relation{Term: rel.Term, Kind: rel.Kind}
	}
	return rels
}

// Options configures a Client.
type Options struct {
	BaseURL    string        // expansion service endpoint, e.g. https://api.example.com
	Model      string        // model name passed through to the service
	MaxRelated int           // cap on related terms per expansion (default 12)
	CacheTTL   time.Duration // response cache TTL; 0 disables caching
	APIKey     string        // optional bearer token
}

// Client talks to the external text-generation service that proposes
// related terms. Responses are cached on disk and requests retried with
// backoff, so repeated expansions of the same term are cheap.
type Client struct {
	http       *http.Client
	cache      *httputil.Cache
	baseURL    string
	model      string
	maxRelated int
	apiKey     string
}

// NewClient creates a Client for the given service options.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("expand: base URL is required")
	}
	c := &Client{
		http:       &http.Client{Timeout: httpTimeout},
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		model:      opts.Model,
		maxRelated: opts.MaxRelated,
		apiKey:     opts.APIKey,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxRelated <= 0 {
		c.maxRelated = DefaultMaxRelated
	}
	if opts.CacheTTL > 0 {
		cache, err := httputil.NewCache("", opts.CacheTTL)
		if err != nil {
			return nil, err
		}
		c.cache = cache.Namespace("expand:")
	}
	return c, nil
}

// Model returns the model name requests are made with.
func (c *Client) Model() string { return c.model }

// MaxRelated returns the cap on related terms per expansion.
func (c *Client) MaxRelated() int { return c.maxRelated }

// expandRequest is the wire format sent to the service.
type expandRequest struct {
	Term       string `json:"term"`
	Model      string `json:"model,omitempty"`
	MaxRelated int    `json:"max_related,omitempty"`
}

// expandResponse is the wire format returned by the service.
type expandResponse struct {
	Term    string `json:"term"`
	Related []struct {
		Term        string `json:"term"`
		Rel         string `json:"rel"`
		Explanation string `json:"explanation,omitempty"`
	} `json:"related"`
}

// Expand asks the service for terms related to term and returns a
// repaired result. The term is normalized before the request; service
// output is validated entry by entry, dropping empty terms, echoes of
// the input term, duplicates, and unknown relation kinds.
// If refresh is true the response cache is bypassed.
func (c *Client) Expand(ctx context.Context, term string, refresh bool) (*Result, error) {
	lemma := graph.NormalizeLemma(term)
	if lemma == "" {
		return nil, fmt.Errorf("expand: %w", graph.ErrEmptyLemma)
	}

	key := fmt.Sprintf("%s:%s:%d", c.model, lemma, c.maxRelated)
	if c.cache != nil && !refresh {
		var cached Result
		if ok, _ := c.cache.Get(key, &cached); ok {
			return &cached, nil
		}
	}

	var raw expandResponse
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.post(ctx, lemma, &raw)
	})
	if err != nil {
		return nil, err
	}

	result := c.repair(lemma, &raw)
	if c.cache != nil {
		_ = c.cache.Set(key, result)
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, lemma string, out *expandResponse) error {
	body, err := json.Marshal(expandRequest{
		Term:       lemma,
		Model:      c.model,
		MaxRelated: c.maxRelated,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/expand", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// repair validates raw service output. Entries survive only with a
// non-empty normalized term distinct from the input and a known
// relation kind; everything else lands in Rejected. At most maxRelated
// entries are kept, in response order.
func (c *Client) repair(lemma string, raw *expandResponse) *Result {
	result := &Result{Term: lemma}
	seen := map[string]bool{lemma: true}

	for _, entry := range raw.Related {
		related := graph.NormalizeLemma(entry.Term)
		if related == "" || seen[related] {
			continue
		}
		kind, err := graph.ParseRelation(entry.Rel)
		if err != nil {
			result.Rejected = append(result.Rejected, fmt.Sprintf("%s (%s)", related, entry.Rel))
			continue
		}
		if len(result.Related) >= c.maxRelated {
			result.Rejected = append(result.Rejected, fmt.Sprintf("%s (%s)", related, entry.Rel))
			continue
		}
		seen[related] = true
		result.Related = append(result.Related, Related{
			Term:        related,
			Kind:        kind,
			Explanation: strings.TrimSpace(entry.Explanation),
		})
	}
	return result
}
