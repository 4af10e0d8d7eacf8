package source

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// maxQueryVariants caps how many expanded query variants the map source
// pursues per run. Each variant is a full scraper invocation against the
// directory backend, so this is a quota knob, not a correctness one.
const maxQueryVariants = 3

// Expander produces alternate phrasings for a query. Best-effort: an empty
// slice means "just use the original".
type Expander func(ctx context.Context, text string) []string

// MapSearch wraps the map/directory scraper. It fans out over expanded
// query variants with a bounded worker pool, pacing launches to respect the
// directory backend's quota.
type MapSearch struct {
	cfg     Config
	expand  Expander
	workers int
	limiter *rate.Limiter
}

// NewMapSearch creates the map/directory source unit. workers <= 0 selects
// a small CPU-relative default.
func NewMapSearch(cfg Config, expand Expander, workers int) *MapSearch {
	if workers <= 0 {
		workers = min(4, runtime.NumCPU())
	}
	return &MapSearch{
		cfg:     cfg,
		expand:  expand,
		workers: workers,
		limiter: rate.NewLimiter(rate.Limit(1), 1), // one variant launch per second
	}
}

func (m *MapSearch) Source() model.Source { return model.SourceMapSearch }

// Run executes one scraper invocation per query variant and concatenates
// their records in variant order. A variant's hard failure is tolerated as
// long as at least one variant succeeds; if all fail, the first error is
// surfaced.
func (m *MapSearch) Run(ctx context.Context, q model.Query, opts model.RunOptions) (Outcome, error) {
	variants := m.variants(ctx, q)

	outcomes := make([]Outcome, len(variants))
	errs := make([]error, len(variants))

	g := new(errgroup.Group)
	g.SetLimit(m.workers)
	for i, variant := range variants {
		g.Go(func() error {
			if err := m.limiter.Wait(ctx); err != nil {
				errs[i] = err
				return nil
			}

			// Each variant gets its own sub-session so artifacts and
			// recovery stay per-invocation.
			subOpts := opts
			subOpts.SessionID = fmt.Sprintf("%s-v%d", opts.SessionID, i)

			runner := &Runner{
				Src:         model.SourceMapSearch,
				Command:     m.cfg.Command,
				Args:        m.cfg.Args,
				ArtifactDir: m.cfg.ArtifactDir,
				GracePeriod: m.cfg.GracePeriod,
				OnEvent:     m.cfg.OnEvent,
			}
			outcomes[i], errs[i] = runner.Run(ctx, variant, subOpts)
			return nil
		})
	}
	_ = g.Wait()

	var out Outcome
	succeeded := 0
	for i := range variants {
		if errs[i] != nil {
			zap.L().Warn("source: map variant failed",
				zap.String("query", variants[i].Raw),
				zap.Error(errs[i]),
			)
			continue
		}
		succeeded++
		out.Records = append(out.Records, outcomes[i].Records...)
		out.Recovered = out.Recovered || outcomes[i].Recovered
	}

	if succeeded == 0 {
		for _, err := range errs {
			if err != nil {
				return Outcome{}, err
			}
		}
	}

	if opts.MaxResults > 0 && len(out.Records) > opts.MaxResults {
		out.Records = out.Records[:opts.MaxResults]
	}
	return out, nil
}

// variants returns the original query plus up to maxQueryVariants-1 expanded
// phrasings, de-duplicated, original first.
func (m *MapSearch) variants(ctx context.Context, q model.Query) []model.Query {
	variants := []model.Query{q}
	if m.expand == nil {
		return variants
	}

	seen := map[string]bool{q.Raw: true}
	for _, alt := range m.expand(ctx, q.Raw) {
		if len(variants) >= maxQueryVariants {
			break
		}
		if alt == "" || seen[alt] {
			continue
		}
		seen[alt] = true
		variants = append(variants, model.ParseQuery(alt))
	}
	return variants
}
