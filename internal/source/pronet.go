package source

import (
	"context"
	"fmt"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// Pronet wraps the professional-network scraper. That backend cannot parse
// individual profiles reliably; when it only reports how many profiles it
// saw (a progress event with no record payloads), the unit returns
// placeholder records carrying the count. Degraded fidelity is accepted
// rather than inventing parsing the backend does not do.
type Pronet struct {
	cfg Config
}

// NewPronet creates the professional-network source unit.
func NewPronet(cfg Config) *Pronet {
	return &Pronet{cfg: cfg}
}

func (p *Pronet) Source() model.Source { return model.SourcePronet }

// Run executes the scraper, tracking the reported profile count alongside
// the normal event stream.
func (p *Pronet) Run(ctx context.Context, q model.Query, opts model.RunOptions) (Outcome, error) {
	profileCount := 0

	runner := &Runner{
		Src:         model.SourcePronet,
		Command:     p.cfg.Command,
		Args:        p.cfg.Args,
		ArtifactDir: p.cfg.ArtifactDir,
		GracePeriod: p.cfg.GracePeriod,
		OnEvent: func(ev Event) {
			if ev.Kind == EventProgress && ev.Count > profileCount {
				profileCount = ev.Count
			}
			if p.cfg.OnEvent != nil {
				p.cfg.OnEvent(ev)
			}
		},
	}

	out, err := runner.Run(ctx, q, opts)
	if err != nil {
		return out, err
	}

	if len(out.Records) == 0 && profileCount > 0 {
		out.Records = placeholderProfiles(profileCount, opts.MaxResults)
	}
	return out, nil
}

// placeholderProfiles synthesizes count-only profile records.
func placeholderProfiles(count, maxResults int) []model.RawRecord {
	if maxResults > 0 && count > maxResults {
		count = maxResults
	}
	records := make([]model.RawRecord, count)
	for i := range records {
		records[i] = model.RawRecord{Name: fmt.Sprintf("Profile %d", i+1)}
	}
	return records
}
