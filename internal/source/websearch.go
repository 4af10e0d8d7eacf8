package source

import (
	"time"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// Config holds the launch parameters for one scraper backend.
type Config struct {
	Command     string
	Args        []string
	ArtifactDir string
	GracePeriod time.Duration
	OnEvent     EventFunc
}

// NewWebSearch wraps the generic web-search scraper. It is a plain
// process-backed unit: the scraper probes search hits for contact details
// and streams them back as record events.
func NewWebSearch(cfg Config) *Runner {
	return &Runner{
		Src:         model.SourceWebSearch,
		Command:     cfg.Command,
		Args:        cfg.Args,
		ArtifactDir: cfg.ArtifactDir,
		GracePeriod: cfg.GracePeriod,
		OnEvent:     cfg.OnEvent,
	}
}
