// Package expand generates query variants for the map/directory source.
// Expansion is strictly best effort: any failure yields zero variants and
// the run proceeds with the original query alone.
package expand

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/resilience"
	"github.com/leadharvest/leadharvest-cli/pkg/anthropic"
)

const (
	expandModel     = "claude-haiku-4-5-20251001"
	expandMaxTokens = 256
	maxVariants     = 4
)

const systemPrompt = `You rewrite local-business search queries. Given one query,
produce up to %d alternative phrasings a person might use to find the same
businesses in the same location. Keep the location. One variant per line,
no numbering, no commentary.`

// Expander produces alternative phrasings of a search query.
type Expander struct {
	client  anthropic.Client
	timeout time.Duration
}

// New creates an expander over the given client.
func New(client anthropic.Client) *Expander {
	return &Expander{client: client, timeout: 15 * time.Second}
}

// Expand returns up to maxVariants rephrasings of text. It never returns an
// error: a failed or empty expansion is logged and reported as nil.
func (e *Expander) Expand(ctx context.Context, text string) []string {
	if e == nil || e.client == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = 2
	cfg.OnRetry = resilience.RetryLogger("anthropic", "expand_query")

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     expandModel,
			MaxTokens: expandMaxTokens,
			System:    fmt.Sprintf(systemPrompt, maxVariants),
			Messages:  []anthropic.Message{{Role: "user", Content: text}},
		})
	})
	if err != nil {
		zap.L().Warn("expand: query expansion failed, continuing without variants",
			zap.String("query", text),
			zap.Error(err),
		)
		return nil
	}

	return parseVariants(resp.Text(), text)
}

// parseVariants splits the model output into clean variant lines, dropping
// blanks, list markers, and echoes of the original query.
func parseVariants(raw, original string) []string {
	var out []string
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(original)): true}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
		if len(out) == maxVariants {
			break
		}
	}
	return out
}
