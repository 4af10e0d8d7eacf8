// Package validate performs per-source query validation before a run starts.
// Checks are format hints rather than hard gates: only clearly unusable
// input is rejected, everything else degrades to a logged warning.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// ValidationError indicates a query failed a source's format checks.
// Surfaced immediately, never retried.
type ValidationError struct {
	Source model.Source
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: %s query rejected: %s", e.Source, e.Reason)
}

// maxQueryLen bounds query length. Upstream search backends truncate well
// below this; anything longer is almost certainly pasted garbage.
const maxQueryLen = 256

// Query checks a parsed query against source-specific format rules.
func Query(src model.Source, q model.Query) error {
	if q.Raw == "" {
		return &ValidationError{Source: src, Reason: "query is empty"}
	}
	if utf8.RuneCountInString(q.Raw) > maxQueryLen {
		return &ValidationError{Source: src, Reason: fmt.Sprintf("query exceeds %d characters", maxQueryLen)}
	}
	if strings.ContainsAny(q.Raw, "\n\r\t") {
		return &ValidationError{Source: src, Reason: "query contains control characters"}
	}

	switch src {
	case model.SourceWebSearch, model.SourceMapSearch:
		if q.Location == "" {
			// Not fatal: the whole string is used as the business type.
			zap.L().Warn("validate: query has no location token",
				zap.String("source", string(src)),
				zap.String("query", q.Raw),
			)
		}
	case model.SourcePronet:
		if strings.HasPrefix(q.Raw, "http://") || strings.HasPrefix(q.Raw, "https://") {
			return &ValidationError{Source: src, Reason: "expected a role phrase, got a URL"}
		}
	}

	return nil
}

// Options checks run options against the source's accepted data types and
// required credentials. Missing credentials are surfaced before any network
// call is attempted.
func Options(src model.Source, opts model.RunOptions) error {
	accepted := acceptedDataTypes[src]
	ok := false
	for _, dt := range accepted {
		if opts.DataType == dt {
			ok = true
			break
		}
	}
	if !ok {
		return &ValidationError{
			Source: src,
			Reason: fmt.Sprintf("data type %q not accepted (want one of %s)", opts.DataType, joinDataTypes(accepted)),
		}
	}

	if key := requiredKey[src]; key != "" {
		if opts.APIKeys[key] == "" {
			return &ValidationError{Source: src, Reason: fmt.Sprintf("missing required credential %q", key)}
		}
	}

	return nil
}

// acceptedDataTypes lists the valid data types per source.
var acceptedDataTypes = map[model.Source][]model.DataType{
	model.SourceWebSearch: {model.DataTypeEmails, model.DataTypePhones, model.DataTypeContacts},
	model.SourcePronet:    {model.DataTypeProfiles, model.DataTypeContacts, model.DataTypeComplete},
	model.SourceMapSearch: {model.DataTypeProfiles, model.DataTypeContacts, model.DataTypeComplete},
}

// requiredKey names the credential each source cannot run without.
var requiredKey = map[model.Source]string{
	model.SourceWebSearch: "search_api_key",
	model.SourceMapSearch: "maps_api_key",
}

func joinDataTypes(dts []model.DataType) string {
	parts := make([]string, len(dts))
	for i, dt := range dts {
		parts[i] = string(dt)
	}
	return strings.Join(parts, "|")
}
