// Package export serializes a run's merged lead set to a file.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// Format is an accepted export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatTXT  Format = "txt"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatCSV, FormatJSON, FormatTXT:
		return f, nil
	default:
		return "", eris.Errorf("export: unknown format %q (want xlsx|csv|json|txt)", s)
	}
}

// columns is the fixed export column order shared by the tabular formats.
var columns = []string{"Source", "Business Name", "Name", "Email", "Phone", "Profile URL", "Website", "Address"}

func recordRow(r model.MergedRecord) []string {
	return []string{r.Source, r.BusinessName, r.Name, r.Email, r.Phone, r.ProfileURL, r.Website, r.Address}
}

// Write serializes records to destination in the given format, appending the
// format extension when missing. Returns the path written. Records arrive
// already normalized and merged; layout is all that happens here.
func Write(records []model.MergedRecord, format Format, destination string) (string, error) {
	path := destination
	if ext := "." + string(format); !strings.HasSuffix(strings.ToLower(path), ext) {
		path += ext
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := ensureDir(dir); err != nil {
			return "", err
		}
	}

	var err error
	switch format {
	case FormatXLSX:
		err = writeXLSX(records, path)
	case FormatCSV:
		err = writeCSV(records, path)
	case FormatJSON:
		err = writeJSON(records, path)
	case FormatTXT:
		err = writeTXT(records, path)
	default:
		return "", eris.Errorf("export: unknown format %q", format)
	}
	if err != nil {
		return "", err
	}

	zap.L().Info("export: wrote leads",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("records", len(records)),
	)
	return path, nil
}

// Summary logs per-source counts for the run so operators can tell "no
// matches" from "source errored".
func Summary(records []model.MergedRecord, sources []model.SourceOutcome) {
	fields := []zap.Field{zap.Int("merged_leads", len(records))}
	for _, sc := range sources {
		key := fmt.Sprintf("%s_%s", sc.Source, sc.Status)
		fields = append(fields, zap.Int(key, sc.LeadCount))
		if sc.Error != "" {
			fields = append(fields, zap.String(string(sc.Source)+"_error", sc.Error))
		}
	}
	zap.L().Info("export: run summary", fields...)
}
