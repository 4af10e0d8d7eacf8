package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

func ensureDir(dir string) error {
	return eris.Wrap(os.MkdirAll(dir, 0o755), "export: create output dir")
}

func writeXLSX(records []model.MergedRecord, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().Value = col
	}
	for _, rec := range records {
		row := sheet.AddRow()
		for _, val := range recordRow(rec) {
			row.AddCell().Value = val
		}
	}

	return eris.Wrapf(file.Save(path), "export: save xlsx %s", path)
}

func writeCSV(records []model.MergedRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, rec := range records {
		if err := w.Write(recordRow(rec)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrap(f.Close(), "export: close csv")
}

func writeJSON(records []model.MergedRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return eris.Wrap(f.Close(), "export: close json")
}

// writeTXT renders plain text with sectioned contact lists, the format the
// chat front end relays directly to users.
func writeTXT(records []model.MergedRecord, path string) error {
	var b strings.Builder

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&b, "=== %s (%d) ===\n", title, len(lines))
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	var emails, phones, profiles, businesses []string
	for _, rec := range records {
		if rec.Email != "" {
			emails = append(emails, rec.Email)
		}
		if rec.Phone != "" {
			phones = append(phones, rec.Phone)
		}
		if rec.ProfileURL != "" {
			label := rec.ProfileURL
			if rec.Name != "" {
				label = rec.Name + " - " + rec.ProfileURL
			}
			profiles = append(profiles, label)
		}
		if rec.BusinessName != "" {
			line := rec.BusinessName
			var details []string
			if rec.Address != "" {
				details = append(details, rec.Address)
			}
			if rec.Website != "" {
				details = append(details, rec.Website)
			}
			if len(details) > 0 {
				line += " (" + strings.Join(details, ", ") + ")"
			}
			businesses = append(businesses, line)
		}
	}

	section("EMAILS", emails)
	section("PHONES", phones)
	section("PROFILES", profiles)
	section("BUSINESSES", businesses)

	return eris.Wrapf(os.WriteFile(path, []byte(b.String()), 0o644), "export: write %s", path)
}
