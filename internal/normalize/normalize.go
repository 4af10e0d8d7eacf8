// Package normalize transforms per-source raw scraper records into the
// unified lead schema. Normalizers are pure: malformed fields are dropped,
// never raised, and a record that ends up with no identity field is
// discarded.
package normalize

import (
	"strings"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// Records normalizes a source's raw records for the requested data type.
// Dispatch is by source identity; unknown sources yield nil.
func Records(src model.Source, raws []model.RawRecord, dataType model.DataType) []model.UnifiedRecord {
	var out []model.UnifiedRecord
	for _, raw := range raws {
		var rec model.UnifiedRecord
		switch src {
		case model.SourceWebSearch:
			rec = webSearchRecord(raw, dataType)
		case model.SourcePronet:
			rec = pronetRecord(raw, dataType)
		case model.SourceMapSearch:
			rec = mapSearchRecord(raw, dataType)
		default:
			continue
		}
		if rec.Empty() {
			continue
		}
		rec.Source = string(src)
		out = append(out, rec)
	}
	return out
}

// minWebSearchScore is the confidence cutoff for website-to-business matches
// reported by the search backend. Scored hits below it are dropped; unscored
// hits (score 0) pass through. Policy knob, tune per backend.
const minWebSearchScore = 0.5

// webSearchRecord maps a search-hit record. The data type splits out
// email-only and phone-only variants.
func webSearchRecord(raw model.RawRecord, dataType model.DataType) model.UnifiedRecord {
	if raw.Score > 0 && raw.Score < minWebSearchScore {
		return model.UnifiedRecord{}
	}
	rec := model.UnifiedRecord{Website: cleanURL(raw.URL)}
	if dataType == model.DataTypeEmails || dataType == model.DataTypeContacts {
		rec.Email = CleanEmail(raw.Email)
	}
	if dataType == model.DataTypePhones || dataType == model.DataTypeContacts {
		rec.Phone = CleanPhone(raw.Phone)
	}
	return rec
}

// pronetRecord maps a professional-network profile. The backend scraper only
// yields name and profile URL (company pages carry no person name), so every
// data type produces the same profile-shaped record.
func pronetRecord(raw model.RawRecord, _ model.DataType) model.UnifiedRecord {
	rec := model.UnifiedRecord{ProfileURL: cleanURL(raw.ProfileURL)}
	name := strings.TrimSpace(raw.Name)
	if raw.IsCompanyPage {
		rec.BusinessName = name
	} else {
		rec.Name = name
	}
	return rec
}

// mapSearchRecord maps a directory/map listing. profiles keeps the listing
// identity only, contacts adds email/phone, complete adds address and
// website as well.
func mapSearchRecord(raw model.RawRecord, dataType model.DataType) model.UnifiedRecord {
	rec := model.UnifiedRecord{BusinessName: strings.TrimSpace(raw.Name)}

	if dataType == model.DataTypeContacts || dataType == model.DataTypeComplete {
		rec.Phone = CleanPhone(raw.Phone)
		for _, e := range raw.Emails {
			if cleaned := CleanEmail(e); cleaned != "" {
				rec.Email = cleaned
				break
			}
		}
	}
	if dataType == model.DataTypeProfiles || dataType == model.DataTypeComplete {
		rec.Website = cleanURL(raw.Website)
		rec.Address = strings.TrimSpace(raw.Location)
	}
	return rec
}

// cleanURL trims whitespace and rejects strings that are not http(s) URLs.
func cleanURL(raw string) string {
	u := strings.TrimSpace(raw)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return ""
	}
	return u
}
