package model

import "strings"

// Source identifies one of the scraping backends.
type Source string

const (
	SourceWebSearch Source = "websearch"
	SourcePronet    Source = "pronet"
	SourceMapSearch Source = "mapsearch"
	SourceCombined  Source = "combined"
)

// AllSources lists the scraping backends in their fixed combined-run order.
// The order matters: cross-source merge is first-seen-wins, so reordering
// changes which source's values win on conflict.
var AllSources = []Source{SourceWebSearch, SourcePronet, SourceMapSearch}

// DataType selects which record variants a normalizer emits. Valid values
// are source-dependent: websearch accepts emails/phones/contacts, pronet and
// mapsearch accept profiles/contacts/complete.
type DataType string

const (
	DataTypeEmails   DataType = "emails"
	DataTypePhones   DataType = "phones"
	DataTypeContacts DataType = "contacts"
	DataTypeProfiles DataType = "profiles"
	DataTypeComplete DataType = "complete"
)

// Query is a free-text search target, parsed heuristically into a business
// type and a location.
type Query struct {
	Raw          string `json:"raw"`
	BusinessType string `json:"business_type"`
	Location     string `json:"location,omitempty"`
}

// ParseQuery splits a free-text query into business type and location by
// taking the trailing token as the location. There is no strict grammar:
// a single-token query degrades to "whole string is the business type".
// Multi-word locations are mis-split by this heuristic; callers that need
// precision should pass a pre-split query.
func ParseQuery(raw string) Query {
	q := Query{Raw: strings.TrimSpace(raw)}
	fields := strings.Fields(q.Raw)
	switch {
	case len(fields) == 0:
		// empty query; validation rejects it downstream
	case len(fields) == 1:
		q.BusinessType = fields[0]
	default:
		q.BusinessType = strings.Join(fields[:len(fields)-1], " ")
		q.Location = fields[len(fields)-1]
	}
	return q
}

// RunOptions carries per-run parameters. Credentials are scoped here rather
// than in process environment so concurrent runs for different callers never
// interfere.
type RunOptions struct {
	DataType   DataType          `json:"data_type"`
	MaxResults int               `json:"max_results"`
	APIKeys    map[string]string `json:"-"`
	SessionID  string            `json:"session_id"`
}

// RawRecord is the union of the per-source scraper output shapes. A source
// populates only the fields its backend produces; the normalizer for that
// source knows which ones to read.
type RawRecord struct {
	// websearch
	Email string  `json:"email,omitempty"`
	Phone string  `json:"phone,omitempty"`
	URL   string  `json:"url,omitempty"`
	Query string  `json:"query,omitempty"`
	Score float64 `json:"score,omitempty"`

	// pronet
	Name          string `json:"name,omitempty"`
	ProfileURL    string `json:"profile_url,omitempty"`
	Bio           string `json:"bio,omitempty"`
	IsCompanyPage bool   `json:"is_company_page,omitempty"`

	// mapsearch
	Website  string   `json:"website,omitempty"`
	Emails   []string `json:"emails,omitempty"`
	Location string   `json:"location,omitempty"`
}

// UnifiedRecord is the common post-normalization lead shape. A record always
// carries at least one of email, phone, profile URL, business name, or name;
// the normalizer discards anything left empty after sanitization.
type UnifiedRecord struct {
	Source       string `json:"source"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Name         string `json:"name,omitempty"`
	ProfileURL   string `json:"profile_url,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
	Address      string `json:"address,omitempty"`
	Website      string `json:"website,omitempty"`
}

// Empty reports whether the record carries none of the identity fields.
func (r UnifiedRecord) Empty() bool {
	return r.Email == "" && r.Phone == "" && r.ProfileURL == "" &&
		r.BusinessName == "" && r.Name == ""
}

// MergedRecord is a UnifiedRecord whose Source may be a comma-joined list of
// contributing sources. Field values are the union of all contributors'
// non-empty fields, first-seen wins on conflict.
type MergedRecord = UnifiedRecord
