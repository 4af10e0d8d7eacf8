// Package dedupe collapses unified lead records that represent the same
// real-world entity, within and across sources.
package dedupe

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// Merge folds duplicate records into one merged record per entity.
//
// Two records are duplicates if they share any identity key: normalized
// email, phone digits, profile URL, or folded business/person name. Matching
// is transitive (union-find): if A matches B on phone and B matches C on
// name, all three fold into one group. A record with no identity key only
// merges with a structurally identical record.
//
// Within a group the first-seen record is the base and later records fill
// its gaps; existing non-empty fields are never overwritten. Source becomes
// the comma-joined union of contributing sources. Output order follows the
// first-seen order of each group, so results are deterministic for a given
// input order.
func Merge(records []model.UnifiedRecord) []model.MergedRecord {
	uf := newUnionFind(len(records))

	firstByKey := make(map[string]int)
	for i, rec := range records {
		for _, key := range identityKeys(rec) {
			if j, seen := firstByKey[key]; seen {
				uf.union(j, i)
			} else {
				firstByKey[key] = i
			}
		}
	}

	merged := make(map[int]*model.MergedRecord)
	var order []int
	for i, rec := range records {
		root := uf.find(i)
		base, seen := merged[root]
		if !seen {
			clone := rec
			merged[root] = &clone
			order = append(order, root)
			continue
		}
		fillGaps(base, rec)
	}

	out := make([]model.MergedRecord, 0, len(order))
	for _, root := range order {
		out = append(out, *merged[root])
	}
	return out
}

// identityKeys builds the composite key set for a record. All available
// fields contribute, not just the first match. A keyless record falls back
// to its full shape, which only ever matches an exact duplicate.
func identityKeys(rec model.UnifiedRecord) []string {
	var keys []string
	if e := strings.ToLower(strings.TrimSpace(rec.Email)); e != "" {
		keys = append(keys, "email:"+e)
	}
	if p := phoneDigits(rec.Phone); p != "" {
		keys = append(keys, "phone:"+p)
	}
	if u := strings.ToLower(strings.TrimSpace(rec.ProfileURL)); u != "" {
		keys = append(keys, "url:"+strings.TrimSuffix(u, "/"))
	}
	// Business and person names share one key space: directory listings and
	// search hits often carry the same label in different fields.
	if n := foldName(rec.BusinessName); n != "" {
		keys = append(keys, "name:"+n)
	}
	if n := foldName(rec.Name); n != "" {
		keys = append(keys, "name:"+n)
	}
	if len(keys) == 0 {
		keys = append(keys, "shape:"+rec.Source+"|"+rec.Address+"|"+rec.Website)
	}
	return keys
}

// fillGaps copies rec's non-empty fields into base where base is empty and
// appends rec's source to the contribution list.
func fillGaps(base *model.MergedRecord, rec model.UnifiedRecord) {
	if base.Email == "" {
		base.Email = rec.Email
	}
	if base.Phone == "" {
		base.Phone = rec.Phone
	}
	if base.Name == "" {
		base.Name = rec.Name
	}
	if base.ProfileURL == "" {
		base.ProfileURL = rec.ProfileURL
	}
	if base.BusinessName == "" {
		base.BusinessName = rec.BusinessName
	}
	if base.Address == "" {
		base.Address = rec.Address
	}
	if base.Website == "" {
		base.Website = rec.Website
	}
	if rec.Source != "" && !containsSource(base.Source, rec.Source) {
		if base.Source == "" {
			base.Source = rec.Source
		} else {
			base.Source += ", " + rec.Source
		}
	}
}

func containsSource(joined, src string) bool {
	for _, s := range strings.Split(joined, ",") {
		if strings.TrimSpace(s) == src {
			return true
		}
	}
	return false
}

// phoneDigits strips a phone value to bare digits for key comparison, so
// +212 6 12 34 56 78 and 212612345678 collide.
func phoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// nameFolder strips diacritics so Société and Societe produce the same key.
var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldName(name string) string {
	n := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if n == "" {
		return ""
	}
	folded, _, err := transform.String(nameFolder, n)
	if err != nil {
		return n
	}
	return folded
}

// unionFind is a plain union-find over record indexes.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// union merges the sets of i and j, keeping the smaller index as root so
// "first seen" stays the representative regardless of union order.
func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri == rj {
		return
	}
	if ri > rj {
		ri, rj = rj, ri
	}
	uf.parent[rj] = ri
}
