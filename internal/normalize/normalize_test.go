package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

func TestRecords_MapSearchComplete(t *testing.T) {
	t.Parallel()

	raws := []model.RawRecord{{
		Name:     "Cabinet A",
		Phone:    "0612345678",
		Website:  "https://cabinet-a.ma",
		Emails:   []string{"a@cabinet.ma"},
		Location: "Casablanca",
	}}

	got := Records(model.SourceMapSearch, raws, model.DataTypeComplete)
	require.Len(t, got, 1)
	assert.Equal(t, model.UnifiedRecord{
		Source:       "mapsearch",
		BusinessName: "Cabinet A",
		Phone:        "+212612345678",
		Email:        "a@cabinet.ma",
		Website:      "https://cabinet-a.ma",
		Address:      "Casablanca",
	}, got[0])
}

func TestRecords_MapSearchDataTypes(t *testing.T) {
	t.Parallel()

	raw := model.RawRecord{
		Name:     "Cabinet A",
		Phone:    "0612345678",
		Website:  "https://cabinet-a.ma",
		Emails:   []string{"bad", "a@cabinet.ma"},
		Location: "Casablanca",
	}

	profiles := Records(model.SourceMapSearch, []model.RawRecord{raw}, model.DataTypeProfiles)
	require.Len(t, profiles, 1)
	assert.Empty(t, profiles[0].Email)
	assert.Empty(t, profiles[0].Phone)
	assert.Equal(t, "https://cabinet-a.ma", profiles[0].Website)

	contacts := Records(model.SourceMapSearch, []model.RawRecord{raw}, model.DataTypeContacts)
	require.Len(t, contacts, 1)
	// First valid email wins; the malformed one is skipped, not fatal.
	assert.Equal(t, "a@cabinet.ma", contacts[0].Email)
	assert.Equal(t, "+212612345678", contacts[0].Phone)
	assert.Empty(t, contacts[0].Address)
}

func TestRecords_WebSearchSplitsByDataType(t *testing.T) {
	t.Parallel()

	raws := []model.RawRecord{{
		Email: "Contact@Agence.MA",
		Phone: "0698765432",
		URL:   "https://agence.ma/contact",
	}}

	emails := Records(model.SourceWebSearch, raws, model.DataTypeEmails)
	require.Len(t, emails, 1)
	assert.Equal(t, "contact@agence.ma", emails[0].Email)
	assert.Empty(t, emails[0].Phone)

	phones := Records(model.SourceWebSearch, raws, model.DataTypePhones)
	require.Len(t, phones, 1)
	assert.Empty(t, phones[0].Email)
	assert.Equal(t, "+212698765432", phones[0].Phone)

	both := Records(model.SourceWebSearch, raws, model.DataTypeContacts)
	require.Len(t, both, 1)
	assert.Equal(t, "contact@agence.ma", both[0].Email)
	assert.Equal(t, "+212698765432", both[0].Phone)
}

func TestRecords_WebSearchScoreCutoff(t *testing.T) {
	t.Parallel()

	raws := []model.RawRecord{
		{Email: "low@agence.ma", Score: 0.2},
		{Email: "high@agence.ma", Score: 0.9},
		{Email: "unscored@agence.ma"},
	}

	got := Records(model.SourceWebSearch, raws, model.DataTypeEmails)
	require.Len(t, got, 2)
	assert.Equal(t, "high@agence.ma", got[0].Email)
	assert.Equal(t, "unscored@agence.ma", got[1].Email)
}

func TestRecords_Pronet(t *testing.T) {
	t.Parallel()

	raws := []model.RawRecord{
		{Name: "Jane Doe", ProfileURL: "https://pro.example/in/janedoe"},
		{Name: "Cabinet A", ProfileURL: "https://pro.example/company/cabinet-a", IsCompanyPage: true},
	}

	got := Records(model.SourcePronet, raws, model.DataTypeProfiles)
	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe", got[0].Name)
	assert.Empty(t, got[0].BusinessName)
	assert.Equal(t, "Cabinet A", got[1].BusinessName)
	assert.Empty(t, got[1].Name)
}

func TestRecords_DropsEmptyRecords(t *testing.T) {
	t.Parallel()

	raws := []model.RawRecord{
		{Email: "not-an-email", Phone: "123"},                  // both fields sanitize away
		{Email: "noreply@shop.ma"},                             // blacklisted mailbox
		{URL: "https://somewhere.ma"},                          // website alone is not an identity
		{Email: "keep@shop.ma"},                                // survives
	}

	got := Records(model.SourceWebSearch, raws, model.DataTypeContacts)
	require.Len(t, got, 1)
	assert.Equal(t, "keep@shop.ma", got[0].Email)

	for _, rec := range got {
		assert.False(t, rec.Empty(), "normalize must never emit an empty record")
	}
}

func TestRecords_Idempotent(t *testing.T) {
	t.Parallel()

	raws := []model.RawRecord{
		{Email: "A@B.MA", Phone: "0612345678", URL: "https://b.ma"},
		{Name: "Cabinet A", Phone: "0522112233", Emails: []string{"x@y.ma"}, Location: "Rabat"},
	}

	first := Records(model.SourceWebSearch, raws, model.DataTypeContacts)
	second := Records(model.SourceWebSearch, raws, model.DataTypeContacts)
	assert.Equal(t, first, second)
}

func TestRecords_UnknownSourceYieldsNothing(t *testing.T) {
	t.Parallel()

	got := Records(model.Source("bogus"), []model.RawRecord{{Email: "a@b.ma"}}, model.DataTypeEmails)
	assert.Empty(t, got)
}
