package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

func TestMerge_TransitiveAcrossKeys(t *testing.T) {
	t.Parallel()

	// A matches B on email, B matches C on phone: all three fold into one.
	records := []model.UnifiedRecord{
		{Source: "websearch", Email: "x@y.com"},
		{Source: "websearch", Email: "x@y.com", Phone: "+212612345678"},
		{Source: "mapsearch", Phone: "+212612345678", Name: "Jane Doe"},
	}

	got := Merge(records)
	require.Len(t, got, 1)
	assert.Equal(t, "x@y.com", got[0].Email)
	assert.Equal(t, "+212612345678", got[0].Phone)
	assert.Equal(t, "Jane Doe", got[0].Name)
	assert.Equal(t, "websearch, mapsearch", got[0].Source)
}

func TestMerge_CrossSourceEmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "websearch", Email: "x@y.com"},
		{Source: "pronet", Email: "X@Y.COM", Phone: "+212612345678"},
	}

	got := Merge(records)
	require.Len(t, got, 1)
	assert.Equal(t, "x@y.com", got[0].Email, "first-seen value wins")
	assert.Equal(t, "+212612345678", got[0].Phone)
	assert.Equal(t, "websearch, pronet", got[0].Source)
}

func TestMerge_PhoneKeyIgnoresFormatting(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "mapsearch", Phone: "+212 6-12.34.56.78", BusinessName: "Cabinet A"},
		{Source: "websearch", Phone: "212612345678", Email: "a@cabinet.ma"},
	}

	got := Merge(records)
	require.Len(t, got, 1)
	assert.Equal(t, "a@cabinet.ma", got[0].Email)
	assert.Equal(t, "Cabinet A", got[0].BusinessName)
}

func TestMerge_FirstSeenWinsNeverOverwrites(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "websearch", Email: "x@y.com", Phone: "+212611111119"},
		{Source: "mapsearch", Email: "x@y.com", Phone: "+212622222229"},
	}

	got := Merge(records)
	require.Len(t, got, 1)
	assert.Equal(t, "+212611111119", got[0].Phone)
}

func TestMerge_NameFoldingMatchesDiacritics(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "mapsearch", BusinessName: "Société Générale  Maroc"},
		{Source: "websearch", BusinessName: "societe generale maroc", Email: "sg@bank.ma"},
	}

	got := Merge(records)
	require.Len(t, got, 1)
	assert.Equal(t, "Société Générale  Maroc", got[0].BusinessName)
	assert.Equal(t, "sg@bank.ma", got[0].Email)
}

func TestMerge_PersonAndBusinessNameShareKeySpace(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "pronet", Name: "Cabinet A"},
		{Source: "mapsearch", BusinessName: "Cabinet A", Phone: "+212612345678"},
	}

	got := Merge(records)
	require.Len(t, got, 1)
	assert.Equal(t, "+212612345678", got[0].Phone)
}

func TestMerge_DistinctRecordsPreserved(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "websearch", Email: "a@one.ma"},
		{Source: "websearch", Email: "b@two.ma"},
		{Source: "mapsearch", BusinessName: "Cabinet C", Phone: "+212522334459"},
	}

	got := Merge(records)
	assert.Len(t, got, 3)
}

func TestMerge_NoDataLossAcrossGroups(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "websearch", Email: "x@y.com"},
		{Source: "mapsearch", Email: "x@y.com", BusinessName: "Cabinet A", Address: "Casablanca"},
		{Source: "pronet", Name: "Jane Doe", ProfileURL: "https://pro.example/in/janedoe"},
	}

	got := Merge(records)
	require.Len(t, got, 2)

	// Every non-conflicting field value from the input survives somewhere.
	assert.Equal(t, "x@y.com", got[0].Email)
	assert.Equal(t, "Cabinet A", got[0].BusinessName)
	assert.Equal(t, "Casablanca", got[0].Address)
	assert.Equal(t, "Jane Doe", got[1].Name)
	assert.Equal(t, "https://pro.example/in/janedoe", got[1].ProfileURL)
}

func TestMerge_KeylessRecordsUseStructuralEquality(t *testing.T) {
	t.Parallel()

	// Records with no identity field never reach the merger in the normal
	// pipeline, but the merger must still not fold distinct ones.
	records := []model.UnifiedRecord{
		{Source: "websearch", Website: "https://one.ma"},
		{Source: "websearch", Website: "https://two.ma"},
		{Source: "websearch", Website: "https://one.ma"},
	}

	got := Merge(records)
	assert.Len(t, got, 2)
}

func TestMerge_DeterministicForSameInputOrder(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "websearch", Email: "a@one.ma", Phone: "+212611111119"},
		{Source: "mapsearch", BusinessName: "Cabinet B", Phone: "+212611111119"},
		{Source: "pronet", Name: "Cabinet B"},
		{Source: "websearch", Email: "c@three.ma"},
	}

	first := Merge(records)
	second := Merge(records)
	assert.Equal(t, first, second)
}

func TestMerge_SourceJoinSkipsRepeats(t *testing.T) {
	t.Parallel()

	records := []model.UnifiedRecord{
		{Source: "websearch", Email: "x@y.com"},
		{Source: "websearch", Email: "x@y.com"},
		{Source: "mapsearch", Email: "x@y.com"},
	}

	got := Merge(records)
	require.Len(t, got, 1)
	assert.Equal(t, "websearch, mapsearch", got[0].Source)
}

func TestMerge_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Merge(nil))
	assert.Empty(t, Merge([]model.UnifiedRecord{}))
}
