package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

func sampleRecords() []model.MergedRecord {
	return []model.MergedRecord{
		{
			Source:       "websearch, mapsearch",
			BusinessName: "Cabinet A",
			Email:        "a@cabinet.ma",
			Phone:        "+212612345678",
			Website:      "https://cabinet-a.ma",
			Address:      "Casablanca",
		},
		{
			Source:     "pronet",
			Name:       "Jane Doe",
			ProfileURL: "https://pro.example/in/janedoe",
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"xlsx", "CSV", " json ", "txt"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWrite_CSV(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "leads")
	path, err := Write(sampleRecords(), FormatCSV, dest)
	require.NoError(t, err)
	assert.Equal(t, dest+".csv", path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "Cabinet A", rows[1][1])
	assert.Equal(t, "+212612345678", rows[1][4])
	assert.Equal(t, "Jane Doe", rows[2][2])
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	path, err := Write(sampleRecords(), FormatJSON, filepath.Join(t.TempDir(), "leads.json"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []model.MergedRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sampleRecords(), decoded)
}

func TestWrite_XLSX(t *testing.T) {
	t.Parallel()

	path, err := Write(sampleRecords(), FormatXLSX, filepath.Join(t.TempDir(), "leads"))
	require.NoError(t, err)

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Source", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "a@cabinet.ma", sheet.Rows[1].Cells[3].Value)
	assert.Equal(t, "https://pro.example/in/janedoe", sheet.Rows[2].Cells[5].Value)
}

func TestWrite_TXTSections(t *testing.T) {
	t.Parallel()

	path, err := Write(sampleRecords(), FormatTXT, filepath.Join(t.TempDir(), "leads"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "=== EMAILS (1) ===")
	assert.Contains(t, text, "a@cabinet.ma")
	assert.Contains(t, text, "=== PHONES (1) ===")
	assert.Contains(t, text, "=== PROFILES (1) ===")
	assert.Contains(t, text, "Jane Doe - https://pro.example/in/janedoe")
	assert.Contains(t, text, "=== BUSINESSES (1) ===")
	assert.Contains(t, text, "Cabinet A (Casablanca, https://cabinet-a.ma)")
}

func TestWrite_EmptyRecordSetStillProducesFile(t *testing.T) {
	t.Parallel()

	path, err := Write(nil, FormatCSV, filepath.Join(t.TempDir(), "empty"))
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
