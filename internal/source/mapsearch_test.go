package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// writeVariantScript emits one record named after the received query, so
// tests can see which variant produced what.
func writeVariantScript(t *testing.T, failPattern string) string {
	t.Helper()
	body := `Q=""
ART=""
while [ $# -gt 0 ]; do
  case "$1" in
    --query) Q="$2"; shift 2;;
    --artifact) ART="$2"; shift 2;;
    *) shift;;
  esac
done
`
	if failPattern != "" {
		body += `case "$Q" in *` + failPattern + `*) echo "variant refused" 1>&2; exit 2;; esac
`
	}
	body += `printf '[{"name":"%s"}]' "$Q" > "$ART"
exit 0
`
	path := filepath.Join(t.TempDir(), "maps.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func mapConfig(t *testing.T, script string) Config {
	t.Helper()
	return Config{
		Command:     "/bin/sh",
		Args:        []string{script},
		ArtifactDir: t.TempDir(),
		GracePeriod: 2 * time.Second,
	}
}

func mapOpts() model.RunOptions {
	return model.RunOptions{
		DataType:  model.DataTypeComplete,
		SessionID: "sess-m",
		APIKeys:   map[string]string{"maps_api_key": "k"},
	}
}

func TestMapSearch_FansOutOverExpandedVariants(t *testing.T) {
	t.Parallel()

	expander := func(context.Context, string) []string {
		return []string{"dentist rabat", "dental clinic casablanca"}
	}

	m := NewMapSearch(mapConfig(t, writeVariantScript(t, "")), expander, 2)
	m.limiter.SetLimit(1000) // keep the test fast

	out, err := m.Run(context.Background(), model.ParseQuery("dentist casablanca"), mapOpts())
	require.NoError(t, err)
	require.Len(t, out.Records, 3)

	// Records are concatenated in variant order, original query first.
	assert.Equal(t, "dentist casablanca", out.Records[0].Name)
	assert.Equal(t, "dentist rabat", out.Records[1].Name)
	assert.Equal(t, "dental clinic casablanca", out.Records[2].Name)
}

func TestMapSearch_VariantCapAndDeduplication(t *testing.T) {
	t.Parallel()

	expander := func(context.Context, string) []string {
		// Repeats of the original and of each other must not double-run.
		return []string{"dentist casablanca", "dentist rabat", "dentist rabat", "dentist fes", "dentist tangier"}
	}

	m := NewMapSearch(mapConfig(t, writeVariantScript(t, "")), expander, 2)
	m.limiter.SetLimit(1000)

	out, err := m.Run(context.Background(), model.ParseQuery("dentist casablanca"), mapOpts())
	require.NoError(t, err)
	assert.Len(t, out.Records, maxQueryVariants)
}

func TestMapSearch_ToleratesPartialVariantFailure(t *testing.T) {
	t.Parallel()

	expander := func(context.Context, string) []string {
		return []string{"bad variant"}
	}

	m := NewMapSearch(mapConfig(t, writeVariantScript(t, "bad")), expander, 2)
	m.limiter.SetLimit(1000)

	out, err := m.Run(context.Background(), model.ParseQuery("dentist casablanca"), mapOpts())
	require.NoError(t, err, "one surviving variant is a success")
	require.Len(t, out.Records, 1)
	assert.Equal(t, "dentist casablanca", out.Records[0].Name)
}

func TestMapSearch_AllVariantsFailedSurfacesError(t *testing.T) {
	t.Parallel()

	m := NewMapSearch(mapConfig(t, writeVariantScript(t, "dentist")), nil, 2)
	m.limiter.SetLimit(1000)

	_, err := m.Run(context.Background(), model.ParseQuery("dentist casablanca"), mapOpts())
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 2, execErr.ExitCode)
}

func TestMapSearch_MaxResultsBoundsConcatenation(t *testing.T) {
	t.Parallel()

	expander := func(context.Context, string) []string {
		return []string{"dentist rabat", "dentist fes"}
	}

	m := NewMapSearch(mapConfig(t, writeVariantScript(t, "")), expander, 2)
	m.limiter.SetLimit(1000)

	opts := mapOpts()
	opts.MaxResults = 2
	out, err := m.Run(context.Background(), model.ParseQuery("dentist casablanca"), opts)
	require.NoError(t, err)
	assert.Len(t, out.Records, 2)
}

func TestMapSearch_DefaultWorkerPoolIsSmall(t *testing.T) {
	t.Parallel()

	m := NewMapSearch(mapConfig(t, writeVariantScript(t, "")), nil, 0)
	assert.GreaterOrEqual(t, m.workers, 1)
	assert.LessOrEqual(t, m.workers, 4)
}
