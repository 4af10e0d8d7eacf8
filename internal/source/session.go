package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// ArtifactPath returns the session-tagged autosave path for a source. The
// session ID in the filename is the concurrency-safety mechanism for on-disk
// partial results: two concurrent runs never read or write the same file,
// and recovery never picks up an older run's stale artifact.
func ArtifactPath(dir string, src model.Source, sessionID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.json", src, sessionID))
}

// ReadArtifact parses a partial-results artifact. A missing file is not an
// error: it returns (nil, false, nil) so interrupted runs that never flushed
// degrade to an empty recovery rather than a failure.
func ReadArtifact(path string) ([]model.RawRecord, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "source: read artifact %s", path)
	}

	var records []model.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, eris.Wrapf(err, "source: parse artifact %s", path)
	}
	return records, true, nil
}

// RemoveArtifact deletes a consumed artifact. Best-effort: a leftover file
// is only disk clutter, never a correctness problem, because the next run
// uses a fresh session ID.
func RemoveArtifact(path string) {
	_ = os.Remove(path)
}
