// Package output writes screening artefacts: the ranked CSV, the top-N JSON and text reports.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// TimestampLayout stamps artefact file names (YYYY-MM-DD_HHMMSS)
const TimestampLayout = "2006-01-02_150405"

// CSVName returns the ranked CSV file name for a run
func CSVName(at time.Time) string {
	return fmt.Sprintf("screening_results_%s.csv", at.Format(TimestampLayout))
}

// TopJSONName returns the top-N JSON file name for a run
func TopJSONName(n int, at time.Time) string {
	return fmt.Sprintf("top%d_%s.json", n, at.Format(TimestampLayout))
}

var topJSONPattern = regexp.MustCompile(`^top\d+_(\d{4}-\d{2}-\d{2}_\d{6})\.json$`)

// LatestTopJSONPath finds the newest top-N JSON in dir by the timestamp in its name
func LatestTopJSONPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read output dir: %w", err)
	}

	type candidate struct {
		name string
		at   time.Time
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := topJSONPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		at, err := time.Parse(TimestampLayout, m[1])
		if err != nil {
			continue
		}
		found = append(found, candidate{name: e.Name(), at: at})
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no top-N results in %s: %w", dir, os.ErrNotExist)
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].at.Equal(found[j].at) {
			return found[i].at.After(found[j].at)
		}
		return found[i].name > found[j].name
	})
	return filepath.Join(dir, found[0].name), nil
}

// ensureDir creates the parent directory of path
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
