package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// TimeLayout encodes an activity's local start time into its filename.
// Colons are not filesystem-safe, so the time-of-day uses hyphens.
const TimeLayout = "2006-01-02T15-04-05"

// filePattern matches exported record filenames and captures the start
// time. Incremental fetch parses this back out, so the format is
// load-bearing.
var filePattern = regexp.MustCompile(`(\d+)_(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2})\.md$`)

// ErrNoExports means the runs directory holds no parseable export files.
var ErrNoExports = errors.New("no exported activities found")

// Filename returns the record filename for an activity.
func Filename(activityID int64, startTime time.Time) string {
	return fmt.Sprintf("%d_%s.md", activityID, startTime.Format(TimeLayout))
}

// ParseStartTime extracts the start time encoded in an export filename.
func ParseStartTime(name string) (time.Time, error) {
	m := filePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, fmt.Errorf("filename %q does not match the export pattern", name)
	}
	t, err := time.Parse(TimeLayout, m[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp in %q: %w", name, err)
	}
	return t, nil
}

// LatestStartTime scans dir for export files and returns the most recent
// start time found. Returns ErrNoExports when the directory is missing,
// empty, or holds no matching files.
func LatestStartTime(dir string) (time.Time, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*_*.md"))
	if err != nil {
		return time.Time{}, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var latest time.Time
	for _, f := range files {
		t, err := ParseStartTime(filepath.Base(f))
		if err != nil {
			continue
		}
		if t.After(latest) {
			latest = t
		}
	}

	if latest.IsZero() {
		return time.Time{}, ErrNoExports
	}
	return latest, nil
}

// Exists reports whether an export for this activity id is already on disk.
// Matching by id prefix means a re-timed upload is not exported twice.
func Exists(dir string, activityID int64) bool {
	files, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("%d_*.md", activityID)))
	return err == nil && len(files) > 0
}

// Write renders nothing itself; it persists an already-rendered record and
// returns the filename used.
func Write(dir string, activityID int64, startTime time.Time, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating runs directory: %w", err)
	}
	name := Filename(activityID, startTime)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return name, nil
}
