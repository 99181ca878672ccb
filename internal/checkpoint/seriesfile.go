package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/basinwatch/basin-cli/internal/timeseries"
)

// SeriesFileStore derives checkpoints from the series files themselves:
// the last observed timestamp is the first field of the final line of
// `<dir>/<id>.txt`. The output file doubles as the checkpoint, so no
// separate state database is needed.
type SeriesFileStore struct {
	dir string
}

// NewSeriesFile returns a store backed by the series output directory.
func NewSeriesFile(dir string) *SeriesFileStore {
	return &SeriesFileStore{dir: dir}
}

func (s *SeriesFileStore) LastObserved(_ context.Context, id string) (time.Time, error) {
	path := filepath.Join(s.dir, id+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, ErrNoCheckpoint
		}
		return time.Time{}, eris.Wrapf(err, "checkpoint: read series file %s", path)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return time.Time{}, ErrNoCheckpoint
	}

	field, _, _ := strings.Cut(last, ",")
	t, err := time.Parse(timeseries.TimeLayout, field)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "checkpoint: parse timestamp in %s", path)
	}
	return t.UTC(), nil
}

// SetLastObserved is a no-op: appending the retained rows to the series
// file is what advances a series-file checkpoint.
func (s *SeriesFileStore) SetLastObserved(context.Context, string, time.Time) error {
	return nil
}

func (s *SeriesFileStore) Close() error {
	return nil
}
