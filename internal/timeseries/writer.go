// Package timeseries appends fullness observations to per-polygon series
// files.
package timeseries

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// TimeLayout is the timestamp format of the series files.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Row is one retained observation: acquisition time, wet pixel count and
// wet percentage.
type Row struct {
	Time       time.Time
	WetCount   int
	WetPercent float64
}

// Writer appends rows to `<dir>/<polygon id>.txt`. Files are append-only
// CSV without a header; existing rows are never rewritten.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed and returns a writer.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "timeseries: create output dir %s", dir)
	}
	return &Writer{dir: dir}, nil
}

// Path returns the series file path for a polygon.
func (w *Writer) Path(id string) string {
	return filepath.Join(w.dir, id+".txt")
}

// Append writes rows to the polygon's series file in the given order.
func (w *Writer) Append(id string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	f, err := os.OpenFile(w.Path(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "timeseries: open series file for %s", id)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	for _, row := range rows {
		record := []string{
			row.Time.UTC().Format(TimeLayout),
			strconv.Itoa(row.WetCount),
			formatPercent(row.WetPercent),
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "timeseries: write row for %s", id)
		}
	}
	cw.Flush()
	return eris.Wrapf(cw.Error(), "timeseries: flush series file for %s", id)
}

// formatPercent renders a percentage with minimal digits, matching the
// rest of the series history.
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
