// Package irrigation classifies irrigated-land extent from seasonal
// vegetation-index statistic rasters.
package irrigation

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
)

// Seasons the statistic rasters are produced for.
const (
	SeasonSummer = "Summer"
	SeasonWinter = "Winter"
)

// Year substring offsets in the raster filenames, fixed by the upstream
// naming convention.
const (
	summerYearStart = 13
	summerYearEnd   = 17
	winterYearStart = 7
	winterYearEnd   = 11
)

// Label derives the season label from a raster filename. Summer rasters
// span the year boundary and label both calendar years as two digits
// ("Summer10_11"); winter rasters label the single year ("Winter2010").
func Label(filename, season string) (string, error) {
	switch season {
	case SeasonSummer:
		year, err := yearAt(filename, summerYearStart, summerYearEnd)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%02d_%02d", season, year%100, (year+1)%100), nil

	case SeasonWinter:
		year, err := yearAt(filename, winterYearStart, winterYearEnd)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%d", season, year), nil

	default:
		return "", eris.Errorf("irrigation: unknown season %q", season)
	}
}

func yearAt(filename string, start, end int) (int, error) {
	if len(filename) < end {
		return 0, eris.Errorf("irrigation: filename %q too short for year at [%d:%d]", filename, start, end)
	}
	year, err := strconv.Atoi(filename[start:end])
	if err != nil {
		return 0, eris.Wrapf(err, "irrigation: year substring of %q", filename)
	}
	return year, nil
}
