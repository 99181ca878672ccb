package irrigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelSummer(t *testing.T) {
	// Year at [13:17) of the filename.
	label, err := Label("ndvi_max_mdb_2010_summer.tif", SeasonSummer)
	require.NoError(t, err)
	assert.Equal(t, "Summer10_11", label)
}

func TestLabelSummerCenturyWrap(t *testing.T) {
	label, err := Label("ndvi_max_mdb_1999_summer.tif", SeasonSummer)
	require.NoError(t, err)
	assert.Equal(t, "Summer99_00", label)
}

func TestLabelWinter(t *testing.T) {
	// Year at [7:11) of the filename.
	label, err := Label("ndvi_w_2010_mdb.tif", SeasonWinter)
	require.NoError(t, err)
	assert.Equal(t, "Winter2010", label)
}

func TestLabelErrors(t *testing.T) {
	_, err := Label("short.tif", SeasonSummer)
	assert.Error(t, err)

	_, err = Label("ndvi_max_mdb_abcd_summer.tif", SeasonSummer)
	assert.Error(t, err)

	_, err = Label("ndvi_max_mdb_2010_summer.tif", "Autumn")
	assert.ErrorContains(t, err, "unknown season")
}
