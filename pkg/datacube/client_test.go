package datacube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBBox() BBox {
	return BBox{MinX: 100, MinY: -200, MaxX: 150, MaxY: -150}
}

func sceneTimes() []time.Time {
	base := time.Date(2010, 7, 1, 0, 0, 0, 0, time.UTC)
	return []time.Time{base, base.AddDate(0, 1, 0), base.AddDate(0, 2, 0)}
}

// newTestServer serves three scenes with 2x2 pixel blocks.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/products/wofs_albers/scenes":
			assert.Equal(t, testBBox().String(), r.URL.Query().Get("bbox"))

			var scenes []Scene
			for i, ts := range sceneTimes() {
				if from := r.URL.Query().Get("from"); from != "" {
					cutoff, err := time.Parse(time.RFC3339Nano, from)
					require.NoError(t, err)
					if !ts.After(cutoff) {
						continue
					}
				}
				scenes = append(scenes, Scene{ID: fmt.Sprintf("scene-%d", i), Time: ts})
			}
			require.NoError(t, json.NewEncoder(w).Encode(scenesResponse{Scenes: scenes}))

		case "/v1/scenes/scene-0/pixels", "/v1/scenes/scene-1/pixels", "/v1/scenes/scene-2/pixels":
			grid := Grid{
				Width:     2,
				Height:    2,
				Transform: [6]float64{100, 25, 0, -150, 0, -25},
				Flags:     []uint16{FlagWet, FlagDry, FlagCloud, FlagWet},
			}
			require.NoError(t, json.NewEncoder(w).Encode(grid))

		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestClient(baseURL string) Client {
	return NewClient(Options{
		BaseURL:    baseURL,
		RatePerSec: 1000,
		MaxRetries: 2,
	})
}

func TestScenes(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	scenes, err := c.Scenes(context.Background(), "wofs_albers", testBBox(), time.Time{})
	require.NoError(t, err)
	require.Len(t, scenes, 3)
	assert.Equal(t, "scene-0", scenes[0].ID)
	assert.True(t, scenes[0].Time.Before(scenes[1].Time))
}

func TestScenesHonorsFrom(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	scenes, err := c.Scenes(context.Background(), "wofs_albers", testBBox(), sceneTimes()[0])
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "scene-1", scenes[0].ID)
}

func TestPixels(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	grid, err := c.Pixels(context.Background(), "scene-1", testBBox())
	require.NoError(t, err)
	assert.Equal(t, 2, grid.Width)
	assert.Equal(t, 2, grid.Height)
	assert.Equal(t, []uint16{FlagWet, FlagDry, FlagCloud, FlagWet}, grid.Flags)
}

func TestPixelsRejectsShortFlagArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Grid{Width: 3, Height: 3, Flags: []uint16{1, 2}})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Pixels(context.Background(), "scene-x", testBBox())
	assert.ErrorContains(t, err, "3x3")
}

func TestDrillPreservesOrder(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	grids, err := c.Drill(context.Background(), "wofs_albers", testBBox(), time.Time{})
	require.NoError(t, err)
	require.Len(t, grids, 3)

	for i, sg := range grids {
		assert.Equal(t, fmt.Sprintf("scene-%d", i), sg.Scene.ID)
		require.NotNil(t, sg.Grid)
	}
}

func TestDrillEmptyHistory(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	grids, err := c.Drill(context.Background(), "wofs_albers", testBBox(), sceneTimes()[2])
	require.NoError(t, err)
	assert.Empty(t, grids)
}

func TestRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(scenesResponse{Scenes: []Scene{{ID: "scene-0", Time: sceneTimes()[0]}}})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	scenes, err := c.Scenes(context.Background(), "wofs_albers", testBBox(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, scenes, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPermanentStatusFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Scenes(context.Background(), "wofs_albers", testBBox(), time.Time{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
