// Copyright 2018 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package geotiff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tiffcomposer "github.com/erlete/tiff-composer"
)

func TestParseWorldFile(t *testing.T) {
	// 2 unit pixels, center of the top left pixel at (100, 200)
	content := "2\n0\n0\n-2\n100\n200\n"
	transform, err := ParseWorldFile(strings.NewReader(content))
	require.NoError(t, err)
	// the corner origin is half a pixel up and left of the center
	assert.Equal(t, tiffcomposer.NewAffine(99, 201, 2, 2), transform)
}

func TestParseWorldFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few lines", "1\n0\n0\n-1\n"},
		{"garbage", "1\n0\nfoo\n-1\n5\n6\n"},
		{"too many lines", "1\n0\n0\n-1\n5\n6\n7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorldFile(strings.NewReader(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mosaic.tif")

	grid := &tiffcomposer.OutputGrid{
		Width: 4, Height: 3,
		Transform: tiffcomposer.NewAffine(10, 20, 2, 2),
		CRS:       tiffcomposer.WGS84,
		Bands:     1,
		DType:     tiffcomposer.Uint8,
	}
	m := tiffcomposer.NewMosaic(grid, 0)
	for i := range m.Bands[0] {
		m.Bands[0][i] = float64(i * 3)
	}

	writer := &Writer{Path: path}
	require.NoError(t, writer.Write(m))
	// sidecars must exist
	_, err := os.Stat(filepath.Join(dir, "mosaic.tfw"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "mosaic.prj"))
	require.NoError(t, err)

	source := &Source{}
	tile, err := source.Open(path)
	require.NoError(t, err)
	assert.Equal(t, grid.Width, tile.Width)
	assert.Equal(t, grid.Height, tile.Height)
	assert.Equal(t, grid.CRS, tile.CRS)
	assert.InDelta(t, grid.Transform[2], tile.Transform[2], 1e-6)
	assert.InDelta(t, grid.Transform[5], tile.Transform[5], 1e-6)
	assert.Equal(t, m.Bands[0], tile.Bands[0])
}

func TestSourceMissingWorldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.tif")

	grid := &tiffcomposer.OutputGrid{
		Width: 2, Height: 2,
		Transform: tiffcomposer.NewAffine(0, 2, 1, 1),
		CRS:       tiffcomposer.WGS84,
		Bands:     1,
		DType:     tiffcomposer.Uint8,
	}
	writer := &Writer{Path: path}
	require.NoError(t, writer.Write(tiffcomposer.NewMosaic(grid, 0)))
	require.NoError(t, os.Remove(filepath.Join(dir, "bare.tfw")))

	source := &Source{}
	_, err := source.Open(path)
	assert.Error(t, err)
}

func TestSourceDefaultCRS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nocrs.tif")

	grid := &tiffcomposer.OutputGrid{
		Width: 2, Height: 2,
		Transform: tiffcomposer.NewAffine(0, 2, 1, 1),
		CRS:       tiffcomposer.WGS84,
		Bands:     1,
		DType:     tiffcomposer.Uint8,
	}
	writer := &Writer{Path: path}
	require.NoError(t, writer.Write(tiffcomposer.NewMosaic(grid, 0)))
	require.NoError(t, os.Remove(filepath.Join(dir, "nocrs.prj")))

	// without a sidecar and without a default the tile is rejected
	source := &Source{}
	_, err := source.Open(path)
	require.Error(t, err)

	// the configured default applies
	source = &Source{DefaultCRS: "+proj=utm +zone=30 +datum=WGS84"}
	tile, err := source.Open(path)
	require.NoError(t, err)
	assert.Equal(t, tiffcomposer.CRS("+proj=utm +zone=30 +datum=WGS84"), tile.CRS)
}

func TestSourceNodata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodata.tif")

	grid := &tiffcomposer.OutputGrid{
		Width: 2, Height: 2,
		Transform: tiffcomposer.NewAffine(0, 2, 1, 1),
		CRS:       tiffcomposer.WGS84,
		Bands:     1,
		DType:     tiffcomposer.Uint8,
	}
	m := tiffcomposer.NewMosaic(grid, 0)
	m.Bands[0] = []float64{0, 10, 20, 30}
	writer := &Writer{Path: path}
	require.NoError(t, writer.Write(m))

	nodata := 0.0
	source := &Source{Nodata: &nodata}
	tile, err := source.Open(path)
	require.NoError(t, err)
	require.NotNil(t, tile.Nodata)
	assert.True(t, tile.IsNodata(0))
	assert.False(t, tile.IsNodata(10))
}

func TestWriterRejectsFloatDType(t *testing.T) {
	grid := &tiffcomposer.OutputGrid{
		Width: 2, Height: 2,
		Transform: tiffcomposer.NewAffine(0, 2, 1, 1),
		CRS:       tiffcomposer.WGS84,
		Bands:     1,
		DType:     tiffcomposer.Float64,
	}
	writer := &Writer{Path: filepath.Join(t.TempDir(), "f.tif")}
	err := writer.Write(tiffcomposer.NewMosaic(grid, 0))
	assert.Error(t, err)
}
