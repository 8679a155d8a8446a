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
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tiffcomposer "github.com/erlete/tiff-composer"
)

func writeClipFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.geojson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDecodePolygon(t *testing.T) {
	polygons, err := decodeGeoJSON([]byte(`{
		"type": "Polygon",
		"coordinates": [[[0, 0], [4, 0], [4, 4], [0, 4], [0, 0]]]
	}`))
	require.NoError(t, err)
	require.Len(t, polygons, 1)
	require.Len(t, polygons[0], 1)
	assert.Equal(t, geom.Point{X: 4, Y: 4}, polygons[0][0][2])
}

func TestDecodeMultiPolygon(t *testing.T) {
	polygons, err := decodeGeoJSON([]byte(`{
		"type": "MultiPolygon",
		"coordinates": [
			[[[0, 0], [1, 0], [1, 1], [0, 0]]],
			[[[5, 5], [6, 5], [6, 6], [5, 5]]]
		]
	}`))
	require.NoError(t, err)
	require.Len(t, polygons, 2)
	assert.Equal(t, geom.Point{X: 5, Y: 5}, polygons[1][0][0])
}

func TestDecodeFeatureCollection(t *testing.T) {
	polygons, err := decodeGeoJSON([]byte(`{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"name": "a"},
				"geometry": {
					"type": "Polygon",
					"coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]
				}
			},
			{
				"type": "Feature",
				"geometry": {
					"type": "MultiPolygon",
					"coordinates": [[[[2, 2], [3, 2], [3, 3], [2, 2]]]]
				}
			}
		]
	}`))
	require.NoError(t, err)
	assert.Len(t, polygons, 2)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unsupported type", `{"type": "Point", "coordinates": [1, 2]}`},
		{"feature without geometry", `{"type": "Feature"}`},
		{"empty collection", `{"type": "FeatureCollection", "features": []}`},
		{"short position", `{"type": "Polygon", "coordinates": [[[1], [2, 2], [3, 3]]]}`},
		{"not json", `{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeGeoJSON([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestGeoJSONClipLoad(t *testing.T) {
	path := writeClipFile(t, `{
		"type": "Polygon",
		"coordinates": [[[0, 0], [4, 0], [4, 4], [0, 4], [0, 0]]]
	}`)

	clip := &GeoJSONClip{}
	boundary, err := clip.Load(path)
	require.NoError(t, err)
	assert.Equal(t, tiffcomposer.WGS84, boundary.CRS)
	assert.Len(t, boundary.Polygons, 1)

	clip = &GeoJSONClip{CRS: "+proj=utm +zone=30 +datum=WGS84"}
	boundary, err = clip.Load(path)
	require.NoError(t, err)
	assert.Equal(t, tiffcomposer.CRS("+proj=utm +zone=30 +datum=WGS84"), boundary.CRS)
}

func TestGeoJSONClipLoadMissing(t *testing.T) {
	clip := &GeoJSONClip{}
	_, err := clip.Load(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
}
