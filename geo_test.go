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

package tiffcomposer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		valid    bool
	}{
		{"valid", 48.8566, 2.3522, true},
		{"north pole", 90, 0, true},
		{"date line", 0, -180, true},
		{"latitude too big", 90.1, 0, false},
		{"latitude too small", -91, 0, false},
		{"longitude too big", 0, 180.5, false},
		{"longitude too small", 0, -200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewGeoCoordinate(tt.lat, tt.lon)
			if !tt.valid {
				var geoErr *GeoCoordinateError
				assert.ErrorAs(t, err, &geoErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, c.Latitude)
			assert.Equal(t, tt.lon, c.Longitude)
		})
	}
}

func TestEarthRadius(t *testing.T) {
	assert.InDelta(t, equatorialRadius, EarthRadius(0), 1)
	assert.InDelta(t, polarRadius, EarthRadius(90), 1)
	assert.InDelta(t, polarRadius, EarthRadius(-90), 1)
	// somewhere in between at mid latitudes
	mid := EarthRadius(45)
	assert.Greater(t, mid, polarRadius)
	assert.Less(t, mid, equatorialRadius)
}

func TestDistanceTo(t *testing.T) {
	paris, err := NewGeoCoordinate(48.8566, 2.3522)
	require.NoError(t, err)
	london, err := NewGeoCoordinate(51.5074, -0.1278)
	require.NoError(t, err)

	// roughly 344 km
	direct := paris.DistanceTo(london, 0)
	assert.InDelta(t, 344000, direct, 3000)
	// symmetric
	assert.InDelta(t, direct, london.DistanceTo(paris, 0), 1e-6)
	// zero distance to itself
	assert.Equal(t, 0.0, paris.DistanceTo(paris, 0))
}

func TestDistanceToStepped(t *testing.T) {
	quito, err := NewGeoCoordinate(-0.18, -78.47)
	require.NoError(t, err)
	oslo, err := NewGeoCoordinate(59.91, 10.75)
	require.NoError(t, err)

	direct := quito.DistanceTo(oslo, 0)
	stepped := quito.DistanceTo(oslo, 0.001)
	// stepped integration must stay close to the direct estimate
	assert.InEpsilon(t, direct, stepped, 0.01)
}

func TestGeoExtent(t *testing.T) {
	start, err := NewGeoCoordinate(40, -4)
	require.NoError(t, err)
	end, err := NewGeoCoordinate(41, -3)
	require.NoError(t, err)
	e := GeoExtent{Start: start, End: end}.Extent()
	assert.Equal(t, Extent{MinX: -4, MinY: 40, MaxX: -3, MaxY: 41}, e)
}
