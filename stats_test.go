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

// statsMosaic is a 4x4 mosaic with values 0..15 (row*4+col) and nodata -1
// at pixel (0, 0).
func statsMosaic() *Mosaic {
	m := NewMosaic(testGrid(4, 4), -1)
	for i := range m.Bands[0] {
		m.Bands[0][i] = float64(i)
	}
	m.Bands[0][0] = -1
	return m
}

func TestValueAt(t *testing.T) {
	m := statsMosaic()
	// pixel (1, 2): world (1.5, 1.5), value 2*4+1 = 9
	v, ok := m.ValueAt(0, 1.5, 1.5)
	require.True(t, ok)
	assert.Equal(t, 9.0, v)

	// outside the mosaic
	_, ok = m.ValueAt(0, -3, 2)
	assert.False(t, ok)
	_, ok = m.ValueAt(0, 2, 17)
	assert.False(t, ok)

	// nodata pixel (0, 0): world (0.5, 3.5)
	_, ok = m.ValueAt(0, 0.5, 3.5)
	assert.False(t, ok)
}

func TestExtentStats(t *testing.T) {
	m := statsMosaic()
	full := Extent{MinX: 0, MinY: 0, MaxX: 4, MaxY: 4}

	// values 1..15 (0 was replaced by nodata)
	mean, err := m.ExtentStats(0, full, StatMean)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, mean, 1e-9)

	max, err := m.ExtentStats(0, full, StatMax)
	require.NoError(t, err)
	assert.Equal(t, 15.0, max)

	min, err := m.ExtentStats(0, full, StatMin)
	require.NoError(t, err)
	assert.Equal(t, 1.0, min)
}

func TestExtentStatsSubExtent(t *testing.T) {
	m := statsMosaic()
	// bottom row only: world y in [0, 1], values 12..15
	bottom := Extent{MinX: 0, MinY: 0, MaxX: 4, MaxY: 1}
	mean, err := m.ExtentStats(0, bottom, StatMean)
	require.NoError(t, err)
	assert.InDelta(t, 13.5, mean, 1e-9)
}

func TestExtentStatsOutside(t *testing.T) {
	m := statsMosaic()
	_, err := m.ExtentStats(0, Extent{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110}, StatMean)
	assert.Error(t, err)
}

func TestParseStatMode(t *testing.T) {
	mode, err := ParseStatMode("mean")
	require.NoError(t, err)
	assert.Equal(t, StatMean, mode)
	_, err = ParseStatMode("median")
	assert.Error(t, err)
}
