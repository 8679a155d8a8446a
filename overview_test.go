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

func TestOverviewGrayscale(t *testing.T) {
	m := NewMosaic(testGrid(4, 4), -1)
	for i := range m.Bands[0] {
		m.Bands[0][i] = float64(i) // 0..15 stretched to 0..255
	}
	img, err := m.Overview(16)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 4, bounds.Dx())
	assert.Equal(t, 4, bounds.Dy())

	// min value maps to black, max to white
	r, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xffff), a)
	r, _, _, _ = img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestOverviewNodataTransparent(t *testing.T) {
	m := NewMosaic(testGrid(2, 2), -1)
	m.Bands[0][0] = 10
	m.Bands[0][1] = 20
	m.Bands[0][2] = -1 // nodata
	m.Bands[0][3] = 30
	img, err := m.Overview(4)
	require.NoError(t, err)
	_, _, _, a := img.At(0, 1).RGBA()
	assert.Equal(t, uint32(0), a)
}

func TestOverviewDownsamples(t *testing.T) {
	m := NewMosaic(testGrid(64, 32), -1)
	for i := range m.Bands[0] {
		m.Bands[0][i] = float64(i % 200)
	}
	img, err := m.Overview(16)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestOverviewAllNodata(t *testing.T) {
	m := NewMosaic(testGrid(2, 2), -1)
	for i := range m.Bands[0] {
		m.Bands[0][i] = -1
	}
	_, err := m.Overview(4)
	assert.Error(t, err)
}

func TestOverviewZeroDim(t *testing.T) {
	m := NewMosaic(testGrid(2, 2), -1)
	_, err := m.Overview(0)
	assert.Error(t, err)
}

func TestMosaicIsNodata(t *testing.T) {
	m := NewMosaic(testGrid(2, 2), -1)
	assert.True(t, m.IsNodata(-1))
	assert.False(t, m.IsNodata(0))
}
