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

import "math"

// Mosaic is the finished composite: the pixel buffer, the output grid
// metadata and the final nodata value. It is produced exactly once per
// successful run and handed to the writer adapter, the pipeline's
// intermediate state is discarded afterwards.
type Mosaic struct {
	Grid *OutputGrid
	// Bands is band major, row major within a band, values already cast to
	// the grid dtype.
	Bands [][]float64
	// Nodata marks pixels without any valid contribution.
	Nodata float64
}

// NewMosaic allocates an empty mosaic buffer for the given grid.
func NewMosaic(grid *OutputGrid, nodata float64) *Mosaic {
	m := &Mosaic{
		Grid:   grid,
		Bands:  make([][]float64, grid.Bands),
		Nodata: nodata,
	}
	for b := range m.Bands {
		m.Bands[b] = make([]float64, grid.Width*grid.Height)
	}
	return m
}

// At returns the value of band b at pixel (col, row). No bounds check is
// performed.
func (m *Mosaic) At(b, col, row int) float64 {
	return m.Bands[b][row*m.Grid.Width+col]
}

// IsNodata returns true if v equals the mosaic nodata value.
func (m *Mosaic) IsNodata(v float64) bool {
	if math.IsNaN(m.Nodata) {
		return math.IsNaN(v)
	}
	return v == m.Nodata
}
