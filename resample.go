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
	"fmt"
	"math"
)

// ResampledLayer is one source tile reprojected onto (a chunk of) the
// output grid. It has the chunk's shape and carries a per pixel validity
// mask distinguishing "this source contributed data here" from "no
// coverage". Invalid pixels hold no meaningful value and are never zero
// substitutes.
type ResampledLayer struct {
	// Bands is band major, row major within a band, rows relative to the
	// chunk (row 0 is Chunk.Row0 on the grid).
	Bands [][]float64
	// Valid[row*width+col] is true if the source contributed at the pixel.
	Valid []bool
	// Width is the grid width, Rows the number of chunk rows.
	Width, Rows int
}

// Resample reprojects one raster tile onto a chunk of the output grid.
// inverse must map world coordinates from the grid CRS to the tile CRS
// (the inverse direction of the composition, the resampler walks output
// pixels and pulls from the source).
//
// For every output pixel the center is mapped through inverse and the
// tile's inverted geotransform into source pixel space. The sample is
// taken with the configured method, nearest neighbor or bilinear. Pixels
// that map outside the tile, hit the nodata sentinel or cannot be
// transformed are marked invalid. All arithmetic is float64, the cast to
// the output dtype happens only at mosaic finalization.
func Resample(tile *RasterTile, grid *OutputGrid, chunk Chunk,
	method ResampleMethod, inverse TransformFunc) (*ResampledLayer, error) {
	switch method {
	case ResampleNearest, ResampleBilinear:
	default:
		return nil, fmt.Errorf("invalid resample method %v", method)
	}
	pixelToSource, err := tile.Transform.Invert()
	if err != nil {
		return nil, err
	}

	rows := chunk.Rows()
	layer := &ResampledLayer{
		Bands: make([][]float64, len(tile.Bands)),
		Valid: make([]bool, grid.Width*rows),
		Width: grid.Width,
		Rows:  rows,
	}
	for b := range layer.Bands {
		layer.Bands[b] = make([]float64, grid.Width*rows)
	}

	for row := 0; row < rows; row++ {
		gridRow := chunk.Row0 + row
		for col := 0; col < grid.Width; col++ {
			wx, wy := grid.Transform.PixelCenter(col, gridRow)
			sx, sy, transformErr := inverse(wx, wy)
			if transformErr != nil {
				// the point has no image in the source CRS (e.g. outside
				// the projection domain), no coverage here
				continue
			}
			scol, srow := pixelToSource.Apply(sx, sy)
			idx := row*grid.Width + col
			switch method {
			case ResampleNearest:
				layer.Valid[idx] = sampleNearest(tile, scol, srow, layer, idx)
			case ResampleBilinear:
				layer.Valid[idx] = sampleBilinear(tile, scol, srow, layer, idx)
			}
		}
	}
	return layer, nil
}

// sampleNearest writes the nearest source sample for all bands to layer
// position idx and reports whether it is valid.
func sampleNearest(tile *RasterTile, scol, srow float64, layer *ResampledLayer, idx int) bool {
	col := int(math.Floor(scol))
	row := int(math.Floor(srow))
	if col < 0 || col >= tile.Width || row < 0 || row >= tile.Height {
		return false
	}
	for b := range tile.Bands {
		v := tile.At(b, col, row)
		if tile.IsNodata(v) {
			return false
		}
		layer.Bands[b][idx] = v
	}
	return true
}

// sampleBilinear interpolates between the four surrounding source samples.
// All four neighbors must be inside the tile and valid, otherwise the
// pixel is invalid (interpolating across a nodata hole would smear the
// sentinel into the data).
func sampleBilinear(tile *RasterTile, scol, srow float64, layer *ResampledLayer, idx int) bool {
	// shift to sample centers
	fc := scol - 0.5
	fr := srow - 0.5
	c0 := int(math.Floor(fc))
	r0 := int(math.Floor(fr))
	c1, r1 := c0+1, r0+1
	if c0 < 0 || r0 < 0 || c1 >= tile.Width || r1 >= tile.Height {
		return false
	}
	wc := fc - float64(c0)
	wr := fr - float64(r0)
	for b := range tile.Bands {
		v00 := tile.At(b, c0, r0)
		v10 := tile.At(b, c1, r0)
		v01 := tile.At(b, c0, r1)
		v11 := tile.At(b, c1, r1)
		if tile.IsNodata(v00) || tile.IsNodata(v10) ||
			tile.IsNodata(v01) || tile.IsNodata(v11) {
			return false
		}
		top := v00*(1-wc) + v10*wc
		bottom := v01*(1-wc) + v11*wc
		layer.Bands[b][idx] = top*(1-wr) + bottom*wr
	}
	return true
}
