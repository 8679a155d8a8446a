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

// DType describes the sample type of a raster band. All pipeline arithmetic
// is performed in float64 regardless of the dtype, the dtype only matters
// when the finished mosaic is cast for writing.
type DType int

const (
	// Uint8 is an unsigned 8 bit sample.
	Uint8 DType = iota + 1
	// Uint16 is an unsigned 16 bit sample.
	Uint16
	// Int16 is a signed 16 bit sample.
	Int16
	// Float32 is a 32 bit floating point sample.
	Float32
	// Float64 is a 64 bit floating point sample.
	Float64
)

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("DType(%d)", d)
	}
}

// Size returns the sample size in bytes.
func (d DType) Size() int {
	switch d {
	case Uint8:
		return 1
	case Uint16, Int16:
		return 2
	case Float32:
		return 4
	default:
		return 8
	}
}

// Cast converts a float64 working value to the closest value representable
// in the dtype. Integer dtypes round half to even and clamp to the type
// range. This is the single place where the rounding rule for integer
// outputs is defined.
func (d DType) Cast(v float64) float64 {
	switch d {
	case Uint8:
		return clampRound(v, 0, math.MaxUint8)
	case Uint16:
		return clampRound(v, 0, math.MaxUint16)
	case Int16:
		return clampRound(v, math.MinInt16, math.MaxInt16)
	case Float32:
		return float64(float32(v))
	default:
		return v
	}
}

func clampRound(v, min, max float64) float64 {
	v = math.RoundToEven(v)
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RasterTile is one decoded source raster: its pixel data as float64 bands,
// the pixel to world transform, the CRS, an optional nodata sentinel and
// the sample dtype of the original data.
//
// A tile is owned exclusively by the pipeline stage currently processing it
// and released after it has been resampled onto the output grid.
type RasterTile struct {
	// ID identifies the source, used in errors and logs.
	ID string
	// Bands holds the pixel data, band major and row major within a band,
	// so Bands[b][row*Width+col] is the sample of band b at (col, row).
	Bands [][]float64
	// Width and Height are the raster dimensions in pixels.
	Width, Height int
	// Transform maps pixel coordinates to world coordinates.
	Transform Affine
	// CRS is the reference system of the world coordinates.
	CRS CRS
	// Nodata is the sentinel value meaning "no measurement here", nil if
	// every sample is valid.
	Nodata *float64
	// DType is the sample type of the original data.
	DType DType
}

// Validate checks that the tile is structurally usable: at least one band,
// matching band sizes, positive dimensions and an invertible transform.
func (t *RasterTile) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("invalid raster dimensions %dx%d", t.Width, t.Height)
	}
	if len(t.Bands) == 0 {
		return fmt.Errorf("raster has no bands")
	}
	for i, band := range t.Bands {
		if len(band) != t.Width*t.Height {
			return fmt.Errorf("band %d has %d samples, expected %d",
				i, len(band), t.Width*t.Height)
		}
	}
	if t.CRS.Empty() {
		return fmt.Errorf("raster has no CRS")
	}
	if _, err := t.Transform.Invert(); err != nil {
		return err
	}
	return nil
}

// At returns the sample of band b at pixel (col, row). No bounds check is
// performed.
func (t *RasterTile) At(b, col, row int) float64 {
	return t.Bands[b][row*t.Width+col]
}

// IsNodata returns true if v equals the nodata sentinel of the tile.
func (t *RasterTile) IsNodata(v float64) bool {
	if t.Nodata == nil {
		return false
	}
	// a NaN sentinel marks NaN samples as nodata
	if math.IsNaN(*t.Nodata) {
		return math.IsNaN(v)
	}
	return v == *t.Nodata
}

// Extent returns the tile extent in its own CRS.
func (t *RasterTile) Extent() Extent {
	x0, y0 := t.Transform.Apply(0, 0)
	x1, y1 := t.Transform.Apply(float64(t.Width), float64(t.Height))
	return Extent{
		MinX: math.Min(x0, x1),
		MinY: math.Min(y0, y1),
		MaxX: math.Max(x0, x1),
		MaxY: math.Max(y0, y1),
	}
}

// Resolution returns the absolute pixel size of the tile in world units.
func (t *RasterTile) Resolution() (xres, yres float64) {
	return t.Transform.PixelSize()
}
