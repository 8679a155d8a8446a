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

// Affine is the six coefficient transform mapping pixel coordinates to world
// coordinates. With coefficients (a, b, c, d, e, f) a pixel (col, row) maps
// to
//
//	x = a*col + b*row + c
//	y = d*col + e*row + f
//
// (col, row) = (0, 0) refers to the top left corner of the top left pixel,
// so c and f are the world coordinates of the raster origin. For north-up
// rasters b and d are zero and e is negative (rows grow south).
type Affine [6]float64

// NewAffine returns the transform for a north-up raster with the given
// origin (top left corner) and pixel sizes. yres must be given as a positive
// size, the negative row coefficient is set internally.
func NewAffine(originX, originY, xres, yres float64) Affine {
	return Affine{xres, 0, originX, 0, -yres, originY}
}

// Apply maps pixel coordinates to world coordinates.
func (t Affine) Apply(col, row float64) (x, y float64) {
	x = t[0]*col + t[1]*row + t[2]
	y = t[3]*col + t[4]*row + t[5]
	return
}

// Invert returns the inverse transform, mapping world coordinates back to
// pixel coordinates. An error is returned if the transform is singular
// (zero pixel area).
func (t Affine) Invert() (Affine, error) {
	det := t[0]*t[4] - t[1]*t[3]
	if det == 0 {
		return Affine{}, fmt.Errorf("affine transform %v is not invertible", t)
	}
	inv := Affine{
		t[4] / det, -t[1] / det, 0,
		-t[3] / det, t[0] / det, 0,
	}
	// translate the origin through the inverted linear part
	inv[2] = -(inv[0]*t[2] + inv[1]*t[5])
	inv[5] = -(inv[3]*t[2] + inv[4]*t[5])
	return inv, nil
}

// PixelSize returns the absolute pixel width and height in world units.
func (t Affine) PixelSize() (xres, yres float64) {
	xres = math.Hypot(t[0], t[3])
	yres = math.Hypot(t[1], t[4])
	return
}

// PixelCenter returns the world coordinates of the center of pixel
// (col, row).
func (t Affine) PixelCenter(col, row int) (x, y float64) {
	return t.Apply(float64(col)+0.5, float64(row)+0.5)
}
