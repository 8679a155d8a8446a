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

	"github.com/ctessum/geom"
)

// Extent is an axis aligned bounding box in world coordinates.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty returns true if the extent covers no area.
func (e Extent) Empty() bool {
	return e.MinX >= e.MaxX || e.MinY >= e.MaxY
}

// Width returns the extent width in world units.
func (e Extent) Width() float64 {
	return e.MaxX - e.MinX
}

// Height returns the extent height in world units.
func (e Extent) Height() float64 {
	return e.MaxY - e.MinY
}

// Union returns the smallest extent containing both e and other.
func (e Extent) Union(other Extent) Extent {
	if e.Empty() {
		return other
	}
	if other.Empty() {
		return e
	}
	return Extent{
		MinX: math.Min(e.MinX, other.MinX),
		MinY: math.Min(e.MinY, other.MinY),
		MaxX: math.Max(e.MaxX, other.MaxX),
		MaxY: math.Max(e.MaxY, other.MaxY),
	}
}

// Intersect returns the overlapping region of e and other. The result may
// be empty.
func (e Extent) Intersect(other Extent) Extent {
	return Extent{
		MinX: math.Max(e.MinX, other.MinX),
		MinY: math.Max(e.MinY, other.MinY),
		MaxX: math.Min(e.MaxX, other.MaxX),
		MaxY: math.Min(e.MaxY, other.MaxY),
	}
}

// Contains returns true if the point (x, y) lies inside the extent.
// Points on the min edges are inside, points on the max edges are not,
// matching pixel index semantics.
func (e Extent) Contains(x, y float64) bool {
	return x >= e.MinX && x < e.MaxX && y >= e.MinY && y < e.MaxY
}

// Bounds returns the extent as a geometry bounding box.
func (e Extent) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: e.MinX, Y: e.MinY},
		Max: geom.Point{X: e.MaxX, Y: e.MaxY},
	}
}

func (e Extent) String() string {
	return fmt.Sprintf("Extent(%g, %g, %g, %g)", e.MinX, e.MinY, e.MaxX, e.MaxY)
}

// transformExtentSamples is the number of sample points per extent edge
// used when reprojecting an extent. A reprojected rectangle is in general
// not a rectangle any more, sampling along the edges bounds the curved
// result instead of only mapping the four corners.
const transformExtentSamples = 21

// TransformExtent reprojects an extent by densifying its edges and taking
// the bounding box of all transformed samples.
func TransformExtent(e Extent, transform TransformFunc) (Extent, error) {
	if e.Empty() {
		return Extent{}, fmt.Errorf("can't transform empty extent %v", e)
	}
	res := Extent{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	stepX := e.Width() / (transformExtentSamples - 1)
	stepY := e.Height() / (transformExtentSamples - 1)
	for i := 0; i < transformExtentSamples; i++ {
		for j := 0; j < transformExtentSamples; j++ {
			// only edge points matter, skip the interior
			if i != 0 && i != transformExtentSamples-1 &&
				j != 0 && j != transformExtentSamples-1 {
				continue
			}
			x, y, err := transform(e.MinX+float64(i)*stepX, e.MinY+float64(j)*stepY)
			if err != nil {
				return Extent{}, err
			}
			res.MinX = math.Min(res.MinX, x)
			res.MinY = math.Min(res.MinY, y)
			res.MaxX = math.Max(res.MaxX, x)
			res.MaxY = math.Max(res.MaxY, y)
		}
	}
	return res, nil
}
