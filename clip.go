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

	"github.com/ctessum/geom"
)

// ClipBoundary is a vector boundary the mosaic can be clipped to: an
// ordered sequence of polygons (each a list of rings, first outer,
// following holes) in a known CRS. Boundaries are immutable, reprojection
// returns a new boundary.
type ClipBoundary struct {
	Polygons []geom.Polygon
	CRS      CRS
}

// Validate checks that the boundary has at least one non degenerate ring
// and a CRS.
func (b *ClipBoundary) Validate() error {
	if b.CRS.Empty() {
		return fmt.Errorf("clip boundary has no CRS")
	}
	if len(b.Polygons) == 0 {
		return fmt.Errorf("clip boundary has no polygons")
	}
	for i, poly := range b.Polygons {
		if len(poly) == 0 {
			return fmt.Errorf("polygon %d has no rings", i)
		}
		for j, ring := range poly {
			if len(ring) < 3 {
				return fmt.Errorf("ring %d of polygon %d has only %d points", j, i, len(ring))
			}
		}
	}
	return nil
}

// reproject returns the boundary with every ring point mapped through
// transform.
func (b *ClipBoundary) reproject(transform TransformFunc, to CRS) (*ClipBoundary, error) {
	res := &ClipBoundary{
		Polygons: make([]geom.Polygon, len(b.Polygons)),
		CRS:      to,
	}
	for i, poly := range b.Polygons {
		newPoly := make(geom.Polygon, len(poly))
		for j, ring := range poly {
			newRing := make([]geom.Point, len(ring))
			for k, p := range ring {
				x, y, err := transform(p.X, p.Y)
				if err != nil {
					return nil, err
				}
				newRing[k] = geom.Point{X: x, Y: y}
			}
			newPoly[j] = newRing
		}
		res.Polygons[i] = newPoly
	}
	return res, nil
}

// contains reports whether the point lies inside the boundary using the
// even odd rule: a point inside a hole ring is outside the polygon.
func (b *ClipBoundary) contains(x, y float64) bool {
	inside := false
	for _, poly := range b.Polygons {
		for _, ring := range poly {
			if pointInRing(x, y, ring) {
				inside = !inside
			}
		}
	}
	return inside
}

// pointInRing is the standard ray casting test against a single ring.
func pointInRing(x, y float64, ring []geom.Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// ApplyClip sets every mosaic pixel whose center falls outside the
// boundary to the nodata value. The boundary is reprojected to the grid
// CRS first; a GeometryCRSError is returned if its CRS cannot be
// reconciled. A nil boundary is a no-op pass through.
func ApplyClip(m *Mosaic, boundary *ClipBoundary, transformer Transformer) error {
	if boundary == nil {
		return nil
	}
	if err := boundary.Validate(); err != nil {
		return &GeometryCRSError{CRS: boundary.CRS, Reason: err}
	}
	if boundary.CRS != m.Grid.CRS {
		transform, err := transformer.Transform(boundary.CRS, m.Grid.CRS)
		if err != nil {
			return &GeometryCRSError{CRS: boundary.CRS, Reason: err}
		}
		reprojected, reprojectErr := boundary.reproject(transform, m.Grid.CRS)
		if reprojectErr != nil {
			return &GeometryCRSError{CRS: boundary.CRS, Reason: reprojectErr}
		}
		boundary = reprojected
	}
	for row := 0; row < m.Grid.Height; row++ {
		for col := 0; col < m.Grid.Width; col++ {
			x, y := m.Grid.Transform.PixelCenter(col, row)
			if boundary.contains(x, y) {
				continue
			}
			idx := row*m.Grid.Width + col
			for b := range m.Bands {
				m.Bands[b][idx] = m.Nodata
			}
		}
	}
	return nil
}
