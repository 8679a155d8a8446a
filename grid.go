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
	"math"

	log "github.com/sirupsen/logrus"
)

// OutputGrid describes the grid all sources are composed onto: dimensions,
// pixel to world transform, CRS, band count and sample dtype. It is
// computed once by ReconcileGrid and immutable afterwards, all downstream
// stages share it read only.
type OutputGrid struct {
	Width, Height int
	Transform     Affine
	CRS           CRS
	Bands         int
	DType         DType
}

// Extent returns the world extent covered by the grid.
func (g *OutputGrid) Extent() Extent {
	x0, y0 := g.Transform.Apply(0, 0)
	x1, y1 := g.Transform.Apply(float64(g.Width), float64(g.Height))
	return Extent{
		MinX: math.Min(x0, x1),
		MinY: math.Min(y0, y1),
		MaxX: math.Max(x0, x1),
		MaxY: math.Max(y0, y1),
	}
}

// Resolution returns the absolute output pixel size in world units.
func (g *OutputGrid) Resolution() (xres, yres float64) {
	return g.Transform.PixelSize()
}

// ReconcileGrid computes the output grid for the given sources: the extent
// is the union of all source extents reprojected to the target CRS, the
// resolution is the finest pixel size among the sources unless the config
// overrides it, and the band count is the maximum over all sources.
//
// The target CRS defaults to the CRS of the first source. A source whose
// CRS cannot be transformed to the target CRS yields an
// IncompatibleGeometryError, zero sources yield an EmptyInputError.
//
// A single source whose CRS already matches the target and without a
// resolution override short-circuits to that source's own grid, so the
// degenerate one tile composition reproduces the input exactly.
func ReconcileGrid(tiles []*RasterTile, cfg Config, transformer Transformer) (*OutputGrid, error) {
	if len(tiles) == 0 {
		return nil, &EmptyInputError{Stage: "grid reconciler"}
	}
	target := cfg.TargetCRS
	if target.Empty() {
		target = tiles[0].CRS
		log.WithField("crs", target).Debug("No target CRS configured, using first source")
	}

	if len(tiles) == 1 && tiles[0].CRS == target && cfg.OutputResolution == 0 {
		t := tiles[0]
		return &OutputGrid{
			Width:     t.Width,
			Height:    t.Height,
			Transform: t.Transform,
			CRS:       target,
			Bands:     len(t.Bands),
			DType:     t.DType,
		}, nil
	}

	var union Extent
	xres, yres := math.Inf(1), math.Inf(1)
	bands := 0
	dtype := tiles[0].DType
	for _, t := range tiles {
		transform, err := transformer.Transform(t.CRS, target)
		if err != nil {
			return nil, &IncompatibleGeometryError{
				Stage:  "grid reconciler",
				Source: t.ID,
				Reason: err,
			}
		}
		ext, err := TransformExtent(t.Extent(), transform)
		if err != nil {
			return nil, &IncompatibleGeometryError{
				Stage:  "grid reconciler",
				Source: t.ID,
				Reason: err,
			}
		}
		union = union.Union(ext)

		// finest resolution wins; the source resolution is approximated in
		// target units by scaling with the extent ratio
		sx, sy := t.Resolution()
		srcExt := t.Extent()
		if srcExt.Width() > 0 {
			sx *= ext.Width() / srcExt.Width()
		}
		if srcExt.Height() > 0 {
			sy *= ext.Height() / srcExt.Height()
		}
		xres = math.Min(xres, sx)
		yres = math.Min(yres, sy)

		if len(t.Bands) > bands {
			bands = len(t.Bands)
		}
		if t.DType.Size() > dtype.Size() {
			dtype = t.DType
		}
	}

	if cfg.OutputResolution > 0 {
		xres, yres = cfg.OutputResolution, cfg.OutputResolution
	}
	width := int(math.Ceil(union.Width() / xres))
	height := int(math.Ceil(union.Height() / yres))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	grid := &OutputGrid{
		Width:     width,
		Height:    height,
		Transform: NewAffine(union.MinX, union.MaxY, xres, yres),
		CRS:       target,
		Bands:     bands,
		DType:     dtype,
	}
	log.WithFields(log.Fields{
		"width":  width,
		"height": height,
		"xres":   xres,
		"yres":   yres,
		"bands":  bands,
	}).Debug("Reconciled output grid")
	return grid, nil
}
