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

import "fmt"

// shiftTransformer is a fake deterministic Transformer for tests. Every
// known CRS is an offset from a common frame, transforming from one CRS to
// another shifts x and y by the offset difference. Unknown CRSs yield an
// error, which lets tests exercise the incompatible geometry paths.
type shiftTransformer struct {
	shifts map[CRS]float64
}

func newShiftTransformer() *shiftTransformer {
	return &shiftTransformer{shifts: map[CRS]float64{
		"crs-a": 0,
		"crs-b": 100,
	}}
}

func (st *shiftTransformer) Transform(from, to CRS) (TransformFunc, error) {
	if from == to {
		return IdentityTransform, nil
	}
	sFrom, okFrom := st.shifts[from]
	sTo, okTo := st.shifts[to]
	if !okFrom || !okTo {
		return nil, fmt.Errorf("unsupported CRS pair %q -> %q", from, to)
	}
	delta := sTo - sFrom
	return func(x, y float64) (float64, float64, error) {
		return x + delta, y + delta, nil
	}, nil
}

// uniformTile builds a single band tile filled with a constant value.
// originX/originY is the top left corner, res the square pixel size.
func uniformTile(id string, value float64, originX, originY, res float64,
	width, height int, crs CRS) *RasterTile {
	band := make([]float64, width*height)
	for i := range band {
		band[i] = value
	}
	return &RasterTile{
		ID:        id,
		Bands:     [][]float64{band},
		Width:     width,
		Height:    height,
		Transform: NewAffine(originX, originY, res, res),
		CRS:       crs,
		DType:     Float64,
	}
}

// rampTile builds a single band tile with values row*width+col, handy for
// exactness checks.
func rampTile(id string, originX, originY, res float64, width, height int,
	crs CRS, dtype DType) *RasterTile {
	band := make([]float64, width*height)
	for i := range band {
		band[i] = float64(i)
	}
	return &RasterTile{
		ID:        id,
		Bands:     [][]float64{band},
		Width:     width,
		Height:    height,
		Transform: NewAffine(originX, originY, res, res),
		CRS:       crs,
		DType:     dtype,
	}
}

// fullLayer builds a resampled layer that is valid everywhere with the
// given constant value.
func fullLayer(value float64, width, rows int) *ResampledLayer {
	layer := &ResampledLayer{
		Bands: [][]float64{make([]float64, width*rows)},
		Valid: make([]bool, width*rows),
		Width: width,
		Rows:  rows,
	}
	for i := range layer.Valid {
		layer.Bands[0][i] = value
		layer.Valid[i] = true
	}
	return layer
}

// memSource is an in-memory SourceAdapter for pipeline tests.
type memSource map[string]*RasterTile

func (s memSource) Open(identifier string) (*RasterTile, error) {
	tile, has := s[identifier]
	if !has {
		return nil, fmt.Errorf("no such source %q", identifier)
	}
	return tile, nil
}

// memWriter records whether and what it was asked to write.
type memWriter struct {
	calls  int
	mosaic *Mosaic
	err    error
}

func (w *memWriter) Write(m *Mosaic) error {
	w.calls++
	w.mosaic = m
	return w.err
}
