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
	"context"
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
	log "github.com/sirupsen/logrus"
)

// Accumulator is the mutable blend buffer for one chunk of the output
// grid. It is owned exclusively by the goroutine accumulating that chunk.
//
// Invariant: every written value derives only from resampled layers whose
// validity mask was true at that pixel. Pixels that never received a valid
// contribution keep a zero count and become nodata at finalization.
type Accumulator struct {
	policy OverlapPolicy
	// bands holds the current blend value per pixel, for Mean the running
	// sum of all contributions.
	bands [][]float64
	// count is the number of valid contributions per pixel.
	count []uint32
	width int
	rows  int
}

// NewAccumulator returns an empty accumulator for a chunk of the given
// shape.
func NewAccumulator(policy OverlapPolicy, numBands, width, rows int) *Accumulator {
	acc := &Accumulator{
		policy: policy,
		bands:  make([][]float64, numBands),
		count:  make([]uint32, width*rows),
		width:  width,
		rows:   rows,
	}
	for b := range acc.bands {
		acc.bands[b] = make([]float64, width*rows)
	}
	return acc
}

// Fold merges one resampled layer into the accumulator. Layers must be
// folded in source list order, the overlap policy refers to that order.
// Invalid pixels of the layer never alter the accumulator.
func (acc *Accumulator) Fold(layer *ResampledLayer) error {
	if layer.Width != acc.width || layer.Rows != acc.rows {
		return fmt.Errorf("layer shape %dx%d does not match accumulator %dx%d",
			layer.Width, layer.Rows, acc.width, acc.rows)
	}
	if len(layer.Bands) != len(acc.bands) {
		return fmt.Errorf("layer has %d bands, accumulator %d",
			len(layer.Bands), len(acc.bands))
	}
	for idx, valid := range layer.Valid {
		if !valid {
			continue
		}
		switch acc.policy {
		case FirstWins:
			if acc.count[idx] == 0 {
				for b := range acc.bands {
					acc.bands[b][idx] = layer.Bands[b][idx]
				}
			}
		case LastWins:
			for b := range acc.bands {
				acc.bands[b][idx] = layer.Bands[b][idx]
			}
		case Mean:
			for b := range acc.bands {
				acc.bands[b][idx] += layer.Bands[b][idx]
			}
		}
		acc.count[idx]++
	}
	return nil
}

// FinalizeInto writes the accumulated chunk into the mosaic buffer:
// mean sums are divided by their counts, values are cast to the output
// dtype (round half to even for integer dtypes) and pixels without any
// contribution get the nodata value.
func (acc *Accumulator) FinalizeInto(m *Mosaic, chunk Chunk) {
	dtype := m.Grid.DType
	for row := 0; row < acc.rows; row++ {
		offset := (chunk.Row0 + row) * acc.width
		for col := 0; col < acc.width; col++ {
			idx := row*acc.width + col
			if acc.count[idx] == 0 {
				for b := range m.Bands {
					m.Bands[b][offset+col] = m.Nodata
				}
				continue
			}
			for b := range m.Bands {
				v := acc.bands[b][idx]
				if acc.policy == Mean {
					v /= float64(acc.count[idx])
				}
				m.Bands[b][offset+col] = dtype.Cast(v)
			}
		}
	}
}

// tileRef makes a source tile's extent in the output CRS indexable by the
// spatial index.
type tileRef struct {
	pos    int
	extent Extent
}

func (r *tileRef) Bounds() *geom.Bounds {
	return r.extent.Bounds()
}

// The remaining geom.Geom methods delegate to the extent bounds so that
// tileRef satisfies the interface required by rtree.Insert; the index
// only ever consults Bounds.
func (r *tileRef) Len() int { return r.Bounds().Len() }

func (r *tileRef) Points() func() geom.Point { return r.Bounds().Points() }

func (r *tileRef) Similar(g geom.Geom, tolerance float64) bool {
	return r.Bounds().Similar(g, tolerance)
}

func (r *tileRef) Transform(t proj.Transformer) (geom.Geom, error) {
	return r.Bounds().Transform(t)
}

// compositor drives the blend over all chunks. The chunks are pairwise
// disjoint row blocks, so they are accumulated concurrently without
// locking; within one chunk the sources fold strictly in input order,
// which makes the result bit identical across runs for a fixed source
// list and policy.
type compositor struct {
	tiles   []*RasterTile
	grid    *OutputGrid
	cfg     Config
	inverse []TransformFunc // grid CRS -> tile CRS, per tile
	index   *rtree.Rtree
	indexed []*tileRef
}

// newCompositor prepares the per tile transforms and the spatial index of
// the reprojected source extents. Chunks use the index to skip sources
// that cannot contribute to them.
func newCompositor(tiles []*RasterTile, grid *OutputGrid, cfg Config,
	transformer Transformer) (*compositor, error) {
	c := &compositor{
		tiles:   tiles,
		grid:    grid,
		cfg:     cfg,
		inverse: make([]TransformFunc, len(tiles)),
		index:   rtree.NewTree(25, 50),
		indexed: make([]*tileRef, len(tiles)),
	}
	for i, t := range tiles {
		inv, err := transformer.Transform(grid.CRS, t.CRS)
		if err != nil {
			return nil, &IncompatibleGeometryError{
				Stage:  "blend compositor",
				Source: t.ID,
				Reason: err,
			}
		}
		c.inverse[i] = inv

		forward, err := transformer.Transform(t.CRS, grid.CRS)
		if err != nil {
			return nil, &IncompatibleGeometryError{
				Stage:  "blend compositor",
				Source: t.ID,
				Reason: err,
			}
		}
		ext, err := TransformExtent(t.Extent(), forward)
		if err != nil {
			return nil, &IncompatibleGeometryError{
				Stage:  "blend compositor",
				Source: t.ID,
				Reason: err,
			}
		}
		ref := &tileRef{pos: i, extent: ext}
		c.indexed[i] = ref
		c.index.Insert(ref)
	}
	return c, nil
}

// chunkSources returns the positions of all tiles whose reprojected
// extent intersects the chunk, in source list order.
func (c *compositor) chunkSources(chunk Chunk) []int {
	hits := c.index.SearchIntersect(chunk.Extent(c.grid).Bounds())
	member := make(map[int]bool, len(hits))
	for _, hit := range hits {
		member[hit.(*tileRef).pos] = true
	}
	res := make([]int, 0, len(member))
	for i := range c.tiles {
		if member[i] {
			res = append(res, i)
		}
	}
	return res
}

// processChunk resamples every intersecting source onto the chunk, folds
// the layers in order and finalizes the chunk rows of the mosaic.
func (c *compositor) processChunk(chunk Chunk, m *Mosaic) error {
	acc := NewAccumulator(c.cfg.OverlapPolicy, c.grid.Bands, c.grid.Width, chunk.Rows())
	for _, pos := range c.chunkSources(chunk) {
		layer, err := Resample(c.tiles[pos], c.grid, chunk, c.cfg.ResampleMethod, c.inverse[pos])
		if err != nil {
			return fmt.Errorf("resampling source %q: %w", c.tiles[pos].ID, err)
		}
		if foldErr := acc.Fold(layer); foldErr != nil {
			return fmt.Errorf("folding source %q: %w", c.tiles[pos].ID, foldErr)
		}
	}
	acc.FinalizeInto(m, chunk)
	return nil
}

// run accumulates all chunks into the mosaic buffer using a worker pool.
// Cancellation is checked per chunk: once the context is done no further
// chunk is processed and a CancelledError is returned.
func (c *compositor) run(ctx context.Context, m *Mosaic, progress ProgressFunc) error {
	chunks := DivideChunks(c.grid, ChunkRows(c.grid, c.cfg.chunkBytes()))
	numRoutines := c.cfg.numRoutines()
	log.WithFields(log.Fields{
		"chunks":   len(chunks),
		"routines": numRoutines,
	}).Debug("Starting accumulation")

	jobs := make(chan Chunk, BufferSize)
	errorChan := make(chan error, BufferSize)
	for w := 0; w < numRoutines; w++ {
		go func() {
			for chunk := range jobs {
				if ctxErr := ctx.Err(); ctxErr != nil {
					errorChan <- &CancelledError{Stage: "blend compositor", Reason: ctxErr}
					continue
				}
				errorChan <- c.processChunk(chunk, m)
			}
		}()
	}

	go func() {
		for _, chunk := range chunks {
			jobs <- chunk
		}
		close(jobs)
	}()

	// any error that occurs sets this variable (first error)
	var err error
	for i := 0; i < len(chunks); i++ {
		nextErr := <-errorChan
		if nextErr != nil && err == nil {
			err = nextErr
		}
		if progress != nil {
			progress(i)
		}
	}
	return err
}
