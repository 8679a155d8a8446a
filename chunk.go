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

// Chunk is a horizontal row block of the output grid, rows in
// [Row0, Row1). Chunks are the unit of parallelism and the unit of
// accumulator ownership: chunks are pairwise disjoint, so two chunks can
// be accumulated concurrently without ever touching the same pixel.
type Chunk struct {
	Row0, Row1 int
}

// Rows returns the number of rows in the chunk.
func (c Chunk) Rows() int {
	return c.Row1 - c.Row0
}

// Extent returns the world extent covered by the chunk on the given grid.
func (c Chunk) Extent(grid *OutputGrid) Extent {
	x0, y0 := grid.Transform.Apply(0, float64(c.Row0))
	x1, y1 := grid.Transform.Apply(float64(grid.Width), float64(c.Row1))
	return Extent{
		MinX: math.Min(x0, x1),
		MinY: math.Min(y0, y1),
		MaxX: math.Max(x0, x1),
		MaxY: math.Max(y0, y1),
	}
}

// ChunkRows computes the number of rows per chunk so that one chunk's
// working buffers (bands plus validity mask plus accumulation counts, all
// in float64 width) stay within the memory budget. At least one row is
// always processed.
func ChunkRows(grid *OutputGrid, budget int64) int {
	// resampled bands + accumulator bands in float64, mask and counts
	bytesPerRow := int64(grid.Width) * int64(grid.Bands) * 8 * 2
	bytesPerRow += int64(grid.Width) * (1 + 4)
	if bytesPerRow <= 0 {
		return 1
	}
	rows := int(budget / bytesPerRow)
	if rows < 1 {
		rows = 1
	}
	if rows > grid.Height {
		rows = grid.Height
	}
	return rows
}

// DivideChunks splits the output grid into row blocks of at most rows rows.
// The last chunk is adjusted to the remaining rows, the chunks cover every
// row exactly once.
func DivideChunks(grid *OutputGrid, rows int) []Chunk {
	if rows <= 0 {
		rows = 1
	}
	numChunks := grid.Height / rows
	if grid.Height%rows != 0 {
		numChunks++
	}
	res := make([]Chunk, 0, numChunks)
	for row := 0; row < grid.Height; row += rows {
		end := row + rows
		if end > grid.Height {
			end = grid.Height
		}
		res = append(res, Chunk{Row0: row, Row1: end})
	}
	return res
}
