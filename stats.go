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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StatMode selects the aggregation of ExtentStats.
type StatMode int

const (
	// StatMean averages the valid values.
	StatMean StatMode = iota + 1
	// StatMax takes the maximum valid value.
	StatMax
	// StatMin takes the minimum valid value.
	StatMin
)

func (m StatMode) String() string {
	switch m {
	case StatMean:
		return "mean"
	case StatMax:
		return "max"
	case StatMin:
		return "min"
	default:
		return fmt.Sprintf("StatMode(%d)", m)
	}
}

// ParseStatMode parses the textual form.
func ParseStatMode(s string) (StatMode, error) {
	switch s {
	case "mean":
		return StatMean, nil
	case "max":
		return StatMax, nil
	case "min":
		return StatMin, nil
	default:
		return 0, fmt.Errorf("mode must be \"mean\", \"max\" or \"min\", got %q", s)
	}
}

// ValueAt returns the value of band b at the world coordinate (x, y),
// looked up through the inverse geotransform. The second return value is
// false if the coordinate falls outside the mosaic or on a nodata pixel.
func (m *Mosaic) ValueAt(b int, x, y float64) (float64, bool) {
	inv, err := m.Grid.Transform.Invert()
	if err != nil {
		return 0, false
	}
	colF, rowF := inv.Apply(x, y)
	col, row := int(math.Floor(colF)), int(math.Floor(rowF))
	if col < 0 || col >= m.Grid.Width || row < 0 || row >= m.Grid.Height {
		return 0, false
	}
	v := m.At(b, col, row)
	if m.IsNodata(v) {
		return 0, false
	}
	return v, true
}

// ExtentStats aggregates the valid values of band b inside the given world
// extent. Nodata pixels are skipped; an error is returned if the extent
// does not intersect the mosaic or contains no valid pixel.
func (m *Mosaic) ExtentStats(b int, extent Extent, mode StatMode) (float64, error) {
	inv, err := m.Grid.Transform.Invert()
	if err != nil {
		return 0, err
	}
	// map the extent corners to pixel space, clamp to the mosaic
	c0, r0 := inv.Apply(extent.MinX, extent.MaxY)
	c1, r1 := inv.Apply(extent.MaxX, extent.MinY)
	colMin := clampInt(int(math.Floor(math.Min(c0, c1))), 0, m.Grid.Width)
	colMax := clampInt(int(math.Ceil(math.Max(c0, c1))), 0, m.Grid.Width)
	rowMin := clampInt(int(math.Floor(math.Min(r0, r1))), 0, m.Grid.Height)
	rowMax := clampInt(int(math.Ceil(math.Max(r0, r1))), 0, m.Grid.Height)
	if colMin >= colMax || rowMin >= rowMax {
		return 0, fmt.Errorf("extent %v does not intersect the mosaic", extent)
	}

	values := make([]float64, 0, (colMax-colMin)*(rowMax-rowMin))
	for row := rowMin; row < rowMax; row++ {
		for col := colMin; col < colMax; col++ {
			v := m.At(b, col, row)
			if m.IsNodata(v) {
				continue
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("no valid pixels in extent %v", extent)
	}
	switch mode {
	case StatMean:
		return stat.Mean(values, nil), nil
	case StatMax:
		return floats.Max(values), nil
	case StatMin:
		return floats.Min(values), nil
	default:
		return 0, fmt.Errorf("invalid stat mode %v", mode)
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
