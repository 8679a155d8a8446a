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
	"runtime"
)

// ResampleMethod selects how the resampler interpolates source samples.
// The zero value is invalid on purpose: the method must be an explicit
// choice, never an inherited library default.
type ResampleMethod int

const (
	// ResampleNearest takes the sample of the nearest source pixel. Use it
	// for categorical data and elevation models where interpolated values
	// would be wrong.
	ResampleNearest ResampleMethod = iota + 1
	// ResampleBilinear interpolates between the four surrounding source
	// pixels. Use it for continuous valued imagery.
	ResampleBilinear
)

func (m ResampleMethod) String() string {
	switch m {
	case ResampleNearest:
		return "nearest"
	case ResampleBilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("ResampleMethod(%d)", m)
	}
}

// ParseResampleMethod parses the textual form used in config files.
func ParseResampleMethod(s string) (ResampleMethod, error) {
	switch s {
	case "nearest":
		return ResampleNearest, nil
	case "bilinear":
		return ResampleBilinear, nil
	default:
		return 0, fmt.Errorf("unknown resample method %q, must be \"nearest\" or \"bilinear\"", s)
	}
}

// OverlapPolicy decides the output value where two or more sources validly
// cover the same output pixel. As with ResampleMethod the zero value is
// invalid, the policy must be chosen explicitly.
type OverlapPolicy int

const (
	// FirstWins keeps the first valid contributor in source list order and
	// ignores all later ones.
	FirstWins OverlapPolicy = iota + 1
	// LastWins lets later sources in the input order override earlier ones
	// at overlapping valid pixels.
	LastWins
	// Mean averages all valid contributions at a pixel.
	Mean
)

func (p OverlapPolicy) String() string {
	switch p {
	case FirstWins:
		return "first-wins"
	case LastWins:
		return "last-wins"
	case Mean:
		return "mean"
	default:
		return fmt.Sprintf("OverlapPolicy(%d)", p)
	}
}

// ParseOverlapPolicy parses the textual form used in config files.
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch s {
	case "first-wins":
		return FirstWins, nil
	case "last-wins":
		return LastWins, nil
	case "mean":
		return Mean, nil
	default:
		return 0, fmt.Errorf("unknown overlap policy %q, must be \"first-wins\", \"last-wins\" or \"mean\"", s)
	}
}

// Config is the immutable configuration of one composition run. It is
// threaded explicitly through every stage, there is no module level state.
type Config struct {
	// TargetCRS is the reference system of the output grid. If empty the
	// CRS of the first source is used.
	TargetCRS CRS
	// OutputResolution overrides the output pixel size in target CRS
	// units. If zero the finest resolution among the sources is used.
	OutputResolution float64
	// ResampleMethod is the interpolation policy, applied globally to all
	// sources.
	ResampleMethod ResampleMethod
	// OverlapPolicy decides overlapping coverage, applied globally.
	OverlapPolicy OverlapPolicy
	// MemoryChunkBytes bounds the per chunk working memory. Rasters larger
	// than the budget are processed in row blocks of at most this size.
	// If zero DefaultChunkBytes is used.
	MemoryChunkBytes int64
	// NumRoutines is the number of chunks processed concurrently. If zero
	// or negative the number of CPUs is used.
	NumRoutines int
	// Nodata is the sentinel written to output pixels without any valid
	// contribution.
	Nodata float64
}

// DefaultChunkBytes is the memory budget used when Config.MemoryChunkBytes
// is zero (64 MiB).
const DefaultChunkBytes int64 = 64 << 20

// Validate checks that all mandatory options are set. Both the resample
// method and the overlap policy have no default: a config with the zero
// value for either is rejected so behavior is always explicit and
// reproducible.
func (cfg Config) Validate() error {
	switch cfg.ResampleMethod {
	case ResampleNearest, ResampleBilinear:
	default:
		return fmt.Errorf("resample method must be set explicitly, got %v", cfg.ResampleMethod)
	}
	switch cfg.OverlapPolicy {
	case FirstWins, LastWins, Mean:
	default:
		return fmt.Errorf("overlap policy must be set explicitly, got %v", cfg.OverlapPolicy)
	}
	if cfg.OutputResolution < 0 {
		return fmt.Errorf("output resolution must be positive, got %g", cfg.OutputResolution)
	}
	if cfg.MemoryChunkBytes < 0 {
		return fmt.Errorf("memory chunk bytes must be positive, got %d", cfg.MemoryChunkBytes)
	}
	return nil
}

func (cfg Config) chunkBytes() int64 {
	if cfg.MemoryChunkBytes == 0 {
		return DefaultChunkBytes
	}
	return cfg.MemoryChunkBytes
}

func (cfg Config) numRoutines() int {
	if cfg.NumRoutines > 0 {
		return cfg.NumRoutines
	}
	n := runtime.NumCPU()
	if n <= 0 {
		// don't know if this can happen, better safe than sorry
		n = 4
	}
	return n
}
