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
	"sync"

	"github.com/ctessum/geom/proj"
)

// CRS identifies a coordinate reference system as a proj4 string, for
// example "+proj=longlat +datum=WGS84 +no_defs". Proj4 strings are used
// instead of bare EPSG codes so that a CRS is self describing, looking up
// codes is the caller's business.
type CRS string

// WGS84 is the geographic lat/lon reference system most GeoJSON data and
// GPS coordinates live in.
const WGS84 CRS = "+proj=longlat +datum=WGS84 +no_defs"

// Empty returns true if no CRS is set.
func (c CRS) Empty() bool {
	return c == ""
}

// TransformFunc maps a single world coordinate from one CRS to another.
// Implementations must be safe for concurrent use.
type TransformFunc func(x, y float64) (float64, float64, error)

// IdentityTransform is the TransformFunc that returns its input unchanged.
// It is used whenever source and target CRS are the same.
func IdentityTransform(x, y float64) (float64, float64, error) {
	return x, y, nil
}

// Transformer creates coordinate transforms between reference systems.
// It is injected as a capability so the grid reconciler and the resampler
// can be tested against a fake deterministic transform.
type Transformer interface {
	// Transform returns a function mapping coordinates from the CRS "from"
	// to the CRS "to". An error is returned if either CRS is undefined or
	// unsupported.
	Transform(from, to CRS) (TransformFunc, error)
}

// ProjTransformer implements Transformer on top of the pure Go proj4 port.
// Parsed reference systems are cached, the transformer is safe for
// concurrent use.
type ProjTransformer struct {
	mu    sync.Mutex
	cache map[CRS]*proj.SR
}

// NewProjTransformer returns an empty ProjTransformer.
func NewProjTransformer() *ProjTransformer {
	return &ProjTransformer{cache: make(map[CRS]*proj.SR, 4)}
}

func (pt *ProjTransformer) parse(c CRS) (*proj.SR, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if sr, has := pt.cache[c]; has {
		return sr, nil
	}
	if c.Empty() {
		return nil, fmt.Errorf("empty CRS")
	}
	sr, err := proj.Parse(string(c))
	if err != nil {
		return nil, fmt.Errorf("can't parse CRS %q: %w", c, err)
	}
	pt.cache[c] = sr
	return sr, nil
}

// Transform implements Transformer.
func (pt *ProjTransformer) Transform(from, to CRS) (TransformFunc, error) {
	if from == to {
		return IdentityTransform, nil
	}
	srFrom, err := pt.parse(from)
	if err != nil {
		return nil, err
	}
	srTo, err := pt.parse(to)
	if err != nil {
		return nil, err
	}
	ct, err := srFrom.NewTransform(srTo)
	if err != nil {
		return nil, fmt.Errorf("can't transform %q to %q: %w", from, to, err)
	}
	return TransformFunc(ct), nil
}
