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

package geotiff

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ctessum/geom"

	tiffcomposer "github.com/erlete/tiff-composer"
)

// GeoJSONClip implements tiffcomposer.ClipProvider. Identifiers are paths
// to GeoJSON files containing a Polygon or MultiPolygon geometry, a
// Feature wrapping one, or a FeatureCollection of them.
type GeoJSONClip struct {
	// CRS of the boundary coordinates. GeoJSON is WGS84 by convention,
	// which is the default if left empty.
	CRS tiffcomposer.CRS
}

type geojsonObject struct {
	Type        string            `json:"type"`
	Coordinates json.RawMessage   `json:"coordinates"`
	Geometry    *geojsonObject    `json:"geometry"`
	Features    []json.RawMessage `json:"features"`
}

// Load implements tiffcomposer.ClipProvider.
func (c *GeoJSONClip) Load(identifier string) (*tiffcomposer.ClipBoundary, error) {
	data, err := os.ReadFile(identifier)
	if err != nil {
		return nil, err
	}
	crs := c.CRS
	if crs.Empty() {
		crs = tiffcomposer.WGS84
	}
	polygons, err := decodeGeoJSON(data)
	if err != nil {
		return nil, fmt.Errorf("can't decode %q: %w", identifier, err)
	}
	return &tiffcomposer.ClipBoundary{Polygons: polygons, CRS: crs}, nil
}

func decodeGeoJSON(data []byte) ([]geom.Polygon, error) {
	var obj geojsonObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	switch obj.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(obj.Coordinates, &rings); err != nil {
			return nil, err
		}
		poly, err := ringsToPolygon(rings)
		if err != nil {
			return nil, err
		}
		return []geom.Polygon{poly}, nil
	case "MultiPolygon":
		var multi [][][][]float64
		if err := json.Unmarshal(obj.Coordinates, &multi); err != nil {
			return nil, err
		}
		res := make([]geom.Polygon, 0, len(multi))
		for _, rings := range multi {
			poly, err := ringsToPolygon(rings)
			if err != nil {
				return nil, err
			}
			res = append(res, poly)
		}
		return res, nil
	case "Feature":
		if obj.Geometry == nil {
			return nil, fmt.Errorf("feature without geometry")
		}
		raw, err := json.Marshal(obj.Geometry)
		if err != nil {
			return nil, err
		}
		return decodeGeoJSON(raw)
	case "FeatureCollection":
		var res []geom.Polygon
		for _, raw := range obj.Features {
			polys, err := decodeGeoJSON(raw)
			if err != nil {
				return nil, err
			}
			res = append(res, polys...)
		}
		if len(res) == 0 {
			return nil, fmt.Errorf("feature collection contains no polygons")
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unsupported GeoJSON type %q", obj.Type)
	}
}

func ringsToPolygon(rings [][][]float64) (geom.Polygon, error) {
	poly := make(geom.Polygon, len(rings))
	for i, ring := range rings {
		points := make([]geom.Point, len(ring))
		for j, coords := range ring {
			if len(coords) < 2 {
				return nil, fmt.Errorf("ring %d has a position with %d values", i, len(coords))
			}
			points[j] = geom.Point{X: coords[0], Y: coords[1]}
		}
		poly[i] = points
	}
	return poly, nil
}
