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
)

// WGS84 ellipsoid parameters in meters.
const (
	equatorialRadius = 6378137.0
	polarRadius      = 6356752.314245
)

// GeoCoordinate is a geographic coordinate in degrees. Use NewGeoCoordinate
// to get range validation, the zero value is the null island.
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
}

// NewGeoCoordinate returns a validated coordinate. Latitude must be in
// [-90, 90] and longitude in [-180, 180], otherwise a GeoCoordinateError is
// returned.
func NewGeoCoordinate(latitude, longitude float64) (GeoCoordinate, error) {
	if latitude < -90 || latitude > 90 {
		return GeoCoordinate{}, &GeoCoordinateError{
			Message: "latitude must be between -90 and 90 degrees",
		}
	}
	if longitude < -180 || longitude > 180 {
		return GeoCoordinate{}, &GeoCoordinateError{
			Message: "longitude must be between -180 and 180 degrees",
		}
	}
	return GeoCoordinate{Latitude: latitude, Longitude: longitude}, nil
}

func (c GeoCoordinate) String() string {
	return fmt.Sprintf("Latitude: %g, Longitude: %g", c.Latitude, c.Longitude)
}

// EarthRadius returns the WGS84 earth radius in meters at the given geodetic
// latitude (degrees). The radius shrinks from the equatorial towards the
// polar value.
func EarthRadius(latitude float64) float64 {
	lat := latitude * math.Pi / 180
	a, b := equatorialRadius, polarRadius
	sin, cos := math.Sin(lat), math.Cos(lat)
	return math.Sqrt(
		((a*a*cos)*(a*a*cos) + (b*b*sin)*(b*b*sin)) /
			((a*cos)*(a*cos) + (b*sin)*(b*sin)))
}

// DistanceTo returns the great circle distance to other in meters,
// accounting for the variation of the earth radius with latitude.
//
// If step is zero the distance is computed directly with the radius at the
// midpoint latitude. A positive step (in radians) integrates the distance
// along the path in segments of at most that angular size, evaluating the
// earth radius per segment. Small steps improve accuracy on long
// north-south paths.
func (c GeoCoordinate) DistanceTo(other GeoCoordinate, step float64) float64 {
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dlat := lat2 - lat1
	dlon := (other.Longitude - c.Longitude) * math.Pi / 180

	// great circle angular distance (haversine)
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	angular := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	if step <= 0 {
		mid := (c.Latitude + other.Latitude) / 2
		return EarthRadius(mid) * angular
	}

	steps := int(angular / step)
	if steps < 1 {
		steps = 1
	}
	// interpolate latitudes along the path and sum per segment distances
	fractions := floats.Span(make([]float64, steps+1), 0, 1)
	var total float64
	for _, f := range fractions[:steps] {
		lat := lat1 + f*dlat
		total += EarthRadius(lat*180/math.Pi) * (angular / float64(steps))
	}
	return total
}

// GeoExtent is a geographic extent given by its south-west (start) and
// north-east (end) corner.
type GeoExtent struct {
	Start GeoCoordinate
	End   GeoCoordinate
}

// Extent converts the geographic extent to a world extent in lon/lat order,
// suitable for rasters in a geographic CRS.
func (e GeoExtent) Extent() Extent {
	return Extent{
		MinX: e.Start.Longitude,
		MinY: e.Start.Latitude,
		MaxX: e.End.Longitude,
		MaxY: e.End.Latitude,
	}
}
