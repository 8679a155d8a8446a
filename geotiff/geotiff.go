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

// Package geotiff implements filesystem adapters for the composition core:
// a source adapter decoding TIFF pixel data with world file and .prj
// sidecars for georeferencing, a writer producing the same layout and a
// clip provider reading GeoJSON boundaries.
//
// The world file convention (.tfw next to the .tif) stores the six affine
// coefficients as plain text, one per line, referring to the center of the
// top left pixel. The .prj sidecar holds the proj4 string of the CRS.
package geotiff

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/tiff"

	tiffcomposer "github.com/erlete/tiff-composer"
)

// worldFileExts are the sidecar extensions probed for the affine transform,
// in order.
var worldFileExts = []string{".tfw", ".wld"}

// Source implements tiffcomposer.SourceAdapter for TIFF files on the
// filesystem. Identifiers are file paths, georeferencing comes from world
// file and .prj sidecars next to each TIFF.
type Source struct {
	// Nodata, if non nil, is used as the nodata sentinel for every opened
	// tile. TIFF baseline images have no nodata tag, so the sentinel is
	// configured on the adapter.
	Nodata *float64
	// DefaultCRS is used for tiles without a .prj sidecar. If empty such
	// tiles are rejected.
	DefaultCRS tiffcomposer.CRS
}

// Open implements tiffcomposer.SourceAdapter.
func (s *Source) Open(identifier string) (*tiffcomposer.RasterTile, error) {
	r, err := os.Open(identifier)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("can't decode %q: %w", identifier, err)
	}

	transform, err := readWorldFile(identifier)
	if err != nil {
		return nil, err
	}
	crs, err := readProjFile(identifier, s.DefaultCRS)
	if err != nil {
		return nil, err
	}

	tile := imageToTile(img)
	tile.ID = identifier
	tile.Transform = transform
	tile.CRS = crs
	tile.Nodata = s.Nodata
	return tile, nil
}

// imageToTile converts a decoded image to float64 bands. Gray images
// become one band, everything else three bands (RGB, the alpha channel is
// dropped).
func imageToTile(img image.Image) *tiffcomposer.RasterTile {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		band := make([]float64, width*height)
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				band[row*width+col] = float64(src.GrayAt(bounds.Min.X+col, bounds.Min.Y+row).Y)
			}
		}
		return &tiffcomposer.RasterTile{
			Bands: [][]float64{band}, Width: width, Height: height,
			DType: tiffcomposer.Uint8,
		}
	case *image.Gray16:
		band := make([]float64, width*height)
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				band[row*width+col] = float64(src.Gray16At(bounds.Min.X+col, bounds.Min.Y+row).Y)
			}
		}
		return &tiffcomposer.RasterTile{
			Bands: [][]float64{band}, Width: width, Height: height,
			DType: tiffcomposer.Uint16,
		}
	default:
		bands := make([][]float64, 3)
		for b := range bands {
			bands[b] = make([]float64, width*height)
		}
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				r, g, b, _ := img.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
				idx := row*width + col
				// RGBA returns 16 bit values, scale down to 8 bit
				bands[0][idx] = float64(r >> 8)
				bands[1][idx] = float64(g >> 8)
				bands[2][idx] = float64(b >> 8)
			}
		}
		return &tiffcomposer.RasterTile{
			Bands: bands, Width: width, Height: height,
			DType: tiffcomposer.Uint8,
		}
	}
}

// sidecarPath replaces the extension of path with ext.
func sidecarPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// readWorldFile reads the affine transform for the raster at path from its
// world file sidecar.
func readWorldFile(path string) (tiffcomposer.Affine, error) {
	for _, ext := range worldFileExts {
		r, err := os.Open(sidecarPath(path, ext))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return tiffcomposer.Affine{}, err
		}
		defer r.Close()
		return ParseWorldFile(r)
	}
	return tiffcomposer.Affine{}, fmt.Errorf("no world file sidecar for %q", path)
}

// ParseWorldFile parses the six line world file format. The lines are, in
// order: the x pixel size (A), the row rotation (D), the column rotation
// (B), the y pixel size (E, negative for north-up), the x and y world
// coordinates of the CENTER of the top left pixel (C, F). The returned
// transform follows the raster convention with the origin at the top left
// pixel CORNER, so the half pixel shift is applied here.
func ParseWorldFile(r io.Reader) (tiffcomposer.Affine, error) {
	scanner := bufio.NewScanner(r)
	coef := make([]float64, 0, 6)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return tiffcomposer.Affine{}, fmt.Errorf("invalid world file line %q: %w", line, err)
		}
		coef = append(coef, v)
	}
	if err := scanner.Err(); err != nil {
		return tiffcomposer.Affine{}, err
	}
	if len(coef) != 6 {
		return tiffcomposer.Affine{}, fmt.Errorf("world file must have 6 lines, got %d", len(coef))
	}
	a, d, b, e, c, f := coef[0], coef[1], coef[2], coef[3], coef[4], coef[5]
	return tiffcomposer.Affine{
		a, b, c - a/2 - b/2,
		d, e, f - d/2 - e/2,
	}, nil
}

// readProjFile reads the CRS proj4 string from the .prj sidecar, falling
// back to the given default.
func readProjFile(path string, fallback tiffcomposer.CRS) (tiffcomposer.CRS, error) {
	data, err := os.ReadFile(sidecarPath(path, ".prj"))
	if err != nil {
		if os.IsNotExist(err) {
			if fallback.Empty() {
				return "", fmt.Errorf("no .prj sidecar for %q and no default CRS configured", path)
			}
			return fallback, nil
		}
		return "", err
	}
	crs := tiffcomposer.CRS(strings.TrimSpace(string(data)))
	if crs.Empty() {
		return "", fmt.Errorf("empty .prj sidecar for %q", path)
	}
	return crs, nil
}
