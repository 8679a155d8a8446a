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
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/tiff"

	tiffcomposer "github.com/erlete/tiff-composer"
)

// Writer implements tiffcomposer.MosaicWriter. It encodes the mosaic as a
// TIFF at Path and writes the world file and .prj sidecars next to it.
//
// The encoder supports uint8 and uint16 sample dtypes (grayscale for one
// band, RGB for three bands of uint8). Floating point mosaics cannot be
// represented by the baseline encoder and are rejected with an error.
type Writer struct {
	Path string
	// Compression is passed to the TIFF encoder, deflate if unset.
	Compression tiff.CompressionType
}

// Write implements tiffcomposer.MosaicWriter.
func (w *Writer) Write(m *tiffcomposer.Mosaic) error {
	img, err := mosaicToImage(m)
	if err != nil {
		return err
	}

	f, err := os.Create(w.Path)
	if err != nil {
		return err
	}
	compression := w.Compression
	if compression == tiff.Uncompressed {
		compression = tiff.Deflate
	}
	encodeErr := tiff.Encode(f, img, &tiff.Options{Compression: compression})
	closeErr := f.Close()
	if encodeErr != nil {
		return fmt.Errorf("can't encode %q: %w", w.Path, encodeErr)
	}
	if closeErr != nil {
		return closeErr
	}

	if err = writeWorldFile(w.Path, m.Grid.Transform); err != nil {
		return err
	}
	return writeProjFile(w.Path, m.Grid.CRS)
}

func mosaicToImage(m *tiffcomposer.Mosaic) (image.Image, error) {
	grid := m.Grid
	switch {
	case grid.DType == tiffcomposer.Float32 || grid.DType == tiffcomposer.Float64:
		return nil, fmt.Errorf("dtype %v is not representable in a baseline TIFF, use a different writer", grid.DType)
	case len(m.Bands) == 1 && grid.DType == tiffcomposer.Uint8:
		img := image.NewGray(image.Rect(0, 0, grid.Width, grid.Height))
		for row := 0; row < grid.Height; row++ {
			for col := 0; col < grid.Width; col++ {
				img.SetGray(col, row, color.Gray{Y: uint8(m.At(0, col, row))})
			}
		}
		return img, nil
	case len(m.Bands) == 1:
		img := image.NewGray16(image.Rect(0, 0, grid.Width, grid.Height))
		for row := 0; row < grid.Height; row++ {
			for col := 0; col < grid.Width; col++ {
				img.SetGray16(col, row, color.Gray16{Y: uint16(m.At(0, col, row))})
			}
		}
		return img, nil
	case len(m.Bands) >= 3:
		img := image.NewNRGBA(image.Rect(0, 0, grid.Width, grid.Height))
		for row := 0; row < grid.Height; row++ {
			for col := 0; col < grid.Width; col++ {
				img.SetNRGBA(col, row, color.NRGBA{
					R: uint8(m.At(0, col, row)),
					G: uint8(m.At(1, col, row)),
					B: uint8(m.At(2, col, row)),
					A: 255,
				})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("can't encode %d band mosaic", len(m.Bands))
	}
}

// writeWorldFile writes the .tfw sidecar. The world file refers to the
// center of the top left pixel, so the half pixel shift of the transform
// is undone here.
func writeWorldFile(path string, t tiffcomposer.Affine) error {
	content := fmt.Sprintf("%.10f\n%.10f\n%.10f\n%.10f\n%.10f\n%.10f\n",
		t[0], t[3], t[1], t[4],
		t[2]+t[0]/2+t[1]/2,
		t[5]+t[3]/2+t[4]/2)
	return os.WriteFile(sidecarPath(path, ".tfw"), []byte(content), 0644)
}

func writeProjFile(path string, crs tiffcomposer.CRS) error {
	return os.WriteFile(sidecarPath(path, ".prj"), []byte(crs+"\n"), 0644)
}
