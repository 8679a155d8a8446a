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
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/floats"
)

// Overview returns a downsampled quicklook image of the mosaic with at
// most maxDim pixels on the longer side. Single band mosaics are rendered
// as grayscale with a min/max stretch over the valid values, mosaics with
// three or more bands as RGB. Nodata pixels are transparent.
//
// The quicklook is meant for visual inspection, it is not a georeferenced
// product.
func (m *Mosaic) Overview(maxDim uint) (image.Image, error) {
	if maxDim == 0 {
		return nil, fmt.Errorf("overview dimension must be positive")
	}
	width, height := m.Grid.Width, m.Grid.Height
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	if len(m.Bands) >= 3 {
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				r := m.At(0, col, row)
				g := m.At(1, col, row)
				b := m.At(2, col, row)
				if m.IsNodata(r) || m.IsNodata(g) || m.IsNodata(b) {
					continue
				}
				img.SetNRGBA(col, row, color.NRGBA{
					R: stretchByte(r), G: stretchByte(g), B: stretchByte(b), A: 255,
				})
			}
		}
	} else {
		lo, hi, ok := m.valueRange(0)
		if !ok {
			return nil, fmt.Errorf("mosaic has no valid pixels")
		}
		scale := 0.0
		if hi > lo {
			scale = 255 / (hi - lo)
		}
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				v := m.At(0, col, row)
				if m.IsNodata(v) {
					continue
				}
				gray := uint8((v - lo) * scale)
				img.SetNRGBA(col, row, color.NRGBA{R: gray, G: gray, B: gray, A: 255})
			}
		}
	}

	if uint(width) <= maxDim && uint(height) <= maxDim {
		return img, nil
	}
	if width >= height {
		return resize.Resize(maxDim, 0, img, resize.Bilinear), nil
	}
	return resize.Resize(0, maxDim, img, resize.Bilinear), nil
}

// valueRange returns the min and max of the valid values of band b, ok is
// false if there are none.
func (m *Mosaic) valueRange(b int) (lo, hi float64, ok bool) {
	values := make([]float64, 0, len(m.Bands[b]))
	for _, v := range m.Bands[b] {
		if m.IsNodata(v) {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return 0, 0, false
	}
	return floats.Min(values), floats.Max(values), true
}

func stretchByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
