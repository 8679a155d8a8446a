// Package tiffcomposer composes multiple georeferenced rasters into a single
// mosaic. It takes N source tiles with possibly different coordinate
// reference systems, resolutions and extents, reconciles them onto one
// output grid, reprojects and resamples each source onto that grid, blends
// overlapping coverage with a deterministic overlap policy and optionally
// clips the result to a vector boundary.
//
// Reading and writing TIFF containers is delegated to adapters, see the
// geotiff sub package for a filesystem implementation based on world files.
//
// It ships with an executable program to compose mosaics from the command
// line.
package tiffcomposer
