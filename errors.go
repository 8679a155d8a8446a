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

import "fmt"

// EmptyInputError is returned when a composition is attempted with zero
// source rasters. No run is attempted in this case.
type EmptyInputError struct {
	Stage string
}

func (err *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no source rasters supplied", err.Stage)
}

// IncompatibleGeometryError is returned when a source CRS or extent cannot
// be reconciled with the target CRS. It aborts the run before any
// accumulation happens.
type IncompatibleGeometryError struct {
	Stage  string
	Source string
	Reason error
}

func (err *IncompatibleGeometryError) Error() string {
	return fmt.Sprintf("%s: incompatible geometry for source %q: %v",
		err.Stage, err.Source, err.Reason)
}

func (err *IncompatibleGeometryError) Unwrap() error {
	return err.Reason
}

// SourceUnavailableError is returned when a source adapter failed to produce
// a raster tile. It is fatal for the whole run: silently dropping a source
// would corrupt the overlap policy contract, so no partial mosaic is built
// from the remaining sources.
type SourceUnavailableError struct {
	Source string
	Reason error
}

func (err *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", err.Source, err.Reason)
}

func (err *SourceUnavailableError) Unwrap() error {
	return err.Reason
}

// GeometryCRSError is returned when the clip boundary CRS cannot be
// reconciled with the output grid CRS. It is only raised if clipping was
// requested.
type GeometryCRSError struct {
	CRS    CRS
	Reason error
}

func (err *GeometryCRSError) Error() string {
	return fmt.Sprintf("clip boundary CRS %q cannot be reconciled: %v",
		err.CRS, err.Reason)
}

func (err *GeometryCRSError) Unwrap() error {
	return err.Reason
}

// GeometryLoadError is returned when a clip provider failed to load the
// requested boundary.
type GeometryLoadError struct {
	Identifier string
	Reason     error
}

func (err *GeometryLoadError) Error() string {
	return fmt.Sprintf("can't load clip boundary %q: %v", err.Identifier, err.Reason)
}

func (err *GeometryLoadError) Unwrap() error {
	return err.Reason
}

// WriteError is returned when the mosaic writer adapter failed. The core
// never retries a write, retrying is the adapter's business.
type WriteError struct {
	Reason error
}

func (err *WriteError) Error() string {
	return fmt.Sprintf("can't write mosaic: %v", err.Reason)
}

func (err *WriteError) Unwrap() error {
	return err.Reason
}

// CancelledError is returned when cooperative cancellation was observed
// between chunks or sources. The writer is never called for a cancelled run.
type CancelledError struct {
	Stage  string
	Reason error
}

func (err *CancelledError) Error() string {
	return fmt.Sprintf("%s: run cancelled: %v", err.Stage, err.Reason)
}

func (err *CancelledError) Unwrap() error {
	return err.Reason
}

// GeoCoordinateError is returned for invalid geographic coordinates, for
// example a latitude outside [-90, 90].
type GeoCoordinateError struct {
	Message string
}

func (err *GeoCoordinateError) Error() string {
	return err.Message
}
