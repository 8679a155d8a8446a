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
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SourceAdapter produces decoded raster tiles. It is the boundary to
// whatever reads and decodes the actual data (filesystem, object storage),
// the core treats Open as an opaque synchronous call.
type SourceAdapter interface {
	// Open returns the decoded tile for the identifier. Failures surface
	// as SourceUnavailableError from the pipeline.
	Open(identifier string) (*RasterTile, error)
}

// ClipProvider loads vector boundaries for output clipping.
type ClipProvider interface {
	// Load returns the boundary for the identifier. Failures surface as
	// GeometryLoadError from the pipeline.
	Load(identifier string) (*ClipBoundary, error)
}

// MosaicWriter receives the finished mosaic. The pipeline guarantees it is
// called at most once per run and only with a fully finalized mosaic.
type MosaicWriter interface {
	Write(m *Mosaic) error
}

// PipelineState is the lifecycle state of a composition run. Transitions
// are strictly sequential, a failure in any stage aborts the whole run.
type PipelineState int

const (
	// StateInitialized is the state before Run was called.
	StateInitialized PipelineState = iota
	// StateGridResolved means the output grid has been computed.
	StateGridResolved
	// StateAccumulating means sources are being resampled and blended.
	StateAccumulating
	// StateClipped means the optional clip mask has been applied.
	StateClipped
	// StateFinalized is terminal, reached after the writer returned.
	StateFinalized
	// StateFailed is terminal, reached when any stage failed.
	StateFailed
)

func (s PipelineState) String() string {
	switch s {
	case StateInitialized:
		return "Initialized"
	case StateGridResolved:
		return "GridResolved"
	case StateAccumulating:
		return "Accumulating"
	case StateClipped:
		return "Clipped"
	case StateFinalized:
		return "Finalized"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("PipelineState(%d)", s)
	}
}

// SourceValidation is the result of validating one source before any
// expensive work starts. Tile is nil if Err is set.
type SourceValidation struct {
	Identifier string
	Tile       *RasterTile
	Err        error
}

// ValidateSources opens and validates every source up front. Malformed
// inputs are detected here, before resampling starts, so partial failures
// never waste accumulation work. The returned slice has one entry per
// identifier in input order.
func ValidateSources(identifiers []string, adapter SourceAdapter) []SourceValidation {
	res := make([]SourceValidation, len(identifiers))
	for i, id := range identifiers {
		res[i].Identifier = id
		tile, err := adapter.Open(id)
		if err != nil {
			res[i].Err = &SourceUnavailableError{Source: id, Reason: err}
			continue
		}
		if validateErr := tile.Validate(); validateErr != nil {
			res[i].Err = &SourceUnavailableError{Source: id, Reason: validateErr}
			continue
		}
		res[i].Tile = tile
	}
	return res
}

// Pipeline is one composition run. It is not reusable: after Run returned
// (successfully or not) a new run requires a fresh instance.
type Pipeline struct {
	cfg         Config
	adapter     SourceAdapter
	writer      MosaicWriter
	transformer Transformer

	clipProvider ClipProvider
	clipID       string

	progress ProgressFunc
	state    PipelineState
	runID    string
}

// NewPipeline returns a pipeline in state Initialized. transformer may be
// nil, in which case the proj backed implementation is used.
func NewPipeline(cfg Config, adapter SourceAdapter, writer MosaicWriter,
	transformer Transformer) *Pipeline {
	if transformer == nil {
		transformer = NewProjTransformer()
	}
	return &Pipeline{
		cfg:         cfg,
		adapter:     adapter,
		writer:      writer,
		transformer: transformer,
		state:       StateInitialized,
		runID:       uuid.New().String(),
	}
}

// WithClip requests clipping of the output to the boundary loaded from the
// provider under the given identifier. Must be called before Run.
func (p *Pipeline) WithClip(provider ClipProvider, identifier string) *Pipeline {
	p.clipProvider = provider
	p.clipID = identifier
	return p
}

// WithProgress installs a progress callback for chunk accumulation.
func (p *Pipeline) WithProgress(progress ProgressFunc) *Pipeline {
	p.progress = progress
	return p
}

// State returns the current pipeline state.
func (p *Pipeline) State() PipelineState {
	return p.state
}

// fail records the failed state and annotates the error with the stage in
// which it happened.
func (p *Pipeline) fail(stage string, err error) error {
	p.state = StateFailed
	log.WithError(err).WithFields(log.Fields{
		"run":   p.runID,
		"stage": stage,
	}).Error("Pipeline run failed")
	return err
}

// Run executes the whole composition: validate all sources, reconcile the
// output grid, resample and blend every source, apply the optional clip
// boundary and hand the finalized mosaic to the writer exactly once.
//
// Cancellation of ctx is observed between chunks, a cancelled run returns a
// CancelledError and the writer is never called. Any stage failure aborts
// the run, no partial mosaic ever reaches the writer.
func (p *Pipeline) Run(ctx context.Context, identifiers []string) (*Mosaic, error) {
	if p.state != StateInitialized {
		return nil, fmt.Errorf("pipeline already ran (state %v), use a fresh instance", p.state)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, p.fail("config", err)
	}
	if len(identifiers) == 0 {
		return nil, p.fail("validation", &EmptyInputError{Stage: "pipeline"})
	}
	logEntry := log.WithField("run", p.runID)
	logEntry.WithField("sources", len(identifiers)).Info("Starting composition run")

	// load the clip boundary first if requested: a broken boundary should
	// abort before any expensive raster work
	var boundary *ClipBoundary
	if p.clipProvider != nil {
		loaded, err := p.clipProvider.Load(p.clipID)
		if err != nil {
			return nil, p.fail("clip", &GeometryLoadError{Identifier: p.clipID, Reason: err})
		}
		boundary = loaded
	}

	// validation pass over all sources before any resampling
	validations := ValidateSources(identifiers, p.adapter)
	tiles := make([]*RasterTile, len(validations))
	for i, v := range validations {
		if v.Err != nil {
			return nil, p.fail("validation", v.Err)
		}
		tiles[i] = v.Tile
	}
	// heterogeneous band counts have no well defined blend semantics
	for _, t := range tiles[1:] {
		if len(t.Bands) != len(tiles[0].Bands) {
			return nil, p.fail("validation", &IncompatibleGeometryError{
				Stage:  "validation",
				Source: t.ID,
				Reason: fmt.Errorf("source has %d bands, expected %d as in %q",
					len(t.Bands), len(tiles[0].Bands), tiles[0].ID),
			})
		}
	}

	grid, err := ReconcileGrid(tiles, p.cfg, p.transformer)
	if err != nil {
		return nil, p.fail("grid reconciler", err)
	}
	p.state = StateGridResolved

	p.state = StateAccumulating
	comp, err := newCompositor(tiles, grid, p.cfg, p.transformer)
	if err != nil {
		return nil, p.fail("blend compositor", err)
	}
	mosaic := NewMosaic(grid, p.cfg.Nodata)
	if err = comp.run(ctx, mosaic, p.progress); err != nil {
		return nil, p.fail("blend compositor", err)
	}

	if err = ApplyClip(mosaic, boundary, p.transformer); err != nil {
		return nil, p.fail("clip", err)
	}
	p.state = StateClipped

	// final cancellation check before the single writer call
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, p.fail("finalize", &CancelledError{Stage: "finalize", Reason: ctxErr})
	}
	if p.writer != nil {
		if writeErr := p.writer.Write(mosaic); writeErr != nil {
			return nil, p.fail("writer", &WriteError{Reason: writeErr})
		}
	}
	p.state = StateFinalized
	logEntry.Info("Composition run finished")
	return mosaic, nil
}
