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

package main

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	tiffcomposer "github.com/erlete/tiff-composer"
)

// runConfig is the TOML representation of one composition run.
type runConfig struct {
	Inputs           []string `toml:"inputs"`
	Output           string   `toml:"output"`
	Clip             string   `toml:"clip"`
	TargetCRS        string   `toml:"target_crs"`
	DefaultCRS       string   `toml:"default_crs"`
	OutputResolution float64  `toml:"output_resolution"`
	ResampleMethod   string   `toml:"resample_method"`
	OverlapPolicy    string   `toml:"overlap_policy"`
	MemoryChunkBytes int64    `toml:"memory_chunk_bytes"`
	NumRoutines      int      `toml:"num_routines"`
	Nodata           float64  `toml:"nodata"`
	SourceNodata     *float64 `toml:"source_nodata"`
}

// loadRunConfig reads and decodes the TOML file at path, expanding a
// leading ~ in the path.
func loadRunConfig(path string) (runConfig, error) {
	var cfg runConfig
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("can't parse config %q: %w", path, err)
	}
	return cfg, nil
}

// coreConfig converts the file representation to the engine config,
// parsing the textual method and policy.
func (cfg runConfig) coreConfig() (tiffcomposer.Config, error) {
	res := tiffcomposer.Config{
		TargetCRS:        tiffcomposer.CRS(cfg.TargetCRS),
		OutputResolution: cfg.OutputResolution,
		MemoryChunkBytes: cfg.MemoryChunkBytes,
		NumRoutines:      cfg.NumRoutines,
		Nodata:           cfg.Nodata,
	}
	method, err := tiffcomposer.ParseResampleMethod(cfg.ResampleMethod)
	if err != nil {
		return res, err
	}
	res.ResampleMethod = method
	policy, err := tiffcomposer.ParseOverlapPolicy(cfg.OverlapPolicy)
	if err != nil {
		return res, err
	}
	res.OverlapPolicy = policy
	return res, nil
}

// expandPaths expands ~ in all configured paths.
func (cfg *runConfig) expandPaths() error {
	for i, in := range cfg.Inputs {
		expanded, err := homedir.Expand(in)
		if err != nil {
			return err
		}
		cfg.Inputs[i] = expanded
	}
	var err error
	if cfg.Output != "" {
		if cfg.Output, err = homedir.Expand(cfg.Output); err != nil {
			return err
		}
	}
	if cfg.Clip != "" {
		if cfg.Clip, err = homedir.Expand(cfg.Clip); err != nil {
			return err
		}
	}
	return nil
}
