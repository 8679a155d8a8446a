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
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	tiffcomposer "github.com/erlete/tiff-composer"
	"github.com/erlete/tiff-composer/geotiff"
)

var (
	flagConfig   string
	flagOutput   string
	flagClip     string
	flagOverview string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "tiffcomposer",
	Short: "Compose georeferenced TIFF tiles into a single mosaic",
	Long: "tiffcomposer composes multiple georeferenced raster tiles into one\n" +
		"mosaic, reconciling coordinate reference systems, resolutions and\n" +
		"extents, blending overlapping coverage with an explicit overlap policy\n" +
		"and optionally clipping the result to a vector boundary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

var composeCmd = &cobra.Command{
	Use:   "compose [INPUT...]",
	Short: "Compose the configured inputs into a mosaic",
	Long: "Compose reads the run configuration from the TOML file given with\n" +
		"--config, composes all inputs (config inputs plus extra arguments) and\n" +
		"writes the mosaic TIFF with world file and .prj sidecars.\n\n" +
		"Both the resample method and the overlap policy must be set in the\n" +
		"config, there are no implicit defaults.",
	RunE: runCompose,
}

func runCompose(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(flagConfig)
	if err != nil {
		return err
	}
	cfg.Inputs = append(cfg.Inputs, args...)
	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if flagClip != "" {
		cfg.Clip = flagClip
	}
	if err = cfg.expandPaths(); err != nil {
		return err
	}
	if cfg.Output == "" {
		return fmt.Errorf("no output path, set output in the config or use --out")
	}
	coreCfg, err := cfg.coreConfig()
	if err != nil {
		return err
	}

	source := &geotiff.Source{
		Nodata:     cfg.SourceNodata,
		DefaultCRS: tiffcomposer.CRS(cfg.DefaultCRS),
	}
	writer := &geotiff.Writer{Path: cfg.Output}
	pipeline := tiffcomposer.NewPipeline(coreCfg, source, writer, nil)
	if cfg.Clip != "" {
		pipeline.WithClip(&geotiff.GeoJSONClip{}, cfg.Clip)
	}
	if flagVerbose {
		pipeline.WithProgress(tiffcomposer.LoggerProgressFunc("Accumulating", 0, 10))
	}

	// ctrl-c aborts the run between chunks, no partial mosaic is written
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mosaic, err := pipeline.Run(ctx, cfg.Inputs)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"output": cfg.Output,
		"width":  mosaic.Grid.Width,
		"height": mosaic.Grid.Height,
		"bands":  mosaic.Grid.Bands,
	}).Info("Mosaic written")

	if flagOverview != "" {
		return writeOverview(mosaic, flagOverview)
	}
	return nil
}

func writeOverview(m *tiffcomposer.Mosaic, path string) error {
	if !strings.HasSuffix(path, ".png") {
		return fmt.Errorf("overview must be a .png path, got %q", path)
	}
	img, err := m.Overview(1024)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	encodeErr := png.Encode(f, img)
	closeErr := f.Close()
	if encodeErr != nil {
		return encodeErr
	}
	return closeErr
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")
	composeCmd.Flags().StringVarP(&flagConfig, "config", "c", "compose.toml",
		"path to the TOML run configuration")
	composeCmd.Flags().StringVarP(&flagOutput, "out", "o", "",
		"output TIFF path, overrides the config")
	composeCmd.Flags().StringVar(&flagClip, "clip", "",
		"GeoJSON boundary to clip the mosaic to, overrides the config")
	composeCmd.Flags().StringVar(&flagOverview, "overview", "",
		"also write a PNG quicklook of the mosaic to this path")
	rootCmd.AddCommand(composeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
