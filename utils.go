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
	log "github.com/sirupsen/logrus"
)

const (
	// Debug is true if code should be compiled in debug mode, printing
	// more stuff and performing checks.
	Debug = false
)

var (
	// BufferSize is the (default) size of buffers. Some methods create
	// buffered channels, this parameter controls how big such buffers might
	// be. Usually such buffers store no big data (chunk descriptors, errors
	// etc.).
	BufferSize = 1000
)

// ProgressFunc is a function that is used to inform a caller about the
// progress of a called function. For example if we accumulate hundreds of
// chunks we might wish to know how far the run is and give feedback to the
// user. The called method calls the progress function after each step.
type ProgressFunc func(num int)

// ProgressIgnore is a ProgressFunc that does nothing.
func ProgressIgnore(num int) {}

// LoggerProgressFunc is a parameterized ProgressFunc that logs the progress
// (how many of how many steps processed). Log messages may have an
// additional prefix. max is the total number of steps (pass max <= 0 if the
// total is not known in advance) and step describes how often to log (for
// example step = 100 every 100 items).
func LoggerProgressFunc(prefix string, max, step int) ProgressFunc {
	return func(num int) {
		if step == 0 {
			return
		}
		if !(step < 0 || num%step == 0) {
			return
		}
		entry := log.WithField("processed", num+1)
		if max > 0 {
			entry = entry.WithField("of", max)
		}
		if prefix == "" {
			entry.Info("Progress")
		} else {
			entry.Info(prefix)
		}
	}
}
