// seqtoid: a toolkit for preparing sequencing runs for analysis pipelines.
// Copyright (c) 2023-2025 the CypherID developers.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License along with this program. If not, see
// <https://github.com/cypherid/seqtoid/blob/master/LICENSE.txt>.

package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/exascience/pargo/parallel"

	"github.com/cypherid/seqtoid/fastaq"
	"github.com/cypherid/seqtoid/internal"
)

// SplitIndexHelp is the help string for this command.
const SplitIndexHelp = "\nsplit-index parameters:\n" +
	"seqtoid split-index fasta-file nr-of-chunks\n" +
	"[--output-dir path]\n" +
	"[--indexer path]\n" +
	"[--keep-chunks]\n" +
	"[--nr-of-jobs nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// SplitIndex implements the seqtoid split-index command. It splits
// a reference FASTA file into chunks of roughly equal sequence
// counts and builds an aligner index per chunk, so that indexing a
// reference too large for a single index becomes a set of parallel
// jobs. Everything is staged in a scratch directory and only moved
// into the output directory when complete.
func SplitIndex() error {
	var (
		outputDir  string
		indexer    string
		keepChunks bool
		nrOfJobs   int
		timed      bool
		profile    string
		logPath    string
	)

	var flags flag.FlagSet

	flags.StringVar(&outputDir, "output-dir", "", "directory for the chunk indexes")
	flags.StringVar(&indexer, "indexer", "minimap2", "aligner index builder executable")
	flags.BoolVar(&keepChunks, "keep-chunks", false, "keep the chunk fasta files next to their indexes")
	flags.IntVar(&nrOfJobs, "nr-of-jobs", 0, "number of indexes to build in parallel")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, SplitIndexHelp)

	input := getFilename(os.Args[2], SplitIndexHelp)
	chunks := getInt(os.Args[3], SplitIndexHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if chunks < 1 {
		log.Println("Error: Invalid nr-of-chunks: ", chunks)
		sanityChecksFailed = true
	}
	if nrOfJobs < 0 {
		log.Println("Error: Invalid nr-of-jobs: ", nrOfJobs)
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, SplitIndexHelp)
		os.Exit(1)
	}

	if nrOfJobs > 0 {
		runtime.GOMAXPROCS(nrOfJobs)
	}
	if outputDir == "" {
		outputDir = filepath.Join(filepath.Dir(input), "chunks")
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " split-index ", input, " ", chunks)
	fmt.Fprint(&command, " --output-dir ", outputDir)
	fmt.Fprint(&command, " --indexer ", indexer)
	if keepChunks {
		fmt.Fprint(&command, " --keep-chunks")
	}
	if nrOfJobs > 0 {
		fmt.Fprint(&command, " --nr-of-jobs ", nrOfJobs)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	stage, err := internal.StagingDir(filepath.Dir(outputDir), "seqtoid-split")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(stage) }()

	var result []fastaq.Chunk
	timedRun(timed, profile, "Splitting reference.", 1, func() {
		result, err = fastaq.SplitFasta(input, stage, chunks)
	})
	if err != nil {
		return err
	}
	for _, chunk := range result {
		log.Printf("Wrote %v with %v sequence(s).\n", filepath.Base(chunk.Path), chunk.Records)
	}

	var failures int64
	timedRun(timed, profile, fmt.Sprint("Building ", len(result), " index(es)."), 2, func() {
		parallel.Range(0, len(result), 0, func(low, high int) {
			for i := low; i < high; i++ {
				chunk := result[i]
				index := strings.TrimSuffix(chunk.Path, ".fa") + ".mmi"
				indexCmd := exec.Command(indexer, "-d", index, chunk.Path)
				indexCmd.Stderr = os.Stderr
				if err := indexCmd.Run(); err != nil {
					log.Printf("Error: Cannot index %v: %v.\n", chunk.Path, err)
					atomic.AddInt64(&failures, 1)
				}
			}
		})
	})
	if failures > 0 {
		return fmt.Errorf("%v chunk(s) failed to index", failures)
	}

	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return err
	}
	for _, chunk := range result {
		index := strings.TrimSuffix(filepath.Base(chunk.Path), ".fa") + ".mmi"
		if err := os.Rename(filepath.Join(stage, index), filepath.Join(outputDir, index)); err != nil {
			return err
		}
		if keepChunks {
			name := filepath.Base(chunk.Path)
			if err := os.Rename(chunk.Path, filepath.Join(outputDir, name)); err != nil {
				return err
			}
		}
	}
	log.Printf("Wrote %v index(es) to %v.\n", len(result), outputDir)
	return nil
}
