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
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/exascience/pargo/parallel"
	"github.com/klauspost/compress/gzip"

	"github.com/cypherid/seqtoid/fastaq"
	"github.com/cypherid/seqtoid/internal"
)

// CompressHelp is the help string for this command.
const CompressHelp = "\ncompress parameters:\n" +
	"seqtoid compress /path/to/dir\n" +
	"[--include-fastq]\n" +
	"[--dry-run]\n" +
	"[--nr-of-jobs nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Compress implements the seqtoid compress command. It compresses
// the uncompressed read files in a directory, removing each
// original once its compressed counterpart is safely in place.
// Files that already have a compressed counterpart are left alone.
func Compress() error {
	var (
		includeFastq bool
		dryRun       bool
		nrOfJobs     int
		timed        bool
		profile      string
		logPath      string
	)

	var flags flag.FlagSet

	flags.BoolVar(&includeFastq, "include-fastq", false, "also compress .fastq files, not only .fq files")
	flags.BoolVar(&dryRun, "dry-run", false, "list the files that would be compressed without touching them")
	flags.IntVar(&nrOfJobs, "nr-of-jobs", 0, "number of files to compress in parallel")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 3, CompressHelp)

	dir := getFilename(os.Args[2], CompressHelp)

	setLogOutput(logPath)

	// sanity checks

	if !checkExist("", dir) {
		fmt.Fprint(os.Stderr, CompressHelp)
		os.Exit(1)
	}

	if nrOfJobs < 0 {
		log.Println("Error: Invalid nr-of-jobs: ", nrOfJobs)
		fmt.Fprint(os.Stderr, CompressHelp)
		os.Exit(1)
	}
	if nrOfJobs > 0 {
		runtime.GOMAXPROCS(nrOfJobs)
	}

	names, err := internal.Directory(dir)
	if err != nil {
		return err
	}

	var targets []string
	for _, name := range names {
		if !strings.HasSuffix(name, ".fq") && !(includeFastq && strings.HasSuffix(name, ".fastq")) {
			continue
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path + ".gz"); err == nil {
			log.Printf("Skipping %v: %v.gz already exists.\n", path, path)
			continue
		}
		if gzipped, err := fastaq.Gzipped(path); err != nil {
			log.Printf("Warning: Cannot inspect %v: %v.\n", path, err)
			continue
		} else if gzipped {
			log.Printf("Warning: Skipping %v: already holds compressed data.\n", path)
			continue
		}
		targets = append(targets, path)
	}

	if len(targets) == 0 {
		log.Println("Nothing to compress.")
		return nil
	}

	if dryRun {
		for _, path := range targets {
			log.Printf("Would compress %v.\n", path)
		}
		return nil
	}

	var failures int64
	timedRun(timed, profile, fmt.Sprint("Compressing ", len(targets), " file(s)."), 1, func() {
		parallel.Range(0, len(targets), 0, func(low, high int) {
			for i := low; i < high; i++ {
				if err := compressFile(targets[i]); err != nil {
					log.Printf("Error: %v.\n", err)
					atomic.AddInt64(&failures, 1)
				} else {
					log.Printf("Compressed %v.\n", targets[i])
				}
			}
		})
	})
	if failures > 0 {
		return fmt.Errorf("%v file(s) failed to compress", failures)
	}
	return nil
}

// compressFile writes path.gz next to path and removes the original
// once the compressed file is complete.
func compressFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	target := path + ".gz"
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(out)
	_, err = io.Copy(gz, in)
	if cerr := gz.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		return fmt.Errorf("cannot compress %v: %w", path, err)
	}
	return os.Remove(path)
}
