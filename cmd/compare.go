// seqtoid: a toolkit for preparing sequencing runs for analysis pipelines.
// Copyright (c) 2024-2025 the CypherID developers.

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
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cypherid/seqtoid/compare"
)

// CompareHelp is the help string for this command.
const CompareHelp = "\ncompare parameters:\n" +
	"seqtoid compare /path/to/run1 /path/to/run2\n" +
	"[--samples name1,name2,...]\n" +
	"[--metadata filename]\n" +
	"[--log-path path]\n"

// Compare implements the seqtoid compare command. It validates one
// pipeline run directory against another: the sample metadata
// tables are compared with numeric tolerances, the sample sets are
// checked for coverage, and each sample's consensus sequences are
// compared. Differences beyond the tolerances fail the command.
func Compare() error {
	var (
		samplesFlag string
		metadata    string
		logPath     string
	)

	var flags flag.FlagSet

	flags.StringVar(&samplesFlag, "samples", "", "comma separated list of expected sample names")
	flags.StringVar(&metadata, "metadata", "sample_metadata.csv", "name of the sample metadata table in both run directories")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, CompareHelp)

	dir1 := getFilename(os.Args[2], CompareHelp)
	dir2 := getFilename(os.Args[3], CompareHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", dir1) {
		sanityChecksFailed = true
	}
	if !checkExist("", dir2) {
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, CompareHelp)
		os.Exit(1)
	}

	failed := false

	// metadata tables

	table1 := filepath.Join(dir1, metadata)
	table2 := filepath.Join(dir2, metadata)
	result, err := compare.Table(table1, table2)
	if err != nil {
		return err
	}
	log.Printf("Comparing %v against %v.\n", table2, table1)
	if result.Rows1 != result.Rows2 {
		log.Printf("Error: Row counts differ: %v vs %v.\n", result.Rows1, result.Rows2)
	}
	for _, name := range result.MissingColumns {
		log.Printf("Error: Column %v is missing from %v.\n", name, table2)
	}
	for _, name := range result.ExtraColumns {
		log.Printf("Error: Column %v only appears in %v.\n", name, table2)
	}
	for _, column := range result.Columns {
		log.Printf("Column %v: max difference %v (%v).\n", column.Column, column.MaxDiff, column.Category)
	}
	if worst := result.Worst(); worst > compare.Warning {
		log.Printf("Error: Metadata comparison is %v.\n", worst)
		failed = true
	}

	// sample coverage

	var samples []string
	if samplesFlag != "" {
		for _, sample := range strings.Split(samplesFlag, ",") {
			if sample = strings.TrimSpace(sample); sample != "" {
				samples = append(samples, sample)
			}
		}
	} else if samples, err = compare.Samples(table1); err != nil {
		return err
	}

	found, err := compare.Samples(table2)
	if err != nil {
		return err
	}
	missing, extra := compare.SampleCoverage(samples, found)
	for _, sample := range missing {
		log.Printf("Error: Expected sample %v is missing from %v.\n", sample, table2)
		failed = true
	}
	for _, sample := range extra {
		log.Printf("Error: Unexpected sample %v in %v.\n", sample, table2)
		failed = true
	}

	// consensus sequences

	for _, sample := range samples {
		result, err := compare.ConsensusFasta(dir1, dir2, sample)
		if err != nil {
			return err
		}
		log.Printf("Consensus for sample %v: %v.\n", sample, result.Verdict)
		if !result.Verdict.Ok() {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("run %v differs from %v beyond the accepted tolerances", dir2, dir1)
	}
	log.Println("Runs are equivalent within the accepted tolerances.")
	return nil
}
