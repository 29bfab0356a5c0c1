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
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cypherid/seqtoid/fastaq"
)

// ResolveHelp is the help string for this command.
const ResolveHelp = "\nresolve parameters:\n" +
	"seqtoid resolve /path/to/input/\n" +
	"[--input-1 read-file]\n" +
	"[--input-2 read-file]\n" +
	"[--fasta]\n" +
	"[--log-path path]\n"

// Resolve implements the seqtoid resolve command. It prints the
// resolved sample map as JSON on standard output, which is what the
// run command hands to the workflow engine.
func Resolve() error {
	var (
		input1, input2 string
		fasta          bool
		logPath        string
	)

	var flags flag.FlagSet

	flags.StringVar(&input1, "input-1", "", "first read file of a single sample")
	flags.StringVar(&input2, "input-2", "", "second read file of a single sample")
	flags.BoolVar(&fasta, "fasta", false, "resolve fasta input instead of fastq")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 3, ResolveHelp)

	inputDir := getFilename(os.Args[2], ResolveHelp)

	setLogOutput(logPath)

	if input2 != "" && input1 == "" {
		log.Println("Error: Cannot use --input-2 without also using --input-1.")
		fmt.Fprint(os.Stderr, ResolveHelp)
		os.Exit(1)
	}

	kind := fastaq.Fastq
	if fasta {
		kind = fastaq.Fasta
	}

	samples, err := fastaq.Resolve(inputDir, input1, input2, kind)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no input samples resolved in %v", inputDir)
	}

	out, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
