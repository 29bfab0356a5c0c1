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

// seqtoid is a toolkit for turning raw sequencing output into pipeline
// runs: it pairs .fastq/.fasta sample files, stages inputs from local
// paths or a NATS object store, launches Snakemake workflows, and
// compares pipeline results between runs.
//
// Please see https://github.com/cypherid/seqtoid for a documentation
// of the tool, and below for the API documentation.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cypherid/seqtoid/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: run, resolve, compress, split-index, compare, fetch")
	fmt.Fprint(os.Stderr, "\n", cmd.RunHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.ResolveHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.CompressHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.SplitIndexHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.CompareHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.FetchHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprintln(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmd.Run()
	case "resolve":
		err = cmd.Resolve()
	case "compress":
		err = cmd.Compress()
	case "split-index":
		err = cmd.SplitIndex()
	case "compare":
		err = cmd.Compare()
	case "fetch":
		err = cmd.Fetch()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Printf("Unknown command %v.\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
