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
	"path/filepath"

	"github.com/cypherid/seqtoid/config"
	"github.com/cypherid/seqtoid/engine"
	"github.com/cypherid/seqtoid/fastaq"
	"github.com/cypherid/seqtoid/internal"
)

// RunHelp is the help string for this command.
const RunHelp = "\nrun parameters:\n" +
	"seqtoid run /path/to/project\n" +
	"[--pipeline name]\n" +
	"[--config-file name]\n" +
	"[--input-dir path]\n" +
	"[--input-1 read-file]\n" +
	"[--input-2 read-file]\n" +
	"[--fasta]\n" +
	"[--log-level [DEBUG | INFO | WARNING | ERROR]]\n" +
	"[--cores nr]\n" +
	"[--dry-run]\n" +
	"[--engine path]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Run implements the seqtoid run command.
func Run() error {
	var (
		pipeline, configFile     string
		inputDir, input1, input2 string
		fasta                    bool
		logLevel                 string
		cores                    int
		dryRun                   bool
		engineBinary             string
		timed                    bool
		profile                  string
		logPath                  string
	)

	var flags flag.FlagSet

	flags.StringVar(&pipeline, "pipeline", "consensus_genome", "name of the pipeline to run")
	flags.StringVar(&configFile, "config-file", "", "name of the run configuration file")
	flags.StringVar(&inputDir, "input-dir", "", "directory to scan for input read files")
	flags.StringVar(&input1, "input-1", "", "first read file of a single sample")
	flags.StringVar(&input2, "input-2", "", "second read file of a single sample")
	flags.BoolVar(&fasta, "fasta", false, "resolve fasta input instead of fastq")
	flags.StringVar(&logLevel, "log-level", "", "engine log level, one of DEBUG, INFO, WARNING, or ERROR")
	flags.IntVar(&cores, "cores", 0, "number of engine worker cores")
	flags.BoolVar(&dryRun, "dry-run", false, "plan the workflow without executing it")
	flags.StringVar(&engineBinary, "engine", "", "workflow engine executable")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 3, RunHelp)

	projectRoot := getFilename(os.Args[2], RunHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", projectRoot) {
		sanityChecksFailed = true
	}

	snakefile := engine.Snakefile(projectRoot, pipeline)
	if !checkExist("--pipeline", snakefile) {
		sanityChecksFailed = true
	}

	if input2 != "" && input1 == "" {
		log.Println("Error: Cannot use --input-2 without also using --input-1.")
		sanityChecksFailed = true
	}

	if inputDir == "" {
		inputDir = filepath.Join(projectRoot, "input")
	}
	if input1 == "" && !checkExist("--input-dir", inputDir) {
		sanityChecksFailed = true
	}

	if cores < 0 {
		log.Println("Error: Invalid cores: ", cores)
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, RunHelp)
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
	log.Printf("Resolved %v sample(s).\n", len(samples))

	absRoot, err := internal.FullPathname(projectRoot)
	if err != nil {
		return err
	}
	cfg, runLogPath, err := config.Setup(absRoot, pipeline, configFile)
	if err != nil {
		return err
	}
	if logLevel == "" {
		logLevel = cfg.Sub("logging").String("level", "INFO")
	}

	samplesJSON, err := json.Marshal(samples)
	if err != nil {
		return err
	}

	req := engine.Request{
		Snakefile:   engine.Snakefile(absRoot, pipeline),
		ProjectRoot: absRoot,
		Config: map[string]string{
			config.LogPathKey: runLogPath,
			"samples":         string(samplesJSON),
		},
		DryRun:   dryRun,
		LogLevel: logLevel,
		Cores:    cores,
	}

	eng := engine.Snakemake{Binary: engineBinary}
	timedRun(timed, profile, "Running pipeline.", 1, func() {
		err = eng.Run(req)
	})
	if err != nil {
		return err
	}
	log.Println("Pipeline completed successfully.")
	return nil
}
