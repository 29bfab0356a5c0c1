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

// Package engine invokes the workflow engine that executes the
// pipelines. The engine itself is an external program; this package
// builds its command lines and interprets its exit status.
package engine

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultBinary is the workflow engine executable looked up on PATH
// when no explicit binary is configured.
const DefaultBinary = "snakemake"

// Snakefile returns the workflow description file for the named
// pipeline under the project root. An empty pipeline name refers to
// the workflow at the root itself.
func Snakefile(projectRoot, pipeline string) string {
	if pipeline == "" {
		return filepath.Join(projectRoot, "Snakefile")
	}
	return filepath.Join(projectRoot, "workflows", pipeline, "Snakefile")
}

// VerbosityFlag maps a log level onto the engine verbosity flag.
// WARNING and unrecognized levels run the engine with its default
// verbosity.
func VerbosityFlag(level string) string {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return "--debug"
	case "INFO":
		return "--verbose"
	case "ERROR", "CRITICAL":
		return "--quiet"
	default:
		return ""
	}
}

// A Request describes one workflow engine invocation.
type Request struct {
	// Snakefile is the workflow description file to execute.
	Snakefile string
	// ProjectRoot is handed to the workflow as the project_root
	// configuration value.
	ProjectRoot string
	// Config holds further key=value configuration for the workflow.
	Config map[string]string
	// DryRun asks the engine to plan without executing.
	DryRun bool
	// LogLevel selects the engine verbosity, see VerbosityFlag.
	LogLevel string
	// Cores limits the number of engine worker cores; 0 leaves the
	// choice to the engine.
	Cores int
	// Extra is appended to the command line unchanged.
	Extra []string
}

// Snakemake runs workflows through the snakemake engine.
type Snakemake struct {
	// Binary is the engine executable; empty means DefaultBinary.
	Binary string
}

// Args builds the engine command line arguments for a request. The
// configuration keys are emitted in sorted order so that the same
// request always produces the same command line.
func (engine Snakemake) Args(req Request) []string {
	args := []string{"--snakefile", req.Snakefile}
	if req.Cores > 0 {
		args = append(args, "--cores", strconv.Itoa(req.Cores))
	}
	if req.DryRun {
		args = append(args, "-n")
	}
	if flag := VerbosityFlag(req.LogLevel); flag != "" {
		args = append(args, flag)
	}
	if req.ProjectRoot != "" || len(req.Config) > 0 {
		args = append(args, "--config")
		if req.ProjectRoot != "" {
			args = append(args, "project_root="+req.ProjectRoot)
		}
		keys := make([]string, 0, len(req.Config))
		for key := range req.Config {
			if key != "project_root" {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			args = append(args, key+"="+req.Config[key])
		}
	}
	return append(args, req.Extra...)
}

func (engine Snakemake) binary() string {
	if engine.Binary == "" {
		return DefaultBinary
	}
	return engine.Binary
}

// Run executes the workflow and reports whether it succeeded. The
// engine inherits stdout and stderr, so its own progress output
// reaches the operator directly.
func (engine Snakemake) Run(req Request) error {
	binary := engine.binary()
	args := engine.Args(req)

	var command bytes.Buffer
	fmt.Fprint(&command, binary)
	for _, arg := range args {
		fmt.Fprint(&command, " ", arg)
	}
	log.Println("Executing command:\n", command.String())

	runCmd := exec.Command(binary, args...)
	runCmd.Stdout = os.Stdout
	runCmd.Stderr = os.Stderr
	if err := runCmd.Run(); err != nil {
		return fmt.Errorf("workflow %v failed: %w", req.Snakefile, err)
	}
	return nil
}
