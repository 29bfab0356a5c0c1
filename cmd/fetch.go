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
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cypherid/seqtoid/storage"
)

// FetchHelp is the help string for this command.
const FetchHelp = "\nfetch parameters:\n" +
	"seqtoid fetch (path | nats://bucket/key)\n" +
	"[--dest path]\n" +
	"[--check]\n" +
	"[--put file]\n" +
	"[--server url]\n" +
	"[--timeout seconds]\n" +
	"[--log-path path]\n"

// Fetch implements the seqtoid fetch command. It makes a location
// available as a local file and prints the local path on standard
// output. With --check it only reports whether the location exists,
// and with --put it uploads a local file to the location instead.
func Fetch() error {
	var (
		dest    string
		check   bool
		put     string
		server  string
		timeout int
		logPath string
	)

	var flags flag.FlagSet

	flags.StringVar(&dest, "dest", "", "directory to stage fetched objects in")
	flags.BoolVar(&check, "check", false, "only check that the location exists")
	flags.StringVar(&put, "put", "", "upload the given local file to the location")
	flags.StringVar(&server, "server", "", "object store server url")
	flags.IntVar(&timeout, "timeout", 0, "time limit in seconds for object store operations")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 3, FetchHelp)

	location := getFilename(os.Args[2], FetchHelp)

	setLogOutput(logPath)

	if put != "" && check {
		log.Println("Error: Cannot use --put and --check in the same fetch command.")
		fmt.Fprint(os.Stderr, FetchHelp)
		os.Exit(1)
	}
	if put != "" && !checkExist("--put", put) {
		fmt.Fprint(os.Stderr, FetchHelp)
		os.Exit(1)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	client := storage.Client{URL: server}

	if put != "" {
		if err := client.Push(ctx, put, location); err != nil {
			return err
		}
		log.Printf("Uploaded %v to %v.\n", put, location)
		return nil
	}

	if check {
		ok, err := client.Check(ctx, location)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%v does not exist", location)
		}
		log.Printf("%v exists.\n", location)
		return nil
	}

	path, err := client.Fetch(ctx, location, dest)
	if err != nil {
		return err
	}
	log.Printf("Fetched %v to %v.\n", location, path)
	fmt.Println(path)
	return nil
}
