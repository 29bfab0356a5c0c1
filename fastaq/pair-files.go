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

package fastaq

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/willf/bitset"

	"github.com/cypherid/seqtoid/internal"
)

// A SamplePair holds the resolved read file(s) for one sample. R2 is
// empty for single-ended samples.
type SamplePair struct {
	R1 string `json:"r1"`
	R2 string `json:"r2,omitempty"`
}

// Paired reports whether the sample has a reverse mate.
func (pair SamplePair) Paired() bool {
	return pair.R2 != ""
}

// A SampleMap maps sample base names onto their resolved read files.
type SampleMap map[string]SamplePair

// Resolve determines the input samples for a run. When file1 is
// given, the resolver is in explicit mode: file1 and the optional
// file2 name the reads of a single sample directly, and no name
// recognition beyond extension stripping takes place. Otherwise dir
// is scanned for read files of the given kind and forward/reverse
// mates are paired up by name.
//
// All failures yield an empty map alongside the error, so callers
// can treat "nothing resolved" uniformly.
func Resolve(dir, file1, file2 string, kind Kind) (SampleMap, error) {
	if file1 != "" {
		return resolveExplicit(dir, file1, file2)
	}
	if file2 != "" {
		err := fmt.Errorf("a second read file %v was given without a first read file", file2)
		log.Printf("Error: %v.\n", err)
		return SampleMap{}, err
	}
	return resolveScan(dir, kind)
}

// resolveExplicit maps explicitly named read files onto a single
// sample keyed by the extension-stripped base name of the first
// file. The files must exist, but their names need not follow any
// recognized convention.
func resolveExplicit(dir, file1, file2 string) (SampleMap, error) {
	path1, err := explicitPath(dir, file1)
	if err != nil {
		return SampleMap{}, err
	}
	pair := SamplePair{R1: path1}
	if file2 != "" {
		path2, err := explicitPath(dir, file2)
		if err != nil {
			return SampleMap{}, err
		}
		pair.R2 = path2
	}
	sample := trimAnyExt(filepath.Base(path1))
	return SampleMap{sample: pair}, nil
}

func explicitPath(dir, file string) (string, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, file)
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("Error: Input file %v cannot be used: %v.\n", file, err)
		return "", fmt.Errorf("input file %v cannot be used: %w", file, err)
	}
	return internal.FullPathname(path)
}

// resolveScan walks the read files in dir in sorted listing order
// and pairs forward mates with their reverse counterparts.
//
// For every unclaimed candidate file, each delimiter splits the
// extension-stripped base name into tokens that are scanned from the
// end towards the start: a reverse tag marks the file as a reverse
// mate and ends that delimiter's scan, a forward tag becomes a
// pairing candidate if it outranks the best one seen so far. A file
// whose best recognition is a forward tag is paired with the
// constructed mate name when that name is among the candidates, and
// emitted single-ended otherwise. A file recognized only as a
// reverse mate is dropped; reverse files enter the map through their
// forward counterpart. A file with no recognized tag at all becomes
// a single-ended sample under its full base name.
func resolveScan(dir string, kind Kind) (SampleMap, error) {
	info, err := os.Stat(dir)
	if err != nil {
		log.Printf("Error: Cannot scan input directory %v: %v.\n", dir, err)
		return SampleMap{}, fmt.Errorf("cannot scan input directory %v: %w", dir, err)
	}
	if !info.IsDir() {
		log.Printf("Error: Input path %v is not a directory.\n", dir)
		return SampleMap{}, fmt.Errorf("input path %v is not a directory", dir)
	}
	absDir, err := internal.FullPathname(dir)
	if err != nil {
		return SampleMap{}, err
	}
	names, err := internal.Directory(dir)
	if err != nil {
		log.Printf("Error: Cannot scan input directory %v: %v.\n", dir, err)
		return SampleMap{}, fmt.Errorf("cannot scan input directory %v: %w", dir, err)
	}

	var candidates []string
	indices := make(map[string]uint)
	for _, name := range names {
		if _, ok := TrimExt(name, kind); ok {
			indices[name] = uint(len(candidates))
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		log.Printf("Error: No %v files found in %v.\n", kind, dir)
		return SampleMap{}, fmt.Errorf("no %v files found in %v", kind, dir)
	}

	claimed := bitset.New(uint(len(candidates)))
	samples := make(SampleMap)

	for i, name := range candidates {
		if claimed.Test(uint(i)) {
			continue
		}
		base, _ := TrimExt(name, kind)
		ext := name[len(base):]

		var (
			found    bool
			reverse  bool
			best     int
			tag      string
			tagIndex int
			tagDelim string
		)
		for _, delimiter := range delimiters {
			tokens := strings.Split(base, delimiter)
			for j := len(tokens) - 1; j >= 0; j-- {
				token := tokens[j]
				if reverseTags[token] {
					reverse = true
					break
				}
				if _, ok := mateTable[token]; !ok {
					continue
				}
				if rank := rankOf(token); !found || rank < best {
					found = true
					best = rank
					tag = token
					tagIndex = j
					tagDelim = delimiter
				}
				break
			}
		}

		switch {
		case found:
			tokens := strings.Split(base, tagDelim)
			sample := strings.Join(tokens[:tagIndex], tagDelim)
			tokens[tagIndex] = mateTable[tag]
			mate := strings.Join(tokens, tagDelim) + ext
			pair := SamplePair{R1: filepath.Join(absDir, name)}
			if j, ok := indices[mate]; ok {
				claimed.Set(j)
				pair.R2 = filepath.Join(absDir, mate)
			}
			record(samples, sample, pair)
		case reverse:
			// Found through its forward mate, or not at all.
		default:
			record(samples, base, SamplePair{R1: filepath.Join(absDir, name)})
		}
	}
	return samples, nil
}

// record adds a resolved pair under its sample name. The first file
// to claim a sample name keeps it.
func record(samples SampleMap, sample string, pair SamplePair) {
	if prev, ok := samples[sample]; ok {
		log.Printf("Warning: Sample %v already resolved to %v; ignoring %v.\n", sample, prev.R1, pair.R1)
		return
	}
	samples[sample] = pair
}
