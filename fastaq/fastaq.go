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

// Package fastaq recognizes FASTA and FASTQ read files by name,
// pairs forward and reverse mates, and provides sequential readers
// for both formats.
package fastaq

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind selects between the two read file formats.
type Kind int

const (
	// Fastq selects FASTQ naming and parsing.
	Fastq Kind = iota
	// Fasta selects FASTA naming and parsing.
	Fasta
)

func (kind Kind) String() string {
	if kind == Fasta {
		return "fasta"
	}
	return "fastq"
}

// Recognized filename extensions per kind, longest suffix first so
// that .fq.gz is never mistaken for a plain file with extension .gz.
var (
	fastqExtensions = []string{".fastq.gz", ".fq.gz", ".fastq", ".fq"}
	fastaExtensions = []string{".fasta.gz", ".fa.gz", ".fasta", ".fa"}
)

func (kind Kind) extensions() []string {
	if kind == Fasta {
		return fastaExtensions
	}
	return fastqExtensions
}

// mateTable maps a forward read tag onto its reverse counterpart.
// Matching is case-sensitive: an uppercase forward tag always pairs
// with an uppercase reverse tag, and vice versa.
var mateTable = map[string]string{
	"R1":    "R2",
	"r1":    "r2",
	"READ1": "READ2",
	"read1": "read2",
	"PE1":   "PE2",
	"pe1":   "pe2",
	"FWD":   "REV",
	"fwd":   "rev",
	"F":     "R",
	"f":     "r",
	"1":     "2",
}

// reverseTags is the set of tokens that mark a file as a reverse
// mate. These are exactly the values of mateTable.
var reverseTags = map[string]bool{
	"R2":    true,
	"r2":    true,
	"READ2": true,
	"read2": true,
	"PE2":   true,
	"pe2":   true,
	"REV":   true,
	"rev":   true,
	"R":     true,
	"r":     true,
	"2":     true,
}

// tagRank orders forward tags by how much we trust them; a lower
// rank wins. Tokens like a bare "1" or "F" appear in sample names
// for unrelated reasons, so the explicit read markers outrank them.
var tagRank = map[string]int{
	"R1": 0, "r1": 0,
	"READ1": 1, "read1": 1,
	"PE1": 2, "pe1": 2,
	"FWD": 3, "fwd": 3,
	"1": 4,
	"F": 5, "f": 5,
}

// unrankedTag is the rank assigned to any forward tag missing from
// tagRank, so that ranked tags always win over it.
const unrankedTag = 100

func rankOf(tag string) int {
	if rank, ok := tagRank[tag]; ok {
		return rank
	}
	return unrankedTag
}

// delimiters are the separators that may set a mate tag off from the
// rest of a file name, in the order they are tried. When two
// delimiters yield tags of equal rank, the earlier delimiter wins.
var delimiters = []string{"_", "-", ".", "@", "#", ":"}

// TrimExt strips a recognized extension of the given kind from a
// file name. The second result reports whether an extension matched;
// when it did not, the name is returned unchanged.
func TrimExt(name string, kind Kind) (string, bool) {
	for _, ext := range kind.extensions() {
		if strings.HasSuffix(name, ext) {
			return name[:len(name)-len(ext)], true
		}
	}
	return name, false
}

// trimAnyExt strips a trailing .gz and then one arbitrary extension,
// whatever it may be. Explicitly named input files are not required
// to follow the recognized naming conventions.
func trimAnyExt(name string) string {
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// A Classification describes how a read file name was recognized.
type Classification struct {
	// Sample is the sample base name, the part of the name before
	// the mate tag.
	Sample string
	// Kind is the file format the extension matched.
	Kind Kind
	// Tag is the forward tag token that was found.
	Tag string
	// TagIndex is the position of Tag among the tokens obtained by
	// splitting on Delimiter.
	TagIndex int
	// Delimiter is the separator under which Tag was found.
	Delimiter string
}

// Classify recognizes a single read file name: it strips a
// recognized extension of the given kind and locates a forward mate
// tag among the delimiter-separated tokens of the remaining base
// name. Every delimiter is tried; per delimiter the leftmost tag
// wins, and across delimiters the best-ranked tag wins. A name
// without a recognized extension, or without any mate tag, is an
// error.
func Classify(filename string, kind Kind) (Classification, error) {
	name := filepath.Base(filename)
	base, ok := TrimExt(name, kind)
	if !ok {
		return Classification{}, fmt.Errorf("%v is not a recognized %v file", name, kind)
	}
	var (
		result Classification
		best   int
		found  bool
	)
	for _, delimiter := range delimiters {
		tokens := strings.Split(base, delimiter)
		for index, token := range tokens {
			if _, ok := mateTable[token]; !ok {
				continue
			}
			if rank := rankOf(token); !found || rank < best {
				found = true
				best = rank
				result = Classification{
					Sample:    strings.Join(tokens[:index], delimiter),
					Kind:      kind,
					Tag:       token,
					TagIndex:  index,
					Delimiter: delimiter,
				}
			}
			break
		}
	}
	if !found {
		return Classification{}, fmt.Errorf("no mate tag recognized in %v", name)
	}
	return result, nil
}
