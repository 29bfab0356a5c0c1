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

package compare

import (
	"bufio"
	"crypto/sha256"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/cypherid/seqtoid/fastaq"
)

// A Verdict grades the comparison of two consensus sequence files.
type Verdict int

const (
	// SameBytes means the files are byte for byte identical.
	SameBytes Verdict = iota
	// SameSequences means the files hold the same sequences in a
	// different order or layout.
	SameSequences
	// Different means the files disagree in content.
	Different
	// Missing means at least one side has no consensus file for
	// the sample.
	Missing
)

func (verdict Verdict) String() string {
	switch verdict {
	case SameBytes:
		return "identical"
	case SameSequences:
		return "same sequences, different layout"
	case Different:
		return "different"
	default:
		return "missing"
	}
}

// Ok reports whether the verdict counts as a pass.
func (verdict Verdict) Ok() bool {
	return verdict == SameBytes || verdict == SameSequences
}

// A ConsensusResult describes the comparison of one sample's
// consensus files between two run directories.
type ConsensusResult struct {
	Sample         string
	Path1, Path2   string
	Verdict        Verdict
	Lines1, Lines2 int
}

// ConsensusFasta compares the consensus sequence files of a sample
// between two run directories. The comparison escalates in three
// stages: a byte digest settles identical files immediately, then
// line counts catch gross differences, and finally an
// order-independent digest of the sorted sequences decides whether
// the same sequences are merely laid out differently.
func ConsensusFasta(dir1, dir2, sample string) (ConsensusResult, error) {
	result := ConsensusResult{Sample: sample}
	var err error
	result.Path1, err = findConsensus(dir1, sample)
	if err != nil {
		return result, err
	}
	result.Path2, err = findConsensus(dir2, sample)
	if err != nil {
		return result, err
	}
	if result.Path1 == "" || result.Path2 == "" {
		result.Verdict = Missing
		return result, nil
	}

	digest1, err := fileDigest(result.Path1)
	if err != nil {
		return result, err
	}
	digest2, err := fileDigest(result.Path2)
	if err != nil {
		return result, err
	}
	if digest1 == digest2 {
		result.Verdict = SameBytes
		return result, nil
	}

	result.Lines1, err = countLines(result.Path1)
	if err != nil {
		return result, err
	}
	result.Lines2, err = countLines(result.Path2)
	if err != nil {
		return result, err
	}
	if result.Lines1 != result.Lines2 {
		result.Verdict = Different
		return result, nil
	}

	seqDigest1, err := sequenceDigest(result.Path1)
	if err != nil {
		return result, err
	}
	seqDigest2, err := sequenceDigest(result.Path2)
	if err != nil {
		return result, err
	}
	if seqDigest1 == seqDigest2 {
		result.Verdict = SameSequences
	} else {
		result.Verdict = Different
	}
	return result, nil
}

// findConsensus locates the consensus file of a sample in a run
// directory. An empty result means no file was found.
func findConsensus(dir, sample string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, sample+"*consensus.fa*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	if len(matches) > 1 {
		log.Printf("Warning: Multiple consensus files for sample %v in %v; using %v.\n", sample, dir, matches[0])
	}
	return matches[0], nil
}

func fileDigest(path string) (digest [sha256.Size]byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return digest, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return digest, err
	}
	copy(digest[:], h.Sum(nil))
	return digest, nil
}

func countLines(path string) (int, error) {
	f, err := fastaq.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return lines, nil
}

// sequenceDigest hashes the sorted sequence set of a FASTA file,
// making the digest independent of record order and line wrapping.
func sequenceDigest(path string) (digest [sha256.Size]byte, err error) {
	sequences, err := fastaq.Sequences(path)
	if err != nil {
		return digest, err
	}
	sort.Strings(sequences)
	h := sha256.New()
	for _, sequence := range sequences {
		h.Write([]byte(sequence))
		h.Write([]byte{'\n'})
	}
	copy(digest[:], h.Sum(nil))
	return digest, nil
}
