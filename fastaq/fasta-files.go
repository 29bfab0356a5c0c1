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
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// A FastaRecord is a single FASTA entry with its sequence lines
// preserved as they appeared in the input.
type FastaRecord struct {
	// Header is the full header line, including the leading >.
	Header string
	// Lines are the sequence lines belonging to this entry.
	Lines []string
}

// Name returns the first printable word of the header, which by
// convention identifies the sequence.
func (record FastaRecord) Name() string {
	b := record.Header
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	if i >= len(b) {
		return ""
	}
	if j > len(b) {
		j = len(b)
	}
	return b[i:j]
}

// Sequence returns the concatenated sequence of this entry.
func (record FastaRecord) Sequence() string {
	return strings.Join(record.Lines, "")
}

// A FastaScanner reads FASTA entries sequentially. Blank lines are
// ignored.
type FastaScanner struct {
	scanner *bufio.Scanner
	pending string
	started bool
	done    bool
	record  FastaRecord
	err     error
}

// NewFastaScanner creates a FastaScanner for the given stream.
func NewFastaScanner(reader io.Reader) *FastaScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &FastaScanner{scanner: scanner}
}

func (sc *FastaScanner) scanLine() (string, bool) {
	for sc.scanner.Scan() {
		if line := sc.scanner.Text(); line != "" {
			return line, true
		}
	}
	if err := sc.scanner.Err(); err != nil {
		sc.err = err
	}
	return "", false
}

// Next advances to the next entry. It returns false at the end of
// the stream or on an error; Err tells the two apart.
func (sc *FastaScanner) Next() bool {
	if sc.err != nil || sc.done {
		return false
	}
	if !sc.started {
		line, ok := sc.scanLine()
		if !ok {
			sc.done = true
			if sc.err == nil {
				sc.err = fmt.Errorf("empty fasta input")
			}
			return false
		}
		if line[0] != '>' {
			sc.done = true
			sc.err = fmt.Errorf("invalid fasta input: missing first header")
			return false
		}
		sc.pending = line
		sc.started = true
	}
	sc.record = FastaRecord{Header: sc.pending}
	sc.pending = ""
	for {
		line, ok := sc.scanLine()
		if !ok {
			sc.done = true
			return sc.err == nil
		}
		if line[0] == '>' {
			sc.pending = line
			return true
		}
		sc.record.Lines = append(sc.record.Lines, line)
	}
}

// Record returns the entry read by the last call to Next.
func (sc *FastaScanner) Record() FastaRecord {
	return sc.record
}

// Err returns the first error encountered while scanning. It is nil
// after a clean end of stream.
func (sc *FastaScanner) Err() error {
	return sc.err
}

// CountSequences counts the entries in a FASTA file.
func CountSequences(filename string) (int, error) {
	f, err := Open(filename)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	count := 0
	for scanner.Scan() {
		if line := scanner.Bytes(); len(line) > 0 && line[0] == '>' {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// Sequences reads all sequences from a FASTA file, headers dropped.
func Sequences(filename string) ([]string, error) {
	f, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var sequences []string
	sc := NewFastaScanner(f)
	for sc.Next() {
		sequences = append(sequences, sc.Record().Sequence())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cannot read fasta file %v: %w", filename, err)
	}
	return sequences, nil
}

// A Chunk describes one output file of SplitFasta.
type Chunk struct {
	Path    string
	Records int
}

// SplitFasta distributes the entries of a FASTA file over the given
// number of chunk files in outDir, balanced to within one entry.
// The chunks are written uncompressed and re-counted afterwards to
// rule out data loss. Asking for more chunks than there are entries
// reduces the chunk count with a warning.
func SplitFasta(filename, outDir string, chunks int) ([]Chunk, error) {
	if chunks < 1 {
		return nil, fmt.Errorf("invalid number of chunks %v", chunks)
	}
	total, err := CountSequences(filename)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("empty fasta file %v", filename)
	}
	if chunks > total {
		log.Printf("Warning: Only %v sequences in %v; writing %v chunks instead of %v.\n", total, filename, total, chunks)
		chunks = total
	}
	if err := os.MkdirAll(outDir, 0700); err != nil {
		return nil, err
	}
	name := filepath.Base(filename)
	base, ok := TrimExt(name, Fasta)
	if !ok {
		base = trimAnyExt(name)
	}

	f, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	sc := NewFastaScanner(f)

	result := make([]Chunk, 0, chunks)
	for i := 0; i < chunks; i++ {
		records := total / chunks
		if i < total%chunks {
			records++
		}
		path := filepath.Join(outDir, fmt.Sprintf("chunk_%d_%s.fa", i+1, base))
		if err := writeChunk(path, sc, records); err != nil {
			return nil, err
		}
		result = append(result, Chunk{Path: path, Records: records})
	}

	written := 0
	for _, chunk := range result {
		count, err := CountSequences(chunk.Path)
		if err != nil {
			return nil, err
		}
		if count != chunk.Records {
			return nil, fmt.Errorf("chunk %v holds %v sequences, expected %v", chunk.Path, count, chunk.Records)
		}
		written += count
	}
	if written != total {
		return nil, fmt.Errorf("split of %v lost sequences: wrote %v of %v", filename, written, total)
	}
	return result, nil
}

func writeChunk(path string, sc *FastaScanner, records int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	for i := 0; i < records; i++ {
		if !sc.Next() {
			if err := sc.Err(); err != nil {
				return err
			}
			return fmt.Errorf("fasta input ended early while writing %v", path)
		}
		record := sc.Record()
		if _, err := fmt.Fprintln(w, record.Header); err != nil {
			return err
		}
		for _, line := range record.Lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}
