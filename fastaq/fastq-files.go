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
	"os"

	"github.com/klauspost/compress/gzip"
)

// maxLineLength bounds a single sequence line; long-read data can
// put a whole read on one line.
const maxLineLength = 64 * 1024 * 1024

var gzipMagic = [2]byte{0x1f, 0x8b}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() (err error) {
	for _, c := range rc.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens a read file, transparently decompressing gzip content.
// Compression is detected from the leading magic bytes rather than
// the file name.
func Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	reader := bufio.NewReader(f)
	magic, err := reader.Peek(2)
	if err != nil && err != io.EOF {
		_ = f.Close()
		return nil, err
	}
	if len(magic) == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cannot decompress %v: %w", filename, err)
		}
		return &readCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	}
	return &readCloser{Reader: reader, closers: []io.Closer{f}}, nil
}

// Gzipped reports whether a file starts with the gzip magic bytes.
func Gzipped(filename string) (bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()
	var magic [2]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return magic == gzipMagic, nil
}

// A Record is a single FASTQ read.
type Record struct {
	// Name is the header line without the leading @.
	Name string
	// Sequence holds the read bases.
	Sequence string
	// Quality holds the per-base quality string, same length as
	// Sequence.
	Quality string
}

// A FastqScanner reads four-line FASTQ records sequentially.
//
//	sc := fastaq.NewFastqScanner(reader)
//	for sc.Next() {
//		record := sc.Record()
//		...
//	}
//	if err := sc.Err(); err != nil { ... }
type FastqScanner struct {
	scanner *bufio.Scanner
	record  Record
	err     error
	line    int
}

// NewFastqScanner creates a FastqScanner for the given stream.
func NewFastqScanner(reader io.Reader) *FastqScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &FastqScanner{scanner: scanner}
}

func (sc *FastqScanner) scanLine() (string, bool) {
	if !sc.scanner.Scan() {
		if err := sc.scanner.Err(); err != nil {
			sc.err = err
		}
		return "", false
	}
	sc.line++
	return sc.scanner.Text(), true
}

// Next advances to the next record. It returns false at the end of
// the stream or on a malformed record; Err tells the two apart.
func (sc *FastqScanner) Next() bool {
	if sc.err != nil {
		return false
	}
	header, ok := sc.scanLine()
	if !ok || header == "" {
		return false
	}
	if header[0] != '@' {
		sc.err = fmt.Errorf("invalid fastq record at line %v: header %v does not start with @", sc.line, header)
		return false
	}
	sequence, ok := sc.scanLine()
	if !ok {
		sc.truncated()
		return false
	}
	plus, ok := sc.scanLine()
	if !ok {
		sc.truncated()
		return false
	}
	if len(plus) == 0 || plus[0] != '+' {
		sc.err = fmt.Errorf("invalid fastq record at line %v: separator line does not start with +", sc.line)
		return false
	}
	quality, ok := sc.scanLine()
	if !ok {
		sc.truncated()
		return false
	}
	if len(quality) != len(sequence) {
		sc.err = fmt.Errorf("invalid fastq record at line %v: sequence and quality lengths differ", sc.line)
		return false
	}
	sc.record = Record{Name: header[1:], Sequence: sequence, Quality: quality}
	return true
}

func (sc *FastqScanner) truncated() {
	if sc.err == nil {
		sc.err = fmt.Errorf("truncated fastq record at line %v", sc.line)
	}
}

// Record returns the record read by the last call to Next.
func (sc *FastqScanner) Record() Record {
	return sc.record
}

// Err returns the first error encountered while scanning. It is nil
// after a clean end of stream.
func (sc *FastqScanner) Err() error {
	return sc.err
}
