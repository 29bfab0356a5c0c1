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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFastaScanner(t *testing.T) {
	input := ">seq1 first entry\nACGT\nTTTT\n\n>seq2\nGG\n"
	sc := NewFastaScanner(strings.NewReader(input))
	if !sc.Next() {
		t.Fatal("first entry not read")
	}
	record := sc.Record()
	if record.Header != ">seq1 first entry" || record.Name() != "seq1" || record.Sequence() != "ACGTTTTT" {
		t.Error("fasta scanner 1 failed")
	}
	if !sc.Next() {
		t.Fatal("second entry not read")
	}
	record = sc.Record()
	if record.Name() != "seq2" || record.Sequence() != "GG" {
		t.Error("fasta scanner 2 failed")
	}
	if sc.Next() {
		t.Error("fasta scanner 3 failed")
	}
	if sc.Err() != nil {
		t.Error("fasta scanner 4 failed")
	}
}

func TestFastaScannerErrors(t *testing.T) {
	sc := NewFastaScanner(strings.NewReader(""))
	if sc.Next() || sc.Err() == nil {
		t.Error("fasta error 1 failed")
	}
	sc = NewFastaScanner(strings.NewReader("ACGT\n>late\nGG\n"))
	if sc.Next() || sc.Err() == nil {
		t.Error("fasta error 2 failed")
	}
}

func TestFastaRecordName(t *testing.T) {
	if name := (FastaRecord{Header: ">  spaced header"}).Name(); name != "spaced" {
		t.Error("fasta name 1 failed")
	}
	if name := (FastaRecord{Header: ">"}).Name(); name != "" {
		t.Error("fasta name 2 failed")
	}
	if name := (FastaRecord{Header: ">chr1"}).Name(); name != "chr1" {
		t.Error("fasta name 3 failed")
	}
}

func makeFasta(entries int) string {
	var builder strings.Builder
	for i := 1; i <= entries; i++ {
		fmt.Fprintf(&builder, ">seq%d\n", i)
		fmt.Fprintf(&builder, "ACGTAC\nGTACGT\n")
	}
	return builder.String()
}

func TestCountSequences(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "ref.fasta")
	if err := os.WriteFile(plain, []byte(makeFasta(3)), 0600); err != nil {
		t.Fatal(err)
	}
	gzipped := filepath.Join(dir, "ref.fasta.gz")
	writeGzipped(t, gzipped, makeFasta(5))

	if count, err := CountSequences(plain); err != nil || count != 3 {
		t.Error("count 1 failed")
	}
	if count, err := CountSequences(gzipped); err != nil || count != 5 {
		t.Error("count 2 failed")
	}
}

func TestSequences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.fa")
	if err := os.WriteFile(path, []byte(">a\nAC\nGT\n>b\nTTTT\n"), 0600); err != nil {
		t.Fatal(err)
	}
	sequences, err := Sequences(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sequences) != 2 || sequences[0] != "ACGT" || sequences[1] != "TTTT" {
		t.Error("sequences failed")
	}
}

func TestSplitFasta(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ref.fasta")
	if err := os.WriteFile(input, []byte(makeFasta(7)), 0600); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "chunks")
	chunks, err := SplitFasta(input, outDir, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("wrote %v chunks, expected 3", len(chunks))
	}
	for i, records := range []int{3, 2, 2} {
		if chunks[i].Records != records {
			t.Errorf("chunk %v holds %v records, expected %v", i+1, chunks[i].Records, records)
		}
		expected := filepath.Join(outDir, fmt.Sprintf("chunk_%d_ref.fa", i+1))
		if chunks[i].Path != expected {
			t.Errorf("chunk %v written to %v, expected %v", i+1, chunks[i].Path, expected)
		}
		if count, err := CountSequences(chunks[i].Path); err != nil || count != records {
			t.Errorf("chunk %v verification failed", i+1)
		}
	}
	sequences, err := Sequences(chunks[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sequences) != 3 || sequences[0] != "ACGTACGTACGT" {
		t.Error("chunk content failed")
	}
}

func TestSplitFastaFewSequences(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tiny.fa")
	if err := os.WriteFile(input, []byte(makeFasta(2)), 0600); err != nil {
		t.Fatal(err)
	}
	chunks, err := SplitFasta(input, filepath.Join(dir, "chunks"), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 || chunks[0].Records != 1 || chunks[1].Records != 1 {
		t.Error("few sequences failed")
	}
}

func TestSplitFastaErrors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ref.fa")
	if err := os.WriteFile(input, []byte(makeFasta(2)), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := SplitFasta(input, filepath.Join(dir, "chunks"), 0); err == nil {
		t.Error("split error 1 failed")
	}
	empty := filepath.Join(dir, "empty.fa")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := SplitFasta(empty, filepath.Join(dir, "chunks"), 2); err == nil {
		t.Error("split error 2 failed")
	}
	if _, err := SplitFasta(filepath.Join(dir, "gone.fa"), filepath.Join(dir, "chunks"), 2); err == nil {
		t.Error("split error 3 failed")
	}
}
