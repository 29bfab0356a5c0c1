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
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolveScan(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "SampleX_R1.fastq.gz", "SampleX_R2.fastq.gz", "SampleY.fastq.gz", "notes.txt")
	samples, err := Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("resolved %v samples, expected 2", len(samples))
	}
	x := samples["SampleX"]
	if x.R1 != filepath.Join(dir, "SampleX_R1.fastq.gz") || x.R2 != filepath.Join(dir, "SampleX_R2.fastq.gz") {
		t.Error("scan 1 failed")
	}
	if !x.Paired() {
		t.Error("scan 2 failed")
	}
	y := samples["SampleY"]
	if y.R1 != filepath.Join(dir, "SampleY.fastq.gz") || y.R2 != "" || y.Paired() {
		t.Error("scan 3 failed")
	}
}

func TestResolveScanAllTags(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"a_R1.fq", "a_R2.fq",
		"b_read1.fq", "b_read2.fq",
		"c-PE1.fq", "c-PE2.fq",
		"d.fwd.fq", "d.rev.fq",
		"e@F.fq", "e@R.fq",
		"f#1.fq", "f#2.fq",
	)
	samples, err := Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 6 {
		t.Fatalf("resolved %v samples, expected 6", len(samples))
	}
	for _, sample := range []string{"a", "b", "c", "d", "e", "f"} {
		pair, ok := samples[sample]
		if !ok || !pair.Paired() {
			t.Errorf("sample %v not resolved as a pair", sample)
		}
	}
}

func TestResolveScanMissingMate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "S_R1.fq")
	samples, err := Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Fatalf("resolved %v samples, expected 1", len(samples))
	}
	pair := samples["S"]
	if pair.R1 != filepath.Join(dir, "S_R1.fq") || pair.Paired() {
		t.Error("missing mate failed")
	}
}

func TestResolveScanLonelyReverse(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Lonely_R2.fq")
	samples, err := Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 0 {
		t.Errorf("resolved %v samples, expected none", len(samples))
	}
}

func TestResolveScanRightmostTag(t *testing.T) {
	// The rightmost token decides, so S_R2_R1 is a forward read of
	// sample S_R2, not a reverse read.
	dir := t.TempDir()
	touch(t, dir, "S_R2_R1.fq", "S_R2_R2.fq")
	samples, err := Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Fatalf("resolved %v samples, expected 1", len(samples))
	}
	pair := samples["S_R2"]
	if pair.R1 != filepath.Join(dir, "S_R2_R1.fq") || pair.R2 != filepath.Join(dir, "S_R2_R2.fq") {
		t.Error("rightmost tag failed")
	}
	// The mirror image ends in R2 and is dropped outright.
	dir = t.TempDir()
	touch(t, dir, "S_R1_R2.fq")
	samples, err = Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 0 {
		t.Errorf("resolved %v samples, expected none", len(samples))
	}
}

func TestResolveScanCollision(t *testing.T) {
	// S_1 and S_R1 both reduce to sample S; the first one processed
	// keeps the name, the later one is ignored with a warning.
	dir := t.TempDir()
	touch(t, dir, "S_1.fq", "S_R1.fq", "S_R2.fq")
	samples, err := Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Fatalf("resolved %v samples, expected 1", len(samples))
	}
	pair := samples["S"]
	if pair.R1 != filepath.Join(dir, "S_1.fq") || pair.Paired() {
		t.Error("collision failed")
	}
}

func TestResolveScanFasta(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "asm_R1.fa", "asm_R2.fa", "reads.fastq")
	samples, err := Resolve(dir, "", "", Fasta)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Fatalf("resolved %v samples, expected 1", len(samples))
	}
	pair := samples["asm"]
	if pair.R1 != filepath.Join(dir, "asm_R1.fa") || pair.R2 != filepath.Join(dir, "asm_R2.fa") {
		t.Error("fasta scan failed")
	}
}

func TestResolveScanIdempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "SampleX_R1.fastq.gz", "SampleX_R2.fastq.gz", "SampleY.fastq.gz", "z_1.fq", "z_2.fq")
	first, err := Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Resolve(dir, "", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("idempotence failed")
	}
}

func TestResolveScanErrors(t *testing.T) {
	samples, err := Resolve(filepath.Join(t.TempDir(), "gone"), "", "", Fastq)
	if err == nil || len(samples) != 0 {
		t.Error("scan error 1 failed")
	}
	dir := t.TempDir()
	touch(t, dir, "plain.fq")
	samples, err = Resolve(filepath.Join(dir, "plain.fq"), "", "", Fastq)
	if err == nil || len(samples) != 0 {
		t.Error("scan error 2 failed")
	}
	dir = t.TempDir()
	touch(t, dir, "notes.txt")
	samples, err = Resolve(dir, "", "", Fastq)
	if err == nil || len(samples) != 0 {
		t.Error("scan error 3 failed")
	}
	samples, err = Resolve(t.TempDir(), "", "second.fq", Fastq)
	if err == nil || len(samples) != 0 {
		t.Error("scan error 4 failed")
	}
}

func TestResolveExplicit(t *testing.T) {
	// Explicit file names bypass the tag vocabulary entirely.
	dir := t.TempDir()
	touch(t, dir, "sample_R1_funny.fq", "totally_different.fq")
	samples, err := Resolve(dir, "sample_R1_funny.fq", "totally_different.fq", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Fatalf("resolved %v samples, expected 1", len(samples))
	}
	pair := samples["sample_R1_funny"]
	if pair.R1 != filepath.Join(dir, "sample_R1_funny.fq") || pair.R2 != filepath.Join(dir, "totally_different.fq") {
		t.Error("explicit 1 failed")
	}

	samples, err = Resolve(dir, "totally_different.fq", "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	pair = samples["totally_different"]
	if pair.R1 != filepath.Join(dir, "totally_different.fq") || pair.Paired() {
		t.Error("explicit 2 failed")
	}

	abs := filepath.Join(dir, "sample_R1_funny.fq")
	samples, err = Resolve(t.TempDir(), abs, "", Fastq)
	if err != nil {
		t.Fatal(err)
	}
	if samples["sample_R1_funny"].R1 != abs {
		t.Error("explicit 3 failed")
	}
}

func TestResolveExplicitErrors(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "present.fq")
	samples, err := Resolve(dir, "absent.fq", "", Fastq)
	if err == nil || len(samples) != 0 {
		t.Error("explicit error 1 failed")
	}
	samples, err = Resolve(dir, "present.fq", "absent.fq", Fastq)
	if err == nil || len(samples) != 0 {
		t.Error("explicit error 2 failed")
	}
}
