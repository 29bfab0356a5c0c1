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
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCategorize(t *testing.T) {
	if Categorize(0) != Identical {
		t.Error("categorize 1 failed")
	}
	if Categorize(1e-9) != Identical {
		t.Error("categorize 2 failed")
	}
	if Categorize(1e-4) != Equivalent {
		t.Error("categorize 3 failed")
	}
	if Categorize(0.005) != Equivalent {
		t.Error("categorize 4 failed")
	}
	if Categorize(0.01) != Warning {
		t.Error("categorize 5 failed")
	}
	if Categorize(0.05) != Warning {
		t.Error("categorize 6 failed")
	}
	if Categorize(0.1) != Significant {
		t.Error("categorize 7 failed")
	}
	if Categorize(math.Inf(1)) != Significant {
		t.Error("categorize 8 failed")
	}
	if Categorize(math.NaN()) != ContainsNaN {
		t.Error("categorize 9 failed")
	}
}

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func columnResult(result TableResult, name string) (ColumnResult, bool) {
	for _, column := range result.Columns {
		if column.Column == name {
			return column, true
		}
	}
	return ColumnResult{}, false
}

func TestTable(t *testing.T) {
	dir := t.TempDir()
	path1 := writeTable(t, dir, "run1.csv",
		"sample_name,coverage,caller\ns2,10.0,ivar\ns1,20.0,ivar\n")
	path2 := writeTable(t, dir, "run2.csv",
		"sample_name,coverage,caller\ns1,20.004,ivar\ns2,10.0,ivar\n")
	result, err := Table(path1, path2)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Keyed || result.Rows1 != 2 || result.Rows2 != 2 {
		t.Error("table 1 failed")
	}
	if len(result.MissingColumns) != 0 || len(result.ExtraColumns) != 0 {
		t.Error("table 2 failed")
	}
	coverage, ok := columnResult(result, "coverage")
	if !ok || coverage.Category != Equivalent {
		t.Error("table 3 failed")
	}
	caller, ok := columnResult(result, "caller")
	if !ok || caller.Category != Identical {
		t.Error("table 4 failed")
	}
	key, ok := columnResult(result, "sample_name")
	if !ok || key.Category != Identical {
		t.Error("table 5 failed")
	}
	if result.Worst() != Equivalent {
		t.Error("table 6 failed")
	}
}

func TestTableSignificant(t *testing.T) {
	dir := t.TempDir()
	path1 := writeTable(t, dir, "run1.csv", "sample_name,coverage\ns1,20.0\n")
	path2 := writeTable(t, dir, "run2.csv", "sample_name,coverage\ns1,20.5\n")
	result, err := Table(path1, path2)
	if err != nil {
		t.Fatal(err)
	}
	coverage, _ := columnResult(result, "coverage")
	if coverage.Category != Significant || coverage.MaxDiff != 0.5 {
		t.Error("significant 1 failed")
	}
	if result.Worst() != Significant {
		t.Error("significant 2 failed")
	}
}

func TestTableText(t *testing.T) {
	dir := t.TempDir()
	path1 := writeTable(t, dir, "run1.csv", "sample_name,caller\ns1,ivar\n")
	path2 := writeTable(t, dir, "run2.csv", "sample_name,caller\ns1,bcftools\n")
	result, err := Table(path1, path2)
	if err != nil {
		t.Fatal(err)
	}
	caller, _ := columnResult(result, "caller")
	if caller.Category != Significant || !math.IsInf(caller.MaxDiff, 1) {
		t.Error("text compare failed")
	}
}

func TestTableNaN(t *testing.T) {
	dir := t.TempDir()
	path1 := writeTable(t, dir, "run1.csv", "sample_name,depth\ns1,NaN\n")
	path2 := writeTable(t, dir, "run2.csv", "sample_name,depth\ns1,12.0\n")
	result, err := Table(path1, path2)
	if err != nil {
		t.Fatal(err)
	}
	depth, _ := columnResult(result, "depth")
	if depth.Category != ContainsNaN {
		t.Error("NaN compare failed")
	}
	if result.Worst() != ContainsNaN {
		t.Error("NaN worst failed")
	}
}

func TestTableShape(t *testing.T) {
	dir := t.TempDir()
	path1 := writeTable(t, dir, "run1.csv", "sample_name,coverage,old\ns1,20.0,x\ns2,10.0,y\n")
	path2 := writeTable(t, dir, "run2.csv", "sample_name,coverage,new\ns1,20.0,x\n")
	result, err := Table(path1, path2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result.MissingColumns, []string{"old"}) {
		t.Error("shape 1 failed")
	}
	if !reflect.DeepEqual(result.ExtraColumns, []string{"new"}) {
		t.Error("shape 2 failed")
	}
	// Diverging row counts skip the value comparison altogether.
	if len(result.Columns) != 0 {
		t.Error("shape 3 failed")
	}
	if result.Worst() != Mismatched {
		t.Error("shape 4 failed")
	}
}

func TestTableTabSeparated(t *testing.T) {
	dir := t.TempDir()
	path1 := writeTable(t, dir, "run1.tsv", "sample_name\tcoverage\ns1\t20.0\n")
	path2 := writeTable(t, dir, "run2.tsv", "sample_name\tcoverage\ns1\t20.0\n")
	result, err := Table(path1, path2)
	if err != nil {
		t.Fatal(err)
	}
	if result.Worst() != Identical {
		t.Error("tsv compare failed")
	}
}

func TestTableErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "run.csv", "sample_name\ns1\n")
	if _, err := Table(path, filepath.Join(dir, "gone.csv")); err == nil {
		t.Error("table error 1 failed")
	}
	empty := writeTable(t, dir, "empty.csv", "")
	if _, err := Table(empty, path); err == nil {
		t.Error("table error 2 failed")
	}
}

func TestSampleCoverage(t *testing.T) {
	missing, extra := SampleCoverage([]string{"s1", "s2", "s3"}, []string{"s3", "s1"})
	if !reflect.DeepEqual(missing, []string{"s2"}) || extra != nil {
		t.Error("coverage 1 failed")
	}
	missing, extra = SampleCoverage([]string{"s1"}, []string{"s1", "s9", "s0"})
	if missing != nil || !reflect.DeepEqual(extra, []string{"s0", "s9"}) {
		t.Error("coverage 2 failed")
	}
	missing, extra = SampleCoverage(nil, nil)
	if missing != nil || extra != nil {
		t.Error("coverage 3 failed")
	}
}

func TestSamples(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "metadata.csv", "run,sample_name\nr1,s1\nr1,s2\n")
	samples, err := Samples(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(samples, []string{"s1", "s2"}) {
		t.Error("samples 1 failed")
	}
	path = writeTable(t, dir, "bare.csv", "run,id\nr1,s1\n")
	if _, err := Samples(path); err == nil {
		t.Error("samples 2 failed")
	}
}
