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

// Package compare checks pipeline outputs against a reference run,
// with numeric tolerances that separate floating point noise from
// real differences.
package compare

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// A Category grades how much two compared values differ. The
// categories are ordered from best to worst.
type Category int

const (
	// Identical means the difference is indistinguishable from
	// floating point noise.
	Identical Category = iota
	// Equivalent means the difference is within the accepted
	// tolerance.
	Equivalent
	// Warning means the difference is notable but below the
	// significance threshold.
	Warning
	// Significant means the difference exceeds all tolerances.
	Significant
	// ContainsNaN means a compared column holds NaN values, so no
	// difference could be computed.
	ContainsNaN
	// Mismatched means the compared tables disagree in shape, so
	// their values were not compared at all.
	Mismatched
)

func (category Category) String() string {
	switch category {
	case Identical:
		return "identical"
	case Equivalent:
		return "equivalent"
	case Warning:
		return "warning"
	case Significant:
		return "significant"
	case ContainsNaN:
		return "contains NaN"
	default:
		return "mismatched"
	}
}

// Tolerance thresholds on the maximum absolute difference of a
// column.
const (
	IdenticalTolerance  = 1e-8
	EquivalentTolerance = 0.005
	WarningTolerance    = 0.05
)

// Categorize grades a maximum absolute difference.
func Categorize(maxDiff float64) Category {
	switch {
	case math.IsNaN(maxDiff):
		return ContainsNaN
	case maxDiff <= IdenticalTolerance:
		return Identical
	case maxDiff <= EquivalentTolerance:
		return Equivalent
	case maxDiff <= WarningTolerance:
		return Warning
	default:
		return Significant
	}
}

// KeyColumn is the column used to align table rows before
// comparing, when both tables carry it.
const KeyColumn = "sample_name"

// A ColumnResult grades one shared column of two compared tables.
// For numeric columns MaxDiff is the maximum absolute difference;
// for text columns it is 0 when equal and +Inf when not.
type ColumnResult struct {
	Column   string
	MaxDiff  float64
	Category Category
}

// A TableResult describes the comparison of two delimited tables.
type TableResult struct {
	Path1, Path2   string
	Rows1, Rows2   int
	Columns        []ColumnResult
	MissingColumns []string // present in the first table only
	ExtraColumns   []string // present in the second table only
	Keyed          bool     // rows were aligned by KeyColumn
}

// Worst returns the worst category in the result. Shape
// disagreements between the tables rank as Mismatched.
func (result TableResult) Worst() Category {
	worst := Identical
	if result.Rows1 != result.Rows2 || len(result.MissingColumns) > 0 || len(result.ExtraColumns) > 0 {
		worst = Mismatched
	}
	for _, column := range result.Columns {
		if column.Category > worst {
			worst = column.Category
		}
	}
	return worst
}

// Table compares two delimited tables column by column. Files with
// a .tsv or .txt extension are read as tab separated, everything
// else as comma separated. When both tables carry the KeyColumn,
// rows are aligned by sorting on it; otherwise they are compared
// positionally. Columns shared by both tables are compared with the
// numeric tolerances when they parse as numbers throughout, and for
// exact equality otherwise. A difference in row counts skips the
// value comparison and grades the result Mismatched.
func Table(path1, path2 string) (TableResult, error) {
	header1, rows1, err := readTable(path1)
	if err != nil {
		return TableResult{}, err
	}
	header2, rows2, err := readTable(path2)
	if err != nil {
		return TableResult{}, err
	}
	result := TableResult{
		Path1: path1,
		Path2: path2,
		Rows1: len(rows1),
		Rows2: len(rows2),
	}

	columns2 := make(map[string]int)
	for i, name := range header2 {
		columns2[name] = i
	}
	columns1 := make(map[string]int)
	for i, name := range header1 {
		columns1[name] = i
		if _, ok := columns2[name]; !ok {
			result.MissingColumns = append(result.MissingColumns, name)
		}
	}
	for _, name := range header2 {
		if _, ok := columns1[name]; !ok {
			result.ExtraColumns = append(result.ExtraColumns, name)
		}
	}

	if key1, ok := columns1[KeyColumn]; ok {
		if key2, ok := columns2[KeyColumn]; ok {
			sortByColumn(rows1, key1)
			sortByColumn(rows2, key2)
			result.Keyed = true
		}
	}

	if result.Rows1 != result.Rows2 {
		return result, nil
	}
	for _, name := range header1 {
		i2, ok := columns2[name]
		if !ok {
			continue
		}
		values1 := column(rows1, columns1[name])
		values2 := column(rows2, i2)
		result.Columns = append(result.Columns, compareColumn(name, values1, values2))
	}
	return result, nil
}

func compareColumn(name string, values1, values2 []string) ColumnResult {
	floats1, ok1 := parseColumn(values1)
	floats2, ok2 := parseColumn(values2)
	if ok1 && ok2 {
		if hasNaN(floats1) || hasNaN(floats2) {
			return ColumnResult{Column: name, MaxDiff: math.NaN(), Category: ContainsNaN}
		}
		maxDiff := 0.0
		if len(floats1) > 0 {
			maxDiff = floats.Distance(floats1, floats2, math.Inf(1))
		}
		return ColumnResult{Column: name, MaxDiff: maxDiff, Category: Categorize(maxDiff)}
	}
	for i := range values1 {
		if values1[i] != values2[i] {
			return ColumnResult{Column: name, MaxDiff: math.Inf(1), Category: Significant}
		}
	}
	return ColumnResult{Column: name, MaxDiff: 0, Category: Identical}
}

func parseColumn(values []string) ([]float64, bool) {
	parsed := make([]float64, len(values))
	for i, value := range values {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, false
		}
		parsed[i] = f
	}
	return parsed, true
}

func hasNaN(values []float64) bool {
	for _, value := range values {
		if math.IsNaN(value) {
			return true
		}
	}
	return false
}

func column(rows [][]string, index int) []string {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row[index]
	}
	return values
}

func sortByColumn(rows [][]string, index int) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][index] < rows[j][index]
	})
}

func readTable(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	reader := csv.NewReader(f)
	switch filepath.Ext(path) {
	case ".tsv", ".txt":
		reader.Comma = '\t'
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read table %v: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("table %v is empty", path)
	}
	return records[0], records[1:], nil
}

// SampleCoverage checks a found sample list against an expected
// one. Both results are sorted.
func SampleCoverage(expected, found []string) (missing, extra []string) {
	expectedSet := make(map[string]bool, len(expected))
	for _, sample := range expected {
		expectedSet[sample] = true
	}
	foundSet := make(map[string]bool, len(found))
	for _, sample := range found {
		foundSet[sample] = true
		if !expectedSet[sample] {
			extra = append(extra, sample)
		}
	}
	for _, sample := range expected {
		if !foundSet[sample] {
			missing = append(missing, sample)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return missing, extra
}

// Samples reads the KeyColumn entries of a table.
func Samples(path string) ([]string, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	for i, name := range header {
		if name == KeyColumn {
			return column(rows, i), nil
		}
	}
	return nil, fmt.Errorf("table %v has no %v column", path, KeyColumn)
}
