package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordsValidation(t *testing.T) {
	_, err := FromRecords(nil, nil)
	assert.Error(t, err)

	_, err = FromRecords([]string{"a", "a"}, nil)
	assert.Error(t, err, "duplicate column names must be rejected")

	_, err = FromRecords([]string{"a", "b"}, [][]string{{"1"}})
	assert.Error(t, err, "ragged records must be rejected")
}

func TestTableKind(t *testing.T) {
	table, err := FromRecords(
		[]string{"region", "amount", "empty", "mixed"},
		[][]string{
			{"north", "1.5", "", "10"},
			{"south", "2.5", "", "x"},
			{"north", "", "", "30"},
		},
	)
	require.NoError(t, err)

	tests := []struct {
		column string
		want   ColumnKind
	}{
		{"region", KindCategorical},
		{"amount", KindNumeric}, // empty cells do not make a column categorical
		{"empty", KindMissing},
		{"mixed", KindCategorical}, // one non-numeric cell is enough
	}
	for _, tt := range tests {
		kind, err := table.Kind(tt.column)
		require.NoError(t, err)
		assert.Equal(t, tt.want, kind, "column %s", tt.column)
	}

	_, err = table.Kind("nope")
	assert.Error(t, err)
}

func TestPartitionOrderAndOmission(t *testing.T) {
	// Categorical columns at original positions 0 and 2, numeric at 1,
	// all-missing at 3.
	table, err := FromRecords(
		[]string{"source", "amount", "region", "blank"},
		[][]string{
			{"well", "1", "north", ""},
			{"river", "2", "south", ""},
		},
	)
	require.NoError(t, err)

	p := table.Partition()
	assert.Equal(t, []string{"source", "region"}, p.Categorical,
		"categorical list keeps original relative order")
	assert.Equal(t, []string{"amount"}, p.Numeric)
	// The all-missing column belongs to neither list.
	assert.NotContains(t, p.Categorical, "blank")
	assert.NotContains(t, p.Numeric, "blank")
}

func TestFloatsNaNForUnparseable(t *testing.T) {
	table, err := FromRecords(
		[]string{"amount"},
		[][]string{{"1.5"}, {""}, {"2.5"}},
	)
	require.NoError(t, err)

	values, err := table.Floats("amount")
	require.NoError(t, err)
	assert.Equal(t, 1.5, values[0])
	assert.True(t, math.IsNaN(values[1]))
	assert.Equal(t, 2.5, values[2])
}

func TestDrop(t *testing.T) {
	table, err := FromRecords(
		[]string{"id", "region", "amount"},
		[][]string{{"1", "north", "3"}},
	)
	require.NoError(t, err)

	dropped := table.Drop("id", "missing-name")
	assert.Equal(t, []string{"region", "amount"}, dropped.Names())
	assert.Equal(t, 1, dropped.NumRows())
	assert.False(t, dropped.Has("id"))
}
