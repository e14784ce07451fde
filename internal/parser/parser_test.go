package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePasted(t *testing.T) {
	t.Run("comma separated excel paste", func(t *testing.T) {
		cells := ParsePasted("10, 20,30.5")
		require.Len(t, cells, 3)
		assert.Equal(t, ParsedCell{Ref: "r1", Value: 10}, cells[0])
		assert.Equal(t, ParsedCell{Ref: "r2", Value: 20}, cells[1])
		assert.Equal(t, ParsedCell{Ref: "r3", Value: 30.5}, cells[2])
	})

	t.Run("one value per line", func(t *testing.T) {
		cells := ParsePasted("100\n200\n\n300\n")
		require.Len(t, cells, 3)
		assert.Equal(t, 100.0, cells[0].Value)
		assert.Equal(t, 300.0, cells[2].Value)
	})

	t.Run("tab separated range with header", func(t *testing.T) {
		cells := ParsePasted("Amount\t10\t-2.5\ttotal")
		require.Len(t, cells, 2)
		assert.Equal(t, 10.0, cells[0].Value)
		assert.Equal(t, -2.5, cells[1].Value)
	})

	t.Run("currency decoration", func(t *testing.T) {
		cells := ParsePasted("$19.99 (3.50)")
		require.Len(t, cells, 2)
		assert.Equal(t, 19.99, cells[0].Value)
		assert.Equal(t, -3.5, cells[1].Value)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ParsePasted(""))
		assert.Empty(t, ParsePasted("no numbers here"))
	})
}

func TestParseCSV(t *testing.T) {
	t.Run("extracts chosen column and skips header", func(t *testing.T) {
		csv := "invoice,amount\nINV-1,100.50\nINV-2,200\nINV-3,\nINV-4,49.99\n"
		cells, err := ParseCSV(strings.NewReader(csv), 2)
		require.NoError(t, err)
		require.Len(t, cells, 3)
		assert.Equal(t, ParsedCell{Ref: "2:2", Value: 100.5}, cells[0])
		assert.Equal(t, ParsedCell{Ref: "3:2", Value: 200}, cells[1])
		assert.Equal(t, ParsedCell{Ref: "5:2", Value: 49.99}, cells[2])
	})

	t.Run("quoted thousands separators", func(t *testing.T) {
		csv := "amount\n\"1,234.50\"\n"
		cells, err := ParseCSV(strings.NewReader(csv), 1)
		require.NoError(t, err)
		require.Len(t, cells, 1)
		assert.Equal(t, 1234.5, cells[0].Value)
	})

	t.Run("rows shorter than the column are skipped", func(t *testing.T) {
		csv := "a,b\nonly\n1,2\n"
		cells, err := ParseCSV(strings.NewReader(csv), 2)
		require.NoError(t, err)
		require.Len(t, cells, 1)
		assert.Equal(t, 2.0, cells[0].Value)
	})

	t.Run("zero column rejected", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("1\n"), 0)
		assert.Error(t, err)
	})
}
