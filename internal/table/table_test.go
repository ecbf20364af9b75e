package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellString(t *testing.T) {
	assert.Equal(t, "abc", TextCell("abc").String())
	assert.Equal(t, "12.5", NumberCell(12.5).String())
	assert.Equal(t, "1000000", NumberCell(1e6).String())
	assert.Equal(t, "", NullCell().String())
}

func TestCellIsNull(t *testing.T) {
	assert.True(t, NullCell().IsNull())
	assert.True(t, TextCell("").IsNull())
	assert.True(t, TextCell("   ").IsNull())
	assert.False(t, TextCell("x").IsNull())
	assert.False(t, NumberCell(0).IsNull())
}

func TestAppendRowPadsShortRows(t *testing.T) {
	tbl := New("a", "b", "c")
	tbl.AppendRow([]Cell{TextCell("x")})
	require.Equal(t, 1, tbl.NumRows())
	assert.True(t, tbl.Data[0][1].IsNull())
	assert.True(t, tbl.Data[0][2].IsNull())
}

func TestAppendConstColumn(t *testing.T) {
	tbl := New("a")
	tbl.AppendRow([]Cell{TextCell("x")})
	tbl.AppendRow([]Cell{TextCell("y")})
	tbl.AppendConstColumn("ano", NumberCell(2024))

	assert.Equal(t, []string{"a", "ano"}, tbl.Headers())
	assert.True(t, tbl.Columns[1].Numeric)
	for _, row := range tbl.Data {
		assert.Equal(t, "2024", row[1].String())
	}
}

func TestEncodeDecodeRoundTripIsByteIdentical(t *testing.T) {
	tbl := New("Código", "Descrição", "Pago")
	tbl.Columns[2].Numeric = true
	tbl.AppendRow([]Cell{TextCell("01"), TextCell("Saúde"), NumberCell(1234.56)})
	tbl.AppendRow([]Cell{TextCell("02"), TextCell("Educação"), NullCell()})

	var first bytes.Buffer
	require.NoError(t, tbl.Encode(&first))

	decoded, err := Decode(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, decoded.Encode(&second))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestConcatAlignsColumnsByName(t *testing.T) {
	a := New("x", "y")
	a.AppendRow([]Cell{TextCell("1"), TextCell("2")})

	b := New("y", "z")
	b.AppendRow([]Cell{TextCell("3"), TextCell("4")})

	out := Concat(a, b)
	assert.Equal(t, []string{"x", "y", "z"}, out.Headers())
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "2", out.Data[0][1].String())
	assert.True(t, out.Data[0][2].IsNull())
	assert.True(t, out.Data[1][0].IsNull())
	assert.Equal(t, "3", out.Data[1][1].String())
	assert.Equal(t, "4", out.Data[1][2].String())
}

func TestConcatSkipsEmptyTables(t *testing.T) {
	a := New("x")
	a.AppendRow([]Cell{TextCell("1")})

	out := Concat(Empty(), a, nil)
	assert.Equal(t, 1, out.NumRows())

	assert.True(t, Concat().IsEmpty())
}

func TestRecordsProjection(t *testing.T) {
	tbl := New("a", "b")
	tbl.AppendRow([]Cell{NumberCell(7), NullCell()})
	assert.Equal(t, [][]string{{"7", ""}}, tbl.Records())
}
