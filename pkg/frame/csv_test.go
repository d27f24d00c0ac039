package frame

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = `country, units, price, active, note
Germany,3,1.5,true,a
France,4,,false,
Spain,5,2,TRUE,c
`

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(salesCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"country", "units", "price", "active", "note"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())

	assert.Equal(t, String, tbl.Column("country").DType())
	assert.Equal(t, Int64, tbl.Column("units").DType())
	assert.Equal(t, Float64, tbl.Column("price").DType())
	assert.Equal(t, Bool, tbl.Column("active").DType())
	assert.Equal(t, String, tbl.Column("note").DType())

	assert.Nil(t, tbl.Column("price").At(1))
	assert.Equal(t, 2, tbl.Column("price").NonNull())
	assert.Equal(t, true, tbl.Column("active").At(2))
	assert.Equal(t, 12.0, tbl.Column("units").Sum())
}

func TestReadCSVDigitsAreNotBools(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("flag\n1\n0\n"))
	require.NoError(t, err)
	assert.Equal(t, Int64, tbl.Column("flag").DType())
}

func TestReadCSVEmptyColumn(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n1,\n2,\n"))
	require.NoError(t, err)
	assert.Equal(t, String, tbl.Column("b").DType())
	assert.Equal(t, 0, tbl.Column("b").NonNull())
}

func TestReadCSVEmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0o644))

	tbl, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
