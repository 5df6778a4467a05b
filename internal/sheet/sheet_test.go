package sheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	t.Run("Should match headers case-insensitively and ignore extra columns", func(t *testing.T) {
		in := " SKU ,note, Url\nA1,first,http://img/a.jpg\n  B2 ,second,  http://img/b.png  \n"
		rows, err := Read(strings.NewReader(in), "input.csv")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, Row{Line: 2, SKU: "A1", URL: "http://img/a.jpg"}, rows[0])
		assert.Equal(t, Row{Line: 3, SKU: "B2", URL: "http://img/b.png"}, rows[1])
	})

	t.Run("Should keep short records with empty fields", func(t *testing.T) {
		in := "sku,url\nA1\n,http://img/x.jpg\n"
		rows, err := Read(strings.NewReader(in), "input.csv")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "", rows[0].URL)
		assert.Equal(t, "", rows[1].SKU)
	})

	t.Run("Should return a schema error when url is missing", func(t *testing.T) {
		_, err := Read(strings.NewReader("sku,link\nA1,http://x\n"), "input.csv")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingColumns))

		var se *SchemaError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, []string{"url"}, se.Missing)
	})

	t.Run("Should fail on an empty file", func(t *testing.T) {
		_, err := Read(strings.NewReader(""), "input.csv")
		assert.Error(t, err)
	})
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Url", " Sku "}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"http://img/a.jpg", "A1"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"nan", 12345}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := Read(&buf, "products.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Line: 2, SKU: "A1", URL: "http://img/a.jpg"}, rows[0])
	assert.Equal(t, "12345", rows[1].SKU)
	assert.False(t, rows[1].Valid())
}

func TestRowValid(t *testing.T) {
	cases := []struct {
		name string
		row  Row
		want bool
	}{
		{"complete", Row{SKU: "A", URL: "http://x"}, true},
		{"empty sku", Row{SKU: "", URL: "http://x"}, false},
		{"empty url", Row{SKU: "A", URL: ""}, false},
		{"nan url", Row{SKU: "A", URL: "nan"}, false},
		{"NaN url", Row{SKU: "A", URL: "NaN"}, false},
		{"nan sku is kept", Row{SKU: "nan", URL: "http://x"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.row.Valid())
		})
	}
}
