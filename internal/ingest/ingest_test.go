package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/review-insights/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Avis")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			cell := row.AddCell()
			cell.SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "reviews.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"avis.csv", FormatCSV},
		{"AVIS.CSV", FormatCSV},
		{"export.xlsx", FormatXLSX},
		{"dump.json", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectFormat("notes.pdf")
	assert.Error(t, err)
}

func TestStreamCSV_SniffSemicolon(t *testing.T) {
	input := "texte;note\nTrès bon, vraiment;5\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: Sniff})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Très bon, vraiment", "5"}, rows[1])
}

func TestStreamCSV_DefaultComma(t *testing.T) {
	input := "a,b\n1,2\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}

func TestReadFile_CSV(t *testing.T) {
	path := writeFile(t, "avis.csv",
		"\ufeffID;Avis;Note;Date;Thèmes\n"+
			"r1;Service très lent;2;2026-03-01;\"Attente; Service\"\n"+
			";;;;\n"+
			"r2;;QUATRE;;\n"+
			"r3;Parfait;4,5;;\n")

	reviews, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, reviews, 3)

	assert.Equal(t, "r1", reviews[0].ID)
	assert.Equal(t, "Service très lent", reviews[0].Text)
	require.NotNil(t, reviews[0].Rating.Number)
	assert.InDelta(t, 2.0, *reviews[0].Rating.Number, 1e-9)
	assert.Equal(t, "2026-03-01", reviews[0].PublishedAt)
	assert.Equal(t, []model.ReviewTheme{{Name: "Attente"}, {Name: "Service"}}, reviews[0].Themes)

	require.NotNil(t, reviews[1].Rating.Text)
	assert.Equal(t, "QUATRE", *reviews[1].Rating.Text)

	require.NotNil(t, reviews[2].Rating.Number)
	assert.InDelta(t, 4.5, *reviews[2].Rating.Number, 1e-9)
}

func TestReadFile_CSVMissingColumns(t *testing.T) {
	path := writeFile(t, "avis.csv", "name,city\nA,Paris\n")
	_, err := ReadFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a text nor a rating column")
}

func TestReadFile_CSVEmpty(t *testing.T) {
	path := writeFile(t, "avis.csv", "")
	_, err := ReadFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestReadFile_XLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Comment", "Stars", "Published_At", "Themes"},
		{"Pizza excellente", "5", "2026-01-10", "Cuisine;Qualité"},
		{"", "", "", ""},
		{"Trop cher", "2", "2026-02-11", ""},
	})

	reviews, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Pizza excellente", reviews[0].Text)
	assert.Equal(t, []model.ReviewTheme{{Name: "Cuisine"}, {Name: "Qualité"}}, reviews[0].Themes)
	assert.Equal(t, "Trop cher", reviews[1].Text)
	assert.Nil(t, reviews[1].Themes)
}

func TestStreamXLSX_SheetSelection(t *testing.T) {
	path := createTestXLSX(t, [][]string{{"text"}, {"ok"}})

	rowCh, errCh := StreamXLSX(context.Background(), path, XLSXOptions{SheetName: "Avis"})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rowCh, errCh = StreamXLSX(context.Background(), path, XLSXOptions{SheetName: "Missing"})
	_, err = collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	rowCh, errCh = StreamXLSX(context.Background(), path, XLSXOptions{SheetIndex: 3})
	_, err = collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadFile_JSON(t *testing.T) {
	path := writeFile(t, "avis.json", `[
		{"id": "a", "text": "Très bon accueil", "rating": 5, "published_at": "2026-05-01"},
		{"text": "", "rating": null},
		{"text": "Moyen", "rating": "THREE", "themes": [{"name": "Service"}]}
	]`)

	reviews, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "a", reviews[0].ID)
	require.NotNil(t, reviews[1].Rating.Text)
	assert.Equal(t, "THREE", *reviews[1].Rating.Text)
	assert.Equal(t, []model.ReviewTheme{{Name: "Service"}}, reviews[1].Themes)
}

func TestReadJSON_NotArray(t *testing.T) {
	_, err := ReadJSON(context.Background(), strings.NewReader(`{"text": "x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '['")
}

func TestReadJSON_Empty(t *testing.T) {
	reviews, err := ReadJSON(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestParseRating(t *testing.T) {
	assert.True(t, ParseRating("  ").IsZero())

	n := ParseRating("3")
	require.NotNil(t, n.Number)
	assert.InDelta(t, 3.0, *n.Number, 1e-9)

	s := ParseRating("FIVE")
	require.NotNil(t, s.Text)
	assert.Equal(t, "FIVE", *s.Text)
}

func TestParseRating_NonFiniteStaysText(t *testing.T) {
	for _, cell := range []string{"NaN", "inf", "-Inf", "Infinity"} {
		v := ParseRating(cell)
		assert.Nil(t, v.Number, cell)
		require.NotNil(t, v.Text, cell)
		assert.Equal(t, cell, *v.Text)
	}
}

func TestParseThemes(t *testing.T) {
	assert.Nil(t, ParseThemes(""))
	assert.Nil(t, ParseThemes(" ; "))
	assert.Equal(t, []model.ReviewTheme{{Name: "Prix"}, {Name: "Service"}}, ParseThemes("Prix; Service;"))
}
