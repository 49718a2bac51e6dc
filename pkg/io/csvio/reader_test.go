package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/textprep/pkg/table"
)

const reviewsCSV = "\ufeffreview_text,sentiment,rating\n" +
	"\"Loved it, would watch again\",positive,5\n" +
	"Terrible acting,negative,1\n" +
	"\"She said \"\"meh\"\"\",neutral,3\n" +
	",negative,2\n"

func writeFile(t testing.TB, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestInferAndRead(t *testing.T) {
	t.Parallel()
	r, err := Open(writeFile(t, "reviews.csv", reviewsCSV), ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	schema, err := r.InferSchema()
	require.NoError(t, err)
	assert.Equal(t, []string{"review_text", "sentiment", "rating"}, schema.Names())
	assert.Equal(t, table.KindString, schema.Columns[0].Type)
	assert.Equal(t, table.KindInt, schema.Columns[2].Type)

	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, 4, fr.Rows())

	text, err := fr.TextColumn("review_text")
	require.NoError(t, err)
	assert.Equal(t, []string{"Loved it, would watch again", "Terrible acting", `She said "meh"`, ""}, text)
	assert.Empty(t, r.Warnings())
}

func TestTextColumnsSkipInference(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "mixed.csv", "review_text\n5\n10\n007\ngreat movie\n")

	r, err := Open(path, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	schema, err := r.InferSchema()
	require.NoError(t, err)
	assert.Equal(t, table.KindInt, schema.Columns[0].Type)
	_ = r.Close()

	r, err = Open(path, ReaderOptions{HasHeader: true, TextColumns: []string{"review_text"}})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	schema, err = r.InferSchema()
	require.NoError(t, err)
	assert.Equal(t, table.KindString, schema.Columns[0].Type)
	assert.True(t, schema.Columns[0].Raw)

	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	got, err := fr.TextColumn("review_text")
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "10", "007", "great movie"}, got)
}

func TestDelimiterSniffing(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name, content string
		want          []string
	}{
		{"tab", "text\tlabel\nnice, really nice\tpos\n", []string{"nice, really nice"}},
		{"semicolon", "text;label\nok, fine;pos\n", []string{"ok, fine"}},
		{"pipe", "text|label\nbad; awful|neg\n", []string{"bad; awful"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := Open(writeFile(t, "d.csv", tt.content), ReaderOptions{HasHeader: true})
			require.NoError(t, err)
			defer func() { _ = r.Close() }()
			schema, err := r.InferSchema()
			require.NoError(t, err)
			fr, err := r.ReadAll(schema)
			require.NoError(t, err)
			got, err := fr.TextColumn("text")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRaggedRecords(t *testing.T) {
	t.Parallel()
	content := "text,label\nshort\nfine,pos\ntoo,many,fields\n"

	r, err := Open(writeFile(t, "ragged.csv", content), ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	require.NoError(t, err)
	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, 3, fr.Rows())
	assert.Equal(t, "short_records=1, long_records=1", r.Warnings())

	strict, err := Open(writeFile(t, "ragged.csv", content), ReaderOptions{HasHeader: true, Strict: true})
	require.NoError(t, err)
	defer func() { _ = strict.Close() }()
	schema, err = strict.InferSchema()
	require.NoError(t, err)
	_, err = strict.ReadAll(schema)
	assert.ErrorContains(t, err, "csv short record")
}

func TestNoHeader(t *testing.T) {
	t.Parallel()
	r := NewReaderFrom(strings.NewReader("a,1\nb,2\n"), ReaderOptions{})
	schema, err := r.InferSchema()
	require.NoError(t, err)
	assert.Equal(t, []string{"col_0", "col_1"}, schema.Names())
	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, 2, fr.Rows())
	assert.NoError(t, r.Close())
}

func TestSampleRowsSmallerThanFile(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	b.WriteString("text\n")
	for i := 0; i < 50; i++ {
		b.WriteString("row\n")
	}
	r, err := Open(writeFile(t, "many.csv", b.String()), ReaderOptions{HasHeader: true, SampleRows: 5})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	require.NoError(t, err)
	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, 50, fr.Rows())
}
