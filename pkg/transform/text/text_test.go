package text_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/textprep/pkg/textprep"
	"github.com/wdm0006/textprep/pkg/transform/text"
)

func run(t *testing.T, rows []string, steps ...string) []textprep.Record {
	t.Helper()
	p, err := textprep.New(text.NewRegistry())
	require.NoError(t, err)
	out, err := p.Execute(context.Background(), textprep.TextRecords(rows), steps)
	require.NoError(t, err)
	return out
}

func TestRegistryNames(t *testing.T) {
	t.Parallel()
	reg := text.NewRegistry()
	assert.Equal(t, []string{
		"Text Cleaning", "Tokenization", "Stop Words Removal", "Lemmatization",
		"Stemming", "Lowercase", "Trim Whitespace",
	}, reg.Names())
	for _, s := range reg.Steps() {
		assert.NotEmpty(t, s.Description, s.Name)
	}
}

func TestPipelineExamples(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		[]textprep.Record{[]string{"the", "cat", "sat"}, []string{"a", "dog", "ran"}},
		run(t, []string{"the cat sat", "a dog ran"}, "Tokenization"))
	assert.Equal(t, []textprep.Record{"Hello World"}, run(t, []string{"Hello World"}))
	assert.Equal(t,
		[]textprep.Record{[]string{"hi", "there"}},
		run(t, []string{"Hi! There."}, "Text Cleaning", "Tokenization"))
}

func TestOrderSensitivity(t *testing.T) {
	t.Parallel()

	t.Run("stemming and stop words", func(t *testing.T) {
		t.Parallel()
		stemFirst := run(t, []string{"does this movie"}, "Tokenization", "Stemming", "Stop Words Removal")
		stopFirst := run(t, []string{"does this movie"}, "Tokenization", "Stop Words Removal", "Stemming")
		assert.Equal(t, []textprep.Record{[]string{"doe", "movi"}}, stemFirst)
		assert.Equal(t, []textprep.Record{[]string{"movi"}}, stopFirst)
	})

	t.Run("tokenization and cleaning", func(t *testing.T) {
		t.Parallel()
		in := []string{`<b class="x">Great</b>`}
		cleanFirst := run(t, in, "Text Cleaning", "Tokenization")
		tokensFirst := run(t, in, "Tokenization", "Text Cleaning")
		assert.Equal(t, []textprep.Record{[]string{"great"}}, cleanFirst)
		assert.Equal(t, []textprep.Record{[]string{"b", "class", "x", "great"}}, tokensFirst)
	})
}

func TestCleanText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"Hi! There.", "hi there"},
		{"<p>Great <b>movie</b>!</p><br/>Loved it", "great movie loved it"},
		{"Fish &amp; Chips", "fish chips"},
		{"<script>alert(1)</script>ok", "ok"},
		{"Café déjà vu", "cafe deja vu"},
		{"Check https://example.com/x?y=1 and www.foo.org now", "check and now"},
		{"@bob loved it #awesome", "loved it awesome"},
		{"I don't like it", "i dont like it"},
		{"  lots\tof \n space  ", "lots of space"},
		{"a<b and c", "a b and c"},
		{"x < y and z > w", "x y and z w"},
		{"<b>great</b> a<b and c", "great a b and c"},
		{"5 &lt; 6", "5 6"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, text.CleanText(tt.in))
		})
	}
}

func TestCleanTokens(t *testing.T) {
	t.Parallel()
	out, err := text.Clean{}.Apply(context.Background(), []string{"Hello,", "!!!", "World"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, out)

	out, err = text.Clean{}.Apply(context.Background(), []string{"hello,world", "State-of-the-art!"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world", "state", "of", "the", "art"}, out)
}

func TestStopWords(t *testing.T) {
	t.Parallel()
	sw := text.NewStopWords()
	out, err := sw.Apply(context.Background(), []string{"This", "movie", "is", "NOT", "bad", "dont", "don't"})
	require.NoError(t, err)
	assert.Equal(t, []string{"movie", "bad"}, out)

	custom := text.NewStopWords("movie")
	out, err = custom.Apply(context.Background(), []string{"this", "movie"})
	require.NoError(t, err)
	assert.Equal(t, []string{"this"}, out)
}

func TestLemma(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"cats":     "cat",
		"ponies":   "pony",
		"children": "child",
		"Movies":   "movie",
		"mice":     "mouse",
		"boxes":    "box",
		"went":     "go",
		"glass":    "glass",
		"textprep": "textprep",
	}
	for in, want := range tests {
		got, err := text.Lemma(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	out := run(t, []string{"the children watched movies"}, "Tokenization", "Lemmatization")
	assert.Equal(t, []textprep.Record{[]string{"the", "child", "watch", "movie"}}, out)
}

func TestStem(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"caresses":   "caress",
		"ponies":     "poni",
		"ties":       "tie",
		"cats":       "cat",
		"feed":       "feed",
		"plastered":  "plaster",
		"motoring":   "motor",
		"sing":       "sing",
		"hopping":    "hop",
		"falling":    "fall",
		"happy":      "happi",
		"sky":        "sky",
		"connection": "connect",
		"consigned":  "consign",
		"consisting": "consist",
		"knightly":   "knight",
		"running":    "run",
		"Running":    "run",
		"is":         "is",
	}
	for in, want := range tests {
		assert.Equal(t, want, text.Stem(in), in)
	}
}

func TestShapeContracts(t *testing.T) {
	t.Parallel()
	p, err := textprep.New(text.NewRegistry())
	require.NoError(t, err)

	for _, step := range []string{"Stop Words Removal", "Lemmatization", "Stemming"} {
		_, err := p.Execute(context.Background(), textprep.TextRecords([]string{"not tokens"}), []string{step})
		assert.ErrorIs(t, err, textprep.ErrShapeMismatch, step)
		assert.ErrorIs(t, err, textprep.ErrTransformFailed, step)
	}
	_, err = p.Execute(context.Background(), textprep.TextRecords([]string{"a b"}), []string{"Tokenization", "Tokenization"})
	var terr *textprep.TransformError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 1, terr.Position)
}

func TestCustomSteps(t *testing.T) {
	t.Parallel()
	reg := text.NewRegistry()
	err := text.RegisterCustom(reg, []text.CustomStep{
		{Name: "Mask Numbers", Kind: text.KindRegexReplace, Pattern: `\d+`, Replace: "<num>"},
		{Name: "Expand Slang", Kind: text.KindMapValues, Map: map[string]string{"gr8": "great", "u": "you"}},
	})
	require.NoError(t, err)
	assert.True(t, reg.Has("Mask Numbers"))

	p, err := textprep.New(reg)
	require.NoError(t, err)
	out, err := p.Execute(context.Background(),
		textprep.TextRecords([]string{"u r gr8 10 times"}),
		[]string{"Tokenization", "Expand Slang", "Mask Numbers"})
	require.NoError(t, err)
	assert.Equal(t, []textprep.Record{[]string{"you", "r", "great", "<num>", "times"}}, out)
}

func TestCustomStepErrors(t *testing.T) {
	t.Parallel()
	reg := text.NewRegistry()
	before := reg.Names()

	err := text.RegisterCustom(reg, []text.CustomStep{
		{Name: "ok", Kind: text.KindMapValues},
		{Name: "bad", Kind: text.KindRegexReplace, Pattern: "("},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `step "bad": compile pattern`)
	assert.Equal(t, before, reg.Names())

	_, err = text.CustomStep{Name: "x", Kind: "lua"}.Build()
	assert.ErrorIs(t, err, text.ErrUnknownKind)

	_, err = text.CustomStep{Kind: text.KindMapValues}.Build()
	assert.Error(t, err)
}
