package text

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/wdm0006/textprep/pkg/textprep"
)

var (
	urlRe     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionRe = regexp.MustCompile(`@\w+`)
	tagRe     = regexp.MustCompile(`</?[A-Za-z][^<>]*>|<!--`)
)

// Clean normalises raw review text: markup is stripped, accents are folded,
// the text is lowercased, URLs and @mentions are removed, apostrophes are
// dropped and any other character that is not a letter or digit becomes a
// separator. Runs of white space collapse to one space.
//
// Clean accepts text or tokens. Applied to tokens it cleans each token,
// splits any token that now holds a space and drops the ones that end up
// empty.
type Clean struct{}

func (Clean) Name() string { return StepTextCleaning }

func (Clean) Description() string { return "strip markup, URLs and punctuation; lowercase" }

func (Clean) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	return textprep.TextOrTokens(CleanText)(ctx, rec)
}

// CleanText is the string form of Clean.
func CleanText(s string) string {
	s = stripMarkup(s)
	s = foldAccents(s)
	s = strings.ToLower(s)
	s = urlRe.ReplaceAllString(s, " ")
	s = mentionRe.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\'' || r == '’':
			// dropped so "don't" stays one word
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// stripMarkup keeps the text content of s. Entities are decoded and tags
// become separators so "a<br>b" does not fuse into one word. Text without a
// complete tag is only unescaped, so a bare "<" keeps what follows it.
func stripMarkup(s string) string {
	if !tagRe.MatchString(s) {
		if strings.Contains(s, "&") {
			return html.UnescapeString(s)
		}
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip, consumed := 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF is the only error a strings.Reader produces. An
			// unterminated tag at the end is dropped by the tokenizer.
			if consumed < len(s) {
				b.WriteByte(' ')
				b.WriteString(html.UnescapeString(s[consumed:]))
			}
			return b.String()
		}
		consumed += len(z.Raw())
		switch tt {
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if isRawText(z) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if isRawText(z) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

func isRawText(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}

// foldAccents turns "café" into "cafe". The chain is stateful, so a new one
// is built per call.
func foldAccents(s string) string {
	for _, r := range s {
		if r > unicode.MaxASCII {
			t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
			out, _, err := transform.String(t, s)
			if err != nil {
				return s
			}
			return out
		}
	}
	return s
}
