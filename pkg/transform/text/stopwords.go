package text

import (
	"context"
	"strings"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// englishStopWords is the NLTK English list.
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what",
	"which", "who", "whom", "this", "that", "that'll", "these", "those", "am", "is",
	"are", "was", "were", "be", "been", "being", "have", "has", "had", "having",
	"do", "does", "did", "doing", "a", "an", "the", "and", "but", "if", "or",
	"because", "as", "until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before", "after", "above",
	"below", "to", "from", "up", "down", "in", "out", "on", "off", "over", "under",
	"again", "further", "then", "once", "here", "there", "when", "where", "why",
	"how", "all", "any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than", "too", "very",
	"s", "t", "can", "will", "just", "don", "don't", "should", "should've", "now",
	"d", "ll", "m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn",
	"couldn't", "didn", "didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn",
	"hasn't", "haven", "haven't", "isn", "isn't", "ma", "mightn", "mightn't",
	"mustn", "mustn't", "needn", "needn't", "shan", "shan't", "shouldn",
	"shouldn't", "wasn", "wasn't", "weren", "weren't", "won", "won't", "wouldn",
	"wouldn't",
}

// StopWords removes tokens found in Words, ignoring case. It only accepts
// token lists.
type StopWords struct {
	Words map[string]struct{}
}

// NewStopWords builds a filter from words. With no words the English list
// is used. Contractions also match their apostrophe-less form, which is what
// Text Cleaning leaves behind.
func NewStopWords(words ...string) *StopWords {
	if len(words) == 0 {
		words = englishStopWords
	}
	set := make(map[string]struct{}, len(words)*2)
	for _, w := range words {
		w = strings.ToLower(w)
		set[w] = struct{}{}
		if strings.ContainsRune(w, '\'') {
			set[strings.ReplaceAll(w, "'", "")] = struct{}{}
		}
	}
	return &StopWords{Words: set}
}

func (*StopWords) Name() string { return StepStopWords }

func (*StopWords) Description() string { return "drop common English function words" }

func (t *StopWords) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	return textprep.Tokens(t.filter)(ctx, rec)
}

func (t *StopWords) filter(toks []string) []string {
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		if _, ok := t.Words[strings.ToLower(tok)]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}
