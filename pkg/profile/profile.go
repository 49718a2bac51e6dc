// Package profile summarises a processed text column: record lengths and
// the most frequent tokens.
package profile

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/wdm0006/textprep/pkg/textprep"
)

type LengthStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Sum  int     `json:"sum"`
	Mean float64 `json:"mean"`
}

func (s *LengthStats) add(n int, first bool) {
	if first || n < s.Min {
		s.Min = n
	}
	if n > s.Max {
		s.Max = n
	}
	s.Sum += n
}

type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Collector accumulates statistics over record chunks. It implements
// textprep.ChunkSink so it can sit at the end of a stream. A Collector is
// not safe for concurrent use.
type Collector struct {
	topK    int
	records int
	empty   int
	other   int
	tokens  LengthStats
	chars   LengthStats
	freqs   map[string]int
}

// NewCollector keeps the topK most frequent tokens; topK <= 0 disables
// frequency counting.
func NewCollector(topK int) *Collector {
	return &Collector{topK: topK, freqs: make(map[string]int)}
}

// Consume adds records. Text records are split on white space for token
// counts; token lists are used as they are.
func (c *Collector) Consume(recs []textprep.Record) {
	for _, rec := range recs {
		var toks []string
		chars := 0
		switch v := rec.(type) {
		case string:
			toks = strings.Fields(v)
			chars = utf8.RuneCountInString(v)
		case []string:
			toks = v
			for _, t := range v {
				chars += utf8.RuneCountInString(t)
			}
		default:
			c.other++
			continue
		}
		first := c.records == 0
		c.records++
		if len(toks) == 0 {
			c.empty++
		}
		c.tokens.add(len(toks), first)
		c.chars.add(chars, first)
		if c.topK > 0 {
			for _, t := range toks {
				c.freqs[t]++
			}
		}
	}
}

func (c *Collector) Write(recs []textprep.Record) error {
	c.Consume(recs)
	return nil
}

func (c *Collector) Close() error { return nil }

// Top returns up to topK tokens by descending count, ties broken
// alphabetically.
func (c *Collector) Top() []TokenCount {
	arr := make([]TokenCount, 0, len(c.freqs))
	for k, v := range c.freqs {
		arr = append(arr, TokenCount{Token: k, Count: v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Token < arr[j].Token
	})
	if len(arr) > c.topK {
		arr = arr[:c.topK]
	}
	return arr
}

// JSONProfile is the machine readable form of a profile.
type JSONProfile struct {
	Records     int          `json:"records"`
	Empty       int          `json:"empty"`
	Unsupported int          `json:"unsupported,omitempty"`
	Vocabulary  int          `json:"vocabulary"`
	Tokens      LengthStats  `json:"tokens"`
	Chars       LengthStats  `json:"chars"`
	Top         []TokenCount `json:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{
		Records:     c.records,
		Empty:       c.empty,
		Unsupported: c.other,
		Vocabulary:  len(c.freqs),
		Tokens:      c.tokens,
		Chars:       c.chars,
		Top:         c.Top(),
	}
	if c.records > 0 {
		out.Tokens.Mean = float64(c.tokens.Sum) / float64(c.records)
		out.Chars.Mean = float64(c.chars.Sum) / float64(c.records)
	}
	return out
}

func (c *Collector) ReportText() string {
	p := c.ReportJSON()
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	fmt.Fprintf(&b, "- records: %d (empty=%d)\n", p.Records, p.Empty)
	fmt.Fprintf(&b, "- tokens per record: min=%d max=%d mean=%.3g\n", p.Tokens.Min, p.Tokens.Max, p.Tokens.Mean)
	fmt.Fprintf(&b, "- chars per record: min=%d max=%d mean=%.3g\n", p.Chars.Min, p.Chars.Max, p.Chars.Mean)
	if c.topK > 0 {
		fmt.Fprintf(&b, "- vocabulary: %d\n", p.Vocabulary)
		for _, tc := range p.Top {
			fmt.Fprintf(&b, "  * %q: %d\n", tc.Token, tc.Count)
		}
	}
	return b.String()
}
