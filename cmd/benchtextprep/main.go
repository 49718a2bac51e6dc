package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/wdm0006/textprep/pkg/textprep"
	"github.com/wdm0006/textprep/pkg/transform/text"
)

var vocabulary = []string{
	"The", "movie", "was", "GREAT", "boring", "plot", "acting", "loved", "it",
	"cafés", "running", "children", "don't", "#awesome", "@critic", "<b>wow</b>",
	"https://example.com/review", "and", "not", "really", "worst", "ever!",
}

// genSource produces synthetic reviews in chunks.
type genSource struct {
	remain int
	chunk  int
	words  int
	rnd    *rand.Rand
}

func (g *genSource) Next() ([]textprep.Record, error) {
	if g.remain <= 0 {
		return nil, io.EOF
	}
	n := min(g.chunk, g.remain)
	g.remain -= n
	out := make([]textprep.Record, n)
	var b strings.Builder
	for i := range out {
		b.Reset()
		for w := 0; w < g.words; w++ {
			if w > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(vocabulary[g.rnd.Intn(len(vocabulary))])
		}
		out[i] = b.String()
	}
	return out, nil
}

type blackholeSink struct{ rows int }

func (b *blackholeSink) Write(recs []textprep.Record) error { b.rows += len(recs); return nil }
func (b *blackholeSink) Close() error { return nil }

func main() {
	var (
		rows        = flag.Int("rows", 1_000_000, "total records to generate")
		chunk       = flag.Int("chunk", 50_000, "records per chunk")
		words       = flag.Int("words", 30, "words per record")
		concurrency = flag.Int("concurrency", runtime.GOMAXPROCS(0), "records processed in parallel within a stage")
		steps       = flag.StringSlice("steps", []string{
			text.StepTextCleaning, text.StepTokenization, text.StepStopWords, text.StepLemmatization, text.StepStemming,
		}, "steps to apply")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	p, err := textprep.New(text.NewRegistry(), textprep.WithConcurrency(*concurrency))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	src := &genSource{remain: *rows, chunk: *chunk, words: *words, rnd: rand.New(rand.NewSource(*seed))}
	sink := &blackholeSink{}

	runtime.GC()
	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	res, err := textprep.RunStream(context.Background(), p, *steps, src, sink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	n := res.Processed
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	recsPerSec := float64(n) / elapsed.Seconds()
	summary := map[string]any{
		"records":               n,
		"chunks":                res.Chunks,
		"elapsed_ms":            elapsed.Milliseconds(),
		"records_per_sec":       recsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"steps":                 *steps,
		"words":                 *words,
		"chunk":                 *chunk,
		"concurrency":           *concurrency,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Records: %d\n", n)
	fmt.Printf("Steps: %s\n", strings.Join(*steps, ", "))
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f records/s\n", recsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
