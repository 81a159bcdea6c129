package main

import (
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"time"

	"github.com/mithrel/stackshelf/internal/datafile"
	"github.com/mithrel/stackshelf/internal/scrape"
	"github.com/mithrel/stackshelf/pkg/api"
)

var topics = []string{
	"Taste", "Archives", "Attention", "Cities", "Craft", "Debt", "Gardens",
	"Letters", "Maps", "Memory", "Rivers", "Sleep", "Walking", "Winter",
}

func main() {
	author := flag.String("author", "sample", "writer name used for links and the output file")
	total := flag.Int("n", 200, "number of essays")
	out := flag.String("o", "", "output path (default data/<author>.json)")
	flag.Parse()

	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	essays := make(api.Essays, 0, *total)
	for i := 0; i < *total; i++ {
		topic := topics[mr.Intn(len(topics))]
		slug := fmt.Sprintf("%03d-%s", i+1, topic)
		e := api.Essay{
			Title:     fmt.Sprintf("On %s, part %d", topic, i+1),
			LikeCount: likes(mr),
			Date:      base.AddDate(0, 0, -(3*i + mr.Intn(3))).Format("Jan 2, 2006"),
			FileLink:  fmt.Sprintf("md/%s/%s.md", *author, slug),
			HTMLLink:  fmt.Sprintf("html/%s/%s.html", *author, slug),
			SourceURL: fmt.Sprintf("https://%s.substack.com/p/%s", *author, slug),
		}
		// Roughly a third have no subtitle
		if mr.Float64() > 0.33 {
			e.Subtitle = fmt.Sprintf("Notes on %s", topic)
		}
		// A few undated posts exercise the date fallback
		if mr.Float64() < 0.02 {
			e.Date = scrape.DateNotFound
		}
		essays = append(essays, e)
	}

	path := *out
	if path == "" {
		path = datafile.Path("data", *author)
	}
	if err := datafile.Save(path, essays); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d essays to %s\n", len(essays), path)
}

// likes is skewed so most posts are small and a few are popular.
func likes(mr *mrand.Rand) int {
	n := mr.Intn(40)
	if mr.Float64() < 0.1 {
		n += mr.Intn(2000)
	}
	return n
}
