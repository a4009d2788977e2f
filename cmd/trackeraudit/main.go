package main

import (
	"flag"
	"fmt"
	"os"

	"TrackerPipeline/internal/audit"
	"TrackerPipeline/internal/config"
)

func main() {
	cfg := config.Load()

	page := flag.String("page", cfg.Paths.Index, "published HTML page to audit")
	from := flag.String("from", "", "start date YYYY-MM-DD (inclusive)")
	to := flag.String("to", "", "end date YYYY-MM-DD (inclusive)")
	minWords := flag.Int("min-words", audit.DefaultMinWords, "minimum words per community impact block")
	flag.Parse()

	report, err := audit.Run(audit.Options{
		PagePath: *page,
		From:     *from,
		To:       *to,
		MinWords: *minWords,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	report.Render(os.Stdout)
}
