// inspect dumps recent rows from the verdict log for debugging.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/logging"
)

// #region main
func main() {
	dbPath := flag.String("db", envOr("CLAIMCHECK_DB", "claimcheck.db"), "path to verdict log database")
	limit := flag.Int("n", 20, "number of entries to show")
	flag.Parse()

	db, err := logging.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open verdict log: %v", err)
	}
	defer db.Close()

	entries, err := logging.RecentVerdicts(db, *limit)
	if err != nil {
		log.Fatalf("failed to read verdict log: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("verdict log is empty")
		return
	}

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Label]++
		fmt.Printf("%s  %-9s  conf=%.2f  %q\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Label, e.Confidence, clip(e.Claim, 60))
		if e.TAOStatus != "" {
			fmt.Printf("    %s\n", e.TAOStatus)
		}
	}

	fmt.Printf("\n%d entries:", len(entries))
	for label, n := range counts {
		fmt.Printf(" %s=%d", label, n)
	}
	fmt.Println()
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// #endregion helpers
