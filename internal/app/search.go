package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"xojoc.pw/discussions/internal/cli"
	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/search"
)

func runSearch(args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	query := fs.String("query", "", "Story URL or free-text title query")
	relevant := fs.Bool("relevant", false, "Only return relevant discussions")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "search does not accept positional arguments")
		return 2
	}

	trimmedQuery := strings.TrimSpace(*query)
	if trimmedQuery == "" {
		fmt.Fprintln(os.Stderr, "--query is required")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, pool, _, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	matcher := search.NewMatcher(pool)
	records, canonicalURL, err := matcher.FindDiscussions(ctx, trimmedQuery, *relevant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to find discussions: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{
			"query":         trimmedQuery,
			"canonical_url": canonicalURL,
			"items":         records,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	if canonicalURL != "" {
		fmt.Printf("canonical: %s\n", canonicalURL)
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			platform.Meta(record.Platform).Name,
			record.PlatformItemID,
			truncateForTable(record.Title, 80),
			fmt.Sprintf("%d", record.CommentCount),
			fmt.Sprintf("%d", record.Score),
			formatUTCTimestamp(record.CreatedAt),
		})
	}
	if err := writeTable([]string{"platform", "item", "title", "comments", "score", "created"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
