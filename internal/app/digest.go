package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"xojoc.pw/discussions/internal/cli"
	"xojoc.pw/discussions/internal/digest"
	"xojoc.pw/discussions/internal/globaltime"
	"xojoc.pw/discussions/internal/platform"
)

func runDigest(args []string) int {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	days := fs.Int("days", 0, "Window size in days (defaults to DSC_DIGEST_WINDOW_DAYS)")
	perTopic := fs.Int("per-topic", 10, "Maximum entries per topic")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "digest does not accept positional arguments")
		return 2
	}
	if *days < 0 || *days > 90 {
		fmt.Fprintln(os.Stderr, "--days must be between 1 and 90 (0 uses the configured default)")
		return 2
	}
	if *perTopic < 1 {
		fmt.Fprintln(os.Stderr, "--per-topic must be >= 1")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, pool, cfg, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	windowDays := *days
	if windowDays == 0 {
		windowDays = cfg.DigestWindowDays
	}

	to := globaltime.UTC()
	from := to.AddDate(0, 0, -windowDays)

	records, err := pool.ListStoriesInWindow(ctx, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load digest stories: %v\n", err)
		return 1
	}

	result := digest.Build(records, from, to, *perTopic)

	if outputFormat == outputFormatJSON {
		if err := printJSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf("digest %s .. %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
	for _, topic := range result.Topics {
		fmt.Printf("\n## %s\n", topic.Tag)
		rows := make([][]string, 0, len(topic.Entries))
		for _, entry := range topic.Entries {
			platforms := ""
			for _, record := range entry.Discussions {
				if platforms != "" {
					platforms += " "
				}
				platforms += string(platform.Meta(record.Platform).Code)
			}
			rows = append(rows, []string{
				truncateForTable(entry.Title, 70),
				entry.CanonicalURL,
				fmt.Sprintf("%d", entry.TotalComments),
				platforms,
			})
		}
		if err := writeTable([]string{"title", "url", "comments", "platforms"}, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
			return 1
		}
	}
	return 0
}
