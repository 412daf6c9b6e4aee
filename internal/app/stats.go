package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"xojoc.pw/discussions/internal/cli"
)

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "stats does not accept positional arguments")
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

	dayStart := defaultUTCDay()
	_, dayEnd := utcDayBounds(dayStart)

	stats, err := pool.QueryServiceStats(ctx, dayStart, dayEnd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query service stats: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	platformRows := make([][]string, 0, len(stats.Platforms)+1)
	for _, row := range stats.Platforms {
		platformRows = append(platformRows, []string{
			row.Platform,
			fmt.Sprintf("%d", row.Stories),
			fmt.Sprintf("%d", row.Comments),
		})
	}
	platformRows = append(platformRows, []string{
		"TOTAL",
		fmt.Sprintf("%d", stats.Totals.Stories),
		"",
	})

	if err := writeTable([]string{"platform", "stories", "comments"}, platformRows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render platform table: %v\n", err)
		return 1
	}

	fmt.Printf("\nday=%s saved_today=%d resources=%d links=%d rules=%d notifications=%d\n",
		stats.Day,
		stats.StoriesSavedToday,
		stats.Totals.Resources,
		stats.Totals.ResourceLinks,
		stats.Totals.MentionRules,
		stats.Totals.Notifications,
	)
	return 0
}
