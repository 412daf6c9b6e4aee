package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"xojoc.pw/discussions/internal/canonical"
)

func runCanonical(args []string) int {
	fs := flag.NewFlagSet("canonical", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	rawURL := fs.String("url", "", "URL to canonicalize")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "canonical does not accept positional arguments")
		return 2
	}

	trimmedURL := strings.TrimSpace(*rawURL)
	if trimmedURL == "" {
		fmt.Fprintln(os.Stderr, "--url is required")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	scheme, schemeless := canonical.SplitScheme(trimmedURL)
	result := map[string]string{
		"url":        trimmedURL,
		"scheme":     scheme,
		"schemeless": schemeless,
		"canonical":  canonical.URL(trimmedURL),
		"generic":    canonical.Generic(trimmedURL),
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := [][]string{
		{"canonical", result["canonical"]},
		{"generic", result["generic"]},
		{"scheme", result["scheme"]},
		{"schemeless", result["schemeless"]},
	}
	if err := writeTable([]string{"field", "value"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
