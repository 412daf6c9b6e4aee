package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "canonical":
		return runCanonical(args[1:])
	case "title":
		return runTitle(args[1:])
	case "tags":
		return runTags(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "ingest":
		return runIngest(args[1:])
	case "search":
		return runSearch(args[1:])
	case "mention-add":
		return runMentionAdd(args[1:])
	case "digest":
		return runDigest(args[1:])
	case "stats":
		return runStats(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "discussions CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  discussions <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health       Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  canonical    Canonicalize a URL without touching the database")
	fmt.Fprintln(os.Stderr, "  title        Normalize a story title")
	fmt.Fprintln(os.Stderr, "  tags         Normalize a tag list")
	fmt.Fprintln(os.Stderr, "  validate     Validate story item JSON files against the v1 schema")
	fmt.Fprintln(os.Stderr, "  ingest       Save collector story item payloads")
	fmt.Fprintln(os.Stderr, "  search       Find discussions of a story by URL or title")
	fmt.Fprintln(os.Stderr, "  mention-add  Register a mention rule")
	fmt.Fprintln(os.Stderr, "  digest       Build the weekly digest")
	fmt.Fprintln(os.Stderr, "  stats        Show per-platform story counts")
	fmt.Fprintln(os.Stderr, "  serve        Start the Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"discussions <command> -h\" for command-specific flags.")
}
