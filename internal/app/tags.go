package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"xojoc.pw/discussions/internal/canonical"
	"xojoc.pw/discussions/internal/tags"
)

func runTags(args []string) int {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	rawTags := fs.String("tags", "", "Comma separated raw tags")
	rawTitle := fs.String("title", "", "Story title used for tag derivation")
	rawURL := fs.String("url", "", "Optional story URL used for host-based rules")
	platformFlag := fs.String("platform", "", "Optional platform code (h, r, l, u, e, a)")
	rounds := fs.Int("rounds", tags.DefaultRounds, "Maximum rule application rounds")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "tags does not accept positional arguments")
		return 2
	}
	if *rounds < 1 {
		fmt.Fprintln(os.Stderr, "--rounds must be >= 1")
		return 2
	}

	p, err := parsePlatformFlag(*platformFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid platform: %v\n", err)
		return 2
	}

	_, schemeless := canonical.SplitScheme(strings.TrimSpace(*rawURL))
	normalized := tags.NormalizeRounds(splitCommaList(*rawTags), p, strings.TrimSpace(*rawTitle), schemeless, *rounds)

	fmt.Println(strings.Join(normalized, ","))
	return 0
}
