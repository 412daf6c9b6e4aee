package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"xojoc.pw/discussions/internal/canonical"
	"xojoc.pw/discussions/internal/title"
)

func runTitle(args []string) int {
	fs := flag.NewFlagSet("title", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	rawTitle := fs.String("title", "", "Story title to normalize")
	rawURL := fs.String("url", "", "Optional story URL used for language cues")
	platformFlag := fs.String("platform", "", "Optional platform code (h, r, l, u, e, a)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "title does not accept positional arguments")
		return 2
	}

	trimmedTitle := strings.TrimSpace(*rawTitle)
	if trimmedTitle == "" {
		fmt.Fprintln(os.Stderr, "--title is required")
		return 2
	}

	p, err := parsePlatformFlag(*platformFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid platform: %v\n", err)
		return 2
	}

	_, schemeless := canonical.SplitScheme(strings.TrimSpace(*rawURL))
	normalized := title.Normalize(trimmedTitle, title.Options{
		Platform: p,
		URL:      schemeless,
	})

	fmt.Println(normalized)
	return 0
}
