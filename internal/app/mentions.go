package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"xojoc.pw/discussions/internal/cli"
	"xojoc.pw/discussions/internal/db"
	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/search"
)

func runMentionAdd(args []string) int {
	fs := flag.NewFlagSet("mention-add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	baseURL := fs.String("base-url", "", "URL prefix the story must live under")
	keywords := fs.String("keywords", "", "Comma separated keywords that must all appear in the title")
	platforms := fs.String("platforms", "", "Comma separated platform codes (empty means all)")
	subredditsInclude := fs.String("subreddits-include", "", "Comma separated subreddits to allow (Reddit only)")
	subredditsExclude := fs.String("subreddits-exclude", "", "Comma separated subreddits to block (Reddit only)")
	minComments := fs.Int("min-comments", 0, "Minimum comment count")
	minScore := fs.Int("min-score", 0, "Minimum score")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "mention-add does not accept positional arguments")
		return 2
	}

	trimmedBaseURL := strings.TrimSpace(*baseURL)
	keywordList := splitCommaList(*keywords)
	if trimmedBaseURL == "" && len(keywordList) == 0 {
		fmt.Fprintln(os.Stderr, "at least one of --base-url or --keywords is required")
		return 2
	}
	if len(keywordList) > search.MaxRuleKeywords {
		fmt.Fprintf(os.Stderr, "at most %d keywords per rule\n", search.MaxRuleKeywords)
		return 2
	}

	platformList := splitCommaList(*platforms)
	for _, code := range platformList {
		if _, err := platform.Parse(code); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid platform: %v\n", err)
			return 2
		}
	}

	rule := &db.MentionRule{
		BaseURL:     trimmedBaseURL,
		MinComments: *minComments,
		MinScore:    *minScore,
	}
	var encodeErr error
	if rule.Keywords, encodeErr = json.Marshal(keywordList); encodeErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode keywords: %v\n", encodeErr)
		return 1
	}
	if rule.Platforms, encodeErr = json.Marshal(platformList); encodeErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode platforms: %v\n", encodeErr)
		return 1
	}
	if rule.SubredditsInclude, encodeErr = json.Marshal(splitCommaList(*subredditsInclude)); encodeErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode subreddit includes: %v\n", encodeErr)
		return 1
	}
	if rule.SubredditsExclude, encodeErr = json.Marshal(splitCommaList(*subredditsExclude)); encodeErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode subreddit excludes: %v\n", encodeErr)
		return 1
	}

	ctx, cancel, pool, _, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	ruleID, err := pool.SaveMentionRule(ctx, rule)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save mention rule: %v\n", err)
		return 1
	}

	fmt.Printf("mention rule created id=%d\n", ruleID)
	return 0
}
