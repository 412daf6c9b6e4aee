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
	"xojoc.pw/discussions/internal/ingest"
	"xojoc.pw/discussions/internal/logging"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")
	file := fs.String("file", "", "Path to one story item JSON file")
	dir := fs.String("dir", "", "Directory of story item JSON files (alternative to --file)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "ingest does not accept positional arguments")
		return 2
	}

	trimmedFile := strings.TrimSpace(*file)
	trimmedDir := strings.TrimSpace(*dir)
	if (trimmedFile == "") == (trimmedDir == "") {
		fmt.Fprintln(os.Stderr, "exactly one of --file or --dir is required")
		return 2
	}

	ctx, cancel, pool, cfg, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	service := ingest.NewService(pool, logger, cfg.TagRounds)

	files := []string{trimmedFile}
	if trimmedDir != "" {
		files, err = collectJSONFiles(trimmedDir, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to scan directory: %v\n", err)
			return 1
		}
	}

	saved, failed := 0, 0
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: read failed: %v\n", path, err)
			continue
		}

		result, err := service.SaveRaw(ctx, json.RawMessage(raw))
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", path, err)
			continue
		}

		saved++
		fmt.Printf("saved %s story_id=%d inserted=%t category=%s notified=%d\n",
			path, result.StoryID, result.Inserted, result.Category, len(result.NotifiedRules))
	}

	fmt.Printf("ingest saved=%d failed=%d\n", saved, failed)
	if failed > 0 {
		return 1
	}
	return 0
}
