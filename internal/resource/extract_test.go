package resource

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Understanding B-Trees | Example Blog</title>
	<meta name="author" content="Jane Roe">
</head>
<body>
	<article>
		<p>B-Trees keep data sorted and allow searches in logarithmic time.
		They are the workhorse of database storage engines.</p>
		<p>See the <a href="https://en.wikipedia.org/wiki/B-tree?useskin=vector">Wikipedia page</a>
		and our <a href="/posts/lsm-trees">LSM tree post</a>.</p>
		<p><a href="#section-2">Jump to section 2</a>
		<a href="mailto:jane@example.com">Mail me</a>
		<a href="https://www.example.com/posts/b-trees/index.html">permalink</a></p>
	</article>
</body>
</html>`

func TestExtract(t *testing.T) {
	t.Parallel()

	meta, err := Extract("https://www.example.com/posts/b-trees", samplePage)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if meta.Title != "Understanding B-Trees | Example Blog" {
		t.Fatalf("title = %q", meta.Title)
	}
	if meta.CleanTitle != "Understanding B-Trees" {
		t.Fatalf("clean title = %q", meta.CleanTitle)
	}
	if meta.Author != "Jane Roe" {
		t.Fatalf("author = %q", meta.Author)
	}

	var targets []string
	for _, link := range meta.Links {
		targets = append(targets, link.CanonicalURL)
	}

	want := map[string]bool{
		"en.wikipedia.org/wiki/B-tree": false,
		"example.com/posts/lsm-trees":  false,
	}
	for _, target := range targets {
		if _, ok := want[target]; ok {
			want[target] = true
		}
	}
	for target, found := range want {
		if !found {
			t.Fatalf("missing link %q in %v", target, targets)
		}
	}

	// Fragment, mailto and self links never survive.
	for _, target := range targets {
		if target == "example.com/posts/b-trees" {
			t.Fatalf("self link must be dropped")
		}
		if strings.Contains(target, "mailto") {
			t.Fatalf("mailto link must be dropped")
		}
	}
}

func TestExtract_OGTitleWins(t *testing.T) {
	t.Parallel()

	page := `<html><head>
		<meta property="og:title" content="The Real Title">
		<title>SEO Title - SomeSite</title>
	</head><body><p>text</p></body></html>`

	meta, err := Extract("https://somesite.example/post", page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if meta.Title != "The Real Title" {
		t.Fatalf("title = %q", meta.Title)
	}
}

func TestExtract_EmptyInputs(t *testing.T) {
	t.Parallel()

	if _, err := Extract("", samplePage); err == nil {
		t.Fatalf("expected error for empty URL")
	}
	if _, err := Extract("https://example.com", "   "); err == nil {
		t.Fatalf("expected error for empty HTML")
	}
}
