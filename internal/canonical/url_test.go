package canonical

import "testing"

func TestURL_YouTubeWatch(t *testing.T) {
	t.Parallel()

	if got := URL("https://www.youtube.com/watch?v=71SsVUmT1ys&ignore=query"); got != "youtu.be/71SsVUmT1ys" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
	if got := URL("https://youtube.com/embed/71SsVUmT1ys"); got != "youtu.be/71SsVUmT1ys" {
		t.Fatalf("unexpected canonical embed url: %q", got)
	}
}

func TestURL_Medium(t *testing.T) {
	t.Parallel()

	if got := URL("https://medium.com/swlh/caching-and-scaling-django-dc80a54012"); got != "medium.com/p/dc80a54012" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
	if got := URL("https://alice.medium.com/some-post-ab12cd34"); got != "alice.medium.com/ab12cd34" {
		t.Fatalf("unexpected subdomain canonical url: %q", got)
	}
}

func TestURL_PathNormalization(t *testing.T) {
	t.Parallel()

	if got := URL("http://www.path-normalization.com/a///index.html////"); got != "path-normalization.com/a" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestURL_GitHubTreeMaster(t *testing.T) {
	t.Parallel()

	if got := URL("https://github.com/xojoc/discussions/tree/master"); got != "github.com/xojoc/discussions" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestURL_TrackingParamsRemoved(t *testing.T) {
	t.Parallel()

	with := URL("https://example.com/post?utm_source=x&fbclid=abc&b=2&a=1")
	without := URL("https://example.com/post?b=2&a=1")
	if with != without {
		t.Fatalf("tracking params changed canonical form: %q vs %q", with, without)
	}
	if with != "example.com/post?a=1&b=2" {
		t.Fatalf("unexpected sorted query: %q", with)
	}
}

func TestURL_HostPrefixes(t *testing.T) {
	t.Parallel()

	if got := URL("https://m.xojoc.pw/blog"); got != "xojoc.pw/blog" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
	if got := URL("https://mobile.twitter.com/someone"); got != "twitter.com/someone" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
	if got := URL("https://m.www.example.com/a"); got != "example.com/a" {
		t.Fatalf("stacked host prefixes should strip fully: %q", got)
	}
}

func TestURL_ArchiveOrg(t *testing.T) {
	t.Parallel()

	got := URL("https://web.archive.org/web/20200101000000/https://www.example.com/post/index.html")
	if got != "example.com/post" {
		t.Fatalf("unexpected unwrapped archive url: %q", got)
	}
}

func TestURL_FragmentPromotion(t *testing.T) {
	t.Parallel()

	if got := URL("https://example.com#!about"); got != "example.com/about" {
		t.Fatalf("unexpected promoted fragment: %q", got)
	}
	got := URL("https://groups.google.com/forum#!topic/golang-nuts/abc123")
	if got != "groups.google.com/g/golang-nuts/c/abc123" {
		t.Fatalf("unexpected groups url: %q", got)
	}
}

func TestURL_QueryDrops(t *testing.T) {
	t.Parallel()

	if got := URL("https://www.nytimes.com/2020/01/02/science/a.html?smid=tw"); got != "nytimes.com/2020/01/02/science/a" {
		t.Fatalf("unexpected nytimes url: %q", got)
	}
	if got := URL("https://en.wikipedia.org/wiki/Go_(programming_language)?action=edit"); got != "en.wikipedia.org/wiki/Go_(programming_language)" {
		t.Fatalf("unexpected wikipedia url: %q", got)
	}
	if got := URL("https://arstechnica.com/civis/viewtopic.php?f=2&t=100"); got != "arstechnica.com/civis/viewtopic?f=2&t=100" {
		t.Fatalf("expected forum query preserved: %q", got)
	}
}

func TestURL_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://www.youtube.com/watch?v=71SsVUmT1ys&ignore=query",
		"https://medium.com/swlh/caching-and-scaling-django-dc80a54012",
		"http://www.path-normalization.com/a///index.html////",
		"https://github.com/xojoc/discussions/tree/master",
		"https://example.com/post?utm_source=x&b=2&a=1",
		"https://web.archive.org/web/20200101000000/https://www.example.com/post/index.html",
		"https://m.www.example.com/a",
		"https://mobile.www.example.com/a",
		"xojoc.pw/blog",
		"not a url at all",
		"",
	}
	for _, input := range inputs {
		once := URL(input)
		twice := URL(once)
		if once != twice {
			t.Fatalf("canonicalization is not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestURL_MalformedPassesThrough(t *testing.T) {
	t.Parallel()

	if got := URL("not a url at all"); got != "not a url at all" {
		t.Fatalf("malformed input should pass through, got %q", got)
	}
	if got := URL(""); got != "" {
		t.Fatalf("empty input should pass through, got %q", got)
	}
}

func TestGeneric_NoHostRemap(t *testing.T) {
	t.Parallel()

	got := Generic("https://www.youtube.com/watch?v=71SsVUmT1ys")
	if got != "youtube.com/watch?v=71SsVUmT1ys" {
		t.Fatalf("generic variant must not remap hosts: %q", got)
	}
}

func TestSplitScheme(t *testing.T) {
	t.Parallel()

	scheme, rest := SplitScheme("HTTPS://Example.com/Path")
	if scheme != "https" || rest != "example.com/path" {
		t.Fatalf("unexpected split: %q %q", scheme, rest)
	}

	scheme, rest = SplitScheme("example.com/path")
	if scheme != "" || rest != "example.com/path" {
		t.Fatalf("expected schemeless passthrough, got %q %q", scheme, rest)
	}

	scheme, rest = SplitScheme("")
	if scheme != "" || rest != "" {
		t.Fatalf("expected empty passthrough, got %q %q", scheme, rest)
	}
}
