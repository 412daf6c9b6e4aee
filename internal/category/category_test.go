package category

import "testing"

func TestDerive_Project(t *testing.T) {
	t.Parallel()

	if got := Derive("github.com/xojoc/discussions", nil, nil); got != Project {
		t.Fatalf("unexpected category: %q", got)
	}
	if got := Derive("github.com/xojoc/discussions/issues/1", nil, nil); got != Article {
		t.Fatalf("deep forge paths are not projects: %q", got)
	}
	if got := Derive("sr.ht/~someone/tool", nil, nil); got != Project {
		t.Fatalf("unexpected category: %q", got)
	}
	if got := Derive("crates.io/crates/serde", nil, nil); got != Project {
		t.Fatalf("unexpected category: %q", got)
	}
	if got := Derive("docs.rs/serde", nil, nil); got != Project {
		t.Fatalf("unexpected category: %q", got)
	}
}

func TestDerive_Video(t *testing.T) {
	t.Parallel()

	if got := Derive("youtu.be/71SsVUmT1ys", nil, nil); got != Video {
		t.Fatalf("unexpected category: %q", got)
	}
	if got := Derive("vimeo.com/12345", nil, nil); got != Video {
		t.Fatalf("unexpected category: %q", got)
	}
}

func TestDerive_Release(t *testing.T) {
	t.Parallel()

	got := Derive("example.com/blog", []string{"zig", "0.11", "released"}, []string{"programming", "zig"})
	if got != Release {
		t.Fatalf("unexpected category: %q", got)
	}

	// A release token without a programming tag stays an article.
	got = Derive("example.com/blog", []string{"album", "released"}, []string{"music"})
	if got != Article {
		t.Fatalf("unexpected category: %q", got)
	}

	if got := Derive("example.com", nil, []string{"release"}); got != Release {
		t.Fatalf("release tag alone should classify: %q", got)
	}
}

func TestDerive_DefaultArticle(t *testing.T) {
	t.Parallel()

	if got := Derive("example.com/some/post", nil, nil); got != Article {
		t.Fatalf("unexpected category: %q", got)
	}
	if got := Derive("", nil, nil); got != Article {
		t.Fatalf("unexpected category for empty url: %q", got)
	}
}
