package tags

import (
	"reflect"
	"testing"

	"xojoc.pw/discussions/internal/platform"
)

func TestNormalize_Django(t *testing.T) {
	t.Parallel()

	got := Normalize([]string{"django"}, "", "", "")
	want := []string{"django", "programming", "python", "webdev"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestNormalize_PlatformScopedRename(t *testing.T) {
	t.Parallel()

	got := Normalize([]string{"web"}, platform.HackerNews, "", "")
	if !reflect.DeepEqual(got, []string{"web"}) {
		t.Fatalf("unexpected hacker news tags: %v", got)
	}

	got = Normalize([]string{"web"}, platform.Lobsters, "", "")
	if !reflect.DeepEqual(got, []string{"webdev"}) {
		t.Fatalf("unexpected lobsters tags: %v", got)
	}
}

func TestNormalize_TitleKeywordNeedsStandaloneToken(t *testing.T) {
	t.Parallel()

	got := Normalize(nil, "", "Pythonic patterns", "")
	if len(got) != 0 {
		t.Fatalf("substring match should not trigger tags: %v", got)
	}

	got = Normalize(nil, "", "Python patterns", "")
	if !reflect.DeepEqual(got, []string{"programming", "python"}) {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestNormalize_PreconditionScoping(t *testing.T) {
	t.Parallel()

	// "go" alone is too generic to tag.
	got := Normalize(nil, "", "Let it go", "")
	if len(got) != 0 {
		t.Fatalf("unscoped keyword should not trigger: %v", got)
	}

	// With a programming-adjacent tag present the same title counts.
	got = Normalize([]string{"programming"}, "", "Generics in Go", "")
	if !reflect.DeepEqual(got, []string{"golang", "programming"}) {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestNormalize_RenameFeedsAugment(t *testing.T) {
	t.Parallel()

	// Round one renames rust -> rustlang; the enrich rule then sees a concrete
	// language and adds programming in the same or a later round.
	got := Normalize([]string{"rust"}, "", "", "")
	if !reflect.DeepEqual(got, []string{"programming", "rustlang"}) {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestNormalize_LobstersNoiseStripped(t *testing.T) {
	t.Parallel()

	got := Normalize([]string{"video", "ask", "zig"}, platform.Lobsters, "", "")
	if !reflect.DeepEqual(got, []string{"programming", "zig"}) {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestNormalize_LambdaTheUltimate(t *testing.T) {
	t.Parallel()

	got := Normalize(nil, platform.LambdaTheUltimate, "On the expressive power of let", "")
	if !reflect.DeepEqual(got, []string{"programming"}) {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestNormalize_DevopsEnrichment(t *testing.T) {
	t.Parallel()

	got := Normalize([]string{"docker"}, "", "", "")
	if !reflect.DeepEqual(got, []string{"devops", "docker"}) {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestNormalize_MastodonOverride(t *testing.T) {
	t.Parallel()

	got := Normalize([]string{"bitcoin", "italy"}, "", "", "https://joinmastodon.org/")
	if len(got) != 0 {
		t.Fatalf("override should suppress false positives: %v", got)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()

	first := Normalize([]string{"django", "rust", "docker"}, platform.Reddit, "Show: my project", "https://example.com")
	for i := 0; i < 10; i++ {
		again := Normalize([]string{"django", "rust", "docker"}, platform.Reddit, "Show: my project", "https://example.com")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("normalization not deterministic: %v vs %v", first, again)
		}
	}
}

func TestNormalizeRounds_Convergence(t *testing.T) {
	t.Parallel()

	inputs := []struct {
		tags  []string
		p     platform.Platform
		title string
		url   string
	}{
		{[]string{"django"}, "", "", ""},
		{[]string{"rust"}, "", "Ownership explained", ""},
		{[]string{"web"}, platform.Lobsters, "CSS tricks", ""},
		{[]string{"docker", "kubernetes"}, platform.Reddit, "Scaling clusters", ""},
		{nil, "", "Generics in Go", "https://go.dev/blog/generics"},
	}

	for _, input := range inputs {
		fixed := NormalizeRounds(input.tags, input.p, input.title, input.url, DefaultRounds)
		exhaustive := NormalizeRounds(input.tags, input.p, input.title, input.url, 16)
		if !reflect.DeepEqual(fixed, exhaustive) {
			t.Fatalf("rule battery did not converge in %d rounds for %+v: %v vs %v",
				DefaultRounds, input, fixed, exhaustive)
		}
	}
}
