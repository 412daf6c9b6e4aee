package title

import "testing"

func TestNormalize_YearStripping(t *testing.T) {
	t.Parallel()

	if got := Normalize("National Park Typeface (2019)", Options{}); got != "national park typeface" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
	if got := Normalize("a(2021)", Options{}); got != "a" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
	if got := Normalize("Summer of 69", Options{}); got != "summer of 69" {
		t.Fatalf("non-year parenthetical handling changed title: %q", got)
	}
}

func TestNormalize_LanguageNamesAndSynonyms(t *testing.T) {
	t.Parallel()

	if got := Normalize("Postgres Plugin in c++", Options{}); got != "postgresql plugin in cpp" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
	if got := Normalize("C# and j++ and .ql", Options{}); got != "csharp and jpp and dotql" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
}

func TestNormalize_Contractions(t *testing.T) {
	t.Parallel()

	got := Normalize("isn't you're i'd we'll i'm can't", Options{})
	if got != "is not you are i had we will i am can not" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
}

func TestNormalize_TrailingBracketTags(t *testing.T) {
	t.Parallel()

	if got := Normalize("Some Paper [pdf]", Options{}); got != "some paper" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
	if got := Normalize("A Talk [video]", Options{}); got != "a talk" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
}

func TestNormalize_DuplicateCollapse(t *testing.T) {
	t.Parallel()

	if got := Normalize("go go gadget go", Options{}); got != "go gadget go" {
		t.Fatalf("only adjacent duplicates should collapse: %q", got)
	}
}

func TestNormalize_URLCues(t *testing.T) {
	t.Parallel()

	got := Normalize("Concurrency in Go", Options{URL: "https://blog.golang.org/pipelines"})
	if got != "concurrency in golang" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
	got = Normalize("Concurrency in Go", Options{URL: "https://example.com/post"})
	if got != "concurrency in go" {
		t.Fatalf("url cue applied without golang url: %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Postgres Plugin in c++",
		"National Park Typeface (2019)",
		"isn't you're i'd we'll i'm can't",
		"Some Paper [pdf]",
		"“Curly” quotes ’n’ things",
	}
	for _, input := range inputs {
		once := Normalize(input, Options{})
		twice := Normalize(once, Options{})
		if once != twice {
			t.Fatalf("normalization is not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	t.Parallel()

	if got := Normalize("", Options{}); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := Normalize("   ", Options{}); got != "" {
		t.Fatalf("expected empty output for blank title, got %q", got)
	}
}
