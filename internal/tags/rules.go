package tags

import (
	"sort"
	"strings"

	"xojoc.pw/discussions/internal/platform"
)

// Context is the read-only input shared by every rule invocation.
type Context struct {
	Platform    platform.Platform
	TitleTokens map[string]struct{}
	URL         string
}

// Rule is one pure tag transformation. Rules receive the current tag set and
// return the next one; they never mutate their input.
type Rule func(tags Set, rc Context) Set

// languageTags are the concrete language tags that trigger the "programming"
// umbrella tag.
var languageTags = []string{
	"assembly", "c", "clojure", "cobol", "cpp", "csharp", "dlang", "elixir",
	"erlang", "fortran", "golang", "haskell", "java", "javascript", "julia",
	"kotlin", "lisp", "lua", "nim", "ocaml", "perl", "php", "python", "racket",
	"ruby", "rustlang", "scala", "scheme", "swift", "typescript", "zig",
}

// rename maps a platform-specific spelling to the canonical tag name. An empty
// Platform applies on every platform.
type rename struct {
	From     string
	To       string
	Platform platform.Platform
}

var renames = []rename{
	{From: "go", To: "golang"},
	{From: "rust", To: "rustlang"},
	{From: "c++", To: "cpp"},
	{From: "c#", To: "csharp"},
	{From: "node", To: "nodejs"},
	{From: "node.js", To: "nodejs"},
	{From: "postgres", To: "postgresql"},
	{From: "k8s", To: "kubernetes"},
	{From: "mac", To: "macos"},
	{From: "osx", To: "macos"},
	{From: "web", To: "webdev", Platform: platform.Lobsters},
	{From: "d_language", To: "dlang", Platform: platform.Reddit},
	{From: "golang", To: "golang", Platform: platform.Reddit},
	{From: "coding", To: "programming", Platform: platform.Reddit},
	{From: "ml", To: "machinelearning", Platform: platform.Lobsters},
}

// lobstersNoise are moderation tags that say nothing about the story topic.
var lobstersNoise = []string{
	"announce", "ask", "audio", "interview", "meta", "pdf", "show", "slides",
	"transcript", "video",
}

// newRules builds the ordered rule battery applied inside the fixed-point
// loop. The registry is constructed once and never mutated afterwards.
func newRules() []Rule {
	var rules []Rule
	rules = append(rules, languageTopicRules()...)
	rules = append(rules, fromTitleAndURLRules()...)
	rules = append(rules, platformRule)
	rules = append(rules, renameRule)
	rules = append(rules, enrichRule)
	return rules
}

// languageTopicRules covers the languages with their own heuristics beyond a
// plain keyword trigger.
func languageTopicRules() []Rule {
	return []Rule{
		// java
		combine(
			augment("java", []string{"java"}, []string{"programming", "jvm"}),
			augment("jvm", []string{"java"}, nil),
			tagImplies("kotlin", "jvm"),
			tagImplies("scala", "jvm"),
		),
		// nim
		combine(
			augment("nim", []string{"nim"}, []string{"programming"}),
			augment("nimlang", []string{"nim"}, nil),
			hostAugment("nim-lang.org", "nim"),
		),
		// php
		combine(
			augment("php", []string{"php"}, nil),
			augment("laravel", []string{"php", "webdev"}, nil),
			augment("symfony", []string{"php", "webdev"}, nil),
		),
		// rust
		combine(
			augment("rust", []string{"rustlang"}, []string{"programming", "systems"}),
			augment("rustlang", []string{"rustlang"}, nil),
			hostAugment("rust-lang.org", "rustlang"),
			hostAugment("crates.io", "rustlang"),
			hostAugment("docs.rs", "rustlang"),
		),
		// unix
		combine(
			augment("linux", []string{"linux"}, nil),
			augment("openbsd", []string{"openbsd"}, nil),
			augment("freebsd", []string{"freebsd"}, nil),
			augment("netbsd", []string{"netbsd"}, nil),
			augment("systemd", []string{"linux"}, nil),
			tagImplies("linux", "unix"),
			tagImplies("openbsd", "unix"),
			tagImplies("freebsd", "unix"),
			tagImplies("netbsd", "unix"),
		),
		// webdev
		combine(
			augment("css", []string{"css", "webdev"}, nil),
			augment("html", []string{"html", "webdev"}, nil),
			tagImplies("django", "python", "webdev"),
			tagImplies("rails", "ruby", "webdev"),
			tagImplies("flask", "python", "webdev"),
			tagImplies("javascript", "webdev"),
			tagImplies("typescript", "webdev"),
			tagImplies("nodejs", "javascript", "webdev"),
			tagImplies("css", "webdev"),
			tagImplies("html", "webdev"),
		),
		// zig
		combine(
			augment("zig", []string{"zig"}, []string{"programming"}),
			augment("ziglang", []string{"zig"}, nil),
			hostAugment("ziglang.org", "zig"),
		),
		// golang
		combine(
			augment("go", []string{"golang"}, []string{"programming", "golang"}),
			augment("golang", []string{"golang"}, nil),
			hostAugment("golang.org", "golang"),
			hostAugment("go.dev", "golang"),
		),
	}
}

// fromTitleAndURLRules is the generic keyword battery for topics that need no
// heuristics beyond a standalone title token or URL cue.
func fromTitleAndURLRules() []Rule {
	keywordTags := map[string][]string{
		"python":     {"python"},
		"ruby":       {"ruby"},
		"haskell":    {"haskell"},
		"erlang":     {"erlang"},
		"elixir":     {"elixir"},
		"clojure":    {"clojure"},
		"scheme":     {"scheme"},
		"racket":     {"racket"},
		"ocaml":      {"ocaml"},
		"scala":      {"scala"},
		"kotlin":     {"kotlin"},
		"swift":      {"swift"},
		"fortran":    {"fortran"},
		"cobol":      {"cobol"},
		"perl":       {"perl"},
		"lua":        {"lua"},
		"julia":      {"julia"},
		"cpp":        {"cpp"},
		"csharp":     {"csharp"},
		"javascript": {"javascript"},
		"typescript": {"typescript"},
		"django":     {"django"},
		"rails":      {"rails"},
		"docker":     {"docker"},
		"kubernetes": {"kubernetes"},
		"bitcoin":    {"bitcoin"},
		"postgresql": {"postgresql"},
		"sqlite":     {"sqlite"},
		"redis":      {"redis"},
		"compiler":   {"compsci"},
		"compilers":  {"compsci"},
	}

	rules := []Rule{
		// Single-letter and ambiguous names only fire in a context that is
		// already programming-adjacent.
		augment("c", []string{"c"}, []string{"programming"}),
		augment("lisp", []string{"lisp"}, []string{"programming", "scheme", "racket", "clojure"}),
		augment("assembly", []string{"assembly"}, []string{"programming"}),
		augment("asm", []string{"assembly"}, []string{"programming"}),
		// quantum computing needs both tokens
		func(tags Set, rc Context) Set {
			if rc.hasToken("quantum") && (rc.hasToken("computing") || rc.hasToken("computer")) {
				return tags.With("quantumcomputing")
			}
			return tags
		},
		augment("metaprogramming", []string{"metaprogramming", "programming"}, nil),
	}

	keywords := make([]string, 0, len(keywordTags))
	for keyword := range keywordTags {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	for _, keyword := range keywords {
		rules = append(rules, augment(keyword, keywordTags[keyword], nil))
	}
	return combineAll(rules)
}

// platformRule strips noise tags or adds platform-level inferences.
func platformRule(tags Set, rc Context) Set {
	switch rc.Platform {
	case platform.Lobsters:
		out := tags
		for _, noise := range lobstersNoise {
			out = out.Without(noise)
		}
		return out
	case platform.LambdaTheUltimate:
		return tags.With("programming")
	case platform.Reddit, platform.HackerNews, platform.Laarc:
		return tags
	default:
		return tags
	}
}

func renameRule(tags Set, rc Context) Set {
	out := tags
	for _, r := range renames {
		if r.Platform != "" && r.Platform != rc.Platform {
			continue
		}
		if out.Has(r.From) && r.From != r.To {
			out = out.Without(r.From).With(r.To)
		}
	}
	return out
}

// enrichRule adds umbrella tags implied by concrete ones.
func enrichRule(tags Set, rc Context) Set {
	out := tags
	for _, lang := range languageTags {
		if out.Has(lang) {
			out = out.With("programming")
			break
		}
	}
	if out.Has("docker") || out.Has("kubernetes") {
		out = out.With("devops")
	}
	if out.Has("compsci") || out.Has("plt") {
		out = out.With("programming")
	}
	return out
}

// overrides runs once after the fixed-point loop to squash known false
// positives.
func overrides(tags Set, rc Context) Set {
	if strings.Contains(rc.URL, "joinmastodon.org") {
		return tags.Without("bitcoin").Without("italy")
	}
	return tags
}

// augment adds tags when keyword appears as a standalone normalized-title
// token and, when anyOf is non-empty, at least one precondition tag is already
// present.
func augment(keyword string, add []string, anyOf []string) Rule {
	return func(tags Set, rc Context) Set {
		if !rc.hasToken(keyword) {
			return tags
		}
		if len(anyOf) > 0 && !tags.HasAny(anyOf...) {
			return tags
		}
		return tags.With(add...)
	}
}

// tagImplies adds tags whenever another tag is already present.
func tagImplies(ifTag string, add ...string) Rule {
	return func(tags Set, rc Context) Set {
		if !tags.Has(ifTag) {
			return tags
		}
		return tags.With(add...)
	}
}

// hostAugment adds a tag when the canonical URL contains the given fragment.
func hostAugment(urlFragment string, add ...string) Rule {
	return func(tags Set, rc Context) Set {
		if rc.URL == "" || !strings.Contains(rc.URL, urlFragment) {
			return tags
		}
		return tags.With(add...)
	}
}

func combine(rules ...Rule) Rule {
	return func(tags Set, rc Context) Set {
		for _, rule := range rules {
			tags = rule(tags, rc)
		}
		return tags
	}
}

func combineAll(rules []Rule) []Rule {
	return []Rule{combine(rules...)}
}

func (rc Context) hasToken(token string) bool {
	_, ok := rc.TitleTokens[token]
	return ok
}
