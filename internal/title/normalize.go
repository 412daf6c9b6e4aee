// Package title normalizes user-submitted story titles into the lowercase
// matching form shared across platforms.
package title

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"xojoc.pw/discussions/internal/platform"
)

// Options carries the optional context inputs of the normalization pipeline.
type Options struct {
	Platform platform.Platform
	URL      string
	Tags     []string
	// Stem is accepted for forward compatibility; the stemming pass is
	// currently a no-op.
	Stem bool
}

var (
	trailingYear     = regexp.MustCompile(`\s*\([12]\d\d\d\)$`)
	languageToken    = regexp.MustCompile(`^\w+[#\-+*]+$`)
	dotLanguageToken = regexp.MustCompile(`^\.\w+$`)
)

var trailingTags = []string{"[pdf]", "[video]"}

var synonyms = map[string]string{
	"postgres":  "postgresql",
	"covid":     "coronavirus",
	"covid-19":  "coronavirus",
	"python2":   "python",
	"python3":   "python",
	"python4":   "python",
	"python2.x": "python",
	"python3.x": "python",
	"python4.x": "python",
}

var quoteMap = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"`", "'",
	"“", `"`,
	"”", `"`,
)

// Normalize applies the full title pipeline. It is a pure function of the
// title and options and never fails; a blank title yields the empty string.
func Normalize(raw string, opts Options) string {
	cleaned := norm.NFKC.String(raw)
	cleaned = quoteMap.Replace(cleaned)
	cleaned = strings.ToLower(strings.Join(strings.Fields(cleaned), " "))

	cleaned = stripTrailingTags(cleaned)
	cleaned = trailingYear.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}

	tokens := strings.Fields(cleaned)
	tokens = expandContractions(tokens)
	tokens = applySynonyms(tokens)
	tokens = rewriteLanguageNames(tokens)
	tokens = trimTokenPunctuation(tokens)
	tokens = applySynonyms(tokens)
	tokens = applyURLCues(tokens, opts.URL)
	tokens = platformHook(tokens, opts.Platform)
	tokens = collapseAdjacentDuplicates(tokens)
	if opts.Stem {
		tokens = stem(tokens)
	}

	return strings.Join(tokens, " ")
}

func stripTrailingTags(title string) string {
	for {
		stripped := false
		for _, tag := range trailingTags {
			if strings.HasSuffix(title, tag) {
				title = strings.TrimSpace(strings.TrimSuffix(title, tag))
				stripped = true
			}
		}
		if !stripped {
			return title
		}
	}
}

// expandContractions rewrites contracted tokens by suffix. One input token can
// become two output tokens.
func expandContractions(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tok == "won't":
			out = append(out, "will", "not")
		case tok == "can't" || tok == "cannot":
			out = append(out, "can", "not")
		case strings.HasSuffix(tok, "n't"):
			out = append(out, strings.TrimSuffix(tok, "n't"), "not")
		case strings.HasSuffix(tok, "i'm"):
			out = append(out, strings.TrimSuffix(tok, "i'm")+"i", "am")
		case strings.HasSuffix(tok, "'re"):
			out = append(out, strings.TrimSuffix(tok, "'re"), "are")
		case strings.HasSuffix(tok, "'d"):
			out = append(out, strings.TrimSuffix(tok, "'d"), "had")
		case strings.HasSuffix(tok, "'ll"):
			out = append(out, strings.TrimSuffix(tok, "'ll"), "will")
		default:
			out = append(out, tok)
		}
	}
	return out
}

// applySynonyms runs twice in the pipeline: once on raw tokens and once after
// the punctuation trim exposes tokens like "covid" from "(covid)".
func applySynonyms(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if canonical, ok := synonyms[tok]; ok {
			out = append(out, canonical)
			continue
		}
		out = append(out, tok)
	}
	return out
}

// rewriteLanguageNames spells out the symbol suffixes of programming language
// names so that "c++", "c#" and ".net" survive punctuation stripping.
func rewriteLanguageNames(tokens []string) []string {
	symbolMap := strings.NewReplacer("+", "p", "#", "sharp", "-", "m", "*", "star")

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case languageToken.MatchString(tok):
			out = append(out, symbolMap.Replace(tok))
		case dotLanguageToken.MatchString(tok):
			out = append(out, "dot"+strings.TrimPrefix(tok, "."))
		default:
			out = append(out, tok)
		}
	}
	return out
}

func trimTokenPunctuation(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSuffix(tok, "'s")
		tok = strings.TrimFunc(tok, unicode.IsPunct)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func applyURLCues(tokens []string, url string) []string {
	if url == "" {
		return tokens
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tok == "go" && strings.Contains(url, "golang"):
			out = append(out, "golang")
		case tok == "rust" && strings.Contains(url, "rustlang"):
			out = append(out, "rustlang")
		default:
			out = append(out, tok)
		}
	}
	return out
}

// platformHook is the reserved per-platform extension point. All platforms
// currently pass titles through untouched.
func platformHook(tokens []string, _ platform.Platform) []string {
	return tokens
}

func collapseAdjacentDuplicates(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(out) > 0 && out[len(out)-1] == tok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// stem is a placeholder for a future stemming pass.
func stem(tokens []string) []string {
	return tokens
}
