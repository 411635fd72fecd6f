package characters

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"storymind/llm"
)

// titles are leading honorifics stripped before any comparison, per
// spec.md §4.4 strategy 1.
var titles = []string{"mr", "mrs", "ms", "miss", "dr", "professor", "sir", "lady"}

// FuzzyThreshold is the minimum normalized similarity (1 - distance/maxLen)
// at which two stripped, lowercased names are merged by strategy 3.
const FuzzyThreshold = 0.85

// DedupOptions configures Deduplicate's optional semantic matching pass.
type DedupOptions struct {
	// SemanticEnabled gates strategy 4 (§4.4): an LLM yes/no call per
	// still-unmerged pair. Off by default — see DESIGN.md and spec.md §9
	// for why this is a distinct, non-blurred mode rather than always on.
	SemanticEnabled bool
	// SemanticModel is required when SemanticEnabled is true.
	SemanticModel llm.LLM
}

// union-find over name indices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[rb] = ra
	}
}

// stripTitle removes a single leading honorific (case-insensitive) from
// name and returns the result along with whether a title was stripped.
func stripTitle(name string) (string, bool) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name, false
	}
	first := strings.ToLower(strings.TrimSuffix(fields[0], "."))
	for _, t := range titles {
		if first == t {
			return strings.Join(fields[1:], " "), true
		}
	}
	return name, false
}

// wholeWordSubstring reports whether needle appears in haystack as a
// whole-word (or whole-phrase) match, not merely as a substring of some
// other word.
func wholeWordSubstring(haystack, needle string) bool {
	haystack, needle = strings.ToLower(haystack), strings.ToLower(needle)
	for start := 0; start <= len(haystack); {
		i := strings.Index(haystack[start:], needle)
		if i == -1 {
			return false
		}
		idx := start + i
		end := idx + len(needle)
		prev, _ := utf8.DecodeLastRuneInString(haystack[:idx])
		next, _ := utf8.DecodeRuneInString(haystack[end:])
		before := idx == 0 || !(unicode.IsLetter(prev) || unicode.IsDigit(prev))
		after := end == len(haystack) || !(unicode.IsLetter(next) || unicode.IsDigit(next))
		if before && after {
			return true
		}
		start = idx + 1
	}
	return false
}

// fuzzySimilarity returns a normalized similarity in [0,1] derived from
// Levenshtein edit distance: 1 - distance/max(len(a), len(b)).
func fuzzySimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}

// Deduplicate collapses name variants into canonical names and a
// surface-form-to-canonical alias map, via strategies 1-4 of spec.md
// §4.4 applied in order over a union-find of the input set.
func Deduplicate(ctx context.Context, names []string, opts DedupOptions) ([]string, map[string]string, error) {
	if len(names) == 0 {
		return nil, map[string]string{}, nil
	}

	stripped := make([]string, len(names))
	hadTitle := make([]bool, len(names))
	for i, n := range names {
		s, had := stripTitle(n)
		stripped[i] = s
		hadTitle[i] = had
	}

	uf := newUnionFind(len(names))

	// Strategy 2: whole-word substring match on stripped forms.
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			if wholeWordSubstring(stripped[j], stripped[i]) || wholeWordSubstring(stripped[i], stripped[j]) {
				uf.union(i, j)
			}
		}
	}

	// Strategy 3: fuzzy match on stripped, lowercased forms.
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			sim := fuzzySimilarity(strings.ToLower(stripped[i]), strings.ToLower(stripped[j]))
			if sim >= FuzzyThreshold {
				uf.union(i, j)
			}
		}
	}

	// Strategy 4: optional semantic match, off by default. Degrades
	// silently to no-op on quota/transient failure.
	if opts.SemanticEnabled && opts.SemanticModel != nil {
		for i := range names {
			for j := i + 1; j < len(names); j++ {
				if uf.find(i) == uf.find(j) {
					continue
				}
				same, err := semanticSameCharacter(ctx, opts.SemanticModel, names[i], names[j], names)
				if err != nil {
					continue
				}
				if same {
					uf.union(i, j)
				}
			}
		}
	}

	groups := make(map[int][]int)
	for i := range names {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	var canonical []string
	aliasMap := make(map[string]string)
	for _, members := range groups {
		canon := pickCanonical(names, stripped, hadTitle, members)
		canonical = append(canonical, canon)
		for _, m := range members {
			if names[m] != canon {
				aliasMap[names[m]] = canon
			}
		}
	}

	sort.Strings(canonical)
	return canonical, aliasMap, nil
}

// pickCanonical selects the canonical display name within a merged
// group: longest form first, then prefer no stripped title, then
// lexicographically earliest.
func pickCanonical(names []string, stripped []string, hadTitle []bool, members []int) string {
	best := members[0]
	for _, m := range members[1:] {
		switch {
		case len(names[m]) != len(names[best]):
			if len(names[m]) > len(names[best]) {
				best = m
			}
		case hadTitle[m] != hadTitle[best]:
			if !hadTitle[m] {
				best = m
			}
		case names[m] < names[best]:
			best = m
		}
	}
	return names[best]
}

// semanticSameCharacter asks the LLM whether two names refer to the
// same fictional character, giving it the full name set as context so
// it can reason about e.g. "Mrs Dursley" vs "Petunia".
func semanticSameCharacter(ctx context.Context, model llm.LLM, a, b string, allNames []string) (bool, error) {
	prompt := fmt.Sprintf(
		"Character names mentioned in this novel: %s\n\nAre %q and %q the same fictional character? Answer with exactly one word: yes or no.",
		strings.Join(allNames, ", "), a, b,
	)
	resp, err := model.Chat(ctx, []llm.ChatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(resp))
	return strings.HasPrefix(answer, "yes"), nil
}
