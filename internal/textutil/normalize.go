package textutil

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultWordOverlapQuotient is the share of the larger word set that must be
// shared before two strings are considered the same title or name.
const DefaultWordOverlapQuotient = 0.75

var leadingArticles = map[string]struct{}{"the": {}, "a": {}, "an": {}}

// Normalizer canonicalizes titles and names, memoizing each result by the raw
// input. It is safe for concurrent use.
type Normalizer struct {
	mu      sync.Mutex
	titles  map[string]string
	catalog map[string]string
	names   map[string]string
	generic *regexp.Regexp
}

// NewNormalizer builds a Normalizer. genericTitles lists boilerplate phrases
// ("annual report", "catalog") that NormalizeCatalogTitle erases when they make
// up the whole title apart from trailing year digits.
func NewNormalizer(genericTitles []string) *Normalizer {
	n := &Normalizer{
		titles:  make(map[string]string),
		catalog: make(map[string]string),
		names:   make(map[string]string),
	}
	alternatives := make([]string, 0, len(genericTitles))
	for _, phrase := range genericTitles {
		cleaned := cleanText(phrase)
		if cleaned == "" {
			continue
		}
		alternatives = append(alternatives, regexp.QuoteMeta(cleaned))
	}
	if len(alternatives) > 0 {
		// Longest first so "general catalog" wins over "catalog".
		sort.SliceStable(alternatives, func(i, j int) bool { return len(alternatives[i]) > len(alternatives[j]) })
		n.generic = regexp.MustCompile(`^(?:` + strings.Join(alternatives, "|") + `)[a-z]*(?: [0-9]{1,4})+$`)
	}
	return n
}

var defaultNormalizer = NewNormalizer(nil)

// NormalizeTitle normalizes a title with the package default Normalizer.
func NormalizeTitle(text string) string { return defaultNormalizer.Title(text) }

// NormalizeName normalizes a personal name with the package default Normalizer.
func NormalizeName(text string) string { return defaultNormalizer.Name(text) }

// Title lowercases, folds accents, strips punctuation, collapses whitespace,
// and drops leading articles. The result is stable under repeated application.
func (n *Normalizer) Title(text string) string {
	if text == "" {
		return ""
	}
	n.mu.Lock()
	cached, ok := n.titles[text]
	n.mu.Unlock()
	if ok {
		return cached
	}
	result := stripLeadingArticles(cleanText(text))
	n.mu.Lock()
	n.titles[text] = result
	n.mu.Unlock()
	return result
}

// CatalogTitle is Title plus removal of generic boilerplate: a title made only
// of a generic phrase followed by year digits ("catalog 1955") becomes "".
func (n *Normalizer) CatalogTitle(text string) string {
	if text == "" {
		return ""
	}
	n.mu.Lock()
	cached, ok := n.catalog[text]
	n.mu.Unlock()
	if ok {
		return cached
	}
	result := n.Title(text)
	if n.generic != nil && n.generic.MatchString(result) {
		result = ""
	}
	n.mu.Lock()
	n.catalog[text] = result
	n.mu.Unlock()
	return result
}

// Name lowercases a personal name and keeps only letters, so life dates and
// punctuation ("Doe, Jane, 1901-") do not affect comparison.
func (n *Normalizer) Name(text string) string {
	if text == "" {
		return ""
	}
	n.mu.Lock()
	cached, ok := n.names[text]
	n.mu.Unlock()
	if ok {
		return cached
	}
	folded := fold(strings.ToLower(text))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	result := strings.Join(strings.Fields(b.String()), " ")
	n.mu.Lock()
	n.names[text] = result
	n.mu.Unlock()
	return result
}

// TitleText flattens a title given as a [title, subtitle] pair or as a list
// of variant titles into one string.
func TitleText(parts ...string) string {
	switch len(parts) {
	case 0:
		return ""
	case 2:
		return parts[0] + ": " + parts[1]
	default:
		return parts[0]
	}
}

// TitleKey returns the blocking key for a normalized title: its two longest
// words (ties broken lexically), space separated.
func TitleKey(normalizedTitle string) string {
	words := strings.Fields(normalizedTitle)
	sort.SliceStable(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// WordOverlap reports whether a and b are the same after normalization, or
// share more than quotient of the larger word set. A quotient <= 0 selects
// DefaultWordOverlapQuotient.
func WordOverlap(a, b string, quotient float64) bool {
	if quotient <= 0 {
		quotient = DefaultWordOverlapQuotient
	}
	na, nb := cleanText(a), cleanText(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	wa, wb := wordSet(na), wordSet(nb)
	shared := 0
	for word := range wa {
		if _, ok := wb[word]; ok {
			shared++
		}
	}
	larger := max(len(wa), len(wb))
	return float64(shared) > float64(larger)*quotient
}

// NameWords returns the sorted words of a normalized name, so "doe jane" and
// "jane doe" compare equal.
func NameWords(normalizedName string) []string {
	words := strings.Fields(normalizedName)
	sort.Strings(words)
	return words
}

// EditDistance is the rune-level Levenshtein distance between a and b.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func cleanText(text string) string {
	folded := fold(strings.ToLower(text))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func stripLeadingArticles(text string) string {
	words := strings.Fields(text)
	for len(words) > 1 {
		if _, ok := leadingArticles[words[0]]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func fold(text string) string {
	// transform.Chain holds per-use state, so build one per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		return text
	}
	return folded
}
