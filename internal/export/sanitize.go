package export

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// annotationPairs are the delimiter styles whose enclosed text is dropped
// from titles.
var annotationPairs = [][2]string{
	{"【", "】"},
	{"[", "]"},
	{"「", "」"},
	{"『", "』"},
	{"（", "）"},
	{"(", ")"},
}

var (
	annotationRes = buildAnnotationRes()
	editionSuffix = regexp.MustCompile(`\s*[（(]\s*[全新增修訂]*第?[0-9一二三四五六七八九十]+[版本]+\s*[）)]\s*$`)
	colonTail     = regexp.MustCompile(`[：:].*$`)
	trailingPunct = regexp.MustCompile(`[：:、，,。.]+$`)
)

func buildAnnotationRes() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(annotationPairs))
	for _, p := range annotationPairs {
		l, r := regexp.QuoteMeta(p[0]), regexp.QuoteMeta(p[1])
		out = append(out, regexp.MustCompile(l+`[^`+r+`]*`+r))
	}
	return out
}

// runeLen counts characters, not bytes.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

// CleanTitle removes annotations, an edition suffix and any colon
// subtitle. It returns "" when nothing is left.
func CleanTitle(name string) string {
	s := name
	for _, re := range annotationRes {
		s = re.ReplaceAllString(s, "")
	}
	s = editionSuffix.ReplaceAllString(s, "")
	s = colonTail.ReplaceAllString(s, "")
	s = collapse(s)
	s = trailingPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CleanAuthor keeps only the first author: text is cut at the earliest
// indicator, then at the earliest separator.
func CleanAuthor(author string, indicators, separators []string) string {
	s := strings.TrimSpace(author)
	if i := earliest(s, indicators); i >= 0 {
		s = s[:i]
	}
	if i := earliest(s, separators); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func earliest(s string, needles []string) int {
	best := -1
	for _, n := range needles {
		if n == "" {
			continue
		}
		if i := strings.Index(s, n); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func isPlaceholder(s string, placeholders []string) bool {
	for _, p := range placeholders {
		if s == p {
			return true
		}
	}
	return false
}
