// Package textutil converts assembled HTML into plain text for counting
// and comparison.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
)

// StripHTML returns the text content of an HTML fragment with whitespace
// collapsed to single spaces. Script and style bodies are dropped.
func StripHTML(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if isRawText(z) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if isRawText(z) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawText(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	tag := string(name)
	return tag == "script" || tag == "style"
}

// WordCount counts whitespace separated tokens of the stripped text.
func WordCount(fragment string) int {
	return len(strings.Fields(StripHTML(fragment)))
}

// Truncate shortens plain text to at most max runes, cutting at the last
// word boundary when one exists.
func Truncate(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	cut := string(r[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

// Slugify builds a URL path segment from a title. Accented letters are
// folded to their base letter ("São Paulo" becomes "sao-paulo").
func Slugify(title string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(foldAccents(title)), "-")
	return strings.Trim(s, "-")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
