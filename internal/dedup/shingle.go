// Package dedup finds near-duplicate documents by comparing word shingle sets.
package dedup

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/timmy/contentfactory/internal/textutil"
)

const (
	DefaultNgramSize = 7
	DefaultThreshold = 3

	minWordLength = 3
	sampleSize    = 5
)

// Document is an HTML body to compare.
type Document struct {
	ID   string
	HTML string
}

// Collision is a pair of documents sharing at least the threshold number of shingles.
type Collision struct {
	ArticleA       string   `json:"article_a"`
	ArticleB       string   `json:"article_b"`
	SharedCount    int      `json:"shared_count"`
	Similarity     float64  `json:"similarity"`
	SharedShingles []string `json:"shared_shingles"`
}

type shingleSet struct {
	ordered []string
	set     map[string]struct{}
}

// Shingles returns the distinct n-word shingles of the plain text of fragment
// in order of first appearance. Words of two characters or fewer are ignored.
func Shingles(fragment string, n int) []string {
	return buildSet(fragment, n).ordered
}

func buildSet(fragment string, n int) shingleSet {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(textutil.StripHTML(fragment))) {
		if utf8.RuneCountInString(w) >= minWordLength {
			words = append(words, w)
		}
	}

	s := shingleSet{set: make(map[string]struct{})}
	for i := 0; i+n <= len(words); i++ {
		sh := strings.Join(words[i:i+n], " ")
		if _, ok := s.set[sh]; ok {
			continue
		}
		s.set[sh] = struct{}{}
		s.ordered = append(s.ordered, sh)
	}
	return s
}

// Scan compares every unordered pair of docs and reports those sharing at
// least threshold shingles. Non-positive n or threshold use the defaults.
// The result is deterministic for a given input order.
func Scan(docs []Document, n, threshold int) []Collision {
	if n <= 0 {
		n = DefaultNgramSize
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	collisions := []Collision{}
	if len(docs) < 2 {
		return collisions
	}

	sets := make([]shingleSet, len(docs))
	for i, d := range docs {
		sets[i] = buildSet(d.HTML, n)
	}

	for i := 0; i < len(docs); i++ {
		for j := i + 1; j < len(docs); j++ {
			a, b := sets[i], sets[j]
			var shared []string
			for _, sh := range a.ordered {
				if _, ok := b.set[sh]; ok {
					shared = append(shared, sh)
				}
			}
			if len(shared) < threshold {
				continue
			}

			union := len(a.set) + len(b.set) - len(shared)
			collisions = append(collisions, Collision{
				ArticleA:       docs[i].ID,
				ArticleB:       docs[j].ID,
				SharedCount:    len(shared),
				Similarity:     jaccardPercent(len(shared), union),
				SharedShingles: shared[:min(len(shared), sampleSize)],
			})
		}
	}
	return collisions
}

func jaccardPercent(intersection, union int) float64 {
	if union == 0 {
		return 0
	}
	return math.Round(float64(intersection)/float64(union)*10000) / 100
}
