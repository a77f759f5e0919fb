// Package spintax expands {a|b|c} templates and location placeholders.
package spintax

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/timmy/contentfactory/internal/random"
)

// maxPasses bounds resolution of malformed or unbalanced templates.
const maxPasses = 100

// innermostGroup matches a brace group that contains no nested braces.
var innermostGroup = regexp.MustCompile(`\{([^{}]*)\}`)

// Context carries the values substituted for named placeholders.
type Context struct {
	City      string
	State     string
	County    string
	StateCode string
	Year      int
}

type placeholder struct {
	re    *regexp.Regexp
	value func(Context) string
}

var placeholders = []placeholder{
	{regexp.MustCompile(`(?i)\{city\}`), func(c Context) string { return c.City }},
	{regexp.MustCompile(`(?i)\{state\}`), func(c Context) string { return c.State }},
	{regexp.MustCompile(`(?i)\{county\}`), func(c Context) string { return c.County }},
	{regexp.MustCompile(`(?i)\{state_code\}`), func(c Context) string { return c.StateCode }},
	{regexp.MustCompile(`(?i)\{current_year\}`), func(c Context) string { return strconv.Itoa(c.Year) }},
	{regexp.MustCompile(`(?i)\{next_year\}`), func(c Context) string { return strconv.Itoa(c.Year + 1) }},
	{regexp.MustCompile(`(?i)\{last_year\}`), func(c Context) string { return strconv.Itoa(c.Year - 1) }},
}

// Engine expands templates using its random source.
type Engine struct {
	rnd random.Source
}

// New creates an Engine. A nil source uses random.Default().
func New(src random.Source) *Engine {
	return &Engine{rnd: random.OrDefault(src)}
}

// Expand substitutes placeholders and then resolves spintax groups.
// It never fails; malformed input degrades to partially resolved text.
func (e *Engine) Expand(template string, ctx Context) string {
	return e.Resolve(Substitute(template, ctx))
}

// Substitute replaces the known placeholders case-insensitively.
// Unknown placeholders are left as they are.
func Substitute(template string, ctx Context) string {
	out := template
	for _, p := range placeholders {
		v := p.value(ctx)
		out = p.re.ReplaceAllLiteralString(out, v)
	}
	return out
}

// Resolve picks one option for every {..|..} group, innermost first.
func (e *Engine) Resolve(text string) string {
	for i := 0; i < maxPasses; i++ {
		if !innermostGroup.MatchString(text) {
			break
		}
		text = innermostGroup.ReplaceAllStringFunc(text, func(group string) string {
			options := strings.Split(group[1:len(group)-1], "|")
			return options[e.rnd.IntN(len(options))]
		})
	}
	return text
}

// Expand is a convenience wrapper using the default source.
func Expand(template string, ctx Context) string {
	return New(nil).Expand(template, ctx)
}
