package spintax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/timmy/contentfactory/internal/random"
)

func TestSubstitute(t *testing.T) {
	ctx := Context{City: "Austin", State: "Texas", County: "Travis", StateCode: "TX", Year: 2024}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"current year", "{Current_Year}", "2024"},
		{"next and last year", "{Last_Year}-{Next_Year}", "2023-2025"},
		{"case insensitive", "{CITY}, {state} ({County})", "Austin, Texas (Travis)"},
		{"state code", "{State_Code}", "TX"},
		{"unknown placeholder untouched", "{Zip} near {City}", "{Zip} near Austin"},
		{"no tokens", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.template, ctx))
		})
	}
}

func TestExpand_CurrentYear(t *testing.T) {
	assert.Equal(t, "2024", Expand("{Current_Year}", Context{Year: 2024}))
}

func TestExpand_NoGroupsEqualsSubstitution(t *testing.T) {
	ctx := Context{City: "Boise", State: "Idaho", Year: 2021}
	template := "Best roofers in {City}, {State} for {Current_Year}."

	engine := New(random.NewSeeded(1))
	assert.Equal(t, Substitute(template, ctx), engine.Expand(template, ctx))
	assert.Equal(t, "Best roofers in Boise, Idaho for 2021.", engine.Expand(template, ctx))
}

func TestExpand_ResolvesAllGroups(t *testing.T) {
	templates := []string{
		"{a|b|c}",
		"{a{1|2}|b}",
		"{Hello|Hi} {there|friend}, {we {really|truly} {care|mean it}|thanks}!",
		"{{{x|y}|z}|w}",
		"{a||b}",
	}

	engine := New(random.NewSeeded(42))
	for _, tpl := range templates {
		t.Run(tpl, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				out := engine.Expand(tpl, Context{})
				assert.NotContains(t, out, "{")
				assert.NotContains(t, out, "}")
			}
		})
	}
}

func TestExpand_NestedOutcomes(t *testing.T) {
	engine := New(random.NewSeeded(7))
	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		seen[engine.Expand("{a{1|2}|b}", Context{})] = true
	}

	for out := range seen {
		assert.Contains(t, []string{"a1", "a2", "b"}, out)
	}
	assert.Len(t, seen, 3, "every branch should be reachable")
}

func TestExpand_EmptyOption(t *testing.T) {
	engine := New(random.NewSeeded(3))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[engine.Expand("{a||b}", Context{})] = true
	}
	assert.True(t, seen[""], "empty option should be drawable")
	assert.True(t, seen["a"])
	assert.True(t, seen["b"])
}

func TestExpand_MalformedInputTerminates(t *testing.T) {
	engine := New(random.NewSeeded(9))

	assert.Equal(t, "{open and x", engine.Expand("{open and {x}", Context{}))
	assert.Equal(t, "closed} y", engine.Expand("closed} {y}", Context{}))

	deep := strings.Repeat("{", 150) + "x" + strings.Repeat("}", 150)
	out := engine.Expand(deep, Context{})
	assert.Contains(t, out, "x")
}

func TestExpand_SeededIsReproducible(t *testing.T) {
	tpl := "{one|two|three} {four|five|six} {seven|eight}"
	a := New(random.NewSeeded(11)).Expand(tpl, Context{})
	b := New(random.NewSeeded(11)).Expand(tpl, Context{})
	assert.Equal(t, a, b)
}
