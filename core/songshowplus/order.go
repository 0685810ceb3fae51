package songshowplus

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// orderGrammar splits a verse order field into labels. A number standing on
// its own belongs to the word before it, so "Verse 1 Chorus" is the two
// labels "Verse 1" and "Chorus", while "V1 C" stays "V1" and "C".
//
//nolint:govet // participle grammar tags are not standard struct tags
type orderGrammar struct {
	Labels []*orderLabel `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type orderLabel struct {
	Named *namedLabel `  @@`
	Bare  *string     `| @Number`
}

//nolint:govet // participle grammar tags are not standard struct tags
type namedLabel struct {
	Name   string  `@Word`
	Number *string `@Number?`
}

var orderLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[0-9]\S*`},
	{Name: "Word", Pattern: `[^\s0-9]\S*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var orderParser = participle.MustBuild[orderGrammar](
	participle.Lexer(orderLexer),
	participle.Elide("Whitespace"),
)

// SplitVerseOrder returns the verse labels in a verse order field.
func SplitVerseOrder(field string) []string {
	g, err := orderParser.ParseString("", field)
	if err != nil {
		return strings.Fields(field)
	}
	labels := make([]string, 0, len(g.Labels))
	for _, l := range g.Labels {
		switch {
		case l.Named != nil && l.Named.Number != nil:
			labels = append(labels, l.Named.Name+" "+*l.Named.Number)
		case l.Named != nil:
			labels = append(labels, l.Named.Name)
		case l.Bare != nil:
			labels = append(labels, *l.Bare)
		}
	}
	return labels
}
