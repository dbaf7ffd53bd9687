package county

import (
	"strings"

	"github.com/apgr0ss/covid19-scraper/internal/token"
)

// Group is the contiguous run of tokens belonging to one county: its name followed
// by its numeric fields.
type Group struct {
	Tokens []token.Token
}

// Name returns the county name. ok is false when the group does not start with a label.
func (g Group) Name() (name string, ok bool) {
	if len(g.Tokens) == 0 || !g.Tokens[0].IsName() {
		return "", false
	}
	return g.Tokens[0].Text, true
}

// Values returns the tokens after the name
func (g Group) Values() []token.Token {
	if _, ok := g.Name(); ok {
		return g.Tokens[1:]
	}
	return g.Tokens
}

// Label returns a human-readable identifier for error messages
func (g Group) Label() string {
	if name, ok := g.Name(); ok {
		return name
	}
	parts := make([]string, len(g.Tokens))
	for i, t := range g.Tokens {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// GroupTokens walks tokens in order and starts a new group at every name after the
// first token. The last open group is always closed, whatever its final token is.
// Concatenating the returned groups reproduces tokens exactly.
func GroupTokens(tokens []token.Token) []Group {
	groups := make([]Group, 0)
	if len(tokens) == 0 {
		return groups
	}

	current := []token.Token{tokens[0]}
	for _, t := range tokens[1:] {
		if t.IsName() {
			groups = append(groups, Group{Tokens: current})
			current = []token.Token{t}
			continue
		}
		current = append(current, t)
	}
	groups = append(groups, Group{Tokens: current})

	return groups
}
