package token

import (
	"math"
	"strconv"
	"strings"
)

// StateSuffix marks the aggregate row of a state so it can be told apart from county names.
const StateSuffix = " (State-level)"

// changeIndicator prefixes the daily delta shown next to a figure.
const changeIndicator = "+"

// Kind identifies what a token holds
type Kind int

const (
	KindName Kind = iota
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Token is a single cleaned value from a block: a place name or a number.
type Token struct {
	Kind  Kind
	Text  string
	Value float64
}

// Name creates a label token
func Name(s string) Token {
	return Token{Kind: KindName, Text: s}
}

// Number creates a numeric token
func Number(v float64) Token {
	return Token{Kind: KindNumber, Value: v}
}

// IsName reports whether t is a label
func (t Token) IsName() bool {
	return t.Kind == KindName
}

// IsNumber reports whether t is a numeric value
func (t Token) IsNumber() bool {
	return t.Kind == KindNumber
}

// String renders the token the way it would appear on its own line in a block.
func (t Token) String() string {
	if t.IsNumber() {
		return strconv.FormatFloat(t.Value, 'f', -1, 64)
	}
	return t.Text
}

// Clean splits a raw block into lines and converts them to tokens.
//
// Percent signs and commas are removed, lines containing a change indicator are
// discarded, and every remaining line that parses as a finite float becomes a Number.
// Anything else is kept as a Name. Blank lines are skipped, so an empty block yields
// an empty slice.
func Clean(block string) []Token {
	lines := strings.Split(block, "\n")
	tokens := make([]Token, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(stripFormatting(line))
		if line == "" || strings.Contains(line, changeIndicator) {
			continue
		}
		tokens = append(tokens, parse(line))
	}

	return tokens
}

// CleanState cleans a state row block and tags its leading name with StateSuffix.
func CleanState(block string) []Token {
	tokens := Clean(block)
	if len(tokens) > 0 && tokens[0].IsName() {
		tokens[0].Text += StateSuffix
	}
	return tokens
}

// Join renders tokens back into a block, one token per line.
func Join(tokens []Token) string {
	lines := make([]string, len(tokens))
	for i, t := range tokens {
		lines[i] = t.String()
	}
	return strings.Join(lines, "\n")
}

func stripFormatting(s string) string {
	s = strings.ReplaceAll(s, "%", "")
	return strings.ReplaceAll(s, ",", "")
}

// parse decides the kind of a cleaned line. NaN and Inf spellings are labels.
func parse(s string) Token {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Name(s)
	}
	return Number(v)
}
