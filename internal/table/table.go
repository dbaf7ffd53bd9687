package table

import (
	"fmt"
	"math"
	"strings"

	"github.com/apgr0ss/covid19-scraper/internal/county"
	"github.com/apgr0ss/covid19-scraper/internal/token"
)

// Column labels in output order. The first column is the row key.
const (
	ColumnState        = "state"
	ColumnConfirmed    = "confirmed"
	ColumnDeaths       = "deaths"
	ColumnFatalityRate = "fatality_rate (%)"
)

// Columns is the fixed header of every StateTable
var Columns = []string{ColumnState, ColumnConfirmed, ColumnDeaths, ColumnFatalityRate}

// maxExactInt is the largest integer a float64 holds without loss.
const maxExactInt = 1 << 53

// Row is one line of a StateTable
type Row struct {
	Key          string  `json:"state"`
	Confirmed    int64   `json:"confirmed"`
	Deaths       int64   `json:"deaths"`
	FatalityRate float64 `json:"fatality_rate"`
}

// Cells returns the row as four cells in Columns order.
func (r Row) Cells() []interface{} {
	return []interface{}{r.Key, r.Confirmed, r.Deaths, r.FatalityRate}
}

// StateTable holds the state aggregate row followed by its county rows.
type StateTable struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// StateRow returns the aggregate row
func (t *StateTable) StateRow() Row {
	return t.Rows[0]
}

// Counties returns the county rows in encounter order
func (t *StateTable) Counties() []Row {
	return t.Rows[1:]
}

// Lookup finds a row by key
func (t *StateTable) Lookup(key string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Key == key {
			return r, true
		}
	}
	return Row{}, false
}

// CanonicalName strips StateSuffix from a state row label.
func CanonicalName(label string) (string, error) {
	if !strings.HasSuffix(label, token.StateSuffix) {
		return "", fmt.Errorf("state label %q does not end with %q", label, token.StateSuffix)
	}
	return label[:len(label)-len(token.StateSuffix)], nil
}

// Assemble builds a StateTable from a cleaned state row and its county groups.
//
// The state row must be exactly [name, confirmed, deaths, fatality_rate] with the name
// carrying StateSuffix. Each county group must have the same shape. Keys must be unique
// within the table.
func Assemble(state []token.Token, groups []county.Group) (*StateTable, error) {
	stateGroup := county.Group{Tokens: state}

	label, ok := stateGroup.Name()
	if !ok {
		return nil, &ShapeError{
			State:  stateGroup.Label(),
			Row:    stateGroup.Label(),
			Fields: len(state),
			Reason: "state row does not start with a name",
		}
	}

	name, err := CanonicalName(label)
	if err != nil {
		return nil, &ShapeError{State: label, Row: label, Fields: len(state), Reason: err.Error()}
	}

	t := &StateTable{
		Name: name,
		Rows: make([]Row, 0, len(groups)+1),
	}
	seen := make(map[string]bool, len(groups)+1)

	for _, g := range append([]county.Group{stateGroup}, groups...) {
		row, err := buildRow(name, g)
		if err != nil {
			return nil, err
		}
		if seen[row.Key] {
			return nil, &KeyCollisionError{First: row.Key, Second: row.Key}
		}
		seen[row.Key] = true
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// buildRow converts one group to a Row, enforcing the fixed shape and column types.
func buildRow(state string, g county.Group) (Row, error) {
	key, ok := g.Name()
	if !ok {
		return Row{}, &ShapeError{State: state, Row: g.Label(), Fields: len(g.Tokens), Reason: "row does not start with a name"}
	}

	values := g.Values()
	if len(values) != len(Columns)-1 {
		return Row{}, &ShapeError{State: state, Row: key, Fields: len(g.Tokens), Reason: "wrong number of fields"}
	}
	for _, v := range values {
		if !v.IsNumber() {
			return Row{}, &ShapeError{State: state, Row: key, Fields: len(g.Tokens), Reason: fmt.Sprintf("non-numeric field %q", v.String())}
		}
	}

	confirmed, err := toCount(state, key, ColumnConfirmed, values[0].Value)
	if err != nil {
		return Row{}, err
	}
	deaths, err := toCount(state, key, ColumnDeaths, values[1].Value)
	if err != nil {
		return Row{}, err
	}

	rate := values[2].Value
	if rate < 0 || rate > 100 {
		return Row{}, &ShapeError{State: state, Row: key, Fields: len(g.Tokens), Reason: fmt.Sprintf("fatality rate %v outside [0, 100]", rate)}
	}

	return Row{Key: key, Confirmed: confirmed, Deaths: deaths, FatalityRate: rate}, nil
}

func toCount(state, row, column string, v float64) (int64, error) {
	if v < 0 || v > maxExactInt || v != math.Trunc(v) {
		return 0, &CoercionError{State: state, Row: row, Column: column, Value: v}
	}
	return int64(v), nil
}
