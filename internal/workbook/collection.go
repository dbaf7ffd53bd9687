package workbook

import (
	"strings"

	"github.com/apgr0ss/covid19-scraper/internal/table"
)

// Collection maps canonical state names to their tables, keeping insertion order.
type Collection struct {
	names  []string
	tables map[string]*table.StateTable
	sheets map[string]string // lowercased sheet name → state name
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{
		tables: make(map[string]*table.StateTable),
		sheets: make(map[string]string),
	}
}

// Add stores t under its canonical name. Two states whose names, or whose sheet
// names, coincide are reported as a KeyCollisionError naming both.
func (c *Collection) Add(t *table.StateTable) error {
	if _, exists := c.tables[t.Name]; exists {
		return &table.KeyCollisionError{First: t.Name, Second: t.Name}
	}

	// Sheet names are case-insensitive in Excel.
	sheet := strings.ToLower(SheetName(t.Name))
	if other, exists := c.sheets[sheet]; exists {
		return &table.KeyCollisionError{First: other, Second: t.Name}
	}

	c.names = append(c.names, t.Name)
	c.tables[t.Name] = t
	c.sheets[sheet] = t.Name
	return nil
}

// Get returns the table stored under name
func (c *Collection) Get(name string) (*table.StateTable, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Names returns state names in the order they were added
func (c *Collection) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Tables returns tables in the order they were added
func (c *Collection) Tables() []*table.StateTable {
	tables := make([]*table.StateTable, 0, len(c.names))
	for _, name := range c.names {
		tables = append(tables, c.tables[name])
	}
	return tables
}

// Len returns the number of states in the collection
func (c *Collection) Len() int {
	return len(c.names)
}
