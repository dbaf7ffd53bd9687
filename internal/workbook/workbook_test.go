package workbook

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/apgr0ss/covid19-scraper/internal/table"
	"github.com/xuri/excelize/v2"
)

func sampleTable(name string, counties ...string) *table.StateTable {
	t := &table.StateTable{
		Name: name,
		Rows: []table.Row{{Key: name + " (State-level)", Confirmed: 100, Deaths: 5, FatalityRate: 5}},
	}
	for i, c := range counties {
		t.Rows = append(t.Rows, table.Row{Key: c, Confirmed: int64(60 - i), Deaths: 2, FatalityRate: 3.33})
	}
	return t
}

func TestCollection_Add(t *testing.T) {
	c := NewCollection()

	if err := c.Add(sampleTable("Washington", "King")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := c.Add(sampleTable("Oregon")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if !reflect.DeepEqual(c.Names(), []string{"Washington", "Oregon"}) {
		t.Errorf("Names() = %v", c.Names())
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if got, ok := c.Get("Oregon"); !ok || got.Name != "Oregon" {
		t.Errorf("Get(Oregon) = %v, %v", got, ok)
	}

	tests := []struct {
		name       string
		state      string
		wantSecond string
		wantFirst  string
	}{
		{"same name", "Washington", "Washington", "Washington"},
		{"sheet names differ only by case", "OREGON", "OREGON", "Oregon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Add(sampleTable(tt.state))
			var collision *table.KeyCollisionError
			if !errors.As(err, &collision) {
				t.Fatalf("Add() error = %v, want KeyCollisionError", err)
			}
			if collision.First != tt.wantFirst || collision.Second != tt.wantSecond {
				t.Errorf("collision = %+v, want %s/%s", collision, tt.wantFirst, tt.wantSecond)
			}
		})
	}

	if c.Len() != 2 {
		t.Errorf("Len() after collisions = %d, want 2", c.Len())
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Washington", "Washington"},
		{"Wuhan/Hubei", "WuhanHubei"},
		{"[Diamond Princess]", "Diamond Princess"},
		{"'Quoted'", "Quoted"},
		{"", "Sheet"},
		{"?*", "Sheet"},
		{strings.Repeat("a", 40), strings.Repeat("a", 31)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SheetName(tt.in); got != tt.want {
				t.Errorf("SheetName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	c := NewCollection()
	if err := c.Add(sampleTable("Testland", "Countyville", "Townburg")); err != nil {
		t.Fatal(err)
	}
	if err := c.Add(sampleTable("Other/State")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(c, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close() // nolint:errcheck

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Testland", "OtherState"}) {
		t.Errorf("GetSheetList() = %v", got)
	}

	rows, err := f.GetRows("Testland")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		{"state", "confirmed", "deaths", "fatality_rate (%)"},
		{"Testland (State-level)", "100", "5", "5"},
		{"Countyville", "60", "2", "3.33"},
		{"Townburg", "59", "2", "3.33"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("GetRows() = %v, want %v", rows, want)
	}
}

func TestWriteFile(t *testing.T) {
	c := NewCollection()
	if err := c.Add(sampleTable("Testland", "Countyville")); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteFile(c, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close() // nolint:errcheck

	rows, err := f.GetRows("Testland")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(NewCollection(), &buf); !errors.Is(err, ErrEmpty) {
		t.Errorf("Write() error = %v, want ErrEmpty", err)
	}
}
