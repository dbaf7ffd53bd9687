package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/apgr0ss/covid19-scraper/internal/logger"
)

var wantFixturePairs = []BlockPair{
	{
		State:    "Washington\n2,221\n+200\n110\n+12\n4.95%",
		Counties: "King\n1,170\n+100\n77\n6.58%\nSnohomish\n614\n10\n1.63%",
	},
	{
		State:    "New York\n44,876\n+4,790\n519\n1.16%",
		Counties: "New York City\n26,697\n366\n1.37%",
	},
}

func TestHTML_FileLocation(t *testing.T) {
	src := NewHTML("testdata/page.html")
	defer src.Close() // nolint:errcheck

	pairs, err := src.StateBlocks(context.Background())
	if err != nil {
		t.Fatalf("StateBlocks() error = %v", err)
	}

	if !reflect.DeepEqual(pairs, wantFixturePairs) {
		t.Errorf("StateBlocks() = %#v, want %#v", pairs, wantFixturePairs)
	}
}

func TestHTML_MissingFile(t *testing.T) {
	src := NewHTML(filepath.Join(t.TempDir(), "missing.html"))
	if _, err := src.StateBlocks(context.Background()); err == nil {
		t.Error("StateBlocks() expected error for missing file, got nil")
	}
}

func TestHTML_URLLocation(t *testing.T) {
	page, err := os.ReadFile("testdata/page.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	tests := []struct {
		name       string
		body       string
		statusCode int
		wantError  bool
		wantPairs  int
	}{
		{
			name:       "rendered page",
			body:       string(page),
			statusCode: http.StatusOK,
			wantPairs:  2,
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusServiceUnavailable,
			wantError:  true,
		},
		{
			name:       "page without state rows",
			body:       `<html><body><p>Loading...</p></body></html>`,
			statusCode: http.StatusOK,
			wantPairs:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "covid19-scraper") {
					t.Errorf("User-Agent = %q, should contain 'covid19-scraper'", userAgent)
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body)) // nolint:errcheck
			}))
			defer server.Close()

			src := NewHTML(server.URL, WithHTTPClient(server.Client()))
			defer src.Close() // nolint:errcheck

			pairs, err := src.StateBlocks(context.Background())
			if tt.wantError {
				if err == nil {
					t.Error("StateBlocks() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("StateBlocks() unexpected error: %v", err)
			}
			if len(pairs) != tt.wantPairs {
				t.Errorf("StateBlocks() returned %d pairs, want %d", len(pairs), tt.wantPairs)
			}
		})
	}
}

func TestHTML_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewHTML(server.URL).StateBlocks(ctx); err == nil {
		t.Error("StateBlocks() expected error for canceled context, got nil")
	}
}

func TestHTML_CustomSelectors(t *testing.T) {
	page := `
		<html><body>
			<section class="state"><span>Oregon</span><span>100</span><span>3</span><span>3%</span></section>
			<section class="state"><span>Idaho</span><span>50</span><span>1</span><span>2%</span></section>
			<ul class="list"><li>Multnomah</li><li>40</li><li>1</li><li>2.5%</li></ul>
		</body></html>
	`
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewHTML(path, WithSelectors(Selectors{State: "section.state", Counties: "ul.list"}))
	pairs, err := src.StateBlocks(context.Background())
	if err != nil {
		t.Fatalf("StateBlocks() error = %v", err)
	}

	// Unmatched state rows are dropped, as in a positional zip.
	want := []BlockPair{{State: "Oregon\n100\n3\n3%", Counties: "Multnomah\n40\n1\n2.5%"}}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("StateBlocks() = %#v, want %#v", pairs, want)
	}
}

func TestDefaultSelectors(t *testing.T) {
	got := DefaultSelectors("jsx-1")
	if got.State != ".jsx-1.stat.row.expand" || got.Counties != ".jsx-1.counties" {
		t.Errorf("DefaultSelectors() = %+v", got)
	}
	if DefaultSelectors("").State != "."+DefaultClassPrefix+".stat.row.expand" {
		t.Errorf("DefaultSelectors(\"\") did not fall back to %s", DefaultClassPrefix)
	}
}

func TestInnerText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "one cell per line",
			html: `<div id="x"> <p>Alpha</p>  <p>  1,000 </p><script>ignored()</script><!-- note --></div>`,
			want: "Alpha\n1,000",
		},
		{
			name: "inline markup inside a name",
			html: `<div id="x"><span>St. <b>Louis</b> City</span><span>10</span></div>`,
			want: "St. Louis City\n10",
		},
		{
			name: "nested delta span",
			html: `<div id="x"><span>2,221<span class="delta">+200</span></span><span>4.95%</span></div>`,
			want: "2,221\n+200\n4.95%",
		},
		{
			name: "line break and collapsed whitespace",
			html: `<div id="x">Prince   <em>George's</em><br>12</div>`,
			want: "Prince George's\n12",
		},
		{
			name: "empty selection",
			html: `<div></div>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatal(err)
			}
			if got := InnerText(doc.Find("#x")); got != tt.want {
				t.Errorf("InnerText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTML_InlineCountyName(t *testing.T) {
	page := `
		<html><body>
			<div class="p stat row expand"><span>Missouri</span><span>2,291</span><span>24</span><span>1.05%</span></div>
			<div class="p counties">
				<div class="p stat row"><span>St. <b>Louis</b> City</span><span>10</span><span>0</span><span>0%</span></div>
			</div>
		</body></html>
	`
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	pairs, err := NewHTML(path, WithSelectors(DefaultSelectors("p"))).StateBlocks(context.Background())
	if err != nil {
		t.Fatalf("StateBlocks() error = %v", err)
	}
	if len(pairs) != 1 || pairs[0].Counties != "St. Louis City\n10\n0\n0%" {
		t.Errorf("StateBlocks() = %#v", pairs)
	}
}

func fetchCount() int {
	timings := logger.GetMetricsSnapshot()["timings"].(map[string]map[string]interface{})
	if timing, ok := timings["source.fetch"]; ok {
		return timing["count"].(int)
	}
	return 0
}

func TestHTML_FetchTimingRecordedOnFailure(t *testing.T) {
	before := fetchCount()

	src := NewHTML(filepath.Join(t.TempDir(), "missing.html"))
	if _, err := src.StateBlocks(context.Background()); err == nil {
		t.Fatal("StateBlocks() expected error for missing file, got nil")
	}

	if got := fetchCount(); got != before+1 {
		t.Errorf("source.fetch count = %d, want %d", got, before+1)
	}
}

func TestStatic(t *testing.T) {
	src := NewStatic(wantFixturePairs...)
	pairs, err := src.StateBlocks(context.Background())
	if err != nil {
		t.Fatalf("StateBlocks() error = %v", err)
	}
	if !reflect.DeepEqual(pairs, wantFixturePairs) {
		t.Errorf("StateBlocks() = %v", pairs)
	}

	pairs[0].State = "changed"
	if src.Pairs[0].State == "changed" {
		t.Error("StateBlocks() returned the backing slice")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.StateBlocks(ctx); err == nil {
		t.Error("StateBlocks() expected error for canceled context")
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
