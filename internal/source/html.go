package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/apgr0ss/covid19-scraper/internal/logger"
	"golang.org/x/net/html"
)

const (
	DefaultClassPrefix = "jsx-742282485"
	UserAgent          = "covid19-scraper/1.0 (github.com/apgr0ss/covid19-scraper)"
	Timeout            = 30 * time.Second
)

// Selectors locate the state rows and county lists on the page
type Selectors struct {
	State    string
	Counties string
}

// DefaultSelectors returns the selectors for the tracker's expanded state rows, given the
// generated class prefix the page currently uses.
func DefaultSelectors(classPrefix string) Selectors {
	if classPrefix == "" {
		classPrefix = DefaultClassPrefix
	}
	return Selectors{
		State:    "." + classPrefix + ".stat.row.expand",
		Counties: "." + classPrefix + ".counties",
	}
}

// HTML reads state blocks from a rendered HTML document.
type HTML struct {
	location  string
	client    *http.Client
	selectors Selectors
}

// Option configures an HTML source
type Option func(*HTML)

// WithHTTPClient sets the client used for http(s) locations
func WithHTTPClient(client *http.Client) Option {
	return func(h *HTML) {
		h.client = client
	}
}

// WithSelectors overrides the default selectors
func WithSelectors(sel Selectors) Option {
	return func(h *HTML) {
		h.selectors = sel
	}
}

// NewHTML creates an HTML source. location is an http(s) URL or a file path.
func NewHTML(location string, opts ...Option) *HTML {
	h := &HTML{
		location: location,
		client: &http.Client{
			Timeout: Timeout,
		},
		selectors: DefaultSelectors(""),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// StateBlocks loads the document and pairs each state row with the county list that
// follows it on the page.
func (h *HTML) StateBlocks(ctx context.Context) ([]BlockPair, error) {
	start := time.Now()
	defer func() {
		logger.RecordTiming("source.fetch", time.Since(start))
	}()

	r, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close() // nolint:errcheck

	pairs, err := h.parseBlocks(r)
	if err != nil {
		return nil, err
	}

	return pairs, nil
}

// Close releases idle connections held by the HTTP client
func (h *HTML) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

func (h *HTML) open(ctx context.Context) (io.ReadCloser, error) {
	if !isURL(h.location) {
		f, err := os.Open(h.location)
		if err != nil {
			return nil, fmt.Errorf("opening page: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() // nolint:errcheck
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// parseBlocks extracts state and county blocks from HTML
func (h *HTML) parseBlocks(r io.Reader) ([]BlockPair, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	states := doc.Find(h.selectors.State)
	counties := doc.Find(h.selectors.Counties)

	if states.Length() != counties.Length() {
		logger.Warn("State rows and county lists differ in number", logger.Fields{
			"states":   states.Length(),
			"counties": counties.Length(),
		})
	}

	n := states.Length()
	if counties.Length() < n {
		n = counties.Length()
	}

	pairs := make([]BlockPair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, BlockPair{
			State:    InnerText(states.Eq(i)),
			Counties: InnerText(counties.Eq(i)),
		})
	}

	logger.Debug("Extracted state blocks", logger.Fields{
		"location": h.location,
		"pairs":    len(pairs),
	})

	return pairs, nil
}

// inlineElements only style text and never break a line. Every other element, including
// span (the page renders its spans as flex cells), starts a new line.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "data": true, "dfn": true, "em": true, "font": true, "i": true,
	"kbd": true, "mark": true, "q": true, "s": true, "samp": true, "small": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true, "var": true,
	"wbr": true,
}

// InnerText renders the visible text of a selection one cell per line. Text inside
// inline markup is joined with its surrounding text, so "St. <b>Louis</b> City" stays a
// single line. Whitespace within a line is collapsed.
func InnerText(sel *goquery.Selection) string {
	b := &lineBuilder{}
	for _, n := range sel.Nodes {
		b.collect(n)
	}
	b.flush()
	return strings.Join(b.lines, "\n")
}

type lineBuilder struct {
	lines   []string
	current strings.Builder
}

func (b *lineBuilder) flush() {
	if line := strings.Join(strings.Fields(b.current.String()), " "); line != "" {
		b.lines = append(b.lines, line)
	}
	b.current.Reset()
}

func (b *lineBuilder) collect(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.current.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		case "br":
			b.flush()
			return
		}
		if !inlineElements[n.Data] {
			b.flush()
			defer b.flush()
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.collect(c)
	}
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
