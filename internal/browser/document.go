package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DocumentSession queries a static HTML snapshot of a rendered page.
type DocumentSession struct {
	doc *goquery.Document
}

// NewDocumentSession parses html into a queryable session.
func NewDocumentSession(html string) (*DocumentSession, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("browser: parse html: %w", err)
	}
	return &DocumentSession{doc: doc}, nil
}

// QueryAll returns every element matching selector in document order.
// Text joins the element's text nodes with single spaces, so adjacent
// blocks such as <div>180,120</div><div>0.1%</div> stay separate.
func (d *DocumentSession) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Element
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		out = append(out, Element{
			Href: href,
			Text: visibleText(s),
		})
	})
	return out, nil
}

// visibleText approximates innerText without a layout engine. Every text
// node is its own word, so a number split across inline elements such as
// <b>166</b>,340 comes out as "166 ,340". Elements hidden by stylesheet
// rules are included; only the hidden attribute and inline display:none
// are honoured.
func visibleText(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			parts = append(parts, n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Noscript || hidden(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") {
				return true
			}
		}
	}
	return false
}

// Close is a no-op; a snapshot holds no external resources.
func (d *DocumentSession) Close() error {
	return nil
}

// StaticRenderer serves a fixed HTML document for every URL. It stands in
// for a browser where the page markup is already known.
type StaticRenderer struct {
	HTML string
	Err  error
}

// Open returns a DocumentSession over r.HTML, or r.Err if set.
func (r *StaticRenderer) Open(ctx context.Context, pageURL string) (Session, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	doc, err := NewDocumentSession(r.HTML)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
