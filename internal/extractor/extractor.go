// Package extractor derives structured case details from raw case-status
// markup. Extraction is heuristic and best-effort: fields the page does not
// expose are left empty, and absence of matches is never an error. It holds
// no network or browser state so it can be tested against plain HTML.
package extractor

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrParseFailed is returned when extraction itself breaks; its text is the
// client-visible message.
var ErrParseFailed = errors.New("Failed to parse case details")

// StatusActive is the placeholder case status. The lookup page exposes no
// authoritative status field, so extraction never derives one.
const StatusActive = "Active"

// Order is one linked court document.
type Order struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Date  *string `json:"date"`
}

// CaseDetails is the structured extraction result. Slices are always
// non-nil so they serialize as [] rather than null.
type CaseDetails struct {
	Parties         []string `json:"parties"`
	FilingDate      *string  `json:"filing_date"`
	NextHearingDate *string  `json:"next_hearing_date"`
	Orders          []Order  `json:"orders"`
	Status          string   `json:"status"`
}

var (
	// "A vs B", "A Vs. B", "A v/s B" in element text
	partySepRe   = regexp.MustCompile(`(?i)\bvs\.?|\bv/s\b`)
	partySplitRe = regexp.MustCompile(`(?i)\s+(?:vs\.?|v/s)\s+`)

	// day-month-year-ish numeric tokens, "-" or "/" separated
	dateRe = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)

	pdfHrefRe = regexp.MustCompile(`(?i)\.pdf$`)
)

// Extract parses the given HTML and pulls out parties, filing/hearing
// dates, and PDF order links. Relative order links are resolved against
// base. All heuristics are first-match-wins; any internal failure discards
// partial progress and returns ErrParseFailed.
func Extract(rawHTML string, base *url.URL) (details *CaseDetails, err error) {
	defer func() {
		if r := recover(); r != nil {
			details = nil
			err = ErrParseFailed
		}
	}()

	doc, perr := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if perr != nil {
		return nil, ErrParseFailed
	}

	details = &CaseDetails{
		Parties: []string{},
		Orders:  []Order{},
		Status:  StatusActive,
	}

	details.Parties = extractParties(doc)
	details.FilingDate, details.NextHearingDate = extractDates(doc)
	details.Orders = extractOrders(doc, base)

	return details, nil
}

// extractParties finds the first text block containing a "vs" separator and
// splits it into party names. Later matches are ignored.
func extractParties(doc *goquery.Document) []string {
	parties := []string{}

	doc.Find("td, div, span, p, h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !partySepRe.MatchString(ownText(s)) {
			return true
		}

		for _, part := range partySplitRe.Split(strings.TrimSpace(s.Text()), -1) {
			if part = strings.TrimSpace(part); part != "" {
				parties = append(parties, part)
			}
		}
		return len(parties) == 0
	})

	return parties
}

// extractDates scans the document's visible text for date-like tokens. The
// first token in document order is taken as the filing date and, when more
// than one exists, the last as the next hearing date. This is positional,
// not semantic.
func extractDates(doc *goquery.Document) (filing, nextHearing *string) {
	matches := dateRe.FindAllString(visibleText(doc), -1)
	if len(matches) == 0 {
		return nil, nil
	}

	filing = &matches[0]
	if len(matches) > 1 {
		nextHearing = &matches[len(matches)-1]
	}
	return filing, nextHearing
}

// extractOrders collects every PDF hyperlink, resolved to an absolute URL.
func extractOrders(doc *goquery.Document, base *url.URL) []Order {
	orders := []Order{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !pdfHrefRe.MatchString(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}

		title := strings.TrimSpace(s.Text())
		if title == "" {
			title = "Order Document"
		}

		orders = append(orders, Order{Title: title, URL: ref.String()})
	})

	return orders
}

// visibleText joins the document's text nodes with a space, skipping
// script and style content. Plain Text() concatenates adjacent blocks with
// no separator, which glues a token at the end of one block to the start
// of the next and breaks token boundaries.
func visibleText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}
	return b.String()
}

// ownText returns the text held directly by the selection's nodes,
// excluding child elements, so a match points at the enclosing block of
// the text rather than some distant ancestor.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}
