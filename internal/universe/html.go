package universe

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/mag7-collector/pkg/httputil"
)

// DefaultSymbolColumn is the header of the ticker column on constituent pages
const DefaultSymbolColumn = "Symbol"

// ParseConstituentsHTML extracts tickers from the first table whose header
// row has a cell named column
func ParseConstituentsHTML(r io.Reader, column string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var tickers []string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		idx := -1
		table.Find("tr").First().Find("th,td").Each(func(i int, cell *goquery.Selection) {
			if strings.TrimSpace(cell.Text()) == column {
				idx = i
			}
		})
		if idx < 0 {
			return true
		}

		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return // header
			}
			cells := row.Find("td")
			if cells.Length() <= idx {
				return
			}
			if t := strings.TrimSpace(cells.Eq(idx).Text()); t != "" {
				tickers = append(tickers, t)
			}
		})
		return len(tickers) == 0
	})

	if len(tickers) == 0 {
		return nil, fmt.Errorf("no table with a %q column found", column)
	}
	return normalize(tickers), nil
}

// FetchConstituents downloads a constituents page and parses its ticker column
func FetchConstituents(ctx context.Context, client *httputil.Client, pageURL, column string) ([]string, error) {
	resp, err := client.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return ParseConstituentsHTML(resp.Body, column)
}
