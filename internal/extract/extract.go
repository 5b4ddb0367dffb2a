// Package extract locates the jackpot text node inside fetched page content.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrElementNotFound reports that the selector matched no element.
var ErrElementNotFound = errors.New("element not found")

// Locator finds text nodes in HTML documents by CSS selector.
type Locator struct{}

// FindFirst returns the text of the first element matching selector.
// A selector that matches nothing yields ErrElementNotFound; a missing
// element is not transient, so callers must not retry.
func (Locator) FindFirst(html, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("selector %q: %w", selector, ErrElementNotFound)
	}

	return selection.First().Text(), nil
}
