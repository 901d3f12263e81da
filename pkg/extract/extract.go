// Package extract builds structured PageContent snapshots from raw page
// HTML. It is a pure function of its inputs: no network access, no
// browser dependency, no side effects. The browser session feeds it the
// serialized DOM; tests feed it fixtures.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/entrhq/tourguide/pkg/types"
)

const (
	// maxLinkTextLen filters out icon-only or decorative anchors whose
	// text is empty as well as anchors wrapping whole content blocks.
	maxLinkTextLen = 100

	// maxMainContentLen bounds the text excerpt.
	maxMainContentLen = 500

	// maxContentNodes is how many paragraph/list/span nodes feed the
	// excerpt.
	maxContentNodes = 10
)

// clickableSelector matches the union of native buttons, ARIA buttons,
// submit-type inputs, and elements styled as buttons.
const clickableSelector = `button, [role="button"], input[type="button"], input[type="submit"], .btn`

// PageContent parses html and returns the structured snapshot for a
// page at pageURL with the given title. Relative hrefs are resolved
// against pageURL.
func PageContent(pageURL, title, html string) (types.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.PageContent{}, fmt.Errorf("failed to parse page html: %w", err)
	}

	base, _ := url.Parse(pageURL)

	content := types.PageContent{
		URL:         pageURL,
		Title:       title,
		Headings:    headings(doc),
		Buttons:     buttons(doc),
		Links:       links(doc, base),
		Forms:       forms(doc, base),
		MainContent: mainContent(doc),
	}
	return content, nil
}

// headings returns h1-h6 text in document order, trimmed, with empty
// entries dropped.
func headings(doc *goquery.Document) []string {
	result := []string{}
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			result = append(result, text)
		}
	})
	return result
}

// buttons returns the clickable elements with synthesized selectors.
func buttons(doc *goquery.Document) []types.ButtonElement {
	result := []types.ButtonElement{}
	doc.Find(clickableSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			text = strings.TrimSpace(s.AttrOr("value", ""))
		}
		if text == "" {
			text = "Button"
		}
		result = append(result, types.ButtonElement{
			Text:     text,
			Selector: synthesizeSelector(s),
		})
	})
	return result
}

// synthesizeSelector builds a best-effort CSS selector from the tag
// name, id, and first class token. It is not guaranteed to be unique or
// even valid for unusual id/class values; consumers must tolerate
// ambiguous matches.
func synthesizeSelector(s *goquery.Selection) string {
	selector := goquery.NodeName(s)
	if id := s.AttrOr("id", ""); id != "" {
		selector += "#" + id
	}
	if class := strings.TrimSpace(s.AttrOr("class", "")); class != "" {
		selector += "." + strings.Fields(class)[0]
	}
	return selector
}

// links returns anchors with non-empty text shorter than 100
// characters. Hrefs are resolved to absolute URLs when a base is known.
func links(doc *goquery.Document, base *url.URL) []types.LinkElement {
	result := []types.LinkElement{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || len(text) >= maxLinkTextLen {
			return
		}
		href := s.AttrOr("href", "")
		result = append(result, types.LinkElement{
			Text:     text,
			Href:     resolveHref(base, href),
			Selector: fmt.Sprintf(`a[href=%q]`, href),
		})
	})
	return result
}

// forms returns one descriptor per form, labeling each input by
// placeholder, then name, then tag name.
func forms(doc *goquery.Document, base *url.URL) []types.FormDescriptor {
	result := []types.FormDescriptor{}
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		descriptor := types.FormDescriptor{Inputs: []string{}}
		form.Find("input, textarea, select").Each(func(_ int, input *goquery.Selection) {
			label := input.AttrOr("placeholder", "")
			if label == "" {
				label = input.AttrOr("name", "")
			}
			if label == "" {
				label = goquery.NodeName(input)
			}
			descriptor.Inputs = append(descriptor.Inputs, label)
		})
		if action := form.AttrOr("action", ""); action != "" {
			descriptor.Action = resolveHref(base, action)
		}
		result = append(result, descriptor)
	})
	return result
}

// mainContent concatenates the text of the first ten paragraph, list
// item, and span nodes, truncated to 500 characters.
func mainContent(doc *goquery.Document) string {
	parts := []string{}
	doc.Find("p, li, span").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxContentNodes {
			return false
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
		return true
	})

	joined := strings.Join(parts, " ")
	runes := []rune(joined)
	if len(runes) > maxMainContentLen {
		return string(runes[:maxMainContentLen])
	}
	return joined
}

// resolveHref makes href absolute against base when possible.
func resolveHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
