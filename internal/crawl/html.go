package crawl

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// newsPathFragments mark hrefs that point at article pages rather than
// navigation or live coverage.
var newsPathFragments = []string{
	"/news/articles/",
	"/news/technology-",
	"/news/science-",
	"/news/business-",
	"/news/health-",
}

// articleLinks parses a section page and returns absolute article URLs.
func articleLinks(page, sectionURL string) []string {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}
	base := baseURL(sectionURL)

	var links []string
	for n := range root.Descendants() {
		if n.Type != html.ElementNode || n.Data != "a" {
			continue
		}
		href := attr(n, "href")
		if href == "" || strings.Contains(href, "live") {
			continue
		}
		if !isArticlePath(href) {
			continue
		}
		if strings.HasPrefix(href, "/") {
			href = base + href
		}
		links = append(links, href)
	}
	return links
}

// parseArticle extracts the first h1 as title and the paragraph text of the
// article element as body. When no article element exists, all paragraphs
// are used.
func parseArticle(page string) (title, content string, err error) {
	root, parseErr := html.Parse(strings.NewReader(page))
	if parseErr != nil {
		return "", "", fmt.Errorf("parsing article html: %w", parseErr)
	}

	var articleNode *html.Node
	for n := range root.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.Data {
		case "h1":
			if title == "" {
				title = strings.TrimSpace(text(n))
			}
		case "article":
			if articleNode == nil {
				articleNode = n
			}
		}
	}

	scope := root
	if articleNode != nil {
		scope = articleNode
	}
	var paragraphs []string
	for n := range scope.Descendants() {
		if n.Type == html.ElementNode && n.Data == "p" {
			if t := strings.TrimSpace(text(n)); t != "" {
				paragraphs = append(paragraphs, t)
			}
		}
	}
	return title, strings.Join(paragraphs, " "), nil
}

func isArticlePath(href string) bool {
	for _, fragment := range newsPathFragments {
		if strings.Contains(href, fragment) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			b.WriteString(d.Data)
		}
	}
	return b.String()
}

func baseURL(sectionURL string) string {
	const schemeSep = "://"
	i := strings.Index(sectionURL, schemeSep)
	if i < 0 {
		return ""
	}
	rest := sectionURL[i+len(schemeSep):]
	if j := strings.Index(rest, "/"); j >= 0 {
		rest = rest[:j]
	}
	return sectionURL[:i+len(schemeSep)] + rest
}
