// ABOUTME: Converts preview HTML into readable terminal text
// ABOUTME: Walks the golang.org/x/net/html tree, skipping scripts and styles

package tui

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText renders raw HTML as markdown-flavoured plain text. Input that
// does not parse is returned unchanged.
func HTMLToText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	var b strings.Builder
	walkReadable(doc, &b, false)
	return collapseBlankLines(strings.TrimSpace(b.String()))
}

func walkReadable(n *html.Node, b *strings.Builder, inPre bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "iframe", "template", "head":
			return
		case "title":
			return
		case "h1":
			b.WriteString("\n# ")
		case "h2":
			b.WriteString("\n## ")
		case "h3", "h4", "h5", "h6":
			b.WriteString("\n### ")
		case "p", "div", "section", "article", "main", "form", "table", "header", "footer", "nav":
			b.WriteString("\n\n")
		case "tr":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" | ")
		case "br":
			b.WriteString("\n")
		case "li":
			b.WriteString("\n- ")
		case "pre":
			b.WriteString("\n```\n")
			inPre = true
		case "button":
			b.WriteString("[")
		case "input":
			if v := attr(n, "value"); v != "" {
				fmt.Fprintf(b, "[%s]", v)
			} else if p := attr(n, "placeholder"); p != "" {
				fmt.Fprintf(b, "[%s]", p)
			} else {
				b.WriteString("[____]")
			}
		case "img":
			if alt := attr(n, "alt"); alt != "" {
				fmt.Fprintf(b, "(image: %s)", alt)
			}
		case "a":
			if href := attr(n, "href"); href != "" {
				if text := nodeText(n); text != "" {
					fmt.Fprintf(b, "[%s](%s)", text, href)
					return
				}
			}
		case "strong", "b":
			b.WriteString("**")
		case "em", "i":
			b.WriteString("*")
		}
	}

	if n.Type == html.TextNode {
		text := n.Data
		if !inPre {
			text = strings.Join(strings.Fields(text), " ")
		}
		if strings.TrimSpace(text) != "" {
			b.WriteString(text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkReadable(c, b, inPre)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "pre":
			b.WriteString("\n```\n")
		case "button":
			b.WriteString("]")
		case "strong", "b":
			b.WriteString("**")
		case "em", "i":
			b.WriteString("*")
		case "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n")
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := 0
	for _, l := range lines {
		l = strings.TrimRight(l, " ")
		if l == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
