package enrich

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	minImageWidth     = 150
	minParagraphRunes = 50
	ellipsis          = "..."
)

var (
	imageDenylist = []string{"edit", "icon", "symbol", "logo", "commons-logo", "wikimedia-button"}

	stopHeadings = []string{
		"table of contents", "references", "bibliography", "see also", "notes",
		"further reading", "external links", "author information", "related entries",
		"academic tools", "other internet resources",
		"referencias", "bibliografía", "bibliografia", "véase también", "vease tambien",
		"notas", "enlaces externos",
	}

	citationMarker = regexp.MustCompile(`\[\d+\]`)
)

// ExtractMainImage returns the main image of an encyclopedia page: the first
// infobox image, else the first content image at least 150px wide whose
// source is not an icon or edit marker. Relative sources are resolved against
// host. It returns "" when nothing qualifies.
func ExtractMainImage(page, host string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}

	if box := findNode(doc, isInfobox); box != nil {
		if img := findNode(box, func(n *html.Node) bool { return n.DataAtom == atom.Img && attr(n, "src") != "" }); img != nil {
			return absoluteSrc(attr(img, "src"), host)
		}
	}

	var found string
	walk(doc, func(n *html.Node) bool {
		if n.DataAtom != atom.Img {
			return true
		}
		src := attr(n, "src")
		if src == "" || denied(src) {
			return true
		}
		width, err := strconv.Atoi(attr(n, "width"))
		if err != nil || width < minImageWidth {
			return true
		}
		found = absoluteSrc(src, host)
		return false
	})
	return found
}

// ExtractBiography collects body paragraphs in document order until a stop
// heading or maxParagraphs is reached, removes citation markers, and caps the
// result at maxChars runes with a trailing ellipsis.
func ExtractBiography(page string, maxParagraphs, maxChars int) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}

	root := findNode(doc, isContentRoot)
	if root == nil {
		root = doc
	}

	var paragraphs []string
	walkNodes(root, func(n *html.Node) walkResult {
		if n.Type != html.ElementNode {
			return walkContinue
		}
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4:
			if isStopHeading(textContent(n)) {
				return walkStop
			}
		case atom.P:
			text := cleanText(textContent(n))
			if utf8.RuneCountInString(text) >= minParagraphRunes {
				paragraphs = append(paragraphs, text)
			}
			if maxParagraphs > 0 && len(paragraphs) >= maxParagraphs {
				return walkStop
			}
			return walkSkip
		case atom.Script, atom.Style, atom.Nav, atom.Table:
			return walkSkip
		}
		return walkContinue
	})

	return truncateRunes(strings.Join(paragraphs, "\n\n"), maxChars)
}

func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxChars])) + ellipsis
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(citationMarker.ReplaceAllString(s, "")), " ")
}

func isStopHeading(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, kw := range stopHeadings {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isInfobox(n *html.Node) bool {
	return n.DataAtom == atom.Table && hasClass(n, "infobox")
}

func isContentRoot(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	id := attr(n, "id")
	return id == "mw-content-text" || id == "main-text" || id == "aueditable" || hasClass(n, "entry-content")
}

func denied(src string) bool {
	lower := strings.ToLower(src)
	for _, d := range imageDenylist {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

func absoluteSrc(src, host string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return strings.TrimRight(host, "/") + src
	}
	return src
}

type walkResult int

const (
	walkStop walkResult = iota
	walkContinue
	walkSkip
)

// walk visits nodes depth-first in document order. visit returns true to
// continue, false to stop the whole walk.
func walk(n *html.Node, visit func(*html.Node) bool) {
	walkNodes(n, func(n *html.Node) walkResult {
		if visit(n) {
			return walkContinue
		}
		return walkStop
	})
}

func walkNodes(n *html.Node, visit func(*html.Node) walkResult) bool {
	switch visit(n) {
	case walkStop:
		return false
	case walkSkip:
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkNodes(c, visit) {
			return false
		}
	}
	return true
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return ""
	}
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(textContent(n))
		b.WriteByte(' ')
	}
	return b.String()
}
