package processor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/gotara"
	"golang.org/x/net/html"
)

// HTMLProcessor extracts and applies translations to HTML content.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: gotara.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// parsedHTML holds the parsed document and the text nodes to mutate, in the
// same order as the extracted TextNodes.
type parsedHTML struct {
	doc       *goquery.Document
	textNodes []*html.Node
}

// Extract parses HTML and extracts translatable text nodes. Every occurrence
// becomes its own TextNode with a position-based ID; repeated texts share a
// hash and are translated once by the Translator.
func (p *HTMLProcessor) Extract(content string) (interface{}, []gotara.TextNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &gotara.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var (
		nodes     []gotara.TextNode
		textNodes []*html.Node
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && p.skip(n) {
			return
		}

		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				node := gotara.TextNode{
					ID:       fmt.Sprintf("node-%d", len(nodes)),
					Text:     trimmed,
					Hash:     gotara.HashText(trimmed),
					NodeType: "html_text",
					Context:  buildContext(n),
					Metadata: map[string]string{},
				}
				if n.Parent != nil {
					node.Metadata["parent_tag"] = n.Parent.Data
				}
				nodes = append(nodes, node)
				textNodes = append(textNodes, n)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}

	return &parsedHTML{doc: doc, textNodes: textNodes}, nodes, nil
}

// Apply writes translations back into the parsed document.
func (p *HTMLProcessor) Apply(parsed interface{}, nodes []gotara.TextNode, translations map[string]string) (string, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok || len(ph.textNodes) != len(nodes) {
		return "", &gotara.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}

	for i, node := range nodes {
		if translated, ok := translations[node.Hash]; ok {
			n := ph.textNodes[i]
			n.Data = preserveWhitespace(n.Data, translated)
		}
	}

	out, err := ph.doc.Html()
	if err != nil {
		return "", &gotara.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return out, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// skip reports whether an element's subtree is excluded from translation.
func (p *HTMLProcessor) skip(n *html.Node) bool {
	if p.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "data-no-translate" {
			return true
		}
	}
	return false
}

// buildContext describes where a text node sits, for logs and diffs.
func buildContext(n *html.Node) string {
	if n.Parent == nil {
		return ""
	}

	var parts []string
	parent := n.Parent

	var classAttr, idAttr string
	for _, attr := range parent.Attr {
		switch attr.Key {
		case "class":
			classAttr = attr.Val
		case "id":
			idAttr = attr.Val
		}
	}

	switch {
	case classAttr != "":
		parts = append(parts, fmt.Sprintf("in <%s class=\"%s\">", parent.Data, classAttr))
	case idAttr != "":
		parts = append(parts, fmt.Sprintf("in <%s id=\"%s\">", parent.Data, idAttr))
	default:
		parts = append(parts, fmt.Sprintf("in <%s>", parent.Data))
	}

	// Up to three ancestors, outermost first
	var ancestors []string
	for a, i := parent.Parent, 0; a != nil && i < 3; a, i = a.Parent, i+1 {
		if a.Type == html.ElementNode && a.Data != "html" && a.Data != "body" {
			ancestors = append([]string{a.Data}, ancestors...)
		}
	}
	if len(ancestors) > 0 {
		parts = append(parts, "inside: "+strings.Join(ancestors, " > "))
	}

	return strings.Join(parts, " | ")
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
