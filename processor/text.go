package processor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/gotara"
)

// TextProcessor treats every non-blank line of plain text as one node. Line
// breaks and the whitespace around each line are kept as they are.
type TextProcessor struct{}

// NewTextProcessor creates a plain-text processor.
func NewTextProcessor() *TextProcessor {
	return &TextProcessor{}
}

// Extract splits content into lines and returns one node per non-blank line.
func (p *TextProcessor) Extract(content string) (interface{}, []gotara.TextNode, error) {
	lines := strings.Split(content, "\n")

	var nodes []gotara.TextNode
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nodes = append(nodes, gotara.TextNode{
			ID:       fmt.Sprintf("line-%d", i+1),
			Text:     trimmed,
			Hash:     gotara.HashText(trimmed),
			NodeType: "text_line",
			Metadata: map[string]string{"line": strconv.Itoa(i + 1)},
		})
	}

	return lines, nodes, nil
}

// Apply replaces each translated line and joins the lines back together.
func (p *TextProcessor) Apply(parsed interface{}, nodes []gotara.TextNode, translations map[string]string) (string, error) {
	lines, ok := parsed.([]string)
	if !ok {
		return "", &gotara.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "text",
		}
	}

	out := make([]string, len(lines))
	copy(out, lines)

	for _, node := range nodes {
		translated, ok := translations[node.Hash]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(node.Metadata["line"])
		if err != nil || n < 1 || n > len(out) {
			return "", &gotara.ProcessorError{
				Message:     "no valid line number",
				Cause:       err,
				ContentType: "text",
				NodeID:      node.ID,
			}
		}
		out[n-1] = preserveWhitespace(out[n-1], translated)
	}

	return strings.Join(out, "\n"), nil
}

// ContentType returns "text".
func (p *TextProcessor) ContentType() string {
	return "text"
}

// Verify TextProcessor implements ContentProcessor
var _ ContentProcessor = (*TextProcessor)(nil)
