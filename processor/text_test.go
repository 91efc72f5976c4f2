package processor

import (
	"testing"
)

func TestTextProcessor_Extract(t *testing.T) {
	p := NewTextProcessor()

	content := "Hello, my friend.\n\n  Good night  \n\t\nThank you"
	parsed, nodes, err := p.Extract(content)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if parsed == nil {
		t.Fatal("parsed should not be nil")
	}

	if len(nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(nodes))
	}

	want := []struct{ id, text, line string }{
		{"line-1", "Hello, my friend.", "1"},
		{"line-3", "Good night", "3"},
		{"line-5", "Thank you", "5"},
	}
	for i, w := range want {
		n := nodes[i]
		if n.ID != w.id || n.Text != w.text || n.Metadata["line"] != w.line {
			t.Errorf("node %d = %+v, want %+v", i, n, w)
		}
		if n.NodeType != "text_line" {
			t.Errorf("node %d type = %q", i, n.NodeType)
		}
	}
}

func TestTextProcessor_Apply_PreservesLayout(t *testing.T) {
	p := NewTextProcessor()

	content := "Hello\n\n  Good night  \r\nuntranslated\n"
	parsed, nodes, err := p.Extract(content)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	translations := map[string]string{
		nodes[0].Hash: "ｺﾝﾆﾁﾊ",
		nodes[1].Hash: "ｵﾔｽﾐ",
	}

	result, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := "ｺﾝﾆﾁﾊ\n\n  ｵﾔｽﾐ  \r\nuntranslated\n"
	if result != want {
		t.Errorf("Apply = %q, want %q", result, want)
	}
}

func TestTextProcessor_Apply_RepeatedLines(t *testing.T) {
	p := NewTextProcessor()

	parsed, nodes, _ := p.Extract("friend\nfriend")
	result, err := p.Apply(parsed, nodes, map[string]string{nodes[0].Hash: "ﾄﾓ"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if result != "ﾄﾓ\nﾄﾓ" {
		t.Errorf("Apply = %q", result)
	}
}

func TestTextProcessor_Apply_DoesNotMutateParsed(t *testing.T) {
	p := NewTextProcessor()

	parsed, nodes, _ := p.Extract("friend")
	if _, err := p.Apply(parsed, nodes, map[string]string{nodes[0].Hash: "ﾄﾓ"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if lines := parsed.([]string); lines[0] != "friend" {
		t.Errorf("parsed lines changed: %q", lines)
	}
}

func TestTextProcessor_Apply_BadLineNumber(t *testing.T) {
	p := NewTextProcessor()

	parsed, _, _ := p.Extract("friend")
	nodes := []TextNode{{ID: "x", Hash: "h", Metadata: map[string]string{"line": "9"}}}
	if _, err := p.Apply(parsed, nodes, map[string]string{"h": "ﾄﾓ"}); err == nil {
		t.Error("expected error for out-of-range line")
	}
}

func TestTextProcessor_Empty(t *testing.T) {
	p := NewTextProcessor()

	_, nodes, err := p.Extract("")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("Expected 0 nodes, got %d", len(nodes))
	}
}

func TestTextProcessor_ContentType(t *testing.T) {
	if got := NewTextProcessor().ContentType(); got != "text" {
		t.Errorf("Expected 'text', got %q", got)
	}
}
