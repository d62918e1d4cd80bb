package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	s := NewSplitter(100)
	got := s.Split("short section text")
	if len(got) != 1 || got[0] != "short section text" {
		t.Fatalf("Split() = %v", got)
	}
}

func TestSplitEmptyTextIsNil(t *testing.T) {
	s := NewSplitter(100)
	if got := s.Split("   \n  "); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}

func TestSplitPacksWholeParagraphs(t *testing.T) {
	paraA := strings.Repeat("a", 40)
	paraB := strings.Repeat("b", 40)
	paraC := strings.Repeat("c", 40)
	s := NewSplitter(90)

	got := s.Split(paraA + "\n\n" + paraB + "\n\n" + paraC)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(got), got)
	}
	if got[0] != paraA+"\n\n"+paraB {
		t.Fatalf("first chunk should pack two paragraphs, got %q", got[0])
	}
	if got[1] != paraC {
		t.Fatalf("second chunk = %q", got[1])
	}
}

func TestSplitNeverCutsAParagraph(t *testing.T) {
	oversized := strings.Repeat("x", 500)
	s := NewSplitter(100)

	got := s.Split("intro paragraph\n\n" + oversized)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[1] != oversized {
		t.Fatalf("oversized paragraph must stay intact, got %d chars", len(got[1]))
	}
}

func TestNewSplitterDefaultsBudget(t *testing.T) {
	if s := NewSplitter(0); s.MaxChars != 8000 {
		t.Fatalf("MaxChars = %d, want 8000", s.MaxChars)
	}
}
