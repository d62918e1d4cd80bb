// Package chunking splits section text into completion-sized pieces.
package chunking

import "strings"

// Splitter greedily packs whole paragraphs into chunks under MaxChars. A
// paragraph is never split: one that exceeds the budget on its own becomes
// its own oversized chunk rather than being cut mid-paragraph.
type Splitter struct {
	MaxChars int
}

func NewSplitter(maxChars int) *Splitter {
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &Splitter{MaxChars: maxChars}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.MaxChars {
		return []string{text}
	}

	var out []string
	var current strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(para) > s.MaxChars {
			out = append(out, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
