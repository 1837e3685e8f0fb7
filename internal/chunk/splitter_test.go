package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(2000, 50)
	chunks := s.Split("a short paragraph")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "a short paragraph" {
		t.Errorf("short text was altered: %q", chunks[0])
	}
}

func TestSplit_WhitespaceOnly(t *testing.T) {
	s := NewSplitter(2000, 50)
	if chunks := s.Split("   \n\n \t "); chunks != nil {
		t.Errorf("expected no chunks for whitespace input, got %v", chunks)
	}
}

func TestSplit_LongTextRespectsBudgetAndOverlap(t *testing.T) {
	sentence := "The quick brown fox jumps over the lazy dog near the river bank today"
	var sb strings.Builder
	for sb.Len() < 5000 {
		if sb.Len() > 0 {
			sb.WriteString(". ")
		}
		sb.WriteString(sentence)
	}
	text := sb.String()

	s := NewSplitter(2000, 50)
	chunks := s.Split(text)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for %d chars, got %d", utf8.RuneCountInString(text), len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 2000 {
			t.Errorf("chunk %d has %d chars, budget is 2000", i, n)
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is whitespace only", i)
		}
	}
	// Each chunk after the first starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		tail := lastChars(chunks[i-1], 50)
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not begin with the 50-char tail of chunk %d", i, i-1)
		}
	}
}

func TestSplit_PrefersCoarseSeparators(t *testing.T) {
	para1 := strings.Repeat("alpha ", 60) // ~360 chars
	para2 := strings.Repeat("beta ", 60)
	text := strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2)

	s := NewSplitter(400, 0)
	chunks := s.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("expected paragraph-boundary split into 2 chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], "alpha") || !strings.HasPrefix(chunks[1], "beta") {
		t.Errorf("split did not follow the paragraph boundary: %q / %q", chunks[0][:10], chunks[1][:10])
	}
}

func TestSplit_UnbreakableTextHardSplits(t *testing.T) {
	text := strings.Repeat("x", 250)

	s := NewSplitter(100, 10)
	chunks := s.Split(text)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 windows, got %d", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 100 {
			t.Errorf("window %d exceeds budget: %d chars", i, utf8.RuneCountInString(c))
		}
	}
	// Fixed windows advance by size minus overlap.
	if chunks[0] != strings.Repeat("x", 100) {
		t.Errorf("unexpected first window length %d", len(chunks[0]))
	}
}

func TestSplit_MultibyteRunes(t *testing.T) {
	text := strings.Repeat("é", 150)

	s := NewSplitter(100, 0)
	chunks := s.Split(text)

	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 100 {
			t.Errorf("chunk %d has %d runes, budget is 100", i, utf8.RuneCountInString(c))
		}
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d split inside a rune", i)
		}
	}
}

func TestLastChars(t *testing.T) {
	if got := lastChars("hello", 3); got != "llo" {
		t.Errorf("expected %q, got %q", "llo", got)
	}
	if got := lastChars("hi", 10); got != "hi" {
		t.Errorf("expected %q, got %q", "hi", got)
	}
	if got := lastChars("ααββ", 2); got != "ββ" {
		t.Errorf("expected %q, got %q", "ββ", got)
	}
}
