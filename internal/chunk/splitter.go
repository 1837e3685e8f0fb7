package chunk

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the split priority order, coarsest first. The
// empty string is the terminal fallback: a hard character cut.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "? ", "! ", ", ", " ", ""}

// Splitter breaks oversized text into chunks of at most ChunkSize
// characters, preferring coarse boundaries and falling back to finer
// separators only for pieces a coarser split leaves oversized.
// Consecutive chunks share up to Overlap characters of context.
type Splitter struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		Separators: DefaultSeparators,
	}
}

// Split partitions text into ordered chunks, each at most ChunkSize
// characters. Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if runeLen(text) <= s.ChunkSize {
		return []string{text}
	}
	return s.split(text, seps)
}

func (s *Splitter) split(text string, seps []string) []string {
	// Pick the coarsest separator that actually occurs in the text.
	sep := ""
	var finer []string
	for idx, cand := range seps {
		if cand == "" {
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			finer = seps[idx+1:]
			break
		}
	}
	if sep == "" {
		return s.hardSplit(text)
	}

	sepLen := runeLen(sep)
	pieces := strings.Split(text, sep)

	var out []string
	var cur []string
	curLen := 0

	emit := func(chunk string) {
		if strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
	}

	for _, piece := range pieces {
		pl := runeLen(piece)

		// A piece the coarse separator can't shrink below the budget
		// is handed to the finer separators.
		if pl > s.ChunkSize {
			if len(cur) > 0 {
				emit(strings.Join(cur, sep))
				cur, curLen = nil, 0
			}
			out = append(out, s.split(piece, finer)...)
			continue
		}

		added := pl
		if len(cur) > 0 {
			added += sepLen
		}
		if curLen+added > s.ChunkSize && len(cur) > 0 {
			chunk := strings.Join(cur, sep)
			emit(chunk)

			cur, curLen = nil, 0
			if tail := lastChars(chunk, s.Overlap); tail != "" {
				// Seed the next chunk with overlap, unless that alone
				// would push it past the budget.
				if runeLen(tail)+sepLen+pl <= s.ChunkSize {
					cur = []string{tail}
					curLen = runeLen(tail)
				}
			}
			added = pl
			if len(cur) > 0 {
				added += sepLen
			}
		}
		cur = append(cur, piece)
		curLen += added
	}
	if len(cur) > 0 {
		emit(strings.Join(cur, sep))
	}
	return out
}

// hardSplit cuts text into fixed-size character windows with overlap;
// the last resort when no separator applies.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// lastChars returns up to n trailing characters of text, rune-safe.
func lastChars(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
