package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Tokenizer flattens a goldmark AST into the markdown-it-style token
// stream the structure organizer consumes.
type Tokenizer struct {
	md goldmark.Markdown
}

// NewTokenizer builds a tokenizer with GFM extensions enabled so tables
// are parsed as structure rather than paragraphs.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Tokenize parses markdown source and returns the flat event stream.
func (t *Tokenizer) Tokenize(source []byte) []Token {
	doc := t.md.Parser().Parse(text.NewReader(source))
	e := &emitter{source: source, lines: newLineIndex(source)}
	e.emitBlocks(doc)
	return e.tokens
}

type emitter struct {
	source []byte
	lines  lineIndex
	tokens []Token
}

func (e *emitter) emitBlocks(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		e.emitBlock(n)
	}
}

func (e *emitter) emitBlock(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		e.tokens = append(e.tokens,
			Token{Type: HeadingOpen, Level: node.Level, Map: e.lineRange(node)},
			e.inlineToken(node),
			Token{Type: HeadingClose},
		)

	case *ast.Paragraph:
		e.emitParagraph(node)

	case *ast.TextBlock:
		// Tight list items hold a TextBlock; markdown-it still wraps
		// the content in a paragraph, so the stream does too.
		e.emitParagraph(node)

	case *ast.List:
		openType, closeType := BulletListOpen, BulletListClose
		if node.IsOrdered() {
			openType, closeType = OrderedListOpen, OrderedListClose
		}
		e.tokens = append(e.tokens, Token{Type: openType, Map: e.lineRange(node)})
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			e.tokens = append(e.tokens, Token{Type: ListItemOpen})
			e.emitBlocks(item)
			e.tokens = append(e.tokens, Token{Type: ListItemClose})
		}
		e.tokens = append(e.tokens, Token{Type: closeType})

	case *ast.FencedCodeBlock:
		info := ""
		if node.Info != nil {
			info = string(node.Info.Segment.Value(e.source))
		}
		e.tokens = append(e.tokens, Token{
			Type:    Fence,
			Content: e.blockRaw(node, false),
			Info:    info,
			Map:     e.lineRange(node),
		})

	case *ast.CodeBlock:
		e.tokens = append(e.tokens, Token{
			Type:    CodeBlock,
			Content: e.blockRaw(node, false),
			Map:     e.lineRange(node),
		})

	case *ast.ThematicBreak:
		e.tokens = append(e.tokens, Token{Type: HR})

	case *ast.Blockquote:
		e.tokens = append(e.tokens, Token{Type: BlockquoteOpen, Map: e.lineRange(node)})
		e.emitBlocks(node)
		e.tokens = append(e.tokens, Token{Type: BlockquoteClose})

	case *east.Table:
		e.tokens = append(e.tokens, Token{Type: TableOpen, Map: e.lineRange(node)})
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			switch r := row.(type) {
			case *east.TableHeader:
				e.emitTableRow(r, ThOpen, ThClose)
			case *east.TableRow:
				e.emitTableRow(r, TdOpen, TdClose)
			}
		}
		e.tokens = append(e.tokens, Token{Type: TableClose})

	default:
		// HTML blocks and anything else are not modeled.
	}
}

func (e *emitter) emitParagraph(node ast.Node) {
	e.tokens = append(e.tokens,
		Token{Type: ParagraphOpen, Map: e.lineRange(node)},
		e.inlineToken(node),
		Token{Type: ParagraphClose},
	)
}

func (e *emitter) emitTableRow(row ast.Node, cellOpen, cellClose TokenType) {
	e.tokens = append(e.tokens, Token{Type: TrOpen})
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		e.tokens = append(e.tokens,
			Token{Type: cellOpen},
			Token{Type: Inline, Content: e.textOf(cell)},
			Token{Type: cellClose},
		)
	}
	e.tokens = append(e.tokens, Token{Type: TrClose})
}

// inlineToken builds the inline content token for a block: the raw source
// of the block's lines plus any embedded image/link child tokens.
func (e *emitter) inlineToken(block ast.Node) Token {
	return Token{
		Type:     Inline,
		Content:  e.blockRaw(block, true),
		Children: e.inlineChildren(block),
	}
}

// blockRaw returns the raw source covered by a block's line segments.
// Inline blocks get trailing newlines trimmed; code blocks keep them.
func (e *emitter) blockRaw(block ast.Node, trim bool) string {
	lines := block.Lines()
	if lines.Len() == 0 {
		return ""
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	raw := string(e.source[first.Start:last.Stop])
	if trim {
		raw = strings.TrimRight(raw, "\n")
	}
	return raw
}

// inlineChildren collects image and link tokens embedded anywhere in the
// block's inline content, in document order.
func (e *emitter) inlineChildren(block ast.Node) []Token {
	var out []Token
	_ = ast.Walk(block, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch inl := n.(type) {
		case *ast.Image:
			out = append(out, Token{
				Type:    Image,
				Content: e.textOf(inl),
				Attrs:   map[string]string{"src": string(inl.Destination)},
			})
			return ast.WalkSkipChildren, nil
		case *ast.Link:
			out = append(out, Token{
				Type:    Link,
				Content: e.textOf(inl),
				Attrs:   map[string]string{"href": string(inl.Destination)},
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

// textOf extracts plain text from a node's inline descendants.
func (e *emitter) textOf(n ast.Node) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(e.source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(e.textOf(c))
		}
	}
	return strings.TrimSpace(buf.String())
}

// lineRange converts a block's byte segments into a 0-based
// [startLine, endLine) pair, nil when the block has no source lines.
func (e *emitter) lineRange(block ast.Node) *[2]int {
	lines := block.Lines()
	if lines.Len() == 0 {
		return nil
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	start := e.lines.lineOf(first.Start)
	stop := last.Stop
	if stop > first.Start {
		stop--
	}
	end := e.lines.lineOf(stop) + 1
	return &[2]int{start, end}
}

// lineIndex maps byte offsets to 0-based line numbers.
type lineIndex []int

func newLineIndex(source []byte) lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' && i+1 < len(source) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (ix lineIndex) lineOf(offset int) int {
	return sort.Search(len(ix), func(i int) bool { return ix[i] > offset }) - 1
}
