package structure

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docindexer/internal/markdown"
)

// Organizer builds a hierarchical document tree from markdown source.
// One instance processes one document at a time and holds no
// cross-document state, so independent documents may be organized in
// parallel with separate instances.
type Organizer struct {
	tok *markdown.Tokenizer
}

func NewOrganizer() *Organizer {
	return &Organizer{tok: markdown.NewTokenizer()}
}

// Organize parses markdown source into a document tree with aggregate
// sizes and sequential ids assigned. An unbalanced token stream is a hard
// error rather than a silently truncated tree.
func (o *Organizer) Organize(source string) (*Node, error) {
	doc := NewDocument(source)
	tokens := o.tok.Tokenize([]byte(source))
	if err := processTokens(tokens, doc); err != nil {
		return nil, err
	}
	propagateSizes(doc)
	assignIDs(doc)
	return doc, nil
}

var (
	listOpens  = map[markdown.TokenType]bool{markdown.BulletListOpen: true, markdown.OrderedListOpen: true}
	listCloses = map[markdown.TokenType]bool{markdown.BulletListClose: true, markdown.OrderedListClose: true}
)

// processTokens runs the single linear pass over the token stream,
// attaching each new node to the current top of the parent stack.
// Blockquotes recurse with the quote node as a fresh root, giving the
// inner tokens their own parent and header stacks.
func processTokens(tokens []markdown.Token, parent *Node) error {
	parentStack := []*Node{parent}
	var headerLevels []int

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		current := parentStack[len(parentStack)-1]

		switch tok.Type {
		case markdown.HeadingOpen:
			content, err := inlineAt(tokens, i)
			if err != nil {
				return err
			}
			node := NewHeader(tok.Level, content.Content, tok.StartLine(), tok.EndLine())

			// A heading at level L closes every open scope at level
			// >= L; it becomes a child of the nearest shallower
			// heading, or of the root.
			for len(headerLevels) > 0 && headerLevels[len(headerLevels)-1] >= tok.Level {
				headerLevels = headerLevels[:len(headerLevels)-1]
				parentStack = parentStack[:len(parentStack)-1]
			}
			current = parentStack[len(parentStack)-1]
			current.Elements = append(current.Elements, node)
			parentStack = append(parentStack, node)
			headerLevels = append(headerLevels, tok.Level)
			i += 3

		case markdown.ParagraphOpen:
			content, err := inlineAt(tokens, i)
			if err != nil {
				return err
			}
			node := NewParagraph(content.Content, tok.StartLine(), tok.EndLine())
			attachInline(content, node)
			current.Elements = append(current.Elements, node)
			i += 3

		case markdown.BulletListOpen, markdown.OrderedListOpen:
			end, err := endIndex(tokens, i, listOpens, listCloses)
			if err != nil {
				return err
			}
			listType := Unordered
			if tok.Type == markdown.OrderedListOpen {
				listType = Ordered
			}
			items := buildListItems(tokens[i+1:end-1], listType)
			node := NewList(listType, items, tok.StartLine(), tok.EndLine())
			current.Elements = append(current.Elements, node)
			i = end

		case markdown.TableOpen:
			end, err := endIndex(tokens, i,
				map[markdown.TokenType]bool{markdown.TableOpen: true},
				map[markdown.TokenType]bool{markdown.TableClose: true})
			if err != nil {
				return err
			}
			rows := parseTableRows(tokens[i+1 : end-1])
			node := NewTable(formatTableContent(rows), rows, tok.StartLine(), tok.EndLine())
			current.Elements = append(current.Elements, node)
			i = end

		case markdown.CodeBlock, markdown.Fence:
			node := NewCode(tok.Content, tok.Info, tok.StartLine(), tok.EndLine())
			current.Elements = append(current.Elements, node)
			i++

		case markdown.HR:
			current.Elements = append(current.Elements, NewHR())
			i++

		case markdown.BlockquoteOpen:
			end, err := endIndex(tokens, i,
				map[markdown.TokenType]bool{markdown.BlockquoteOpen: true},
				map[markdown.TokenType]bool{markdown.BlockquoteClose: true})
			if err != nil {
				return err
			}
			node := NewBlockquote(tok.StartLine(), tok.EndLine())
			current.Elements = append(current.Elements, node)
			if err := processTokens(tokens[i+1:end-1], node); err != nil {
				return err
			}
			// The quote's own content is the single-level join of its
			// direct children's content.
			node.Content = joinContent(node.Elements, " ")
			node.ContentSize = strlen(node.Content)
			node.Size = node.ContentSize
			i = end

		default:
			// Softbreaks, close tokens already consumed by jumps, and
			// inline marks not modeled as structure.
			i++
		}
	}
	return nil
}

// inlineAt returns the inline content token following an open token,
// failing fast when the stream is truncated or malformed.
func inlineAt(tokens []markdown.Token, i int) (markdown.Token, error) {
	if i+2 >= len(tokens) || tokens[i+1].Type != markdown.Inline {
		return markdown.Token{}, fmt.Errorf("malformed token stream: %s at index %d has no inline content", tokens[i].Type, i)
	}
	return tokens[i+1], nil
}

// endIndex locates the matching close for the open token at start using a
// depth-balanced scan, returning the index one past the close token.
func endIndex(tokens []markdown.Token, start int, opens, closes map[markdown.TokenType]bool) (int, error) {
	depth := 1
	for i := start + 1; i < len(tokens); i++ {
		switch {
		case opens[tokens[i].Type]:
			depth++
		case closes[tokens[i].Type]:
			depth--
		}
		if depth == 0 {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("malformed token stream: no matching close for %s at index %d", tokens[start].Type, start)
}

// attachInline appends leaf nodes for image/link tokens embedded in an
// inline token's children.
func attachInline(content markdown.Token, parent *Node) {
	for _, child := range content.Children {
		switch child.Type {
		case markdown.Image:
			parent.Elements = append(parent.Elements, NewImage(child.Content, child.Attrs["src"]))
		case markdown.Link:
			parent.Elements = append(parent.Elements, NewLink(child.Content, child.Attrs["href"]))
		}
	}
}

// buildListItems extracts list item nodes from the tokens strictly
// between a list's open and close. Each item's text comes from its first
// paragraph; embedded images/links become the item's children.
func buildListItems(tokens []markdown.Token, listType ListType) []*Node {
	var items []*Node
	i := 0
	for i < len(tokens) {
		if tokens[i].Type != markdown.ListItemOpen {
			i++
			continue
		}

		contentIdx := i + 1
		for contentIdx < len(tokens) && tokens[contentIdx].Type != markdown.ParagraphOpen {
			contentIdx++
		}
		if contentIdx+1 < len(tokens) && tokens[contentIdx+1].Type == markdown.Inline {
			content := tokens[contentIdx+1]
			item := NewListItem(content.Content, listType)
			attachInline(content, item)
			items = append(items, item)
		}

		end := i + 1
		for end < len(tokens) && tokens[end].Type != markdown.ListItemClose {
			end++
		}
		i = end + 1
	}
	return items
}

// parseTableRows reads tr/th/td tokens into rows of cell strings. A cell
// open not followed by an inline token yields an empty cell.
func parseTableRows(tokens []markdown.Token) [][]string {
	var rows [][]string
	var row []string
	for i := 0; i < len(tokens); i++ {
		switch tokens[i].Type {
		case markdown.TrOpen:
			row = []string{}
		case markdown.TrClose:
			rows = append(rows, row)
		case markdown.ThOpen, markdown.TdOpen:
			if i+1 < len(tokens) && tokens[i+1].Type == markdown.Inline {
				row = append(row, tokens[i+1].Content)
			} else {
				row = append(row, "")
			}
		}
	}
	return rows
}

// formatTableContent renders rows as a markdown table string: header row,
// separator matching the column count, then data rows.
func formatTableContent(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(rows[0], " | ") + " |\n")
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows[1:] {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}

// propagateSizes rewrites every node's size to its own content size plus
// the propagated sizes of its children and list items, post-order.
func propagateSizes(n *Node) int {
	total := n.ContentSize
	for _, child := range n.Elements {
		total += propagateSizes(child)
	}
	for _, item := range n.Items {
		total += propagateSizes(item)
	}
	// Table rows are already folded into the formatted content.
	n.Size = total
	return total
}

// assignIDs numbers every node 1..N in document order, depth-first,
// elements before list items.
func assignIDs(root *Node) {
	next := 1
	var assign func(*Node)
	assign = func(n *Node) {
		n.ID = next
		next++
		for _, child := range n.Elements {
			assign(child)
		}
		for _, item := range n.Items {
			assign(item)
		}
	}
	assign(root)
}
