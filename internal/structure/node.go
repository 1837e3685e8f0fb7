package structure

import (
	"fmt"
	"unicode/utf8"
)

// NodeType discriminates the kinds of nodes a document tree can contain.
type NodeType string

const (
	TypeDocument   NodeType = "document"
	TypeParagraph  NodeType = "paragraph"
	TypeList       NodeType = "list"
	TypeListItem   NodeType = "list_item"
	TypeTable      NodeType = "table"
	TypeCodeBlock  NodeType = "code_block"
	TypeHR         NodeType = "hr"
	TypeBlockquote NodeType = "blockquote"
	TypeImage      NodeType = "image"
	TypeLink       NodeType = "link"
)

// HeaderType returns the node type for a heading level, e.g. "h2".
func HeaderType(level int) NodeType {
	return NodeType(fmt.Sprintf("h%d", level))
}

// ListType distinguishes ordered from unordered lists.
type ListType string

const (
	Ordered   ListType = "ordered"
	Unordered ListType = "unordered"
)

// Node is one element of a document structure tree. The zero-valued fields
// of kinds that don't apply to a node's type are omitted from JSON, so the
// serialized form matches the on-disk contract: headers carry "level",
// lists carry "list_type" and "items", tables carry "rows", code blocks
// carry "language", images carry "alt"/"src" and links "text"/"url".
type Node struct {
	ID          int      `json:"id,omitempty"`
	Type        NodeType `json:"type"`
	Content     string   `json:"content"`
	ContentSize int      `json:"content_size"`
	Size        int      `json:"size"`
	Elements    []*Node  `json:"elements"`
	Vectorize   bool     `json:"vectorize"`

	Level    int        `json:"level,omitempty"`
	ListType ListType   `json:"list_type,omitempty"`
	Items    []*Node    `json:"items,omitempty"`
	Rows     [][]string `json:"rows,omitempty"`
	Language string     `json:"language,omitempty"`
	Alt      string     `json:"alt,omitempty"`
	Src      string     `json:"src,omitempty"`
	Text     string     `json:"text,omitempty"`
	URL      string     `json:"url,omitempty"`

	// 0-based source line range [StartLine, EndLine), nil when the
	// tokenizer supplied no source map for the block.
	StartLine *int `json:"start_line,omitempty"`
	EndLine   *int `json:"end_line,omitempty"`
}

// strlen measures content in characters, not bytes. All node sizes and
// chunk budgets use this measure.
func strlen(s string) int {
	return utf8.RuneCountInString(s)
}

func newNode(t NodeType, content string, vectorize bool) *Node {
	size := strlen(content)
	return &Node{
		Type:        t,
		Content:     content,
		ContentSize: size,
		Size:        size,
		Elements:    []*Node{},
		Vectorize:   vectorize,
	}
}

// NewDocument creates the root node. Its content is the full markdown
// source, so the root's content_size is the raw document length.
func NewDocument(content string) *Node {
	return newNode(TypeDocument, content, true)
}

// NewHeader creates a header node for levels 1-6.
func NewHeader(level int, content string, startLine, endLine *int) *Node {
	n := newNode(HeaderType(level), content, true)
	n.Level = level
	n.StartLine = startLine
	n.EndLine = endLine
	return n
}

func NewParagraph(content string, startLine, endLine *int) *Node {
	n := newNode(TypeParagraph, content, true)
	n.StartLine = startLine
	n.EndLine = endLine
	return n
}

// NewList creates a list node. Its own content is the space-joined text of
// its items; the items themselves stay reachable through Items, not
// Elements.
func NewList(listType ListType, items []*Node, startLine, endLine *int) *Node {
	content := joinContent(items, " ")
	n := newNode(TypeList, content, true)
	n.ListType = listType
	n.Items = items
	n.StartLine = startLine
	n.EndLine = endLine
	return n
}

func NewListItem(content string, listType ListType) *Node {
	n := newNode(TypeListItem, content, true)
	n.ListType = listType
	return n
}

// NewTable creates a table node. Content is the markdown-formatted
// rendering of rows, a derived field kept for display and chunking.
func NewTable(content string, rows [][]string, startLine, endLine *int) *Node {
	n := newNode(TypeTable, content, true)
	n.Rows = rows
	n.StartLine = startLine
	n.EndLine = endLine
	return n
}

func NewCode(content, language string, startLine, endLine *int) *Node {
	n := newNode(TypeCodeBlock, content, true)
	n.Language = language
	n.StartLine = startLine
	n.EndLine = endLine
	return n
}

func NewHR() *Node {
	return newNode(TypeHR, "---", false)
}

// NewBlockquote creates an empty blockquote; its content is synthesized
// from its children after they have been attached.
func NewBlockquote(startLine, endLine *int) *Node {
	n := newNode(TypeBlockquote, "", true)
	n.StartLine = startLine
	n.EndLine = endLine
	return n
}

func NewImage(alt, src string) *Node {
	n := newNode(TypeImage, fmt.Sprintf("![%s](%s)", alt, src), false)
	n.Alt = alt
	n.Src = src
	return n
}

func NewLink(text, url string) *Node {
	n := newNode(TypeLink, fmt.Sprintf("[%s](%s)", text, url), false)
	n.Text = text
	n.URL = url
	return n
}

func joinContent(nodes []*Node, sep string) string {
	var out string
	for i, n := range nodes {
		if i > 0 {
			out += sep
		}
		out += n.Content
	}
	return out
}

// FindByID locates a node by its assigned id, depth-first through
// elements. Returns nil when no node matches.
func (n *Node) FindByID(id int) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, child := range n.Elements {
		if found := child.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}
