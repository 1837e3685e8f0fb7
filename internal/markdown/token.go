package markdown

// TokenType names follow the markdown-it event vocabulary so the stream
// can stand in for any CommonMark-family tokenizer emitting open/close
// events.
type TokenType string

const (
	HeadingOpen     TokenType = "heading_open"
	HeadingClose    TokenType = "heading_close"
	Inline          TokenType = "inline"
	ParagraphOpen   TokenType = "paragraph_open"
	ParagraphClose  TokenType = "paragraph_close"
	BulletListOpen  TokenType = "bullet_list_open"
	BulletListClose TokenType = "bullet_list_close"
	OrderedListOpen TokenType = "ordered_list_open"
	OrderedListClose TokenType = "ordered_list_close"
	ListItemOpen    TokenType = "list_item_open"
	ListItemClose   TokenType = "list_item_close"
	TableOpen       TokenType = "table_open"
	TableClose      TokenType = "table_close"
	TrOpen          TokenType = "tr_open"
	TrClose         TokenType = "tr_close"
	ThOpen          TokenType = "th_open"
	ThClose         TokenType = "th_close"
	TdOpen          TokenType = "td_open"
	TdClose         TokenType = "td_close"
	CodeBlock       TokenType = "code_block"
	Fence           TokenType = "fence"
	HR              TokenType = "hr"
	BlockquoteOpen  TokenType = "blockquote_open"
	BlockquoteClose TokenType = "blockquote_close"
	Image           TokenType = "image"
	Link            TokenType = "link"
)

// Token is one event in the flattened markdown stream.
type Token struct {
	Type TokenType

	// Level is the heading level, heading_open tokens only.
	Level int

	// Content holds the raw text for inline, fence, and code_block
	// tokens. Inline markup (emphasis, code spans) passes through
	// unmodeled.
	Content string

	// Info is the fence info string (language), fence tokens only.
	Info string

	// Map is the 0-based source line range [start, end), nil when the
	// parser supplied no positions for the block.
	Map *[2]int

	// Children carries embedded image/link tokens for inline tokens.
	Children []Token

	// Attrs holds "src" for images and "href" for links.
	Attrs map[string]string
}

// StartLine returns a copy of the token's start line, or nil.
func (t Token) StartLine() *int {
	if t.Map == nil {
		return nil
	}
	v := t.Map[0]
	return &v
}

// EndLine returns a copy of the token's end line, or nil.
func (t Token) EndLine() *int {
	if t.Map == nil {
		return nil
	}
	v := t.Map[1]
	return &v
}
