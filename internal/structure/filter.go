package structure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// FilterProperties returns a deep copy of a serialized tree with every
// named property removed at every nesting level. The input is the generic
// JSON form (maps, slices, scalars); the original is never modified.
func FilterProperties(tree any, exclude []string) any {
	drop := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		drop[p] = true
	}
	return filterProps(tree, drop)
}

func filterProps(v any, drop map[string]bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if drop[k] {
				continue
			}
			out[k] = filterProps(child, drop)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = filterProps(item, drop)
		}
		return out
	default:
		return v
	}
}

// FilterEmptyElements returns a deep copy with the "elements" key dropped
// from any node where it holds an empty sequence. Applying it twice is a
// no-op.
func FilterEmptyElements(tree any) any {
	switch val := tree.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if k == "elements" {
				if seq, ok := child.([]any); ok && len(seq) == 0 {
					continue
				}
			}
			out[k] = FilterEmptyElements(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = FilterEmptyElements(item)
		}
		return out
	default:
		return tree
	}
}

// Generic converts a node tree to its serialized (generic JSON) form for
// property filtering.
func (n *Node) Generic() (map[string]any, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("serialize tree: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("deserialize tree: %w", err)
	}
	return out, nil
}

// Load reads a previously saved structure tree, so the chunk planner can
// run without re-parsing the markdown.
func Load(r io.Reader) (*Node, error) {
	var n Node
	dec := json.NewDecoder(r)
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("decode structure tree: %w", err)
	}
	if n.Type == "" {
		return nil, fmt.Errorf("decode structure tree: missing node type")
	}
	return &n, nil
}

// Save writes a tree as indented JSON, with empty elements pruned and the
// requested properties omitted.
func Save(w io.Writer, tree *Node, omitProperties []string) error {
	generic, err := tree.Generic()
	if err != nil {
		return err
	}
	filtered := FilterEmptyElements(generic)
	if len(omitProperties) > 0 {
		filtered = FilterProperties(filtered, omitProperties)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(filtered); err != nil {
		return fmt.Errorf("encode structure tree: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
