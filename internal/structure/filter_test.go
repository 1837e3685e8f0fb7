package structure

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func organizeGeneric(t *testing.T, input string) map[string]any {
	t.Helper()
	doc, err := NewOrganizer().Organize(input)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	g, err := doc.Generic()
	if err != nil {
		t.Fatalf("generic: %v", err)
	}
	return g
}

func hasKeyDeep(v any, key string) bool {
	switch t := v.(type) {
	case map[string]any:
		if _, ok := t[key]; ok {
			return true
		}
		for _, child := range t {
			if hasKeyDeep(child, key) {
				return true
			}
		}
	case []any:
		for _, child := range t {
			if hasKeyDeep(child, key) {
				return true
			}
		}
	}
	return false
}

func TestFilterProperties_RemovesAtAllDepths(t *testing.T) {
	tree := organizeGeneric(t, "# A\n\npara\n\n- one\n- two\n")

	filtered := FilterProperties(tree, []string{"size", "items"})

	if hasKeyDeep(filtered, "size") {
		t.Error("size survived filtering")
	}
	if hasKeyDeep(filtered, "items") {
		t.Error("items survived filtering")
	}
	// Untouched properties remain.
	if !hasKeyDeep(filtered, "content") {
		t.Error("content was removed")
	}
	// The original tree is not mutated.
	if !hasKeyDeep(tree, "size") {
		t.Error("input tree was mutated")
	}
}

func TestFilterEmptyElements_Idempotent(t *testing.T) {
	tree := organizeGeneric(t, "para only\n")

	once := FilterEmptyElements(tree)
	twice := FilterEmptyElements(once)

	if !reflect.DeepEqual(once, twice) {
		t.Error("filtering empty elements twice changed the result")
	}
	root, ok := once.(map[string]any)
	if !ok {
		t.Fatalf("expected map root, got %T", once)
	}
	children, ok := root["elements"].([]any)
	if !ok || len(children) != 1 {
		t.Fatalf("expected surviving root elements, got %v", root["elements"])
	}
	if hasKeyDeep(children[0], "elements") {
		t.Error("empty elements array survived on the leaf paragraph")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	doc, err := NewOrganizer().Organize("# A\n\nhello world\n")
	if err != nil {
		t.Fatalf("organize: %v", err)
	}

	var buf bytes.Buffer
	if err := Save(&buf, doc, nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Type != TypeDocument {
		t.Errorf("expected document root, got %s", loaded.Type)
	}
	if loaded.Elements[0].Content != "A" {
		t.Errorf("unexpected heading content %q", loaded.Elements[0].Content)
	}
	if loaded.Size != doc.Size {
		t.Errorf("size changed across round trip: %d != %d", loaded.Size, doc.Size)
	}
}

func TestSave_OmitProperties(t *testing.T) {
	doc, err := NewOrganizer().Organize("# A\n\nhello\n")
	if err != nil {
		t.Fatalf("organize: %v", err)
	}

	var buf bytes.Buffer
	if err := Save(&buf, doc, []string{"content_size", "size"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, `"content_size"`) || strings.Contains(out, `"size"`) {
		t.Errorf("omitted properties present in output:\n%s", out)
	}

	var g any
	if err := json.Unmarshal(buf.Bytes(), &g); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestLoad_RejectsMissingType(t *testing.T) {
	_, err := Load(strings.NewReader(`{"content": "no type here"}`))
	if err == nil {
		t.Fatal("expected error for document without type")
	}
}
