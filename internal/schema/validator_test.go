package schema

import (
	"errors"
	"strings"
	"testing"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("embedded schema failed to compile: %v", err)
	}
	return v
}

func TestValidateCommand_AcceptsValidArgs(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateCommand("structure", map[string]any{
		"source_folder":   "./docs",
		"pattern":         "*.md",
		"recursive":       true,
		"omit_properties": "size,items",
	})
	if err != nil {
		t.Errorf("valid structure args rejected: %v", err)
	}

	err = v.ValidateCommand("chunks", map[string]any{
		"file_name":      "doc.md",
		"min_chunk_size": 100,
		"max_chunk_size": 2000,
		"size_tolerance": 0.1,
	})
	if err != nil {
		t.Errorf("valid chunks args rejected: %v", err)
	}

	if err := v.ValidateCommand("schema", nil); err != nil {
		t.Errorf("empty args rejected: %v", err)
	}
}

func TestValidateCommand_TypeMismatch(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateCommand("chunks", map[string]any{
		"min_chunk_size": "not-a-number",
	})
	if err == nil {
		t.Fatal("expected type error")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error does not wrap ErrValidation: %v", err)
	}
}

func TestValidateCommand_UnknownOption(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateCommand("structure", map[string]any{
		"no_such_flag": true,
	})
	if err == nil {
		t.Fatal("expected unknown-option error")
	}
}

func TestValidateCommand_MutuallyExclusiveSources(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateCommand("list", map[string]any{
		"file_name": "a.md",
		"catalogue": "cat.json",
	})
	if err == nil {
		t.Fatal("expected mutual-exclusion error")
	}
}

func TestValidateCommand_RegexRequiresPattern(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateCommand("list", map[string]any{"use_regex": true})
	if err == nil {
		t.Fatal("expected dependency error for use_regex without pattern")
	}

	err = v.ValidateCommand("list", map[string]any{"use_regex": true, "pattern": "x+"})
	if err != nil {
		t.Errorf("use_regex with pattern rejected: %v", err)
	}
}

func TestValidateCommand_UnknownCommand(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateCommand("frobnicate", nil)
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("unexpected error type %T", err)
	}
	if argErr.Command != "frobnicate" {
		t.Errorf("unexpected command in error: %q", argErr.Command)
	}
}

func TestArgumentError_MessageListsIssues(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateCommand("chunks", map[string]any{
		"min_chunk_size": -5,
		"sort_by":        "colour",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "chunks") {
		t.Errorf("error does not name the command: %s", msg)
	}
}

func TestRaw(t *testing.T) {
	if len(Raw()) == 0 {
		t.Fatal("embedded schema is empty")
	}
	if !strings.Contains(string(Raw()), "docindexer CLI arguments") {
		t.Error("unexpected schema document")
	}
}
