// Package schema validates CLI arguments against an embedded JSON
// Schema before any command runs. Each command has its own subschema;
// unknown options, type mismatches, and conflicting flag combinations
// all surface as one multi-issue error.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed cli_schema.json
var cliSchema []byte

// ErrValidation is the sentinel all argument-validation failures wrap.
var ErrValidation = errors.New("argument validation failed")

// Issue is a single validation failure.
type Issue struct {
	Location string
	Message  string
}

// ArgumentError aggregates the issues found for one command invocation.
type ArgumentError struct {
	Command string
	Issues  []Issue
}

func (e *ArgumentError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		loc := issue.Location
		if loc == "" {
			loc = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", loc, issue.Message))
	}
	return fmt.Sprintf("invalid arguments for %q: %s", e.Command, strings.Join(parts, "; "))
}

func (e *ArgumentError) Unwrap() error {
	return ErrValidation
}

// Validator holds compiled per-command schemas.
type Validator struct {
	commands map[string]*jsonschema.Schema
}

// CommandNames lists the commands the embedded schema covers.
var CommandNames = []string{"structure", "chunks", "index", "list", "config", "schema", "serve"}

// NewValidator compiles the embedded schema. Compilation failure means
// a broken build, so it is an error rather than a panic only to keep
// main in charge of exiting.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("cli_schema.json", bytes.NewReader(cliSchema)); err != nil {
		return nil, fmt.Errorf("load cli schema: %w", err)
	}

	v := &Validator{commands: make(map[string]*jsonschema.Schema, len(CommandNames))}
	for _, name := range CommandNames {
		compiled, err := compiler.Compile("cli_schema.json#/$defs/" + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", name, err)
		}
		v.commands[name] = compiled
	}
	return v, nil
}

// ValidateCommand checks an argument map against the command's
// subschema. The map holds only flags the user actually set, so
// presence-based rules (mutual exclusion, dependencies) behave
// correctly.
func (v *Validator) ValidateCommand(command string, args map[string]any) error {
	compiled, ok := v.commands[command]
	if !ok {
		return &ArgumentError{
			Command: command,
			Issues:  []Issue{{Message: "unknown command"}},
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	// The validator expects json.Unmarshal-shaped values, so native Go
	// ints and structs go through an encode/decode cycle first.
	instance, err := normalize(args)
	if err != nil {
		return &ArgumentError{Command: command, Issues: []Issue{{Message: err.Error()}}}
	}
	if err := compiled.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ArgumentError{Command: command, Issues: collectIssues(ve)}
		}
		return &ArgumentError{Command: command, Issues: []Issue{{Message: err.Error()}}}
	}
	return nil
}

func normalize(args map[string]any) (any, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return instance, nil
}

// Raw returns the embedded schema document.
func Raw() []byte {
	return cliSchema
}

// collectIssues flattens the validator's cause tree to its leaves.
func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
