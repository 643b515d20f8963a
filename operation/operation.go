// Package operation implements the operation model (spec §4.10): the
// declarative argument schema, the `Op:k1=v1:k2=v2` text-form parser, and
// the invocation function signature the pipeline driver dispatches through.
// Schema validation is grounded on the teacher's FHIR struct-tag validator
// (fhir/validation/validator.go), generalized from FHIR-specific tags to a
// field-by-field use of go-playground/validator/v10.
package operation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codeninja55/dicomautomaton-go/drover"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// IOFlow classifies whether an argument names an input or output resource,
// or neither.
type IOFlow int

const (
	IOFlowNone IOFlow = iota
	IOFlowInput
	IOFlowOutput
)

// ArgumentSchema describes one recognized operation parameter.
type ArgumentSchema struct {
	Name        string `validate:"required"`
	Description string
	Default     string
	Required    bool
	// Examples is a free-form illustrative list; Options, when non-empty,
	// is the exhaustive set of accepted values.
	Examples []string
	Options  []string
	Visible  bool
	IOFlow   IOFlow
	MIMEType string
}

var schemaValidator = validator.New()

// ValidateSchema checks every ArgumentSchema's own struct-tag constraints
// (presently just Name being non-empty) and that Options, when given,
// contains Default if Default is non-empty.
func ValidateSchema(schema []ArgumentSchema) error {
	for _, arg := range schema {
		if err := schemaValidator.Struct(arg); err != nil {
			return &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: arg.Name}
		}
		if arg.Default != "" && len(arg.Options) > 0 && !contains(arg.Options, arg.Default) {
			return &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: arg.Name}
		}
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// InvocationFunc is the function an Operation runs when dispatched by the
// pipeline driver. meta is the process-wide invocation-metadata map;
// filenameLex is an opaque string the lexicon collaborator consumes.
type InvocationFunc func(d *drover.Drover, args map[string]string, meta map[string]string, filenameLex string) error

// Operation is one named, schema-described analytical step.
type Operation struct {
	Name       string
	Aliases    []string
	Schema     []ArgumentSchema
	TextTags   []string
	ChildPacks [][]*Operation
	Invoke     InvocationFunc
}

// MatchesName reports whether name equals the operation's own name or any
// alias, case-sensitively.
func (op *Operation) MatchesName(name string) bool {
	if op.Name == name {
		return true
	}
	for _, a := range op.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

// ParseTextForm splits a text form like "Op:k1=v1:k2=v2" into an operation
// name and an argument map, validated against schema. Fails with
// errs.ErrDuplicateParameter when the same key appears twice,
// errs.ErrUnknownParameter when a key is not present in schema, and
// errs.ErrInvalidArgument when a key's schema declares a non-empty Options
// list and the supplied value is not one of them.
func ParseTextForm(text string, schema []ArgumentSchema) (name string, args map[string]string, err error) {
	parts := strings.Split(text, ":")
	if len(parts) == 0 || parts[0] == "" {
		return "", nil, &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: text}
	}
	name = parts[0]
	args = make(map[string]string, len(parts)-1)

	byName := make(map[string]ArgumentSchema, len(schema))
	for _, s := range schema {
		byName[s.Name] = s
	}

	for _, kv := range parts[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return "", nil, &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: kv}
		}
		if _, dup := args[key]; dup {
			return "", nil, &errs.ParameterError{Kind: errs.ErrDuplicateParameter, Key: key}
		}
		s, known := byName[key]
		if !known {
			return "", nil, &errs.ParameterError{Kind: errs.ErrUnknownParameter, Key: key}
		}
		if len(s.Options) > 0 && !contains(s.Options, value) {
			return "", nil, &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: key}
		}
		args[key] = value
	}

	for _, s := range schema {
		if _, present := args[s.Name]; !present {
			if s.Required {
				return "", nil, &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: s.Name}
			}
			if s.Default != "" {
				args[s.Name] = s.Default
			}
		}
	}
	return name, args, nil
}
