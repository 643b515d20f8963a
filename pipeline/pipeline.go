// Package pipeline implements the pipeline driver (spec §4.11): sequential,
// synchronous dispatch of a token sequence against a registry of named
// operations, plus the start-children/stop-children scope-balance check and
// the Loader contract external file-format collaborators implement.
package pipeline

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/codeninja55/dicomautomaton-go/drover"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
	"github.com/codeninja55/dicomautomaton-go/operation"
)

// TokenKind discriminates one pipeline token.
type TokenKind int

const (
	TokenOperation TokenKind = iota
	TokenStartChildren
	TokenStopChildren
)

// Token is one entry in a flattened pipeline: either an operation in its
// text form ("Op:k1=v1:k2=v2") or a scope-bracketing marker.
type Token struct {
	Kind TokenKind
	Text string
}

// Loader is the contract an external file-format collaborator (DICOM,
// FITS, STL, OFF, PLY, XYZ, 3ddose, and similar) implements to populate a
// Drover. The pipeline driver never invokes Load directly; a "load"
// operation's InvocationFunc does, keeping the core free of any dependency
// on concrete file formats.
type Loader interface {
	Load(d *drover.Drover, filenameLex string) error
}

// Driver holds the operation registry and the process-wide
// invocation-metadata map propagated to every invocation.
type Driver struct {
	Registry []*operation.Operation
	Meta     map[string]string
	// Logger receives a debug record per dispatched operation and a warn
	// record on the failure that aborts the run. Nil defaults to
	// log.Default().
	Logger *log.Logger
}

// NewDriver constructs a Driver over registry with an empty metadata map.
func NewDriver(registry []*operation.Operation) *Driver {
	return &Driver{Registry: registry, Meta: map[string]string{}}
}

func (dr *Driver) logger() *log.Logger {
	if dr.Logger != nil {
		return dr.Logger
	}
	return log.Default()
}

// Run validates scope balance across the whole token sequence, then
// dispatches each operation token in order. The driver is single-threaded
// and synchronous: an operation must return before the next one starts.
// The first operation failure aborts the run and is wrapped in
// errs.OperationError carrying the failing operation's name and resolved
// arguments.
func (dr *Driver) Run(d *drover.Drover, tokens []Token, filenameLex string) error {
	if err := validateScope(tokens); err != nil {
		return err
	}
	logger := dr.logger()
	for _, tok := range tokens {
		if tok.Kind != TokenOperation {
			continue
		}
		name, args, op, err := dr.resolve(tok.Text)
		if err != nil {
			return err
		}
		logger.Debug("dispatching operation", "name", name, "args", args)
		if err := op.Invoke(d, args, dr.Meta, filenameLex); err != nil {
			logger.Warn("operation failed, aborting pipeline", "name", name, "error", err)
			return &errs.OperationError{OpName: name, Args: args, Cause: err}
		}
	}
	return nil
}

func validateScope(tokens []Token) error {
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenStartChildren:
			depth++
		case TokenStopChildren:
			depth--
			if depth < 0 {
				return &errs.ScopeError{Reason: "stop-children without a matching start-children"}
			}
		}
	}
	if depth != 0 {
		return &errs.ScopeError{Reason: "start-children without a matching stop-children"}
	}
	return nil
}

func (dr *Driver) resolve(text string) (name string, args map[string]string, op *operation.Operation, err error) {
	name = text
	if i := strings.IndexByte(text, ':'); i >= 0 {
		name = text[:i]
	}
	for _, candidate := range dr.Registry {
		if candidate.MatchesName(name) {
			op = candidate
			break
		}
	}
	if op == nil {
		return "", nil, nil, errs.ErrNoMatch
	}
	parsedName, args, err := operation.ParseTextForm(text, op.Schema)
	if err != nil {
		return "", nil, nil, err
	}
	return parsedName, args, op, nil
}
