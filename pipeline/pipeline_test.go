package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/drover"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
	"github.com/codeninja55/dicomautomaton-go/operation"
)

func recordingOperation(name string, calls *[]string, fail bool) *operation.Operation {
	return &operation.Operation{
		Name: name,
		Schema: []operation.ArgumentSchema{
			{Name: "Value", Default: "x"},
		},
		Invoke: func(d *drover.Drover, args map[string]string, meta map[string]string, filenameLex string) error {
			*calls = append(*calls, name+":"+args["Value"])
			if fail {
				return assert.AnError
			}
			return nil
		},
	}
}

func TestDriver_RunsOperationsInOrder(t *testing.T) {
	var calls []string
	a := recordingOperation("A", &calls, false)
	b := recordingOperation("B", &calls, false)
	dr := NewDriver([]*operation.Operation{a, b})

	err := dr.Run(drover.New(), []Token{
		{Kind: TokenOperation, Text: "A:Value=1"},
		{Kind: TokenOperation, Text: "B:Value=2"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A:1", "B:2"}, calls)
}

func TestDriver_AbortsOnFirstFailure(t *testing.T) {
	var calls []string
	a := recordingOperation("A", &calls, true)
	b := recordingOperation("B", &calls, false)
	dr := NewDriver([]*operation.Operation{a, b})

	err := dr.Run(drover.New(), []Token{
		{Kind: TokenOperation, Text: "A:Value=1"},
		{Kind: TokenOperation, Text: "B:Value=2"},
	}, "")
	require.Error(t, err)
	var opErr *errs.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "A", opErr.OpName)
	assert.Equal(t, []string{"A:1"}, calls)
}

func TestDriver_RejectsUnbalancedScope(t *testing.T) {
	var calls []string
	a := recordingOperation("A", &calls, false)
	dr := NewDriver([]*operation.Operation{a})

	err := dr.Run(drover.New(), []Token{
		{Kind: TokenStartChildren},
		{Kind: TokenOperation, Text: "A:Value=1"},
	}, "")
	require.ErrorIs(t, err, errs.ErrInvalidScope)
}

func TestDriver_RejectsExtraStopChildren(t *testing.T) {
	dr := NewDriver(nil)
	err := dr.Run(drover.New(), []Token{{Kind: TokenStopChildren}}, "")
	require.ErrorIs(t, err, errs.ErrInvalidScope)
}

func TestDriver_UnknownOperationFails(t *testing.T) {
	dr := NewDriver(nil)
	err := dr.Run(drover.New(), []Token{{Kind: TokenOperation, Text: "Missing:Value=1"}}, "")
	require.ErrorIs(t, err, errs.ErrNoMatch)
}
