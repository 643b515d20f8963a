package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/drover"
	"github.com/codeninja55/dicomautomaton-go/operation"
)

func noopOperation(name string) *operation.Operation {
	return &operation.Operation{
		Name: name,
		Invoke: func(d *drover.Drover, args, meta map[string]string, filenameLex string) error {
			return nil
		},
	}
}

func TestRun_ExecutesOperationsInOrder(t *testing.T) {
	var calls []string
	recording := func(name string) *operation.Operation {
		op := noopOperation(name)
		op.Invoke = func(d *drover.Drover, args, meta map[string]string, filenameLex string) error {
			calls = append(calls, name)
			return nil
		}
		return op
	}
	registry := []*operation.Operation{recording("A"), recording("B")}
	code := run([]string{"--virtual-data", "-o", "A", "-o", "B"}, registry)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"A", "B"}, calls)
}

func TestRun_UnbalancedScopeFails(t *testing.T) {
	var calls []string
	registry := []*operation.Operation{noopOperation("A")}
	registry[0].Invoke = func(d *drover.Drover, args, meta map[string]string, filenameLex string) error {
		calls = append(calls, "A")
		return nil
	}
	code := run([]string{"--virtual-data", "-o", "start-children", "-o", "A"}, registry)
	assert.Equal(t, 1, code)
	assert.Empty(t, calls)
}

func TestBuildTokens_DisregardElidesFirstOperation(t *testing.T) {
	cli := &CLI{Operation: []string{"A:k=v", "B:k=v"}, Disregard: true}
	tokens, err := buildTokens(cli)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "B:k=v", tokens[0].Text)
}

func TestBuildTokens_IgnoreElidesFirstParameter(t *testing.T) {
	cli := &CLI{Operation: []string{"A:k1=v1:k2=v2"}, Ignore: true}
	tokens, err := buildTokens(cli)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "A:k2=v2", tokens[0].Text)
}

func TestBuildTokens_RecognisesScopeSentinels(t *testing.T) {
	cli := &CLI{Operation: []string{"start-children", "A:k=v", "stop-children"}}
	tokens, err := buildTokens(cli)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, 1, int(tokens[0].Kind))
	assert.Equal(t, "A:k=v", tokens[1].Text)
}
