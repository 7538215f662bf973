package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/engine/tree_config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	walkRunGraph = "../../../examples/graphs/walk_run.yaml"
	runJumpGraph = "../../../examples/graphs/run_jump.yaml"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(Config{Workers: 2}, "test", "none", "unknown")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", walkRunGraph, runJumpGraph)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+walkRunGraph)
	assert.Contains(t, out, "root locomotion")
	assert.Contains(t, out, "root ragdoll")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	out, err := execute(t, "validate", walkRunGraph, "does_not_exist.yaml")
	assert.True(t, errors.Is(err, errInvalidGraphs))
	assert.Contains(t, out, "FAIL does_not_exist.yaml")
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "--graph", walkRunGraph, "--frames", "30", "--instances", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "final pose of instance-0")
	assert.Contains(t, out, "hips")
	assert.Contains(t, out, "head")
}

func TestRunCommand_Events(t *testing.T) {
	out, err := execute(t, "run", "--graph", runJumpGraph, "--frames", "20",
		"--trigger", "to_jump=5", "--activate", "ragdoll=10")
	require.NoError(t, err)
	assert.Contains(t, out, "final pose of instance-0")
}

func TestRunCommand_RequiresGraph(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestScheduleEvents(t *testing.T) {
	doc, err := tree_config.Load(runJumpGraph)
	require.NoError(t, err)

	events, err := scheduleEvents(doc, runOptions{
		triggers: map[string]int{"to_jump": 30},
		activate: map[string]int{"ragdoll": 10},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ragdoll", events[0].node)
	assert.Equal(t, 10, events[0].frame)
	assert.Equal(t, "to_jump", events[1].node)

	_, err = scheduleEvents(doc, runOptions{triggers: map[string]int{"missing": 1}})
	assert.True(t, errors.Is(err, errUnknownNode))

	_, err = scheduleEvents(doc, runOptions{triggers: map[string]int{"run": 1}})
	assert.True(t, errors.Is(err, errWrongNodeType))

	_, err = scheduleEvents(doc, runOptions{activate: map[string]int{"ragdoll": -1}})
	assert.True(t, errors.Is(err, errNegativeFrame))
}
