package watch

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"
)

// newFakeExec returns a FakeExec running each of actions once, in order, and
// the FakeCmds it hands out.
func newFakeExec(actions ...testingexec.FakeAction) (*testingexec.FakeExec, []*testingexec.FakeCmd) {
	fexec := &testingexec.FakeExec{}
	cmds := make([]*testingexec.FakeCmd, 0, len(actions))

	for _, action := range actions {
		fcmd := &testingexec.FakeCmd{
			RunScript: []testingexec.FakeAction{action},
		}
		cmds = append(cmds, fcmd)
		fexec.CommandScript = append(fexec.CommandScript,
			func(cmd string, args ...string) kexec.Cmd {
				return testingexec.InitFakeCmd(fcmd, cmd, args...)
			},
		)
	}

	return fexec, cmds
}

func succeed() ([]byte, []byte, error) { return nil, nil, nil }

func eventFromEnv(t *testing.T, env []string) Event {
	t.Helper()

	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, EventEnv+"="); ok {
			var ev Event
			require.NoError(t, json.Unmarshal([]byte(v), &ev))

			return ev
		}
	}
	t.Fatalf("%s not set", EventEnv)

	return Event{}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	fexec, cmds := newFakeExec(succeed)
	var stdout, stderr bytes.Buffer
	r := NewRunner(
		fexec, []string{"go", "build", "./..."}, "/src", time.Minute,
		&stdout, &stderr,
	)

	ev := Event{
		Path: "main.go",
		Op:   "WRITE",
		Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	rep, err := r.Run(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, ev, rep.Event)
	assert.Equal(t, []string{"go", "build", "./..."}, rep.Command)
	assert.Equal(t, 0, rep.ExitCode)
	assert.False(t, rep.Started.IsZero())

	require.Equal(t, 1, fexec.CommandCalls)
	assert.Equal(t, []string{"go", "build", "./..."}, cmds[0].Argv)
	assert.Equal(t, []string{"/src"}, cmds[0].Dirs)
	assert.Equal(t, ev, eventFromEnv(t, cmds[0].Env))
}

func TestRunner_Run_exitStatus(t *testing.T) {
	t.Parallel()

	fexec, _ := newFakeExec(func() ([]byte, []byte, error) {
		return nil, nil, testingexec.FakeExitError{Status: 2}
	})
	r := NewRunner(fexec, []string{"make"}, "", 0, &bytes.Buffer{}, &bytes.Buffer{})

	rep, err := r.Run(context.Background(), Event{Path: "a"})
	require.Error(t, err)
	assert.EqualError(t, err, "make exited with status 2")
	assert.Equal(t, 2, rep.ExitCode)
}

func TestRunner_Run_startFailure(t *testing.T) {
	t.Parallel()

	fexec, _ := newFakeExec(func() ([]byte, []byte, error) {
		return nil, nil, errors.New("executable file not found")
	})
	r := NewRunner(fexec, []string{"nope"}, "", 0, &bytes.Buffer{}, &bytes.Buffer{})

	rep, err := r.Run(context.Background(), Event{Path: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error running nope")
	assert.Equal(t, 0, rep.ExitCode)
}
