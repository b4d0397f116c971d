package watch

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	kexec "k8s.io/utils/exec"
)

// EventEnv is the environment variable holding the JSON encoded Event that
// triggered a run.
const EventEnv = "DEBOUNCE_EVENT"

// Event is a file system change that triggers a run.
type Event struct {
	Path string    `json:"path"`
	Op   string    `json:"op"`
	Time time.Time `json:"time"`
}

// Report describes a finished run.
type Report struct {
	Event    Event         `json:"event"`
	Command  []string      `json:"command"`
	ExitCode int           `json:"exit_code"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// Runner runs a command for an Event.
type Runner struct {
	executor kexec.Interface
	argv     []string
	dir      string
	timeout  time.Duration
	stdout   io.Writer
	stderr   io.Writer
}

// NewRunner creates a Runner executing argv with executor. The command's output
// goes to stdout and stderr.
func NewRunner(
	executor kexec.Interface,
	argv []string,
	dir string,
	timeout time.Duration,
	stdout, stderr io.Writer,
) *Runner {
	return &Runner{
		executor: executor,
		argv:     argv,
		dir:      dir,
		timeout:  timeout,
		stdout:   stdout,
		stderr:   stderr,
	}
}

// Run runs the command once for ev. A non-zero exit status is returned as an
// error, along with a Report carrying the exit code.
func (r *Runner) Run(ctx context.Context, ev Event) (Report, error) {
	rep := Report{Event: ev, Command: r.argv}

	payload, err := json.Marshal(ev)
	if err != nil {
		return rep, errors.Wrap(err, "error encoding event")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := r.executor.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	if r.dir != "" {
		cmd.SetDir(r.dir)
	}
	cmd.SetEnv(append(os.Environ(), EventEnv+"="+string(payload)))
	cmd.SetStdout(r.stdout)
	cmd.SetStderr(r.stderr)

	rep.Started = time.Now()
	err = cmd.Run()
	rep.Duration = time.Since(rep.Started)

	if err != nil {
		var exitErr kexec.ExitError
		if errors.As(err, &exitErr) {
			rep.ExitCode = exitErr.ExitStatus()

			return rep, errors.Errorf(
				"%s exited with status %d", r.argv[0], rep.ExitCode,
			)
		}

		return rep, errors.Wrapf(err, "error running %s", r.argv[0])
	}

	return rep, nil
}
