// Package watch runs a command when files change, coalescing bursts of file
// system events with a Debouncer.
package watch

import (
	"context"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/romdo/go-debounce/v2"
)

// FSWatcher abstracts filesystem watching for testability.
type FSWatcher interface {
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Add(path string) error
	Close() error
}

// NotifyWatcher wraps fsnotify.Watcher to implement FSWatcher.
type NotifyWatcher struct {
	watcher *fsnotify.Watcher
}

// NewNotifyWatcher creates a new NotifyWatcher.
func NewNotifyWatcher() (*NotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "error creating watcher")
	}

	return &NotifyWatcher{watcher: w}, nil
}

func (n *NotifyWatcher) Events() <-chan fsnotify.Event { return n.watcher.Events }
func (n *NotifyWatcher) Errors() <-chan error          { return n.watcher.Errors }
func (n *NotifyWatcher) Add(path string) error         { return n.watcher.Add(path) }
func (n *NotifyWatcher) Close() error                  { return n.watcher.Close() }

// Watcher feeds file system events through a Debouncer into a Runner.
type Watcher struct {
	conf    Config
	fs      FSWatcher
	filter  *Filter
	runner  *Runner
	out     io.Writer
	trigger *debounce.Debouncer[Event, Report]
}

// New creates a Watcher. Run reports are written to out, as JSON lines if
// conf.JSON is set. opts are applied after the options from conf.Debounce.
func New(
	conf Config,
	fsw FSWatcher,
	runner *Runner,
	out io.Writer,
	opts ...debounce.Option,
) (*Watcher, error) {
	filter, err := NewFilter(conf.Include, conf.Exclude)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		conf:   conf,
		fs:     fsw,
		filter: filter,
		runner: runner,
		out:    out,
	}

	opts = append([]debounce.Option{
		debounce.WithErrorHandler(func(err error) {
			log.Printf("run failed: %v", err)
		}),
	}, opts...)

	w.trigger, err = debounce.NewFromConfig(conf.Debounce, w.run, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error creating debouncer")
	}

	return w, nil
}

// run is the debounced function. Runs are not tied to the watch context, so
// that a flush on shutdown can still complete.
func (w *Watcher) run(ev Event) (Report, error) {
	rep, err := w.runner.Run(context.Background(), ev)
	if err == nil || rep.ExitCode != 0 {
		w.writeReport(rep)
	}

	return rep, err
}

func (w *Watcher) writeReport(rep Report) {
	if w.conf.JSON {
		b, err := json.Marshal(rep)
		if err != nil {
			log.Printf("error encoding report: %v", err)

			return
		}
		_, _ = w.out.Write(append(b, '\n'))

		return
	}

	log.Printf(
		"%s: ran %s in %s (exit %d)",
		rep.Event.Path, strings.Join(rep.Command, " "),
		rep.Duration.Round(time.Millisecond), rep.ExitCode,
	)
}

// Add starts watching the configured paths. Directories are walked when
// conf.Recursive is set.
func (w *Watcher) Add() error {
	for _, p := range w.conf.Paths {
		if !w.conf.Recursive {
			if err := w.fs.Add(p); err != nil {
				return errors.Wrapf(err, "error watching %s", p)
			}

			continue
		}

		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return w.fs.Add(path)
		})
		if err != nil {
			return errors.Wrapf(err, "error watching %s", p)
		}
	}

	return nil
}

// Run consumes events until ctx is done or the event channel is closed. On
// return, a pending run is flushed if conf.FlushOnExit is set and cancelled
// otherwise.
//
// Trailing runs execute on the debouncer's timer goroutine, so events keep
// being drained while the command runs. A run on the leading edge or forced by
// max_wait executes inside Run, which then neither drains events nor sees ctx
// being done until the command exits or conf.Timeout expires.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events():
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors():
			if !ok {
				return nil
			}

			return errors.Wrap(err, "watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// Attribute changes alone don't warrant a run.
	if event.Op == fsnotify.Chmod {
		return
	}
	if !w.filter.Match(event.Name) {
		return
	}

	_, err := w.trigger.Invoke(Event{
		Path: event.Name,
		Op:   event.Op.String(),
		Time: time.Now(),
	})
	if err != nil {
		log.Printf("run failed: %v", err)
	}
}

func (w *Watcher) shutdown() {
	if w.conf.FlushOnExit {
		if _, err := w.trigger.Flush(); err != nil {
			log.Printf("run failed: %v", err)
		}
	} else {
		w.trigger.Cancel()
	}

	if err := w.fs.Close(); err != nil {
		log.Printf("error closing watcher: %v", err)
	}
}

// Pending reports whether a run is scheduled.
func (w *Watcher) Pending() bool {
	return w.trigger.Pending()
}
