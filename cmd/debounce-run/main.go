// Command debounce-run watches files and runs a command once a burst of
// changes has settled.
//
//	debounce-run -p ./src -wait 250ms -- go build ./...
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	kexec "k8s.io/utils/exec"

	"github.com/romdo/go-debounce/v2"
	"github.com/romdo/go-debounce/v2/internal/watch"
)

type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ",") }

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)

	return nil
}

var (
	configPath  = flag.String("f", "", "Path to configuration file")
	wait        = flag.Duration("wait", 0, "Quiet period before running the command")
	maxWait     = flag.Duration("max-wait", 0, "Longest a run may be delayed by repeated changes")
	leading     = flag.Bool("leading", false, "Run on the first change of a burst")
	throttle    = flag.Bool("throttle", false, "Run at most once per wait instead of debouncing")
	recursive   = flag.Bool("r", false, "Watch directories recursively")
	metricsAddr = flag.String("metrics", "", "Listen address for Prometheus metrics")
	jsonOut     = flag.Bool("json", false, "Write run reports as JSON lines to stdout")
	flushOnExit = flag.Bool("flush", false, "Run a pending command before exiting")
	paths       stringSlice
	include     stringSlice
	exclude     stringSlice
)

func init() {
	flag.Var(&paths, "p", "Path to watch (repeatable)")
	flag.Var(&include, "i", "Glob of paths to include (repeatable)")
	flag.Var(&exclude, "x", "Glob of paths to exclude (repeatable)")
}

func readConf(path string) (*watch.Config, error) {
	conf := watch.NewConfig()
	if path == "" {
		return conf, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening configuration")
	}
	defer f.Close()

	// Validated once flags have been applied.
	if err := conf.Decode(f); err != nil {
		return nil, errors.Wrap(err, "error reading configuration")
	}

	return conf, nil
}

// applyFlags overrides conf with the flags given on the command line.
func applyFlags(conf *watch.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "wait":
			conf.Debounce.Wait = *wait
		case "max-wait":
			conf.Debounce.MaxWait = maxWait
		case "leading":
			conf.Debounce.Leading = leading
		case "throttle":
			conf.Debounce.Throttle = *throttle
		case "r":
			conf.Recursive = *recursive
		case "metrics":
			conf.MetricsAddr = *metricsAddr
		case "json":
			conf.JSON = *jsonOut
		case "flush":
			conf.FlushOnExit = *flushOnExit
		case "p":
			conf.Paths = paths
		case "i":
			conf.Include = include
		case "x":
			conf.Exclude = exclude
		}
	})
	if args := flag.Args(); len(args) > 0 {
		conf.Command = args
	}
}

func main() {
	flag.Parse()

	conf, err := readConf(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	applyFlags(conf)
	conf.Clean()
	if err := conf.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	metrics, err := debounce.NewMetrics(reg, "debounce_run")
	if err != nil {
		log.Fatal(err)
	}

	fsw, err := watch.NewNotifyWatcher()
	if err != nil {
		log.Fatal(err)
	}

	runner := watch.NewRunner(
		kexec.New(), conf.Command, conf.Dir, conf.Timeout,
		os.Stderr, os.Stderr,
	)
	w, err := watch.New(*conf, fsw, runner, os.Stdout, debounce.WithMetrics(metrics))
	if err != nil {
		log.Fatal(err)
	}
	if err := w.Add(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()

		return w.Run(ctx)
	})

	if conf.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
			_, _ = rw.Write([]byte("OK\n"))
		})
		srv := &http.Server{
			Addr:              conf.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		log.Printf("metrics listening at %s", conf.MetricsAddr)
		g.Go(func() error {
			err := srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}

			return errors.Wrap(err, "error serving metrics")
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(), 5*time.Second,
			)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		})
	}

	log.Printf(
		"watching %s, running %s",
		strings.Join(conf.Paths, ", "), strings.Join(conf.Command, " "),
	)
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
